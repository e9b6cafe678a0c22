package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/shineum/sendgrid-kit/internal/parser"
	"github.com/shineum/sendgrid-kit/internal/preview"
	"github.com/shineum/sendgrid-kit/internal/ses"
	"github.com/shineum/sendgrid-kit/sendgrid"
)

// encode completes a draft with configured defaults, validates it and prints
// the wire form. Drafts may be YAML or JSON.
func (st *state) encode(c *cli.Context) error {
	data, err := readInput(c, c.String("in"))
	if err != nil {
		return err
	}

	var draft map[string]any
	if err := yaml.Unmarshal(data, &draft); err != nil {
		return fmt.Errorf("failed to parse draft: %w", err)
	}
	if draft == nil {
		return errors.New("draft is empty")
	}

	applyDefaults(draft, st.cfg.Defaults)

	e, err := sendgrid.DecodeEmail(draft)
	if err != nil {
		return fmt.Errorf("failed to decode draft: %w", err)
	}
	if err := sendgrid.Validate(e); err != nil {
		return err
	}

	return st.writeRequest(c.App.Writer, e)
}

// check decodes and validates every file named on the command line. Every
// failure is reported; the returned error combines them.
func (st *state) check(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("no request files given")
	}

	var errs error
	for _, path := range c.Args().Slice() {
		if err := checkFile(c, path); err != nil {
			zap.L().Warn("request is invalid",
				zap.String("file", path),
				zap.Error(err),
			)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		fmt.Fprintf(c.App.Writer, "ok %s\n", path)
	}

	if errs != nil {
		zap.L().Error("check failed",
			zap.Int("invalid", len(multierr.Errors(errs))),
			zap.Int("total", c.NArg()),
		)
	}
	return errs
}

func checkFile(c *cli.Context, path string) error {
	e, err := readRequest(c, path)
	if err != nil {
		return err
	}
	return sendgrid.Validate(*e)
}

// importMessage converts an RFC 5322 message into a request.
func (st *state) importMessage(c *cli.Context) error {
	data, err := readInput(c, c.String("in"))
	if err != nil {
		return err
	}

	parsed, err := parser.Parse(data)
	if err != nil {
		return err
	}

	wire := parsed.Encode()
	applyDefaults(wire, st.cfg.Defaults)

	e, err := sendgrid.DecodeEmail(wire)
	if err != nil {
		return fmt.Errorf("failed to decode imported message: %w", err)
	}
	if err := sendgrid.Validate(e); err != nil {
		return err
	}

	zap.L().Info("message imported",
		zap.Int("recipients", len(e.Personalizations[0].To)+len(e.Personalizations[0].Cc)+len(e.Personalizations[0].Bcc)),
		zap.Int("attachments", len(e.Attachments)),
	)
	return st.writeRequest(c.App.Writer, e)
}

// previewRequest prints a human-readable summary of a request.
func (st *state) previewRequest(c *cli.Context) error {
	e, err := readRequest(c, c.String("in"))
	if err != nil {
		return err
	}
	return preview.NewWithWriter(c.App.Writer).Write(e)
}

// sesInputs prints the SES v2 SendEmail inputs for a request.
func (st *state) sesInputs(c *cli.Context) error {
	e, err := readRequest(c, c.String("in"))
	if err != nil {
		return err
	}

	inputs, err := ses.Build(e, ses.Options{ConfigurationSet: st.cfg.SES.ConfigurationSet})
	if err != nil {
		return fmt.Errorf("failed to build SES inputs: %w", err)
	}

	zap.L().Debug("SES inputs built", zap.Int("count", len(inputs)))
	return st.writeJSON(c.App.Writer, inputs)
}
