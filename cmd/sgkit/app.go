package main

import (
	"fmt"
	"io"
	"os"

	"github.com/segmentio/encoding/json"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/shineum/sendgrid-kit/internal/config"
	"github.com/shineum/sendgrid-kit/internal/logger"
	"github.com/shineum/sendgrid-kit/sendgrid"
)

// state is shared by every command. It is populated by the app's Before hook.
type state struct {
	cfg *config.Config
}

var (
	globalFlags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to YAML configuration file (optional)",
		},
	}

	inFlag = &cli.StringFlag{
		Name:     "in",
		Aliases:  []string{"i"},
		Usage:    "input file, or - for stdin",
		Required: true,
	}
)

// newApp builds the sgkit application. Output goes to app.Writer and input
// read from "-" comes from app.Reader, so tests can swap both.
func newApp() *cli.App {
	st := &state{}

	return &cli.App{
		Name:   "sgkit",
		Usage:  "build, check and convert mail/send request bodies",
		Flags:  globalFlags,
		Reader: os.Stdin,
		Writer: os.Stdout,
		Before: st.setup,
		Commands: []*cli.Command{
			{
				Name:   "encode",
				Usage:  "complete a YAML or JSON draft with configured defaults and print the request",
				Flags:  []cli.Flag{inFlag},
				Action: st.encode,
			},
			{
				Name:      "check",
				Usage:     "decode and validate request files",
				ArgsUsage: "FILE...",
				Action:    st.check,
			},
			{
				Name:   "import",
				Usage:  "convert an RFC 5322 message into a request",
				Flags:  []cli.Flag{inFlag},
				Action: st.importMessage,
			},
			{
				Name:   "preview",
				Usage:  "print a human-readable summary of a request",
				Flags:  []cli.Flag{inFlag},
				Action: st.previewRequest,
			},
			{
				Name:   "ses",
				Usage:  "map a request onto AWS SES v2 SendEmail inputs",
				Flags:  []cli.Flag{inFlag},
				Action: st.sesInputs,
			},
		},
	}
}

// setup loads configuration and installs the global logger.
func (st *state) setup(c *cli.Context) error {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}
	st.cfg = cfg

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(log)

	zap.L().Debug("configuration loaded",
		zap.String("config", c.String("config")),
		zap.Bool("default_sender", cfg.HasDefaultSender()),
		zap.Bool("pretty", cfg.Output.Pretty),
	)
	return nil
}

// loadConfig loads configuration from the specified path (YAML + env override)
// or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// readInput reads the named file, or the app reader when path is "-".
func readInput(c *cli.Context, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return data, nil
}

// readRequest reads and decodes a wire-format JSON request.
func readRequest(c *cli.Context, path string) (*sendgrid.Email, error) {
	data, err := readInput(c, path)
	if err != nil {
		return nil, err
	}

	var e sendgrid.Email
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	return &e, nil
}

// writeRequest prints e in its wire form.
func (st *state) writeRequest(w io.Writer, e sendgrid.Email) error {
	var (
		out []byte
		err error
	)
	if st.cfg.Output.Pretty {
		out, err = sendgrid.MarshalIndent(e, "", "  ")
	} else {
		out, err = json.Marshal(e)
	}
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return writeLine(w, out)
}

// writeJSON prints v as JSON.
func (st *state) writeJSON(w io.Writer, v any) error {
	var (
		out []byte
		err error
	)
	if st.cfg.Output.Pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return writeLine(w, out)
}

func writeLine(w io.Writer, out []byte) error {
	if _, err := w.Write(append(out, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
