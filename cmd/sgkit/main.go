// Package main is the entry point for the sgkit command line tool.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		zap.L().Error("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		_ = zap.L().Sync()
		os.Exit(1)
	}
}
