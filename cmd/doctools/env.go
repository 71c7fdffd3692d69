package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/alnah/go-doctools/internal/config"
	doclog "github.com/alnah/go-doctools/internal/log"
)

// Environment holds injectable dependencies for testability.
// Config and Logger are filled by the root command before any subcommand runs.
type Environment struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Config *config.Config
	Logger *slog.Logger
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Config: config.DefaultConfig(),
		Logger: doclog.Discard(),
	}
}
