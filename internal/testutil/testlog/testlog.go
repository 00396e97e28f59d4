package testlog

import (
	"testing"

	"github.com/pmattes/x3270ifSimple/internal/logging"
	"github.com/rs/zerolog"
)

// Start configures the test logging profile and records the test name.
func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	l := logging.Logger()
	l.Info().Msgf("test=%s", t.Name())
}

// Logger returns a logger that writes through t.Log, so output is shown
// only for failing or verbose tests.
func Logger(t *testing.T) zerolog.Logger {
	t.Helper()
	Start(t)
	cfg := logging.DefaultConfig(logging.ProfileTest)
	logging.ApplyEnvOverrides(&cfg)
	return logging.New(cfg, zerolog.NewTestWriter(t))
}
