package main

import (
	"errors"
	"testing"

	"github.com/spf13/pflag"
)

func TestParseFlags(t *testing.T) {
	f, err := parseFlags([]string{"-c", "/tmp/panels.toml", "-v", "--log-file", "nav.log", "--fresh"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if f.configPath != "/tmp/panels.toml" || !f.verbose || f.logFile != "nav.log" || f.check || !f.fresh {
		t.Errorf("parseFlags: got %+v", f)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	if _, err := parseFlags([]string{"--nope"}); err == nil {
		t.Error("expected error for unknown flag")
	}
	if _, err := parseFlags([]string{"--help"}); !errors.Is(err, pflag.ErrHelp) {
		t.Errorf("expected ErrHelp, got %v", err)
	}
}

func TestNewLogger_DiscardsWithoutFile(t *testing.T) {
	logger, closeLog, err := newLogger(flags{}, true)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	defer closeLog()
	if logger.Enabled() {
		t.Error("expected discard logger when no log file is set")
	}
}
