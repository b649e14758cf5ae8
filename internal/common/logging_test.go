package common

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerWithOutput_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("warn", &buf)

	logger.Debug().Msg("below threshold")
	logger.Info().Msg("also below")
	logger.Warn().Msg("emitted")

	out := buf.String()
	if strings.Contains(out, "below threshold") || strings.Contains(out, "also below") {
		t.Errorf("messages below warn must be dropped: %s", out)
	}
	if !strings.Contains(out, "emitted") {
		t.Errorf("warn message missing: %s", out)
	}
}

func TestNewLoggerWithOutput_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("verbose", &buf)

	logger.Debug().Msg("debug line")
	logger.Info().Msg("info line")

	out := buf.String()
	if strings.Contains(out, "debug line") {
		t.Errorf("debug must be dropped at the default level: %s", out)
	}
	if !strings.Contains(out, "info line") {
		t.Errorf("info message missing: %s", out)
	}
}
