package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectionFiltering(t *testing.T) {
	SetLevel(slog.LevelDebug)
	EnableSections("rules")
	t.Cleanup(func() {
		SetLevel(slog.LevelWarn)
		EnableSections("prover")
	})

	buf := &bytes.Buffer{}
	logger := New(buf)

	logger.With("section", "rules.congruence").Debug("kept")
	logger.With("section", "heap").Debug("dropped")
	logger.Debug("dropped without section")
	logger.Info("kept inline", "section", "rules")
	logger.With("section", "heap").Warn("warnings always pass")

	out := buf.String()
	assert.Contains(t, out, "msg=kept")
	assert.Contains(t, out, "kept inline")
	assert.Contains(t, out, "warnings always pass")
	assert.NotContains(t, out, "dropped")
}
