package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLoggerWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "llm.log")
	l := NewIsolatedLogger(path)

	l.Info("LLM", "Provider answered", map[string]interface{}{"provider": "ollama"})
	l.Error("LLM", "Provider failed", map[string]interface{}{"error": "timeout"})
	l.Debug("LLM", "No details", nil)
	require.NoError(t, l.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "INFO", first["level"])
	assert.Equal(t, "Provider answered", first["message"])
	assert.Equal(t, "LLM", first["module"])
	assert.Equal(t, "ollama", first["details"].(map[string]interface{})["provider"])

	var second map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "timeout", second["error_ref"])
}

func TestNopLoggerDiscards(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Warn("X", "ignored", nil)
		_ = l.Sync()
	})
}
