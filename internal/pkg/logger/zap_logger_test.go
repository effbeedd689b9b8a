package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLoggerWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.log")
	l := NewIsolatedLogger(path)

	l.Info("NoteStore", "Notes loaded", map[string]interface{}{"count": 3})
	l.Debug("NoteStore", "below file level", nil)
	_ = l.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"message":"Notes loaded"`)
	assert.Contains(t, lines[0], `"module":"NoteStore"`)
	assert.Contains(t, lines[0], `"level":"INFO"`)
}

func TestNopLoggerAcceptsNilDetails(t *testing.T) {
	var l ILogger = NewNopLogger()
	assert.NotPanics(t, func() {
		l.Error("Test", "nothing happens", nil)
		l.Warn("Test", "nothing happens", map[string]interface{}{"error": "x"})
	})
}
