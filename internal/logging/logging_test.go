package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConsoleLevels(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantInfo  bool
		wantDebug bool
	}{
		{"quiet", Options{}, false, false},
		{"debugging", Options{Debugging: true}, true, false},
		{"verbose", Options{Verbose: true}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.opts.Console = &buf
			logger, closeFn, err := New(tt.opts)
			require.NoError(t, err)
			defer closeFn()

			logger.Debug("debug entry")
			logger.Info("info entry")
			logger.Warn("warn entry")

			out := buf.String()
			assert.Contains(t, out, "warn entry")
			assert.Equal(t, tt.wantInfo, strings.Contains(out, "info entry"))
			assert.Equal(t, tt.wantDebug, strings.Contains(out, "debug entry"))
		})
	}
}

func TestNoteSink(t *testing.T) {
	note := filepath.Join(t.TempDir(), "logs", "BRAT-log.md")

	logger, closeFn, err := New(Options{Console: &bytes.Buffer{}, NotePath: note})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("plugin added", zap.String("repo", "o/r"))
	require.NoError(t, closeFn())

	data, err := os.ReadFile(note)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, "- "))
	assert.Contains(t, content, "plugin added")
	assert.Contains(t, content, `"repo": "o/r"`)
	assert.NotContains(t, content, "hidden")

	// entries are appended
	logger, closeFn, err = New(Options{Console: &bytes.Buffer{}, NotePath: note, NoteVerbose: true})
	require.NoError(t, err)
	logger.Debug("now visible")
	require.NoError(t, closeFn())

	data, err = os.ReadFile(note)
	require.NoError(t, err)
	assert.Contains(t, string(data), "plugin added")
	assert.Contains(t, string(data), "now visible")
}
