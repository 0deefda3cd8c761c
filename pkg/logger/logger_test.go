package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":      zapcore.InfoLevel,
		"debug": zapcore.DebugLevel,
		"INFO":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookshelf_api.log")

	log, err := New(Options{Level: "info", Format: "json", Outputs: []string{path}})
	require.NoError(t, err)

	log.Info("New book created")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "New book created")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Level: "verbose"})
	assert.Error(t, err)
}
