package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreLogger(t *testing.T) {
	t.Helper()
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})
}

func TestSetup_ExtraWriterAndLevel(t *testing.T) {
	restoreLogger(t)

	var buf bytes.Buffer
	require.NoError(t, Setup(Options{Level: "warn", Format: "json"}, &buf))

	log.Info().Msg("dropped")
	log.Warn().Str("keyword", "夜と霧").Msg("kept")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "夜と霧", entry["keyword"])
}

func TestSetup_InvalidLevel(t *testing.T) {
	restoreLogger(t)

	err := Setup(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestSetup_RotatingFile(t *testing.T) {
	restoreLogger(t)

	path := filepath.Join(t.TempDir(), "logs", "shelfcheck.log")
	require.NoError(t, Setup(Options{Level: "info", Format: "json", File: path}))

	log.Info().Msg("to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}
