package logger

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesToGivenWriter(t *testing.T) {
	var buf bytes.Buffer
	Init("debug", &buf)
	defer Init("info", nil)

	ForComponent("fetcher").Info().Str("url", "https://example.com").Msg("fetching")
	Default.WithError(errors.New("boom")).Error().Msg("failed")

	out := buf.String()
	assert.Contains(t, out, "fetching")
	assert.Contains(t, out, "component=fetcher")
	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "boom")
	assert.True(t, IsDebugEnabled())
}

func TestIsTerminal(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, isTerminal(&buf))

	f, err := os.CreateTemp(t.TempDir(), "log")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, isTerminal(f))
}

func TestParseLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("bogus"))

	t.Setenv("LOG_LEVEL", "error")
	assert.Equal(t, zerolog.ErrorLevel, parseLevel(""))
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
}

func TestLevelFiltersMessages(t *testing.T) {
	var buf bytes.Buffer
	Init("warn", &buf)
	defer Init("info", nil)

	Info("hidden %d", 1)
	Warn("shown %d", 2)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown 2")
}
