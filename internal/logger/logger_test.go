package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONLevel(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{Level: "warn", Format: "json"}
	lg := l.New(&buf)

	lg.Info().Msg("hidden")
	lg.Warn().Str("map", "ankara").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "ankara", entry["map"])
	assert.Equal(t, "shown", entry["message"])
}

func TestLogger_DefaultLevel(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{Format: "console", NoColor: true}
	lg := l.New(&buf)

	lg.Debug().Msg("hidden")
	lg.Info().Msg("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}
