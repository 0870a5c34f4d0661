package common

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			log := newLogger(&bytes.Buffer{}, tc.level, false)
			assert.Equal(t, tc.want, log.GetLevel())
		})
	}
}

func TestComponentTag(t *testing.T) {
	var buf bytes.Buffer
	log := Component(newLogger(&buf, "info", false), "render")
	log.Info().Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "render", line["component"])
	assert.Equal(t, "hello", line["message"])
}

func TestMath(t *testing.T) {
	assert.Equal(t, 5.0, Lerp(0, 10, 0.5))
	assert.Equal(t, 1.0, Clamp(3, 0, 1))
	assert.Equal(t, 0.0, Clamp(-3, 0, 1))
	assert.InDelta(t, 2.0, Wrap(12, 10), 1e-9)
	assert.InDelta(t, 8.0, Wrap(-2, 10), 1e-9)
}
