package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		verbosity int
		expected  zerolog.Level
	}{
		{-1, zerolog.WarnLevel},
		{0, zerolog.WarnLevel},
		{1, zerolog.InfoLevel},
		{2, zerolog.DebugLevel},
		{3, zerolog.TraceLevel},
		{7, zerolog.TraceLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, levelFor(tt.verbosity), "verbosity %d", tt.verbosity)
	}
}

func TestSetupLoggerTo_FiltersByLevel(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	SetupLoggerTo(&buf, 0, true)
	log.Info().Msg("quiet info")
	log.Warn().Msg("loud warning")

	out := buf.String()
	assert.NotContains(t, out, "quiet info")
	assert.Contains(t, out, "loud warning")

	buf.Reset()
	SetupLoggerTo(&buf, 1, true)
	engineLogger := GetLogger("engine")
	engineLogger.Info().Msg("scan done")
	assert.Contains(t, buf.String(), "scan done")
	assert.Contains(t, buf.String(), "component=engine")
}
