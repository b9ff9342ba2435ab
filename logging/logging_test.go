package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesToFile(t *testing.T) {
	previous := log.Logger
	t.Cleanup(func() {
		log.Logger = previous
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	})

	path := filepath.Join(t.TempDir(), "app.log")
	Setup(Options{Level: "warn", File: path})

	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	log.Info().Msg("dropped")
	log.Warn().Str("component", "test").Msg("kept")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kept")
	assert.NotContains(t, string(data), "dropped")
}

func TestSetupDefaultsToInfo(t *testing.T) {
	previous := log.Logger
	t.Cleanup(func() {
		log.Logger = previous
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	})

	Setup(Options{Level: "not-a-level"})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
