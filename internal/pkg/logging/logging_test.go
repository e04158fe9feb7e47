package logging_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/wayfarer/content-service/internal/pkg/logging"
)

func TestSetup_JSONWithLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup(logging.Config{Level: "warn", Format: "json", Output: &buf})

	logger.Info().Msg("hidden")
	logger.Warn().Str("key", "post:1").Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"key":"post:1"`)
	assert.Contains(t, out, `"service":"content-service"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logging.ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, logging.ParseLevel("warning"))
	assert.Equal(t, zerolog.InfoLevel, logging.ParseLevel("bogus"))
}
