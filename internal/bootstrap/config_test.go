package bootstrap

import (
	"testing"

	"github.com/brightpath/academy-ui-api/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("AUTH_MODE", "mock")
	t.Setenv("HTTP_COMPRESSION_LEVEL", "99")
	t.Setenv("APP_COOKIE_DOMAIN", "co.uk")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, config.AuthModeMock, cfg.Auth.Mode)
	// Sanitize ran: compression clamped, public-suffix cookie domain dropped
	assert.Equal(t, 9, cfg.HTTP.CompressionLevel)
	assert.Empty(t, cfg.HTTP.CookieDomain)
}

func TestLoadConfig_InvalidAuthMode(t *testing.T) {
	t.Setenv("AUTH_MODE", "carrier-pigeon")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AuthMode")
}

func TestInitLogger(t *testing.T) {
	logger := InitLogger()
	require.NotNil(t, logger)
}
