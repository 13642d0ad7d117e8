package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brightpath/academy-ui-api/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discoveryDoc struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	JwksURI               string `json:"jwks_uri"`
}

func newDiscoveryServer(t *testing.T) *httptest.Server {
	t.Helper()
	issuer := ""
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc := discoveryDoc{
			Issuer:                issuer,
			AuthorizationEndpoint: "https://idp.example.com/auth",
			TokenEndpoint:         "https://idp.example.com/token",
			UserinfoEndpoint:      "https://idp.example.com/userinfo",
			JwksURI:               "https://idp.example.com/jwks",
		}
		_ = json.NewEncoder(w).Encode(doc)
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	issuer = srv.URL
	return srv
}

func TestNewProvider_Success(t *testing.T) {
	srv := newDiscoveryServer(t)

	provider, err := NewProvider(ProviderConfig{
		ClientID:     "academy-web",
		ClientSecret: "test-secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		Scope:        "openid profile email",
		DiscoveryURL: srv.URL,
	})
	require.NoError(t, err)
	assert.NotNil(t, provider)
	assert.Equal(t, "https://idp.example.com/auth", provider.config.Endpoint.AuthURL)
	assert.Equal(t, "https://idp.example.com/token", provider.config.Endpoint.TokenURL)
}

func TestNewProvider_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		config ProviderConfig
		errMsg string
	}{
		{
			name: "missing client ID",
			config: ProviderConfig{
				ClientSecret: "secret",
				RedirectURL:  "http://localhost/callback",
				DiscoveryURL: "http://example.com",
			},
			errMsg: "client ID is required",
		},
		{
			name: "missing client secret",
			config: ProviderConfig{
				ClientID:     "client",
				RedirectURL:  "http://localhost/callback",
				DiscoveryURL: "http://example.com",
			},
			errMsg: "client secret is required",
		},
		{
			name:   "missing redirect URL",
			config: ProviderConfig{ClientID: "client", ClientSecret: "secret", DiscoveryURL: "http://example.com"},
			errMsg: "redirect URL is required",
		},
		{
			name:   "missing discovery URL",
			config: ProviderConfig{ClientID: "client", ClientSecret: "secret", RedirectURL: "http://localhost/callback"},
			errMsg: "discovery URL is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestBegin(t *testing.T) {
	srv := newDiscoveryServer(t)

	provider, err := NewProvider(ProviderConfig{
		ClientID:     "academy-web",
		ClientSecret: "test-secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		Scope:        "openid profile email",
		DiscoveryURL: srv.URL,
	})
	require.NoError(t, err)

	authURL, state, nonce, err := provider.Begin(context.Background(), ports.BeginInput{
		RedirectURL: "http://localhost:8080/auth/callback",
	})
	require.NoError(t, err)

	assert.Len(t, state, 32)
	assert.Len(t, nonce, 32)
	assert.Contains(t, authURL, "https://idp.example.com/auth")
	assert.Contains(t, authURL, "client_id=academy-web")
	assert.Contains(t, authURL, "state="+state)
	assert.Contains(t, authURL, "nonce="+nonce)
	assert.Contains(t, authURL, "response_type=code")
}

func TestBegin_MissingRedirectURL(t *testing.T) {
	srv := newDiscoveryServer(t)

	provider, err := NewProvider(ProviderConfig{
		ClientID:     "academy-web",
		ClientSecret: "test-secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		Scope:        "openid",
		DiscoveryURL: srv.URL,
	})
	require.NoError(t, err)

	_, _, _, err = provider.Begin(context.Background(), ports.BeginInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirect URL is required")
}

func TestExchange_InputValidation(t *testing.T) {
	srv := newDiscoveryServer(t)

	provider, err := NewProvider(ProviderConfig{
		ClientID:     "academy-web",
		ClientSecret: "test-secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		Scope:        "openid",
		DiscoveryURL: srv.URL,
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		input  ports.ExchangeInput
		errMsg string
	}{
		{
			name:   "missing code",
			input:  ports.ExchangeInput{State: "s", Nonce: "n"},
			errMsg: "authorization code is required",
		},
		{
			name:   "missing state",
			input:  ports.ExchangeInput{Code: "c", Nonce: "n"},
			errMsg: "state is required",
		},
		{
			name:   "missing nonce",
			input:  ports.ExchangeInput{Code: "c", State: "s"},
			errMsg: "nonce is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, exErr := provider.Exchange(context.Background(), tt.input)
			require.Error(t, exErr)
			assert.Contains(t, exErr.Error(), tt.errMsg)
		})
	}
}

func TestGenerateRandomString(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		s, err := generateRandomString(32)
		require.NoError(t, err)
		assert.Len(t, s, 32)
		assert.False(t, seen[s], "random strings should not repeat")
		seen[s] = true
	}

	empty, err := generateRandomString(0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestHasOpenIDScope(t *testing.T) {
	srv := newDiscoveryServer(t)

	withOpenID, err := NewProvider(ProviderConfig{
		ClientID:     "c",
		ClientSecret: "s",
		RedirectURL:  "http://localhost/callback",
		Scope:        "openid email",
		DiscoveryURL: srv.URL,
	})
	require.NoError(t, err)
	assert.True(t, withOpenID.hasOpenIDScope())

	withoutOpenID, err := NewProvider(ProviderConfig{
		ClientID:     "c",
		ClientSecret: "s",
		RedirectURL:  "http://localhost/callback",
		Scope:        "email",
		DiscoveryURL: srv.URL,
	})
	require.NoError(t, err)
	assert.False(t, withoutOpenID.hasOpenIDScope())
}
