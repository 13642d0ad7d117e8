package oidc

// Package oidc provides the OIDC/OAuth identity-provider adapter for the
// academy system. The adapter only establishes identity; authorization roles
// come from the profile record, never from provider claims.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/brightpath/academy-ui-api/internal/domain/auth"
	"github.com/brightpath/academy-ui-api/internal/ports"
	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Provider implements ports.AuthProvider using OIDC/OAuth2.
type Provider struct {
	config     *oauth2.Config
	httpClient *http.Client

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	DiscoveryURL string
	HTTPClient   *http.Client // Optional, defaults to a 30s-timeout client
}

// NewProvider creates a new OIDC provider from discovery.
func NewProvider(config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if config.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	if config.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	p := &Provider{httpClient: httpClient}

	// Single discovery fetch; issuer is the discovery URL sans well-known path.
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(config.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	issuer = strings.TrimSuffix(issuer, ".well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	p.oidcProvider = op
	p.verifier = op.Verifier(&gooidc.Config{ClientID: config.ClientID})

	p.config = &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURL,
		Scopes:       strings.Fields(config.Scope),
		Endpoint:     op.Endpoint(),
	}

	return p, nil
}

func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}

	state, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	// redirect_uri must match the configured RedirectURL exactly; don't
	// override it per request.
	authURL := p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("response_type", "code"),
	)

	return authURL, state, nonce, nil
}

func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if in.Code == "" {
		return domainauth.Identity{}, errors.New("authorization code is required")
	}
	if in.State == "" {
		return domainauth.Identity{}, errors.New("state is required")
	}
	if in.Nonce == "" {
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	claims, err := p.verifyIDToken(ctx, token, in.Nonce)
	if err != nil {
		return domainauth.Identity{}, err
	}

	// Fill missing fields from the userinfo endpoint.
	if claims.Sub == "" || claims.Email == "" {
		if fillErr := p.fillFromUserInfo(ctx, token.AccessToken, &claims); fillErr != nil {
			return domainauth.Identity{}, fmt.Errorf("get user info: %w", fillErr)
		}
	}
	if claims.Sub == "" {
		return domainauth.Identity{}, errors.New("provider returned no subject claim")
	}

	expiresAt := time.Now().Add(time.Hour)
	if !token.Expiry.IsZero() {
		expiresAt = token.Expiry
	}

	return domainauth.Identity{
		UserID:    claims.Sub,
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
		Email:     claims.Email,
		ExpiresAt: expiresAt,
	}, nil
}

// idTokenClaims is the standard OIDC claim shape consumed by this adapter.
type idTokenClaims struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Nonce      string `json:"nonce"`
}

func (p *Provider) verifyIDToken(ctx context.Context, tok *oauth2.Token, expectedNonce string) (idTokenClaims, error) {
	var claims idTokenClaims
	if !p.hasOpenIDScope() {
		return claims, nil
	}

	rawID, ok := tok.Extra("id_token").(string)
	if !ok || rawID == "" {
		return claims, errors.New("missing id_token in token response")
	}

	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return claims, fmt.Errorf("verify id_token: %w", err)
	}
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return claims, fmt.Errorf("parse id_token claims: %w", claimsErr)
	}
	if expectedNonce != "" && claims.Nonce != expectedNonce {
		return claims, errors.New("invalid nonce")
	}
	return claims, nil
}

func (p *Provider) fillFromUserInfo(ctx context.Context, accessToken string, claims *idTokenClaims) error {
	ui, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	if err != nil {
		return fmt.Errorf("fetch user info: %w", err)
	}

	var info idTokenClaims
	if claimsErr := ui.Claims(&info); claimsErr != nil {
		return fmt.Errorf("decode user info: %w", claimsErr)
	}
	if claims.Sub == "" {
		claims.Sub = info.Sub
	}
	if claims.Email == "" {
		claims.Email = info.Email
	}
	if claims.GivenName == "" {
		claims.GivenName = info.GivenName
	}
	if claims.FamilyName == "" {
		claims.FamilyName = info.FamilyName
	}
	return nil
}

// hasOpenIDScope reports whether the configured scopes include "openid".
func (p *Provider) hasOpenIDScope() bool {
	for _, sc := range p.config.Scopes {
		if sc == "openid" {
			return true
		}
	}
	return false
}

// generateRandomString generates a cryptographically secure URL-safe random string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	nBytes := (length*3 + 3) / 4
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	for len(s) < length {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:length], nil
}
