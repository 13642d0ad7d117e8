package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"academy"`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:"academy"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	LogoutURL    string `env:"LOGOUT_URL"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing. The dev identity
// still needs a profile row in the database to resolve a role.
type DevAuthConfig struct {
	UserID    string `env:"USER_ID"    envDefault:"dev-user"`
	Email     string `env:"EMAIL"      envDefault:"dev@example.com"`
	FirstName string `env:"FIRST_NAME" envDefault:"Dev"`
	LastName  string `env:"LAST_NAME"  envDefault:"User"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`
}

// RoleConfig tunes role resolution from the profile store. Roles are never
// part of the session; they are looked up per session and cached.
type RoleConfig struct {
	// AttributePath is an optional JMESPath expression evaluated against the
	// profile's attributes JSON when the role column is null. Deployments
	// that sync profiles from an IdP store the role there.
	AttributePath string `env:"ROLE_ATTRIBUTE_PATH" envDefault:""`

	// CacheTTL is how long a resolved role stays cached per session.
	CacheTTL time.Duration `env:"ROLE_CACHE_TTL" envDefault:"5m"`

	// MaxAttempts bounds retries for transient profile store failures.
	MaxAttempts int `env:"ROLE_MAX_ATTEMPTS" envDefault:"3"`

	// RetryDelay is the initial retry delay; it doubles per attempt.
	RetryDelay time.Duration `env:"ROLE_RETRY_DELAY" envDefault:"200ms"`
}

// Sanitize applies guardrails to role resolution configuration values.
func (r *RoleConfig) Sanitize() {
	if r.CacheTTL <= 0 {
		r.CacheTTL = 5 * time.Minute
	}
	if r.MaxAttempts < 1 {
		r.MaxAttempts = 1
	}
	if r.MaxAttempts > 10 {
		r.MaxAttempts = 10
	}
	if r.RetryDelay <= 0 {
		r.RetryDelay = 200 * time.Millisecond
	}
}
