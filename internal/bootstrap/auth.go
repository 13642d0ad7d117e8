package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/brightpath/academy-ui-api/config"
	"github.com/brightpath/academy-ui-api/internal/adapters/devauth"
	"github.com/brightpath/academy-ui-api/internal/adapters/oidc"
	redisadapter "github.com/brightpath/academy-ui-api/internal/adapters/redis"
	"github.com/brightpath/academy-ui-api/internal/data"
	"github.com/brightpath/academy-ui-api/internal/ports"
	"github.com/brightpath/academy-ui-api/internal/service"
	"github.com/redis/go-redis/v9"
)

// AuthDeps contains the dependencies for building the auth stack.
type AuthDeps struct {
	Auth        config.AuthConfig
	Roles       config.RoleConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// AuthComponents bundles the session, role, and error-handling services that
// the HTTP layer wires into its middleware and handlers.
type AuthComponents struct {
	Auth        *service.AuthService
	State       *service.AuthStateAggregator
	Interceptor *service.AuthErrorInterceptor

	release func()
}

// Close deactivates the auth error interceptor.
func (c *AuthComponents) Close() {
	if c != nil && c.release != nil {
		c.release()
	}
}

// BuildAuth assembles the authentication and authorization services: the
// identity provider, Redis-backed sessions and role cache, the profile-backed
// role resolver, the state aggregator, and the auth error interceptor
// (registered). Every route guard in the application sits on top of these,
// so misconfiguration is a startup error rather than a degraded mode.
func BuildAuth(deps AuthDeps) (*AuthComponents, error) {
	if deps.DB == nil {
		return nil, errors.New("database connection is required")
	}
	if deps.RedisClient == nil {
		return nil, errors.New("redis client is required")
	}

	provider, err := buildProvider(deps)
	if err != nil {
		return nil, err
	}

	sessions := redisadapter.NewSessionStore(deps.RedisClient)
	roleCache := redisadapter.NewRoleCache(deps.RedisClient)

	profiles, err := data.NewProfileRepo(deps.DB, deps.Roles.AttributePath)
	if err != nil {
		return nil, fmt.Errorf("build profile repo: %w", err)
	}

	auth := service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Sessions: sessions,
	})

	resolver, err := service.NewRoleResolver(service.RoleResolverOptions{
		Source:      profiles,
		Cache:       roleCache,
		CacheTTL:    deps.Roles.CacheTTL,
		MaxAttempts: deps.Roles.MaxAttempts,
		RetryDelay:  deps.Roles.RetryDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("build role resolver: %w", err)
	}

	state, err := service.NewAuthStateAggregator(service.AuthStateOptions{
		Auth:  auth,
		Roles: resolver,
	})
	if err != nil {
		return nil, fmt.Errorf("build auth state aggregator: %w", err)
	}

	interceptor, err := service.NewAuthErrorInterceptor(service.AuthErrorInterceptorOptions{
		Auth:   auth,
		State:  state,
		Logger: deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build auth error interceptor: %w", err)
	}

	release, ok := interceptor.Register()
	if !ok {
		return nil, errors.New("auth error interceptor already registered")
	}

	return &AuthComponents{
		Auth:        auth,
		State:       state,
		Interceptor: interceptor,
		release:     release,
	}, nil
}

//nolint:ireturn // provider selection is the point of this function.
func buildProvider(deps AuthDeps) (ports.AuthProvider, error) {
	switch deps.Auth.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			UserID:    deps.Auth.DevAuth.UserID,
			Email:     deps.Auth.DevAuth.Email,
			FirstName: deps.Auth.DevAuth.FirstName,
			LastName:  deps.Auth.DevAuth.LastName,
		})
		if err != nil {
			return nil, fmt.Errorf("build dev auth provider: %w", err)
		}
		if deps.Logger != nil {
			deps.Logger.Warn("mock auth enabled; do not use in production",
				"user_id", deps.Auth.DevAuth.UserID)
		}
		return prov, nil

	case config.AuthModeOAuth:
		oauth := deps.Auth.OAuth
		if oauth.DiscoveryURL == "" {
			return nil, errors.New("OAUTH_DISCOVERY_URL is required when AUTH_MODE=oauth")
		}
		prov, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     oauth.ClientID,
			ClientSecret: oauth.ClientSecret,
			RedirectURL:  oauth.RedirectURL,
			Scope:        oauth.Scope,
			DiscoveryURL: oauth.DiscoveryURL,
		})
		if err != nil {
			return nil, fmt.Errorf("build OIDC provider: %w", err)
		}
		return prov, nil

	default:
		return nil, fmt.Errorf("unknown auth mode %q", deps.Auth.Mode)
	}
}
