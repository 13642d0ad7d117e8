package service

import (
	"context"
	"errors"
	"testing"
	"time"

	domainauth "github.com/brightpath/academy-ui-api/internal/domain/auth"
	mocks "github.com/brightpath/academy-ui-api/internal/mocks/auth"
	"github.com/brightpath/academy-ui-api/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSessionStore is a test helper for testing session store errors.
type mockSessionStore struct {
	saveFunc   func(context.Context, domainauth.Session) error
	getFunc    func(context.Context, string) (domainauth.Session, error)
	deleteFunc func(context.Context, string) error
}

func (m *mockSessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, sess)
	}
	return nil
}

func (m *mockSessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return domainauth.Session{}, nil
}

func (m *mockSessionStore) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func TestNewAuthService(t *testing.T) {
	provider := mocks.NewMockAuthProvider()
	sessions := mocks.NewMemorySessionStore()

	service := NewAuthService(AuthServiceOptions{
		Provider: provider,
		Sessions: sessions,
	})

	assert.NotNil(t, service)
	assert.Equal(t, provider, service.provider)
	assert.Equal(t, sessions, service.sessions)
}

func TestAuthService_BeginLogin_Success(t *testing.T) {
	service := NewAuthService(AuthServiceOptions{
		Provider: mocks.NewMockAuthProvider(),
		Sessions: mocks.NewMemorySessionStore(),
	})

	result, err := service.BeginLogin(context.Background(), "http://localhost:8080/callback")

	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "https://mock-idp/auth", result.AuthURL)
	assert.Equal(t, "state-1", result.State)
	assert.Equal(t, "nonce-1", result.Nonce)
}

func TestAuthService_BeginLogin_EmptyRedirectURL(t *testing.T) {
	service := NewAuthService(AuthServiceOptions{
		Provider: mocks.NewMockAuthProvider(),
		Sessions: mocks.NewMemorySessionStore(),
	})

	result, err := service.BeginLogin(context.Background(), "")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "redirect URL is required")
}

func TestAuthService_BeginLogin_ProviderError(t *testing.T) {
	provider := &mocks.MockAuthProvider{
		BeginFunc: func(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
			return "", "", "", errors.New("provider error")
		},
	}
	service := NewAuthService(AuthServiceOptions{
		Provider: provider,
		Sessions: mocks.NewMemorySessionStore(),
	})

	result, err := service.BeginLogin(context.Background(), "http://localhost:8080/callback")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "begin auth flow")
}

func TestAuthService_CompleteLogin_Success(t *testing.T) {
	sessions := mocks.NewMemorySessionStore()
	service := NewAuthService(AuthServiceOptions{
		Provider: mocks.NewMockAuthProvider(),
		Sessions: sessions,
	})

	result, err := service.CompleteLogin(context.Background(), CompleteLoginInput{
		Code:  "code",
		State: "state-1",
		Nonce: "nonce-1",
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.Session.ID)
	assert.Equal(t, "mock-user-1", result.Session.UserID)
	assert.Equal(t, "mock.user@example.com", result.Session.Email)

	// Session must be persisted and retrievable
	stored, err := sessions.Get(context.Background(), result.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Session.UserID, stored.UserID)
}

func TestAuthService_CompleteLogin_InputValidation(t *testing.T) {
	service := NewAuthService(AuthServiceOptions{
		Provider: mocks.NewMockAuthProvider(),
		Sessions: mocks.NewMemorySessionStore(),
	})

	tests := []struct {
		name   string
		input  CompleteLoginInput
		errMsg string
	}{
		{name: "missing code", input: CompleteLoginInput{State: "s", Nonce: "n"}, errMsg: "authorization code is required"},
		{name: "missing state", input: CompleteLoginInput{Code: "c", Nonce: "n"}, errMsg: "state parameter is required"},
		{name: "missing nonce", input: CompleteLoginInput{Code: "c", State: "s"}, errMsg: "nonce parameter is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := service.CompleteLogin(context.Background(), tt.input)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestAuthService_CompleteLogin_ExchangeError(t *testing.T) {
	provider := &mocks.MockAuthProvider{
		ExchangeFunc: func(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
			return domainauth.Identity{}, errors.New("exchange failed")
		},
	}
	service := NewAuthService(AuthServiceOptions{
		Provider: provider,
		Sessions: mocks.NewMemorySessionStore(),
	})

	result, err := service.CompleteLogin(context.Background(), CompleteLoginInput{
		Code:  "code",
		State: "state",
		Nonce: "nonce",
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "exchange authorization code")
}

func TestAuthService_CompleteLogin_SaveError(t *testing.T) {
	sessions := &mockSessionStore{
		saveFunc: func(_ context.Context, _ domainauth.Session) error {
			return errors.New("redis down")
		},
	}
	service := NewAuthService(AuthServiceOptions{
		Provider: mocks.NewMockAuthProvider(),
		Sessions: sessions,
	})

	result, err := service.CompleteLogin(context.Background(), CompleteLoginInput{
		Code:  "code",
		State: "state",
		Nonce: "nonce",
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "save session")
}

func TestAuthService_GetSession_Success(t *testing.T) {
	sessions := mocks.NewMemorySessionStore()
	sess := domainauth.Session{
		ID:        "sess-1",
		UserID:    "user-1",
		Email:     "user@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, sessions.Save(context.Background(), sess))

	service := NewAuthService(AuthServiceOptions{
		Provider: mocks.NewMockAuthProvider(),
		Sessions: sessions,
	})

	got, err := service.GetSession(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
}

func TestAuthService_GetSession_Expired(t *testing.T) {
	sessions := mocks.NewMemorySessionStore()
	sess := domainauth.Session{
		ID:        "sess-1",
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, sessions.Save(context.Background(), sess))

	service := NewAuthService(AuthServiceOptions{
		Provider: mocks.NewMockAuthProvider(),
		Sessions: sessions,
	})

	_, err := service.GetSession(context.Background(), "sess-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session expired")

	// Expired session must be cleaned up
	_, err = sessions.Get(context.Background(), "sess-1")
	assert.ErrorIs(t, err, mocks.ErrNotFound)
}

func TestAuthService_GetSession_EmptyID(t *testing.T) {
	service := NewAuthService(AuthServiceOptions{
		Provider: mocks.NewMockAuthProvider(),
		Sessions: mocks.NewMemorySessionStore(),
	})

	_, err := service.GetSession(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session ID is required")
}

func TestAuthService_Logout(t *testing.T) {
	sessions := mocks.NewMemorySessionStore()
	require.NoError(t, sessions.Save(context.Background(), domainauth.Session{
		ID:        "sess-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	service := NewAuthService(AuthServiceOptions{
		Provider: mocks.NewMockAuthProvider(),
		Sessions: sessions,
	})

	require.NoError(t, service.Logout(context.Background(), "sess-1"))
	_, err := sessions.Get(context.Background(), "sess-1")
	assert.ErrorIs(t, err, mocks.ErrNotFound)

	// Empty session ID is a no-op
	assert.NoError(t, service.Logout(context.Background(), ""))
}

func TestGenerateSessionID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		id := generateSessionID()
		assert.NotEmpty(t, id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}
