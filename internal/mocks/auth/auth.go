package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/brightpath/academy-ui-api/internal/errors"

	domainauth "github.com/brightpath/academy-ui-api/internal/domain/auth"
	"github.com/brightpath/academy-ui-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider = (*MockAuthProvider)(nil)
	_ ports.SessionStore = (*MemorySessionStore)(nil)
	_ ports.RoleSource   = (*StubRoleSource)(nil)
	_ ports.RoleCache    = (*MemoryRoleCache)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	// Deterministic values for predictable testing
	AuthURL     string
	StatePrefix string
	NoncePrefix string
	DefaultUser domainauth.Identity

	// Internal state tracking for deterministic behavior
	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultUser: domainauth.Identity{
			UserID:    "mock-user-1",
			FirstName: "Mock",
			LastName:  "User",
			Email:     "mock.user@example.com",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.callCount++
	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}

	// Generate deterministic state and nonce based on call count
	statePrefix := m.StatePrefix
	if statePrefix == "" {
		statePrefix = "state"
	}
	noncePrefix := m.NoncePrefix
	if noncePrefix == "" {
		noncePrefix = "nonce"
	}

	state := fmt.Sprintf("%s-%d", statePrefix, m.callCount)
	nonce := fmt.Sprintf("%s-%d", noncePrefix, m.callCount)

	return authURL, state, nonce, nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	// Return a copy of the default user with a fresh expiration time
	user := m.DefaultUser
	if user.UserID == "" {
		user = domainauth.Identity{
			UserID:    "mock-user-1",
			FirstName: "Mock",
			LastName:  "User",
			Email:     "mock.user@example.com",
		}
	}
	user.ExpiresAt = time.Now().Add(time.Hour)

	return user, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// ErrNotFound is returned by mocks when an entity is not present.
type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var ErrNotFound error = notFoundError{}

// StubRoleSource returns configured roles per user ID and counts calls.
type StubRoleSource struct {
	mu    sync.Mutex
	Roles map[string]domainauth.Role
	// Err is returned for every call when set; ErrsByUser wins per user.
	Err        error
	ErrsByUser map[string]error
	// ErrsOnce holds errors consumed one per call, letting tests script
	// transient failures followed by success.
	ErrsOnce []error
	Calls    int
}

// NewStubRoleSource creates a StubRoleSource with an empty role map.
func NewStubRoleSource() *StubRoleSource {
	return &StubRoleSource{Roles: make(map[string]domainauth.Role)}
}

func (s *StubRoleSource) GetRole(_ context.Context, userID string) (domainauth.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++

	if len(s.ErrsOnce) > 0 {
		err := s.ErrsOnce[0]
		s.ErrsOnce = s.ErrsOnce[1:]
		if err != nil {
			return "", err
		}
	}
	if err, ok := s.ErrsByUser[userID]; ok {
		return "", err
	}
	if s.Err != nil {
		return "", s.Err
	}
	role, ok := s.Roles[userID]
	if !ok {
		return "", apperrors.RoleNotFound(userID)
	}
	return role, nil
}

// CallCount returns how many times GetRole was invoked.
func (s *StubRoleSource) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls
}

// MemoryRoleCache is an in-memory role cache for unit tests. TTLs are
// recorded but not enforced.
type MemoryRoleCache struct {
	mu      sync.Mutex
	entries map[string]*domainauth.Role
	// GetErr and SetErr force failures for error-path tests.
	GetErr error
	SetErr error
}

// NewMemoryRoleCache creates a new in-memory role cache.
func NewMemoryRoleCache() *MemoryRoleCache {
	return &MemoryRoleCache{entries: make(map[string]*domainauth.Role)}
}

func (m *MemoryRoleCache) Get(_ context.Context, sessionID string) (*domainauth.Role, bool, error) {
	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	role, ok := m.entries[sessionID]
	return role, ok, nil
}

func (m *MemoryRoleCache) Set(_ context.Context, sessionID string, role *domainauth.Role, _ time.Duration) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[sessionID] = role
	return nil
}

func (m *MemoryRoleCache) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sessionID)
	return nil
}

// Contains reports whether a cache entry exists for the session.
func (m *MemoryRoleCache) Contains(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[sessionID]
	return ok
}
