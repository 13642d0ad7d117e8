// Package mocks provides mock implementations for testing the academy web app.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockStore := mocks.NewMockSessionStore(ctrl)
//	mockStore.EXPECT().Get(gomock.Any(), gomock.Any()).Return(session, nil)
package mocks

// Generate mock for AuthProvider interface from internal/ports package.
// This creates MockAuthProvider with Begin and Exchange methods.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=auth_provider_mock.go github.com/brightpath/academy-ui-api/internal/ports AuthProvider

// Generate mock for SessionStore interface from internal/ports package.
// This creates MockSessionStore with Save, Get, and Delete methods.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=session_store_mock.go github.com/brightpath/academy-ui-api/internal/ports SessionStore

// Generate mock for RoleSource interface from internal/ports package.
// This creates MockRoleSource with the GetRole method.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=role_source_mock.go github.com/brightpath/academy-ui-api/internal/ports RoleSource

// Generate mock for RoleCache interface from internal/ports package.
// This creates MockRoleCache with Get, Set, and Delete methods.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=role_cache_mock.go github.com/brightpath/academy-ui-api/internal/ports RoleCache
