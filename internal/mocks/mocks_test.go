package mocks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/brightpath/academy-ui-api/internal/errors"

	domainauth "github.com/brightpath/academy-ui-api/internal/domain/auth"
	"github.com/brightpath/academy-ui-api/internal/mocks"
	"github.com/brightpath/academy-ui-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func noSleep(context.Context, time.Duration) error { return nil }

func TestAuthServiceWithGeneratedSessionStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockSessionStore(ctrl)
	svc := service.NewAuthService(service.AuthServiceOptions{
		Provider: mocks.NewMockAuthProvider(ctrl),
		Sessions: store,
	})

	sess := domainauth.Session{
		ID:        "sess-1",
		UserID:    "user-1",
		Email:     "user@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	store.EXPECT().Get(gomock.Any(), "sess-1").Return(sess, nil)

	got, err := svc.GetSession(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
}

func TestAuthServiceExpiredSessionIsDeleted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockSessionStore(ctrl)
	svc := service.NewAuthService(service.AuthServiceOptions{
		Provider: mocks.NewMockAuthProvider(ctrl),
		Sessions: store,
	})

	expired := domainauth.Session{
		ID:        "sess-old",
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	store.EXPECT().Get(gomock.Any(), "sess-old").Return(expired, nil)
	store.EXPECT().Delete(gomock.Any(), "sess-old").Return(nil)

	_, err := svc.GetSession(context.Background(), "sess-old")
	require.Error(t, err)
}

func TestRoleResolverRetriesThroughGeneratedSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := mocks.NewMockRoleSource(ctrl)
	cache := mocks.NewMockRoleCache(ctrl)

	resolver, err := service.NewRoleResolver(service.RoleResolverOptions{
		Source:      source,
		Cache:       cache,
		MaxAttempts: 3,
		Sleep:       noSleep,
	})
	require.NoError(t, err)

	cache.EXPECT().Get(gomock.Any(), "sess-1").Return(nil, false, nil)
	gomock.InOrder(
		source.EXPECT().GetRole(gomock.Any(), "user-1").Return(domainauth.Role(""), apperrors.RoleUnavailable(errors.New("profile store down"))),
		source.EXPECT().GetRole(gomock.Any(), "user-1").Return(domainauth.RoleInstructor, nil),
	)
	cache.EXPECT().Set(gomock.Any(), "sess-1", gomock.Any(), gomock.Any()).Return(nil)

	role, err := resolver.Resolve(context.Background(), "sess-1", "user-1")
	require.NoError(t, err)
	require.NotNil(t, role)
	assert.Equal(t, domainauth.RoleInstructor, *role)
}

func TestRoleResolverCachedNoProfileShortCircuits(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := mocks.NewMockRoleSource(ctrl)
	cache := mocks.NewMockRoleCache(ctrl)

	resolver, err := service.NewRoleResolver(service.RoleResolverOptions{
		Source: source,
		Cache:  cache,
		Sleep:  noSleep,
	})
	require.NoError(t, err)

	// Found nil role means a cached terminal "no profile"; the source must
	// not be consulted again.
	cache.EXPECT().Get(gomock.Any(), "sess-1").Return(nil, true, nil)

	role, err := resolver.Resolve(context.Background(), "sess-1", "user-1")
	require.NoError(t, err)
	assert.Nil(t, role)
}
