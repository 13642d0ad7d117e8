package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	apperrors "github.com/brightpath/academy-ui-api/internal/errors"

	domainauth "github.com/brightpath/academy-ui-api/internal/domain/auth"
	"github.com/brightpath/academy-ui-api/internal/domain/model"
	"github.com/brightpath/academy-ui-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRepo_CRUD(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo, err := NewProfileRepo(db, "")
		require.NoError(t, err)

		req := testutil.NewProfileRequest().WithRole("student").Build()
		p, err := repo.Create(ctx, req)
		require.NoError(t, err)
		require.NotEmpty(t, p.ID)
		assert.Equal(t, req.UserID, p.UserID)
		require.NotNil(t, p.Role)
		assert.Equal(t, "student", *p.Role)
		assert.NotZero(t, p.CreatedAt)

		got, err := repo.GetByUserID(ctx, req.UserID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)

		updated, err := repo.Update(ctx, req.UserID, model.UpdateProfileRequest{
			Role: testutil.StringPtr("instructor"),
		})
		require.NoError(t, err)
		require.NotNil(t, updated.Role)
		assert.Equal(t, "instructor", *updated.Role)

		ok, err := repo.Delete(ctx, req.UserID)
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = repo.GetByUserID(ctx, req.UserID)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestProfileRepo_Create_DuplicateUserID(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo, err := NewProfileRepo(db, "")
		require.NoError(t, err)

		req := testutil.NewProfileRequest().WithRole("student").Build()
		_, err = repo.Create(ctx, req)
		require.NoError(t, err)

		dup := req
		dup.Email = "other-" + req.Email
		_, err = repo.Create(ctx, dup)
		assert.True(t, apperrors.IsConflict(err))
	})
}

func TestProfileRepo_GetRole(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo, err := NewProfileRepo(db, "")
		require.NoError(t, err)

		t.Run("role column", func(t *testing.T) {
			req := testutil.NewProfileRequest().WithRole("admin").Build()
			_, err := repo.Create(ctx, req)
			require.NoError(t, err)

			role, err := repo.GetRole(ctx, req.UserID)
			require.NoError(t, err)
			assert.Equal(t, domainauth.RoleAdmin, role)
		})

		t.Run("missing profile is terminal", func(t *testing.T) {
			_, err := repo.GetRole(ctx, "no-such-user")
			assert.True(t, apperrors.IsRoleNotFound(err))
		})

		t.Run("profile without role is terminal", func(t *testing.T) {
			req := testutil.NewProfileRequest().WithNoRole().Build()
			_, err := repo.Create(ctx, req)
			require.NoError(t, err)

			_, err = repo.GetRole(ctx, req.UserID)
			assert.True(t, apperrors.IsRoleNotFound(err))
		})

		t.Run("empty user id is terminal", func(t *testing.T) {
			_, err := repo.GetRole(ctx, "  ")
			assert.True(t, apperrors.IsRoleNotFound(err))
		})
	})
}

func TestProfileRepo_GetRole_AttributePath(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo, err := NewProfileRepo(db, "idp.role")
		require.NoError(t, err)

		req := testutil.NewProfileRequest().
			WithNoRole().
			WithAttributes(`{"idp": {"role": "instructor"}}`).
			Build()
		_, err = repo.Create(ctx, req)
		require.NoError(t, err)

		role, err := repo.GetRole(ctx, req.UserID)
		require.NoError(t, err)
		assert.Equal(t, domainauth.RoleInstructor, role)
	})
}

func TestNewProfileRepo_InvalidAttributePath(t *testing.T) {
	_, err := NewProfileRepo(nil, "not[valid")
	require.Error(t, err)
}

func TestProfileRepo_RawRole(t *testing.T) {
	repo, err := NewProfileRepo(nil, "idp.role")
	require.NoError(t, err)

	tests := []struct {
		name       string
		roleCol    *string
		attributes string
		want       string
		wantOK     bool
	}{
		{
			name:    "role column wins",
			roleCol: testutil.StringPtr("admin"),
			want:    "admin",
			wantOK:  true,
		},
		{
			name:       "role column wins over attributes",
			roleCol:    testutil.StringPtr("student"),
			attributes: `{"idp": {"role": "admin"}}`,
			want:       "student",
			wantOK:     true,
		},
		{
			name:       "attribute path fallback",
			roleCol:    nil,
			attributes: `{"idp": {"role": "instructor"}}`,
			want:       "instructor",
			wantOK:     true,
		},
		{
			name:       "attribute path missing",
			roleCol:    nil,
			attributes: `{"idp": {}}`,
			wantOK:     false,
		},
		{
			name:       "non-string attribute value",
			roleCol:    nil,
			attributes: `{"idp": {"role": 42}}`,
			wantOK:     false,
		},
		{
			name:       "malformed attributes json",
			roleCol:    nil,
			attributes: `{"idp": `,
			wantOK:     false,
		},
		{
			name:    "blank role column and no attributes",
			roleCol: testutil.StringPtr("  "),
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := repo.rawRole(tt.roleCol, json.RawMessage(tt.attributes))
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
