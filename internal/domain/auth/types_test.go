package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Role
		wantErr bool
	}{
		{name: "student", raw: "student", want: RoleStudent},
		{name: "instructor", raw: "instructor", want: RoleInstructor},
		{name: "admin", raw: "admin", want: RoleAdmin},
		{name: "case insensitive", raw: "Admin", want: RoleAdmin},
		{name: "surrounding whitespace", raw: "  student\n", want: RoleStudent},
		{name: "empty", raw: "", wantErr: true},
		{name: "unknown", raw: "superuser", wantErr: true},
		{name: "close but wrong", raw: "students", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRole(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleStudent.Valid())
	assert.True(t, RoleInstructor.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("root").Valid())
}

func TestRole_Satisfies(t *testing.T) {
	tests := []struct {
		role     Role
		required Role
		want     bool
	}{
		{RoleStudent, RoleStudent, true},
		{RoleInstructor, RoleInstructor, true},
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleInstructor, true},
		{RoleAdmin, RoleStudent, false},
		{RoleInstructor, RoleAdmin, false},
		{RoleInstructor, RoleStudent, false},
		{RoleStudent, RoleInstructor, false},
		{RoleStudent, RoleAdmin, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.role.Satisfies(tt.required),
			"%s satisfies %s", tt.role, tt.required)
	}
}

func TestSession_Identity(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	sess := Session{
		ID:        "sess-1",
		UserID:    "user-1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		ExpiresAt: expires,
	}

	id := sess.Identity()
	assert.Equal(t, "user-1", id.UserID)
	assert.Equal(t, "Ada", id.FirstName)
	assert.Equal(t, "Lovelace", id.LastName)
	assert.Equal(t, "ada@example.com", id.Email)
	assert.Equal(t, expires, id.ExpiresAt)
}

func TestSnapshot_States(t *testing.T) {
	role := RoleStudent
	identity := &Identity{UserID: "user-1"}

	tests := []struct {
		name          string
		snap          Snapshot
		authenticated bool
		pending       bool
	}{
		{
			name:    "session loading",
			snap:    Snapshot{SessionLoading: true},
			pending: true,
		},
		{
			name: "unauthenticated resolved",
			snap: Snapshot{RoleLoaded: true},
		},
		{
			name:          "identity with role pending",
			snap:          Snapshot{Identity: identity},
			authenticated: true,
			pending:       true,
		},
		{
			name:          "identity with role loaded",
			snap:          Snapshot{Identity: identity, Role: &role, RoleLoaded: true},
			authenticated: true,
		},
		{
			name:          "identity without profile",
			snap:          Snapshot{Identity: identity, RoleLoaded: true},
			authenticated: true,
		},
		{
			name:          "role resolution failed",
			snap:          Snapshot{Identity: identity, RoleErr: assert.AnError},
			authenticated: true,
			// a failed resolve is a terminal visible state, not pending
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.authenticated, tt.snap.Authenticated(), "Authenticated")
			assert.Equal(t, tt.pending, tt.snap.Pending(), "Pending")
		})
	}
}
