//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxProfileNameLen = 255
	maxEmailLen       = 320
)

// Profile represents a user's profile record. The role column is the single
// source of truth for authorization; it is never derived from IdP claims.
// Attributes holds optional IdP or import metadata as raw JSON; some
// deployments store the role inside it instead of the role column.
type Profile struct {
	ID         string          `json:"id"                   db:"id"`
	UserID     string          `json:"user_id"              db:"user_id"`
	FirstName  string          `json:"first_name"           db:"first_name"`
	LastName   string          `json:"last_name"            db:"last_name"`
	Email      string          `json:"email"                db:"email"`
	Role       *string         `json:"role,omitempty"       db:"role"`
	Attributes json.RawMessage `json:"attributes,omitempty" db:"attributes"`
	CreatedAt  time.Time       `json:"created_at"           db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"           db:"updated_at"`
}

// CreateProfileRequest represents parameters to create a Profile.
type CreateProfileRequest struct {
	UserID     string          `json:"user_id"`
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	Email      string          `json:"email"`
	Role       *string         `json:"role,omitempty"`
	Attributes json.RawMessage `json:"attributes,omitempty"`
}

// UpdateProfileRequest represents parameters to update a Profile.
type UpdateProfileRequest struct {
	FirstName  *string         `json:"first_name,omitempty"`
	LastName   *string         `json:"last_name,omitempty"`
	Email      *string         `json:"email,omitempty"`
	Role       *string         `json:"role,omitempty"`
	Attributes json.RawMessage `json:"attributes,omitempty"`
}

// Validate validates CreateProfileRequest.
func (r *CreateProfileRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user_id is required")
	}
	if email := strings.TrimSpace(r.Email); email == "" {
		return errors.New("email is required")
	} else if utf8.RuneCountInString(email) > maxEmailLen {
		return errors.New("email cannot exceed 320 characters")
	}
	if utf8.RuneCountInString(r.FirstName) > maxProfileNameLen {
		return errors.New("first_name cannot exceed 255 characters")
	}
	if utf8.RuneCountInString(r.LastName) > maxProfileNameLen {
		return errors.New("last_name cannot exceed 255 characters")
	}
	if len(r.Attributes) > 0 && !json.Valid(r.Attributes) {
		return errors.New("attributes must be valid JSON")
	}
	return nil
}

// HasUpdates reports whether any field is set in UpdateProfileRequest.
func (r *UpdateProfileRequest) HasUpdates() bool {
	return r.FirstName != nil || r.LastName != nil || r.Email != nil || r.Role != nil || len(r.Attributes) > 0
}

// Validate validates UpdateProfileRequest, ensuring at least one field is set.
func (r *UpdateProfileRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Email != nil {
		email := strings.TrimSpace(*r.Email)
		if email == "" {
			return errors.New("email cannot be empty")
		}
		if utf8.RuneCountInString(email) > maxEmailLen {
			return errors.New("email cannot exceed 320 characters")
		}
	}
	if len(r.Attributes) > 0 && !json.Valid(r.Attributes) {
		return errors.New("attributes must be valid JSON")
	}
	return nil
}
