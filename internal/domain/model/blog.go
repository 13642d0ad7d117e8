//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxBlogTitleLen = 255
)

// BlogPost represents an announcement or article shown on role dashboards.
type BlogPost struct {
	ID          string     `json:"id"                     db:"id"`
	Title       string     `json:"title"                  db:"title"`
	Body        string     `json:"body"                   db:"body"`
	AuthorID    string     `json:"author_id"              db:"author_id"`
	Published   bool       `json:"published"              db:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty" db:"published_at"`
	CreatedAt   time.Time  `json:"created_at"             db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"             db:"updated_at"`
}

// BlogPostsListOptions controls paging and filtering for listing blog posts.
type BlogPostsListOptions struct {
	Limit     int
	Offset    int
	AuthorID  *string
	Published *bool
}

// CreateBlogPostRequest represents parameters to create a BlogPost.
type CreateBlogPostRequest struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	AuthorID  string `json:"author_id"`
	Published *bool  `json:"published,omitempty"`
}

// UpdateBlogPostRequest represents parameters to update a BlogPost.
type UpdateBlogPostRequest struct {
	Title     *string `json:"title,omitempty"`
	Body      *string `json:"body,omitempty"`
	Published *bool   `json:"published,omitempty"`
}

// Validate validates CreateBlogPostRequest.
func (r *CreateBlogPostRequest) Validate() error {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return errors.New("title is required and cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxBlogTitleLen {
		return errors.New("title cannot exceed 255 characters")
	}
	if strings.TrimSpace(r.Body) == "" {
		return errors.New("body is required")
	}
	if strings.TrimSpace(r.AuthorID) == "" {
		return errors.New("author_id is required")
	}
	return nil
}

// HasUpdates reports whether any field is set in UpdateBlogPostRequest.
func (r *UpdateBlogPostRequest) HasUpdates() bool {
	return r.Title != nil || r.Body != nil || r.Published != nil
}

// Validate validates UpdateBlogPostRequest, ensuring at least one field is set.
func (r *UpdateBlogPostRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return errors.New("title cannot be empty")
	}
	if r.Body != nil && strings.TrimSpace(*r.Body) == "" {
		return errors.New("body cannot be empty")
	}
	return nil
}
