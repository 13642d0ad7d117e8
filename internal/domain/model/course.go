//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxCourseTitleLen = 255
)

// CourseCategory groups courses for catalog browsing.
type CourseCategory struct {
	ID        string    `json:"id"         db:"id"`
	Name      string    `json:"name"       db:"name"`
	Slug      string    `json:"slug"       db:"slug"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Course represents a published or draft course.
type Course struct {
	ID           string     `json:"id"                      db:"id"`
	Title        string     `json:"title"                   db:"title"`
	Description  *string    `json:"description,omitempty"   db:"description"`
	CategoryID   *string    `json:"category_id,omitempty"   db:"category_id"`
	InstructorID string     `json:"instructor_id"           db:"instructor_id"`
	Published    bool       `json:"published"               db:"published"`
	PublishedAt  *time.Time `json:"published_at,omitempty"  db:"published_at"`
	CreatedAt    time.Time  `json:"created_at"              db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"              db:"updated_at"`
}

// CoursesListOptions controls paging and filtering for listing courses.
// Q matches title via ILIKE substring; CategoryID and InstructorID match exactly.
type CoursesListOptions struct {
	Limit        int
	Offset       int
	Q            *string
	CategoryID   *string
	InstructorID *string
	Published    *bool
}

// CreateCourseRequest represents parameters to create a Course.
type CreateCourseRequest struct {
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	CategoryID   *string `json:"category_id,omitempty"`
	InstructorID string  `json:"instructor_id"`
	Published    *bool   `json:"published,omitempty"`
}

// UpdateCourseRequest represents parameters to update a Course.
type UpdateCourseRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	CategoryID  *string `json:"category_id,omitempty"`
	Published   *bool   `json:"published,omitempty"`
}

// Validate validates CreateCourseRequest.
func (r *CreateCourseRequest) Validate() error {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return errors.New("title is required and cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxCourseTitleLen {
		return errors.New("title cannot exceed 255 characters")
	}
	if strings.TrimSpace(r.InstructorID) == "" {
		return errors.New("instructor_id is required")
	}
	return nil
}

// HasUpdates reports whether any field is set in UpdateCourseRequest.
func (r *UpdateCourseRequest) HasUpdates() bool {
	return r.Title != nil || r.Description != nil || r.CategoryID != nil || r.Published != nil
}

// Validate validates UpdateCourseRequest, ensuring at least one field is set.
func (r *UpdateCourseRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		if title == "" {
			return errors.New("title cannot be empty")
		}
		if utf8.RuneCountInString(title) > maxCourseTitleLen {
			return errors.New("title cannot exceed 255 characters")
		}
	}
	return nil
}
