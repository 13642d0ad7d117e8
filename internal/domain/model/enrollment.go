//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
)

// EnrollmentStatus tracks a student's standing in a course.
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
)

// Valid reports whether the enrollment status is supported.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusActive, EnrollmentStatusCompleted, EnrollmentStatusDropped:
		return true
	default:
		return false
	}
}

// ParseEnrollmentStatus normalizes a status string and reports whether it is supported.
func ParseEnrollmentStatus(value string) (EnrollmentStatus, bool) {
	status := EnrollmentStatus(strings.ToLower(strings.TrimSpace(value)))
	if status.Valid() {
		return status, true
	}
	return "", false
}

// StudentEnrollment links a student profile to a course.
type StudentEnrollment struct {
	ID         string           `json:"id"          db:"id"`
	StudentID  string           `json:"student_id"  db:"student_id"`
	CourseID   string           `json:"course_id"   db:"course_id"`
	Status     EnrollmentStatus `json:"status"      db:"status"`
	EnrolledAt time.Time        `json:"enrolled_at" db:"enrolled_at"`
	UpdatedAt  time.Time        `json:"updated_at"  db:"updated_at"`
}

// CreateEnrollmentRequest represents parameters to enroll a student in a course.
type CreateEnrollmentRequest struct {
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
}

// Validate validates CreateEnrollmentRequest.
func (r *CreateEnrollmentRequest) Validate() error {
	if strings.TrimSpace(r.StudentID) == "" {
		return errors.New("student_id is required")
	}
	if strings.TrimSpace(r.CourseID) == "" {
		return errors.New("course_id is required")
	}
	return nil
}
