package errors

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// reKeyField extracts the field name from a unique violation detail:
// "Key (field)=(value) already exists.".
var reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)

// MapDBError maps database errors to AppError instances:
// - pgx.ErrNoRows → NotFound
// - Unique constraint violations → Conflict
// - Foreign key violations → ForeignKey
// - Check / NOT NULL violations → Validation
// - Context timeouts/cancellations → Timeout/Canceled
//
// Unrecognized errors are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{Code: ErrCodeTimeout, Message: "Request timed out. Please try again.", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{Code: ErrCodeCanceled, Message: "Request was canceled.", Cause: err}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &AppError{Code: ErrCodeNotFound, Message: "Resource not found", Cause: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}
	return err
}

func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return &AppError{
			Code:    ErrCodeConflict,
			Message: "This value already exists. Please choose a different one.",
			Field:   uniqueViolationField(pgErr),
			Cause:   pgErr,
		}
	case pgerrcode.ForeignKeyViolation:
		return &AppError{
			Code:    ErrCodeForeignKey,
			Message: foreignKeyMessage(pgErr),
			Cause:   pgErr,
		}
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		return &AppError{
			Code:    ErrCodeValidation,
			Message: "Invalid data. Please check your input.",
			Field:   pgErr.ColumnName,
			Cause:   pgErr,
		}
	default:
		return &AppError{
			Code:    ErrCodeInternal,
			Message: "A database error occurred. Please try again.",
			Cause:   pgErr,
		}
	}
}

// uniqueViolationField prefers ColumnName metadata, then the Detail message.
func uniqueViolationField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return m[1]
	}
	return ""
}

// foreignKeyMessage maps the violated table onto a user-facing record name.
func foreignKeyMessage(pgErr *pgconn.PgError) string {
	name := recordName(pgErr.TableName)
	if name == "" {
		name = recordNameFromConstraint(pgErr.ConstraintName)
	}
	if name == "" {
		return "Cannot complete operation because this item is in use."
	}
	return "Cannot complete operation because this item is referenced by a " + name + " record."
}

func recordName(table string) string {
	switch strings.ToLower(strings.TrimSpace(table)) {
	case "profiles":
		return "Profile"
	case "courses":
		return "Course"
	case "course_categories":
		return "Course Category"
	case "blog_posts":
		return "Blog Post"
	case "student_enrollments":
		return "Student Enrollment"
	default:
		return ""
	}
}

func recordNameFromConstraint(constraint string) string {
	c := strings.ToLower(constraint)
	switch {
	case strings.Contains(c, "enrollment"):
		return "Student Enrollment"
	case strings.Contains(c, "course"):
		return "Course"
	case strings.Contains(c, "blog"):
		return "Blog Post"
	case strings.Contains(c, "profile"):
		return "Profile"
	default:
		return ""
	}
}
