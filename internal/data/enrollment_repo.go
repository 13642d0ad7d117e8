package data

import (
	"context"
	"database/sql"

	apperrors "github.com/brightpath/academy-ui-api/internal/errors"

	"github.com/brightpath/academy-ui-api/internal/data/pgxutil"
	"github.com/brightpath/academy-ui-api/internal/domain/model"
	"github.com/jackc/pgx/v5"
)

// EnrollmentRepo provides operations for student course enrollments.
type EnrollmentRepo struct {
	DB *sql.DB
}

// NewEnrollmentRepo creates a new EnrollmentRepo.
func NewEnrollmentRepo(db *sql.DB) *EnrollmentRepo {
	return &EnrollmentRepo{DB: db}
}

const enrollmentColumns = `id, student_id, course_id, status, enrolled_at, updated_at`

// Create enrolls a student in a course with active status.
func (r *EnrollmentRepo) Create(ctx context.Context, req model.CreateEnrollmentRequest) (*model.StudentEnrollment, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	var out model.StudentEnrollment
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO student_enrollments (student_id, course_id, status)
			VALUES ($1, $2, $3)
			RETURNING `+enrollmentColumns,
			req.StudentID, req.CourseID, model.EnrollmentStatusActive)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.StudentEnrollment])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// ListByStudent returns a student's enrollments, most recent first.
func (r *EnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]*model.StudentEnrollment, error) {
	return r.list(ctx, `SELECT `+enrollmentColumns+`
		FROM student_enrollments WHERE student_id = $1
		ORDER BY enrolled_at DESC, id DESC`, studentID)
}

// ListByCourse returns a course's enrollments, most recent first.
func (r *EnrollmentRepo) ListByCourse(ctx context.Context, courseID string) ([]*model.StudentEnrollment, error) {
	return r.list(ctx, `SELECT `+enrollmentColumns+`
		FROM student_enrollments WHERE course_id = $1
		ORDER BY enrolled_at DESC, id DESC`, courseID)
}

func (r *EnrollmentRepo) list(ctx context.Context, query string, arg any) ([]*model.StudentEnrollment, error) {
	var slice []model.StudentEnrollment
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, arg)
		if err != nil {
			return err
		}
		defer rows.Close()
		slice, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.StudentEnrollment])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}

	out := make([]*model.StudentEnrollment, len(slice))
	for i := range slice {
		out[i] = &slice[i]
	}
	return out, nil
}

// UpdateStatus transitions an enrollment to the given status.
func (r *EnrollmentRepo) UpdateStatus(ctx context.Context, id string, status model.EnrollmentStatus) (*model.StudentEnrollment, error) {
	if !status.Valid() {
		return nil, apperrors.Validation("invalid enrollment status")
	}

	var out model.StudentEnrollment
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE student_enrollments SET status = $2, updated_at = now()
			WHERE id = $1
			RETURNING `+enrollmentColumns, id, status)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.StudentEnrollment])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Delete removes an enrollment by ID.
func (r *EnrollmentRepo) Delete(ctx context.Context, id string) (bool, error) {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM student_enrollments WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	return affected > 0, nil
}
