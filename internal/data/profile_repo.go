package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/brightpath/academy-ui-api/internal/errors"

	"github.com/brightpath/academy-ui-api/internal/data/pgxutil"
	domainauth "github.com/brightpath/academy-ui-api/internal/domain/auth"
	"github.com/brightpath/academy-ui-api/internal/domain/model"
	"github.com/jackc/pgx/v5"
	jmespath "github.com/jmespath-community/go-jmespath"
)

// ProfileRepo provides CRUD operations for profiles and acts as the role
// source of truth for authorization decisions.
type ProfileRepo struct {
	DB *sql.DB

	// roleAttributePath is an optional JMESPath expression evaluated against
	// the profile's attributes JSON when the role column is null. Deployments
	// that sync profiles from an IdP store the role there.
	roleAttributePath string
}

// NewProfileRepo creates a new ProfileRepo. roleAttributePath may be empty;
// when set it must be a valid JMESPath expression.
func NewProfileRepo(db *sql.DB, roleAttributePath string) (*ProfileRepo, error) {
	if roleAttributePath != "" {
		if _, err := jmespath.Compile(roleAttributePath); err != nil {
			return nil, fmt.Errorf("compile role attribute path: %w", err)
		}
	}
	return &ProfileRepo{DB: db, roleAttributePath: roleAttributePath}, nil
}

const profileColumns = `id, user_id, first_name, last_name, email, role, attributes, created_at, updated_at`

// GetRole returns the role for a user. A missing profile or a profile with no
// resolvable role is a terminal role_not_found error, never a default role.
// Query transport failures map to role_unavailable so callers may retry.
func (r *ProfileRepo) GetRole(ctx context.Context, userID string) (domainauth.Role, error) {
	if strings.TrimSpace(userID) == "" {
		return "", apperrors.RoleNotFound(userID)
	}

	var roleCol *string
	var attributes json.RawMessage
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx,
			`SELECT role, attributes FROM profiles WHERE user_id = $1`, userID,
		).Scan(&roleCol, &attributes)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperrors.RoleNotFound(userID)
	}
	if err != nil {
		return "", apperrors.RoleUnavailable(fmt.Errorf("query profile role: %w", err))
	}

	raw, ok := r.rawRole(roleCol, attributes)
	if !ok {
		return "", apperrors.RoleNotFound(userID)
	}
	role, err := domainauth.ParseRole(raw)
	if err != nil {
		// An unrecognized stored value is terminal, same as no profile.
		return "", apperrors.RoleNotFound(userID)
	}
	return role, nil
}

// rawRole picks the stored role string: the role column wins, then the
// configured attribute path against the attributes JSON.
func (r *ProfileRepo) rawRole(roleCol *string, attributes json.RawMessage) (string, bool) {
	if roleCol != nil && strings.TrimSpace(*roleCol) != "" {
		return *roleCol, true
	}
	if r.roleAttributePath == "" || len(attributes) == 0 {
		return "", false
	}
	var doc any
	if err := json.Unmarshal(attributes, &doc); err != nil {
		return "", false
	}
	res, err := jmespath.Search(r.roleAttributePath, doc)
	if err != nil {
		return "", false
	}
	s, ok := res.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// Create inserts a new profile.
func (r *ProfileRepo) Create(ctx context.Context, req model.CreateProfileRequest) (*model.Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	var out model.Profile
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO profiles (user_id, first_name, last_name, email, role, attributes)
			VALUES ($1, $2, $3, $4, $5, COALESCE($6::jsonb, '{}'::jsonb))
			RETURNING `+profileColumns,
			req.UserID, req.FirstName, req.LastName, req.Email, req.Role, nullableJSON(req.Attributes))
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Profile])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByUserID fetches a profile by the IdP subject identifier.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var out model.Profile
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Profile])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Update modifies a profile by user ID, returning the updated record.
func (r *ProfileRepo) Update(ctx context.Context, userID string, req model.UpdateProfileRequest) (*model.Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	setParts := make([]string, 0, 5)
	args := make([]any, 0, 6)
	argIdx := 1

	if req.FirstName != nil {
		setParts = append(setParts, fmt.Sprintf("first_name = $%d", argIdx))
		args = append(args, *req.FirstName)
		argIdx++
	}
	if req.LastName != nil {
		setParts = append(setParts, fmt.Sprintf("last_name = $%d", argIdx))
		args = append(args, *req.LastName)
		argIdx++
	}
	if req.Email != nil {
		setParts = append(setParts, fmt.Sprintf("email = $%d", argIdx))
		args = append(args, *req.Email)
		argIdx++
	}
	if req.Role != nil {
		setParts = append(setParts, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, *req.Role)
		argIdx++
	}
	if len(req.Attributes) > 0 {
		setParts = append(setParts, fmt.Sprintf("attributes = $%d::jsonb", argIdx))
		args = append(args, string(req.Attributes))
		argIdx++
	}

	args = append(args, userID)
	query := "UPDATE profiles SET " + strings.Join(setParts, ", ") +
		", updated_at = now()" +
		fmt.Sprintf(" WHERE user_id = $%d RETURNING ", argIdx) + profileColumns

	var out model.Profile
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx, query, args...)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		collected, collectErr := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Profile])
		if collectErr != nil {
			return collectErr
		}
		out = collected
		return nil
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Delete removes a profile by user ID.
func (r *ProfileRepo) Delete(ctx context.Context, userID string) (bool, error) {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
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

// nullableJSON converts empty raw JSON to a nil argument so COALESCE applies.
func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
