package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	apperrors "github.com/brightpath/academy-ui-api/internal/errors"

	"github.com/brightpath/academy-ui-api/internal/data/pgxutil"
	"github.com/brightpath/academy-ui-api/internal/domain/model"
	"github.com/jackc/pgx/v5"
)

// BlogRepo provides CRUD operations for blog posts.
type BlogRepo struct {
	DB *sql.DB
}

// NewBlogRepo creates a new BlogRepo.
func NewBlogRepo(db *sql.DB) *BlogRepo {
	return &BlogRepo{DB: db}
}

const blogPostColumns = `id, title, body, author_id, published, published_at, created_at, updated_at`

// Create inserts a new blog post.
func (r *BlogRepo) Create(ctx context.Context, req model.CreateBlogPostRequest) (*model.BlogPost, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	published := req.Published != nil && *req.Published

	var out model.BlogPost
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO blog_posts (title, body, author_id, published, published_at)
			VALUES ($1, $2, $3, $4, CASE WHEN $4 THEN now() END)
			RETURNING `+blogPostColumns,
			req.Title, req.Body, req.AuthorID, published)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.BlogPost])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByID fetches a blog post by ID.
func (r *BlogRepo) GetByID(ctx context.Context, id string) (*model.BlogPost, error) {
	var out model.BlogPost
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+blogPostColumns+` FROM blog_posts WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.BlogPost])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// List returns blog posts matching the options, newest first.
func (r *BlogRepo) List(ctx context.Context, opts model.BlogPostsListOptions) ([]*model.BlogPost, error) {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	where := make([]string, 0, 2)
	args := make([]any, 0, 4)
	argIdx := 1

	if opts.AuthorID != nil {
		where = append(where, fmt.Sprintf("author_id = $%d", argIdx))
		args = append(args, *opts.AuthorID)
		argIdx++
	}
	if opts.Published != nil {
		where = append(where, fmt.Sprintf("published = $%d", argIdx))
		args = append(args, *opts.Published)
		argIdx++
	}

	query := `SELECT ` + blogPostColumns + ` FROM blog_posts`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, opts.Limit, opts.Offset)

	var postsSlice []model.BlogPost
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		postsSlice, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.BlogPost])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}

	posts := make([]*model.BlogPost, len(postsSlice))
	for i := range postsSlice {
		posts[i] = &postsSlice[i]
	}
	return posts, nil
}

// Update modifies a blog post, returning the updated record.
func (r *BlogRepo) Update(ctx context.Context, id string, req model.UpdateBlogPostRequest) (*model.BlogPost, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	setParts := make([]string, 0, 3)
	args := make([]any, 0, 4)
	argIdx := 1

	if req.Title != nil {
		setParts = append(setParts, fmt.Sprintf("title = $%d", argIdx))
		args = append(args, *req.Title)
		argIdx++
	}
	if req.Body != nil {
		setParts = append(setParts, fmt.Sprintf("body = $%d", argIdx))
		args = append(args, *req.Body)
		argIdx++
	}
	if req.Published != nil {
		setParts = append(setParts, fmt.Sprintf("published = $%d", argIdx))
		args = append(args, *req.Published)
		argIdx++
		setParts = append(setParts, fmt.Sprintf("published_at = CASE WHEN $%d THEN COALESCE(published_at, now()) END", argIdx))
		args = append(args, *req.Published)
		argIdx++
	}

	args = append(args, id)
	query := "UPDATE blog_posts SET " + strings.Join(setParts, ", ") +
		", updated_at = now()" +
		fmt.Sprintf(" WHERE id = $%d RETURNING ", argIdx) + blogPostColumns

	var out model.BlogPost
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx, query, args...)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		collected, collectErr := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.BlogPost])
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

// Delete removes a blog post by ID.
func (r *BlogRepo) Delete(ctx context.Context, id string) (bool, error) {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
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
