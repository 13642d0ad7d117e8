package data

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	apperrors "github.com/brightpath/academy-ui-api/internal/errors"

	"github.com/brightpath/academy-ui-api/internal/domain/model"
	"github.com/brightpath/academy-ui-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestInstructor(t *testing.T, db *sql.DB) string {
	t.Helper()
	repo, err := NewProfileRepo(db, "")
	require.NoError(t, err)
	req := testutil.NewProfileRequest().WithRole("instructor").Build()
	p, err := repo.Create(context.Background(), req)
	require.NoError(t, err)
	return p.UserID
}

func TestCourseRepo_Create_Get_List_Update_Delete(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewCourseRepo(db)
		instructorID := createTestInstructor(t, db)

		req := testutil.NewCourseRequest(instructorID).WithPublished(true).Build()
		c, err := repo.Create(ctx, req)
		require.NoError(t, err)
		require.NotEmpty(t, c.ID)
		assert.True(t, c.Published)
		require.NotNil(t, c.PublishedAt)

		got, err := repo.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.Title, got.Title)

		list, err := repo.List(ctx, model.CoursesListOptions{InstructorID: &instructorID})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, c.ID, list[0].ID)

		q := c.Title[:8]
		filtered, err := repo.List(ctx, model.CoursesListOptions{Q: &q})
		require.NoError(t, err)
		assert.NotEmpty(t, filtered)

		updated, err := repo.Update(ctx, c.ID, model.UpdateCourseRequest{
			Title: testutil.StringPtr("Intro to Go"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Intro to Go", updated.Title)

		ok, err := repo.Delete(ctx, c.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = repo.GetByID(ctx, c.ID)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestCourseRepo_Create_Validation(t *testing.T) {
	repo := NewCourseRepo(nil)
	_, err := repo.Create(context.Background(), model.CreateCourseRequest{})
	assert.True(t, apperrors.IsValidation(err))
}

func TestCourseRepo_Categories(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewCourseRepo(db)

		name := fmt.Sprintf("cat-%d", time.Now().UnixNano())
		_, err := db.ExecContext(ctx,
			`INSERT INTO course_categories (name, slug) VALUES ($1, $2)`, name, name)
		require.NoError(t, err)

		cats, err := repo.ListCategories(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, cats)
	})
}
