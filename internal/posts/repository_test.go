package posts

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

var postColumns = []string{
	"id", "user_id", "image_url", "caption", "created_at",
	"username", "avatar_url", "likes_count", "comments_count", "is_liked",
}

func TestGetPostByID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the stored engagement counts", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		createdAt := time.Now().Add(-3 * time.Hour)

		mock.ExpectQuery(`SELECT(?s:.+)FROM posts p(?s:.+)WHERE p\.id = \$2(?s:.+)GROUP BY`).
			WithArgs(int64(9), int64(42)).
			WillReturnRows(sqlmock.NewRows(postColumns).
				AddRow(42, 7, "https://cdn.example.com/p.jpg", "First light", createdAt,
					"fumador", "https://cdn.example.com/a.jpg", 12, 4, true))

		post, err := repo.GetPostByID(ctx, 42, 9)

		require.NoError(t, err)
		assert.Equal(t, int64(42), post.ID)
		assert.Equal(t, 12, post.LikesCount)
		assert.Equal(t, 4, post.CommentsCount)
		assert.True(t, post.IsLiked)
		assert.Equal(t, "fumador", post.User.Username)
		assert.Equal(t, int64(7), post.User.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("resolves is_liked against the viewer", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		// Anonymous viewers (ID 0) never see a row as liked.
		mock.ExpectQuery(`SELECT(?s:.+)FROM posts p(?s:.+)WHERE p\.id = \$2`).
			WithArgs(int64(0), int64(42)).
			WillReturnRows(sqlmock.NewRows(postColumns).
				AddRow(42, 7, "https://cdn.example.com/p.jpg", "", time.Now(),
					"fumador", "", 12, 4, false))

		post, err := repo.GetPostByID(ctx, 42, 0)

		require.NoError(t, err)
		assert.False(t, post.IsLiked)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing post maps to not found", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`SELECT(?s:.+)FROM posts p`).
			WithArgs(int64(9), int64(404)).
			WillReturnRows(sqlmock.NewRows(postColumns))

		_, err := repo.GetPostByID(ctx, 404, 9)

		assert.ErrorIs(t, err, ErrPostNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTogglePostLike(t *testing.T) {
	ctx := context.Background()

	t.Run("first toggle inserts and reports liked", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectExec(`INSERT INTO post_likes(?s:.+)ON CONFLICT DO NOTHING`).
			WithArgs(int64(42), int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		liked, err := repo.TogglePostLike(ctx, 42, 9)

		require.NoError(t, err)
		assert.True(t, liked)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second toggle falls through to delete and reports unliked", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		// The conflicting insert affects zero rows, so the row is removed.
		mock.ExpectExec(`INSERT INTO post_likes(?s:.+)ON CONFLICT DO NOTHING`).
			WithArgs(int64(42), int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM post_likes WHERE post_id = \$1 AND user_id = \$2`).
			WithArgs(int64(42), int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		liked, err := repo.TogglePostLike(ctx, 42, 9)

		require.NoError(t, err)
		assert.False(t, liked)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("round trip restores the unliked state", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectExec(`INSERT INTO post_likes`).
			WithArgs(int64(42), int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO post_likes`).
			WithArgs(int64(42), int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM post_likes`).
			WithArgs(int64(42), int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		liked, err := repo.TogglePostLike(ctx, 42, 9)
		require.NoError(t, err)
		require.True(t, liked)

		liked, err = repo.TogglePostLike(ctx, 42, 9)
		require.NoError(t, err)
		assert.False(t, liked)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListCommentsCountsTotal(t *testing.T) {
	ctx := context.Background()
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM comments WHERE post_id = \$1`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(`SELECT(?s:.+)FROM comments c(?s:.+)ORDER BY c\.created_at ASC`).
		WithArgs(int64(42), int64(9), 2, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "post_id", "user_id", "parent_comment_id", "text", "created_at",
			"username", "avatar_url", "likes_count", "is_liked",
		}).
			AddRow(1, 42, 7, nil, "Great burn", time.Now(), "fumador", "", 3, false).
			AddRow(2, 42, 8, nil, "Agreed", time.Now(), "aficionado", "", 0, true))

	comments, total, err := repo.ListComments(ctx, 42, 9, 2, 0)

	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, comments, 2)
	assert.Equal(t, 3, comments[0].LikesCount)
	assert.True(t, comments[1].IsLiked)
	require.NoError(t, mock.ExpectationsWereMet())
}
