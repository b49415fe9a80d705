// internal/posts/repository.go
package posts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Repository defines the posts storage interface. viewerID 0 means an
// anonymous request: is_liked resolves to false for every row.
type Repository interface {
	CreatePost(ctx context.Context, post *Post) error
	GetPostByID(ctx context.Context, postID, viewerID int64) (*Post, error)
	DeletePost(ctx context.Context, postID int64) error
	GetPostOwner(ctx context.Context, postID int64) (int64, error)

	ListRecentPosts(ctx context.Context, viewerID int64, limit int) ([]Post, error)
	ListPostsByAuthors(ctx context.Context, viewerID int64, authorIDs []int64, limit int) ([]Post, error)
	GetFollowingIDs(ctx context.Context, userID int64) ([]int64, error)

	TogglePostLike(ctx context.Context, postID, userID int64) (bool, error)

	CreateComment(ctx context.Context, comment *Comment) error
	GetCommentByID(ctx context.Context, commentID int64) (*Comment, error)
	ListComments(ctx context.Context, postID, viewerID int64, limit, offset int) ([]Comment, int, error)
	DeleteComment(ctx context.Context, commentID int64) error
	ToggleCommentLike(ctx context.Context, commentID, userID int64) (bool, error)
}

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a PostgreSQL-backed posts repository
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreatePost(ctx context.Context, post *Post) error {
	query := `
		INSERT INTO posts (user_id, image_url, caption, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, post.UserID, post.ImageURL, post.Caption).
		Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

const postSelect = `
	SELECT
		p.id, p.user_id, p.image_url, COALESCE(p.caption, '') AS caption, p.created_at,
		u.username,
		COALESCE(pr.avatar_url, '') AS avatar_url,
		COUNT(DISTINCT l.user_id) AS likes_count,
		COUNT(DISTINCT c.id) AS comments_count,
		EXISTS(SELECT 1 FROM post_likes WHERE post_id = p.id AND user_id = $1) AS is_liked
	FROM posts p
	JOIN users u ON p.user_id = u.id
	LEFT JOIN profiles pr ON p.user_id = pr.user_id
	LEFT JOIN post_likes l ON p.id = l.post_id
	LEFT JOIN comments c ON p.id = c.post_id`

const postGroupBy = ` GROUP BY p.id, u.username, pr.avatar_url`

func (r *postgresRepository) GetPostByID(ctx context.Context, postID, viewerID int64) (*Post, error) {
	query := postSelect + ` WHERE p.id = $2` + postGroupBy

	post := &Post{User: &UserInfo{}}
	err := r.db.QueryRowContext(ctx, query, viewerID, postID).Scan(
		&post.ID, &post.UserID, &post.ImageURL, &post.Caption, &post.CreatedAt,
		&post.User.Username, &post.User.AvatarURL,
		&post.LikesCount, &post.CommentsCount, &post.IsLiked,
	)
	if err == sql.ErrNoRows {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	post.User.ID = post.UserID
	return post, nil
}

func (r *postgresRepository) DeletePost(ctx context.Context, postID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM comment_likes WHERE comment_id IN (SELECT id FROM comments WHERE post_id = $1)`,
		`DELETE FROM comments WHERE post_id = $1`,
		`DELETE FROM post_likes WHERE post_id = $1`,
		`DELETE FROM posts WHERE id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, postID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *postgresRepository) GetPostOwner(ctx context.Context, postID int64) (int64, error) {
	var ownerID int64
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM posts WHERE id = $1`, postID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return 0, ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get post owner: %w", err)
	}
	return ownerID, nil
}

func (r *postgresRepository) ListRecentPosts(ctx context.Context, viewerID int64, limit int) ([]Post, error) {
	query := postSelect + postGroupBy + ` ORDER BY p.created_at DESC LIMIT $2`
	return r.scanPosts(ctx, query, viewerID, limit)
}

func (r *postgresRepository) ListPostsByAuthors(ctx context.Context, viewerID int64, authorIDs []int64, limit int) ([]Post, error) {
	query := postSelect + ` WHERE p.user_id = ANY($2)` + postGroupBy + ` ORDER BY p.created_at DESC LIMIT $3`
	return r.scanPosts(ctx, query, viewerID, pq.Array(authorIDs), limit)
}

func (r *postgresRepository) GetFollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT followee_id FROM follows WHERE follower_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list followed users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// TogglePostLike flips the like state for (userID, postID) and reports the new
// state. The insert relies on the composite primary key so two concurrent
// toggles cannot create a duplicate row; a conflicting insert simply affects
// zero rows and falls through to the delete branch.
func (r *postgresRepository) TogglePostLike(ctx context.Context, postID, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO post_likes (post_id, user_id, created_at)
		 VALUES ($1, $2, NOW()) ON CONFLICT DO NOTHING`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to like post: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if inserted > 0 {
		return true, nil
	}

	_, err = r.db.ExecContext(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to unlike post: %w", err)
	}
	return false, nil
}

func (r *postgresRepository) CreateComment(ctx context.Context, comment *Comment) error {
	query := `
		INSERT INTO comments (post_id, user_id, parent_comment_id, text, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		comment.PostID, comment.UserID, comment.ParentID, comment.Text).
		Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetCommentByID(ctx context.Context, commentID int64) (*Comment, error) {
	comment := &Comment{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, post_id, user_id, parent_comment_id, text, created_at
		 FROM comments WHERE id = $1`, commentID).Scan(
		&comment.ID, &comment.PostID, &comment.UserID, &comment.ParentID,
		&comment.Text, &comment.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return comment, nil
}

func (r *postgresRepository) ListComments(ctx context.Context, postID, viewerID int64, limit, offset int) ([]Comment, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE post_id = $1`, postID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}

	query := `
		SELECT
			c.id, c.post_id, c.user_id, c.parent_comment_id, c.text, c.created_at,
			u.username,
			COALESCE(pr.avatar_url, '') AS avatar_url,
			COUNT(cl.user_id) AS likes_count,
			EXISTS(SELECT 1 FROM comment_likes WHERE comment_id = c.id AND user_id = $2) AS is_liked
		FROM comments c
		JOIN users u ON c.user_id = u.id
		LEFT JOIN profiles pr ON c.user_id = pr.user_id
		LEFT JOIN comment_likes cl ON c.id = cl.comment_id
		WHERE c.post_id = $1
		GROUP BY c.id, u.username, pr.avatar_url
		ORDER BY c.created_at ASC
		LIMIT $3 OFFSET $4`

	rows, err := r.db.QueryContext(ctx, query, postID, viewerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		comment := Comment{User: &UserInfo{}}
		err := rows.Scan(
			&comment.ID, &comment.PostID, &comment.UserID, &comment.ParentID,
			&comment.Text, &comment.CreatedAt,
			&comment.User.Username, &comment.User.AvatarURL,
			&comment.LikesCount, &comment.IsLiked,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan comment: %w", err)
		}
		comment.User.ID = comment.UserID
		comments = append(comments, comment)
	}

	return comments, total, rows.Err()
}

func (r *postgresRepository) DeleteComment(ctx context.Context, commentID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM comment_likes WHERE comment_id = $1`,
		`DELETE FROM comments WHERE parent_comment_id = $1`,
		`DELETE FROM comments WHERE id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, commentID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *postgresRepository) ToggleCommentLike(ctx context.Context, commentID, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO comment_likes (comment_id, user_id, created_at)
		 VALUES ($1, $2, NOW()) ON CONFLICT DO NOTHING`, commentID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to like comment: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if inserted > 0 {
		return true, nil
	}

	_, err = r.db.ExecContext(ctx,
		`DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2`, commentID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to unlike comment: %w", err)
	}
	return false, nil
}

func (r *postgresRepository) scanPosts(ctx context.Context, query string, args ...interface{}) ([]Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		post := Post{User: &UserInfo{}}
		err := rows.Scan(
			&post.ID, &post.UserID, &post.ImageURL, &post.Caption, &post.CreatedAt,
			&post.User.Username, &post.User.AvatarURL,
			&post.LikesCount, &post.CommentsCount, &post.IsLiked,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		post.User.ID = post.UserID
		posts = append(posts, post)
	}

	return posts, rows.Err()
}
