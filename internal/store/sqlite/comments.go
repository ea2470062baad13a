package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/inkpost/inkpost-server/internal/domain"
	"github.com/inkpost/inkpost-server/internal/store"
)

const commentColumns = `id, owner_id, post_id, body, created_at, updated_at`

func scanComment(scanner interface{ Scan(dest ...any) error }) (*domain.Comment, error) {
	var (
		c                    domain.Comment
		createdAt, updatedAt string
	)
	if err := scanner.Scan(&c.ID, &c.OwnerID, &c.PostID, &c.Body, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateComment inserts a comment under its post.
// Returns store.ErrNotFound when the post does not exist.
func (s *Store) CreateComment(ctx context.Context, c *domain.Comment) error {
	now := s.now()
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO comments (owner_id, post_id, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.OwnerID, c.PostID, c.Body, formatTime(now), formatTime(now),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrNotFound.WithMessage("post not found")
		}
		return err
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	c.CreatedAt, c.UpdatedAt = now, now
	return nil
}

// GetComment retrieves a comment by ID.
func (s *Store) GetComment(ctx context.Context, id int64) (*domain.Comment, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = ?`, id)
	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return c, err
}

// ListComments returns a post's comments, newest first.
func (s *Store) ListComments(ctx context.Context, postID int64) ([]*domain.Comment, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE post_id = ? ORDER BY created_at DESC, id DESC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []*domain.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// UpdateComment rewrites a comment body.
func (s *Store) UpdateComment(ctx context.Context, c *domain.Comment) error {
	now := s.now()
	res, err := s.q.ExecContext(ctx,
		`UPDATE comments SET body = ?, updated_at = ? WHERE id = ?`, c.Body, formatTime(now), c.ID)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	c.UpdatedAt = now
	return nil
}

// DeleteComment removes a comment and, through the cascade, its replies.
func (s *Store) DeleteComment(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

const replyColumns = `id, owner_id, comment_id, body, created_at, updated_at`

func scanReply(scanner interface{ Scan(dest ...any) error }) (*domain.Reply, error) {
	var (
		r                    domain.Reply
		createdAt, updatedAt string
	)
	if err := scanner.Scan(&r.ID, &r.OwnerID, &r.CommentID, &r.Body, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReply inserts a reply under its comment.
// Returns store.ErrNotFound when the comment does not exist.
func (s *Store) CreateReply(ctx context.Context, r *domain.Reply) error {
	now := s.now()
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO replies (owner_id, comment_id, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		r.OwnerID, r.CommentID, r.Body, formatTime(now), formatTime(now),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrNotFound.WithMessage("comment not found")
		}
		return err
	}
	if r.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	r.CreatedAt, r.UpdatedAt = now, now
	return nil
}

// GetReply retrieves a reply by ID.
func (s *Store) GetReply(ctx context.Context, id int64) (*domain.Reply, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+replyColumns+` FROM replies WHERE id = ?`, id)
	r, err := scanReply(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return r, err
}

// ListReplies returns a comment's replies, newest first.
func (s *Store) ListReplies(ctx context.Context, commentID int64) ([]*domain.Reply, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+replyColumns+` FROM replies WHERE comment_id = ? ORDER BY created_at DESC, id DESC`, commentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	replies := []*domain.Reply{}
	for rows.Next() {
		r, err := scanReply(rows)
		if err != nil {
			return nil, err
		}
		replies = append(replies, r)
	}
	return replies, rows.Err()
}

// UpdateReply rewrites a reply body.
func (s *Store) UpdateReply(ctx context.Context, r *domain.Reply) error {
	now := s.now()
	res, err := s.q.ExecContext(ctx,
		`UPDATE replies SET body = ?, updated_at = ? WHERE id = ?`, r.Body, formatTime(now), r.ID)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	r.UpdatedAt = now
	return nil
}

// DeleteReply removes a reply.
func (s *Store) DeleteReply(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM replies WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
