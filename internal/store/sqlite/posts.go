package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/inkpost/inkpost-server/internal/domain"
	"github.com/inkpost/inkpost-server/internal/store"
)

// postColumns must match the scan order in scanPost.
const postColumns = `p.id, p.owner_id, p.title, p.detail, p.featured, p.visit_count, p.visible, p.created_at, p.updated_at`

func scanPost(scanner interface{ Scan(dest ...any) error }) (*domain.Post, error) {
	var (
		p                    domain.Post
		detail               sql.NullString
		featured, visible    int
		createdAt, updatedAt string
	)

	err := scanner.Scan(&p.ID, &p.OwnerID, &p.Title, &detail, &featured, &p.VisitCount, &visible, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	p.Detail = stringPtr(detail)
	p.Featured = featured != 0
	p.Visible = visible != 0
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePost inserts a post. ID, visit count and timestamps are assigned here;
// the caller's VisitCount is ignored.
func (s *Store) CreatePost(ctx context.Context, p *domain.Post) error {
	now := s.now()
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO posts (owner_id, title, detail, featured, visit_count, visible, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?, ?)`,
		p.OwnerID, p.Title, nullableString(p.Detail), boolToInt(p.Featured), boolToInt(p.Visible),
		formatTime(now), formatTime(now),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrInvalidInput.WithCause(err).WithMessage("owner does not exist")
		}
		return err
	}

	if p.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	p.VisitCount = 0
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

// GetPost retrieves a post without its associations.
func (s *Store) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts p WHERE p.id = ?`, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return p, err
}

// ListPosts returns posts matching filter, newest ID first. Tag and section
// filters use EXISTS so a post matching several IDs appears once.
func (s *Store) ListPosts(ctx context.Context, f store.PostFilter) ([]*domain.Post, error) {
	var (
		where []string
		args  []any
	)

	if f.OwnerID != 0 {
		where = append(where, "p.owner_id = ?")
		args = append(args, f.OwnerID)
	}
	if f.VisibleOnly {
		where = append(where, "p.visible = 1")
	}
	if f.IDs != nil {
		if len(f.IDs) == 0 {
			return []*domain.Post{}, nil
		}
		marks, idArgs := placeholders(f.IDs)
		where = append(where, "p.id IN ("+marks+")")
		args = append(args, idArgs...)
	}
	if len(f.TagIDs) > 0 {
		marks, idArgs := placeholders(f.TagIDs)
		where = append(where, "EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = p.id AND pt.tag_id IN ("+marks+"))")
		args = append(args, idArgs...)
	}
	if len(f.SectionIDs) > 0 {
		marks, idArgs := placeholders(f.SectionIDs)
		where = append(where, "EXISTS (SELECT 1 FROM post_sections ps WHERE ps.post_id = p.id AND ps.section_id IN ("+marks+"))")
		args = append(args, idArgs...)
	}

	query := `SELECT ` + postColumns + ` FROM posts p`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.id DESC"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// UpdatePost writes the mutable scalar columns. Owner, visit count and
// created_at are never written here.
func (s *Store) UpdatePost(ctx context.Context, p *domain.Post) error {
	now := s.now()
	res, err := s.q.ExecContext(ctx, `
		UPDATE posts SET title = ?, detail = ?, featured = ?, visible = ?, updated_at = ?
		WHERE id = ?`,
		p.Title, nullableString(p.Detail), boolToInt(p.Featured), boolToInt(p.Visible), formatTime(now), p.ID,
	)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	p.UpdatedAt = now
	return nil
}

// IncrementPostVisits bumps visit_count by one and returns the new value.
func (s *Store) IncrementPostVisits(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := s.q.QueryRowContext(ctx,
		`UPDATE posts SET visit_count = visit_count + 1 WHERE id = ? RETURNING visit_count`, id,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, store.ErrNotFound
	}
	return count, err
}

// DeletePost removes a post. Comments, replies and association rows go with
// it through ON DELETE CASCADE.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
