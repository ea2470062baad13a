package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/inkpost/inkpost-server/internal/domain"
	"github.com/inkpost/inkpost-server/internal/store"
)

// tagColumns must match the scan order in scanTag.
const tagColumns = `t.id, t.owner_id, t.name, t.created_at`

func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var (
		t         domain.Tag
		createdAt string
	)
	if err := scanner.Scan(&t.ID, &t.OwnerID, &t.Name, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTags(rows *sql.Rows) ([]*domain.Tag, error) {
	defer rows.Close()
	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// CreateTag inserts a tag. Duplicate (owner, name) pairs are allowed here;
// only FindOrCreateTag deduplicates.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	now := s.now()
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO tags (owner_id, name, created_at) VALUES (?, ?, ?)`,
		t.OwnerID, t.Name, formatTime(now),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrInvalidInput.WithCause(err).WithMessage("owner does not exist")
		}
		return err
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	t.CreatedAt = now
	return nil
}

// GetTag retrieves a tag by ID.
func (s *Store) GetTag(ctx context.Context, id int64) (*domain.Tag, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags t WHERE t.id = ?`, id)
	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return t, err
}

// FindOrCreateTag returns the owner's oldest tag with exactly this name, or
// creates one. The lookup and insert share one immediate transaction.
// Returns (tag, created, error).
func (s *Store) FindOrCreateTag(ctx context.Context, ownerID int64, name string) (*domain.Tag, bool, error) {
	var (
		tag     *domain.Tag
		created bool
	)

	err := s.withTx(ctx, func(tx *Store) error {
		row := tx.q.QueryRowContext(ctx,
			`SELECT `+tagColumns+` FROM tags t WHERE t.owner_id = ? AND t.name = ? ORDER BY t.id ASC LIMIT 1`,
			ownerID, name)

		existing, err := scanTag(row)
		if err == nil {
			tag = existing
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		tag = &domain.Tag{OwnerID: ownerID, Name: name}
		if err := tx.CreateTag(ctx, tag); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return tag, created, nil
}

// ListTags returns the owner's tags ordered by name descending.
func (s *Store) ListTags(ctx context.Context, f store.AttributeFilter) ([]*domain.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags t WHERE t.owner_id = ?`
	if f.AssignedOnly {
		query += ` AND EXISTS (SELECT 1 FROM post_tags pt WHERE pt.tag_id = t.id)`
	}
	query += ` ORDER BY t.name DESC, t.id DESC`

	rows, err := s.q.QueryContext(ctx, query, f.OwnerID)
	if err != nil {
		return nil, err
	}
	return collectTags(rows)
}

// UpdateTag renames a tag.
func (s *Store) UpdateTag(ctx context.Context, t *domain.Tag) error {
	res, err := s.q.ExecContext(ctx, `UPDATE tags SET name = ? WHERE id = ?`, t.Name, t.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DeleteTag removes a tag and its post associations. Posts stay.
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
