package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/inkpost/inkpost-server/internal/domain"
	"github.com/inkpost/inkpost-server/internal/store"
)

// sectionColumns must match the scan order in scanSection.
const sectionColumns = `s.id, s.owner_id, s.header, s.description, s.image, s.image_blurhash, s.created_at`

func scanSection(scanner interface{ Scan(dest ...any) error }) (*domain.Section, error) {
	var (
		sec             domain.Section
		description     sql.NullString
		image, blurHash sql.NullString
		createdAt       string
	)
	if err := scanner.Scan(&sec.ID, &sec.OwnerID, &sec.Header, &description, &image, &blurHash, &createdAt); err != nil {
		return nil, err
	}

	sec.Description = stringPtr(description)
	sec.Image = image.String
	sec.ImageBlurHash = blurHash.String

	var err error
	if sec.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &sec, nil
}

func collectSections(rows *sql.Rows) ([]*domain.Section, error) {
	defer rows.Close()
	sections := []*domain.Section{}
	for rows.Next() {
		sec, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

// CreateSection inserts a section.
func (s *Store) CreateSection(ctx context.Context, sec *domain.Section) error {
	now := s.now()
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO sections (owner_id, header, description, image, image_blurhash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sec.OwnerID, sec.Header, nullableString(sec.Description),
		nullString(sec.Image), nullString(sec.ImageBlurHash), formatTime(now),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrInvalidInput.WithCause(err).WithMessage("owner does not exist")
		}
		return err
	}
	if sec.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	sec.CreatedAt = now
	return nil
}

// GetSection retrieves a section by ID.
func (s *Store) GetSection(ctx context.Context, id int64) (*domain.Section, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+sectionColumns+` FROM sections s WHERE s.id = ?`, id)
	sec, err := scanSection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return sec, err
}

// FindOrCreateSection returns the owner's oldest section whose header and
// description both match exactly (a nil or empty description matches only
// NULL), or creates one. Returns (section, created, error).
func (s *Store) FindOrCreateSection(ctx context.Context, ownerID int64, header string, description *string) (*domain.Section, bool, error) {
	var (
		sec     *domain.Section
		created bool
	)
	description = domain.CleanDescription(description)

	err := s.withTx(ctx, func(tx *Store) error {
		row := tx.q.QueryRowContext(ctx, `
			SELECT `+sectionColumns+` FROM sections s
			WHERE s.owner_id = ? AND s.header = ? AND s.description IS ?
			ORDER BY s.id ASC LIMIT 1`,
			ownerID, header, nullableString(description))

		existing, err := scanSection(row)
		if err == nil {
			sec = existing
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		sec = &domain.Section{OwnerID: ownerID, Header: header, Description: description}
		if err := tx.CreateSection(ctx, sec); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return sec, created, nil
}

// ListSections returns the owner's sections ordered by header descending.
func (s *Store) ListSections(ctx context.Context, f store.AttributeFilter) ([]*domain.Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM sections s WHERE s.owner_id = ?`
	if f.AssignedOnly {
		query += ` AND EXISTS (SELECT 1 FROM post_sections ps WHERE ps.section_id = s.id)`
	}
	query += ` ORDER BY s.header DESC, s.id DESC`

	rows, err := s.q.QueryContext(ctx, query, f.OwnerID)
	if err != nil {
		return nil, err
	}
	return collectSections(rows)
}

// UpdateSection writes header, description and image columns.
func (s *Store) UpdateSection(ctx context.Context, sec *domain.Section) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE sections SET header = ?, description = ?, image = ?, image_blurhash = ?
		WHERE id = ?`,
		sec.Header, nullableString(sec.Description), nullString(sec.Image), nullString(sec.ImageBlurHash), sec.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DeleteSection removes a section and its post associations. Posts stay.
func (s *Store) DeleteSection(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM sections WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
