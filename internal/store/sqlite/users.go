package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/inkpost/inkpost-server/internal/domain"
	"github.com/inkpost/inkpost-server/internal/store"
)

// userColumns must match the scan order in scanUser.
const userColumns = `id, email, name, password_hash, is_active, is_staff, created_at, updated_at`

func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var (
		u                    domain.User
		isActive, isStaff    int
		createdAt, updatedAt string
	)

	if err := scanner.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &isActive, &isStaff, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	u.IsActive = isActive != 0
	u.IsStaff = isStaff != 0

	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user and sets its ID and timestamps.
// Returns store.ErrAlreadyExists when the email is taken.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	now := s.now()
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO users (email, name, password_hash, is_active, is_staff, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Email, u.Name, u.PasswordHash, boolToInt(u.IsActive), boolToInt(u.IsStaff),
		formatTime(now), formatTime(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage("email already registered")
		}
		return err
	}

	if u.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return u, err
}

// GetUserByEmail retrieves a user by exact (already normalized) email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return u, err
}

// UpdateUser writes every mutable user column.
func (s *Store) UpdateUser(ctx context.Context, u *domain.User) error {
	now := s.now()
	res, err := s.q.ExecContext(ctx, `
		UPDATE users SET email = ?, name = ?, password_hash = ?, is_active = ?, is_staff = ?, updated_at = ?
		WHERE id = ?`,
		u.Email, u.Name, u.PasswordHash, boolToInt(u.IsActive), boolToInt(u.IsStaff), formatTime(now), u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage("email already registered")
		}
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	u.UpdatedAt = now
	return nil
}
