package sqlite

import (
	"context"
	"fmt"

	"github.com/inkpost/inkpost-server/internal/domain"
	"github.com/inkpost/inkpost-server/internal/store"
)

// GetPostTags returns a post's tags ordered by name.
func (s *Store) GetPostTags(ctx context.Context, postID int64) ([]*domain.Tag, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+tagColumns+` FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = ?
		ORDER BY t.name ASC, t.id ASC`, postID)
	if err != nil {
		return nil, err
	}
	return collectTags(rows)
}

// GetTagsForPosts returns the tags of several posts keyed by post ID.
// Posts without tags are absent from the map.
func (s *Store) GetTagsForPosts(ctx context.Context, postIDs []int64) (map[int64][]*domain.Tag, error) {
	result := make(map[int64][]*domain.Tag)
	if len(postIDs) == 0 {
		return result, nil
	}

	marks, args := placeholders(postIDs)
	rows, err := s.q.QueryContext(ctx, `
		SELECT pt.post_id, `+tagColumns+` FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id IN (`+marks+`)
		ORDER BY t.name ASC, t.id ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var postID int64
		var t domain.Tag
		var createdAt string
		if err := rows.Scan(&postID, &t.ID, &t.OwnerID, &t.Name, &createdAt); err != nil {
			return nil, err
		}
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		result[postID] = append(result[postID], &t)
	}
	return result, rows.Err()
}

// SetPostTags replaces a post's tag set. Duplicate IDs collapse.
func (s *Store) SetPostTags(ctx context.Context, postID int64, tagIDs []int64) error {
	return s.replaceAssociations(ctx, "post_tags", "tag_id", postID, tagIDs)
}

// GetPostSections returns a post's sections ordered by header.
func (s *Store) GetPostSections(ctx context.Context, postID int64) ([]*domain.Section, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+sectionColumns+` FROM sections s
		JOIN post_sections ps ON ps.section_id = s.id
		WHERE ps.post_id = ?
		ORDER BY s.header ASC, s.id ASC`, postID)
	if err != nil {
		return nil, err
	}
	return collectSections(rows)
}

// SetPostSections replaces a post's section set. Duplicate IDs collapse.
func (s *Store) SetPostSections(ctx context.Context, postID int64, sectionIDs []int64) error {
	return s.replaceAssociations(ctx, "post_sections", "section_id", postID, sectionIDs)
}

// replaceAssociations deletes every row of table for postID and inserts the
// new set in one transaction. table and column are package constants, never
// caller input.
func (s *Store) replaceAssociations(ctx context.Context, table, column string, postID int64, ids []int64) error {
	return s.withTx(ctx, func(tx *Store) error {
		if _, err := tx.q.ExecContext(ctx, `DELETE FROM `+table+` WHERE post_id = ?`, postID); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}

		insert := `INSERT OR IGNORE INTO ` + table + ` (post_id, ` + column + `) VALUES (?, ?)`
		for _, id := range ids {
			if _, err := tx.q.ExecContext(ctx, insert, postID, id); err != nil {
				if isForeignKeyViolation(err) {
					return store.ErrNotFound.WithMessage(fmt.Sprintf("%s %d or post %d does not exist", column, id, postID))
				}
				return fmt.Errorf("insert %s: %w", table, err)
			}
		}
		return nil
	})
}

// HasLiked reports whether userID likes postID.
func (s *Store) HasLiked(ctx context.Context, postID, userID int64) (bool, error) {
	var exists int
	err := s.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM post_likes WHERE post_id = ? AND user_id = ?)`, postID, userID,
	).Scan(&exists)
	return exists == 1, err
}

// AddLike records a like. Liking twice is a no-op.
func (s *Store) AddLike(ctx context.Context, postID, userID int64) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO post_likes (post_id, user_id, created_at) VALUES (?, ?, ?)`,
		postID, userID, formatTime(s.now()))
	if isForeignKeyViolation(err) {
		return store.ErrNotFound
	}
	return err
}

// RemoveLike deletes a like if present.
func (s *Store) RemoveLike(ctx context.Context, postID, userID int64) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = ? AND user_id = ?`, postID, userID)
	return err
}

// GetPostLikes returns the IDs of users liking a post, oldest like first.
func (s *Store) GetPostLikes(ctx context.Context, postID int64) ([]int64, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT user_id FROM post_likes WHERE post_id = ? ORDER BY created_at ASC, user_id ASC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	likes := []int64{}
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		likes = append(likes, userID)
	}
	return likes, rows.Err()
}

// CountLikesForPosts returns like counts keyed by post ID. Posts without
// likes are absent from the map.
func (s *Store) CountLikesForPosts(ctx context.Context, postIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int)
	if len(postIDs) == 0 {
		return counts, nil
	}

	marks, args := placeholders(postIDs)
	rows, err := s.q.QueryContext(ctx,
		`SELECT post_id, COUNT(*) FROM post_likes WHERE post_id IN (`+marks+`) GROUP BY post_id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var postID int64
		var n int
		if err := rows.Scan(&postID, &n); err != nil {
			return nil, err
		}
		counts[postID] = n
	}
	return counts, rows.Err()
}
