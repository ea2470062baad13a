package domain

// Owned is implemented by every entity that belongs to exactly one user.
type Owned interface {
	Owner() int64
}

// OwnedBy reports whether userID owns entity. A nil entity or an anonymous
// caller (userID 0) never owns anything.
func OwnedBy(entity Owned, userID int64) bool {
	if entity == nil || userID == 0 {
		return false
	}
	return entity.Owner() == userID
}
