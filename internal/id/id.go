// Package id generates opaque identifiers and parses numeric ID lists.
package id

import (
	"fmt"
	"strconv"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Token returns a 21 character URL-safe ID used as a token's jti claim.
func Token() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return id, nil
}

// ParseList parses a comma-separated list of positive integer IDs such as
// "1,5, 9". Blank entries are skipped and duplicates are kept once, in first
// occurrence order. An empty input yields a nil slice.
func ParseList(csv string) ([]int64, error) {
	if strings.TrimSpace(csv) == "" {
		return nil, nil
	}

	var ids []int64
	seen := make(map[int64]struct{})
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		ids = append(ids, n)
	}
	return ids, nil
}
