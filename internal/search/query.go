package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// DefaultLimit caps the number of hits returned when the caller passes no limit.
const DefaultLimit = 1000

// SearchParams holds the parameters for a post search.
type SearchParams struct {
	Query string
	// OwnerID restricts hits to one owner's posts when non-zero.
	OwnerID int64
	// VisibleOnly drops hidden posts.
	VisibleOnly bool
	Limit       int
}

// SearchPosts returns the IDs of matching posts ordered by relevance.
// An empty query matches nothing.
func (s *SearchIndex) SearchPosts(ctx context.Context, params SearchParams) ([]int64, error) {
	q := strings.TrimSpace(params.Query)
	if q == "" {
		return []int64{}, nil
	}
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	req := bleve.NewSearchRequestOptions(buildQuery(q, params), limit, 0, false)

	s.mu.RLock()
	res, err := s.index.SearchInContext(ctx, req)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}

	ids := make([]int64, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// buildQuery matches the text against every text field, weighting titles and
// tags above body fields, with a fuzzy title match to tolerate typos.
func buildQuery(text string, params SearchParams) query.Query {
	field := func(name string, boost float64) query.Query {
		mq := bleve.NewMatchQuery(text)
		mq.SetField(name)
		mq.SetBoost(boost)
		return mq
	}

	fuzzy := bleve.NewMatchQuery(text)
	fuzzy.SetField("title")
	fuzzy.SetFuzziness(1)
	fuzzy.SetBoost(0.5)

	textQuery := bleve.NewDisjunctionQuery(
		field("title", 3),
		field("tags", 2),
		field("sections", 1.5),
		field("detail", 1),
		fuzzy,
	)

	must := []query.Query{textQuery}
	if params.OwnerID != 0 {
		owner := bleve.NewTermQuery(strconv.FormatInt(params.OwnerID, 10))
		owner.SetField("owner_id")
		must = append(must, owner)
	}
	if params.VisibleOnly {
		visible := bleve.NewBoolFieldQuery(true)
		visible.SetField("visible")
		must = append(must, visible)
	}
	if len(must) == 1 {
		return textQuery
	}
	return bleve.NewConjunctionQuery(must...)
}
