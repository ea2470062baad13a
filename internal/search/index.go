package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// SearchIndex wraps a Bleve index of posts.
//
// All public methods are safe for concurrent use. The mutex guards the index
// handle while Rebuild swaps it.
type SearchIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage; ignored when InMemory
	InMemory bool         // Keep the index in memory only
	Logger   *slog.Logger // Uses a stderr text logger if nil
}

// mappingVersion is bumped whenever buildIndexMapping changes, which forces a
// rebuild of on-disk indexes at startup.
const mappingVersion = "1"

// NewSearchIndex opens the index under DataPath, recreating it when it is
// missing, unreadable or built with another mapping version. Created reports
// whether the index starts empty and needs to be filled.
func NewSearchIndex(opts Options) (idx *SearchIndex, created bool, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	if opts.InMemory {
		index, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, false, fmt.Errorf("create in-memory index: %w", err)
		}
		return &SearchIndex{index: index, logger: logger}, true, nil
	}

	indexPath := filepath.Join(opts.DataPath, "search.bleve")
	versionPath := filepath.Join(opts.DataPath, "search.version")

	var index bleve.Index
	if _, statErr := os.Stat(indexPath); statErr == nil {
		version, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil:
			logger.Info("search index has no version file, rebuilding", "new_version", mappingVersion)
		case string(version) != mappingVersion:
			logger.Info("search index mapping version changed, rebuilding",
				"old_version", string(version),
				"new_version", mappingVersion,
			)
		default:
			if index, err = bleve.Open(indexPath); err != nil {
				logger.Warn("failed to open existing index, recreating", "path", indexPath, "error", err)
				index = nil
			}
		}
	}

	if index != nil {
		logger.Info("opened existing search index", "path", indexPath)
		return &SearchIndex{index: index, path: indexPath, logger: logger}, false, nil
	}

	if err := os.RemoveAll(indexPath); err != nil {
		return nil, false, fmt.Errorf("remove old index: %w", err)
	}
	if index, err = newIndex(indexPath, buildIndexMapping()); err != nil {
		return nil, false, err
	}
	if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
		logger.Warn("failed to write search version file", "error", err)
	}
	logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)

	return &SearchIndex{index: index, path: indexPath, logger: logger}, true, nil
}

func newIndex(path string, m mapping.IndexMapping) (bleve.Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}
	index, err := bleve.New(path, m)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return index, nil
}

// Close closes the index and releases resources.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexPost adds or replaces a post document.
func (s *SearchIndex) IndexPost(doc *PostDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexPosts indexes documents in batches of 500.
func (s *SearchIndex) IndexPosts(docs []*PostDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const batchSize = 500

	for i := 0; i < len(docs); i += batchSize {
		end := min(i+batchSize, len(docs))

		batch := s.index.NewBatch()
		for _, doc := range docs[i:end] {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DeletePost removes a post document. Deleting a missing document is a no-op.
func (s *SearchIndex) DeletePost(postID int64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(DocID(postID))
}

// DocumentCount returns the number of indexed documents.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops every document and starts from an empty index. It blocks all
// other operations while it runs.
func (s *SearchIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	var (
		index bleve.Index
		err   error
	)
	if s.path == "" {
		index, err = bleve.NewMemOnly(buildIndexMapping())
	} else {
		if err := os.RemoveAll(s.path); err != nil {
			return fmt.Errorf("remove index: %w", err)
		}
		index, err = newIndex(s.path, buildIndexMapping())
	}
	if err != nil {
		return err
	}

	s.index = index
	s.logger.Info("rebuilt search index", "path", s.path)
	return nil
}
