package images

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a stored image does not exist.
var ErrNotFound = errors.New("image not found")

// Storage keeps image files in one directory below the images root.
// Stored names are relative to the images root, e.g. "sections/<uuid>.png",
// which is what the database keeps.
type Storage struct {
	root   string
	subdir string
}

// NewStorage creates {root}/{subdir} if needed.
func NewStorage(root, subdir string) (*Storage, error) {
	if root == "" {
		return nil, errors.New("base path cannot be empty")
	}
	if subdir == "" || strings.ContainsAny(subdir, `/\`) {
		return nil, fmt.Errorf("invalid subdirectory %q", subdir)
	}

	if err := os.MkdirAll(filepath.Join(root, subdir), 0o755); err != nil {
		return nil, fmt.Errorf("create %s directory: %w", subdir, err)
	}

	return &Storage{root: root, subdir: subdir}, nil
}

// Save writes data under a fresh random file name and returns the stored
// name. The file is written to a temporary name first and renamed into place.
func (s *Storage) Save(data []byte, format Format) (string, error) {
	if len(data) == 0 {
		return "", errors.New("image data cannot be empty")
	}

	name := s.subdir + "/" + uuid.NewString() + format.Ext()
	path := filepath.Join(s.root, filepath.FromSlash(name))

	tmp, err := os.CreateTemp(filepath.Join(s.root, s.subdir), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close image: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename image: %w", err)
	}
	//#nosec G302 -- images are served publicly
	if err := os.Chmod(path, 0o644); err != nil {
		return "", fmt.Errorf("chmod image: %w", err)
	}

	return name, nil
}

// Path resolves a stored name to an absolute path. Names outside this
// storage's subdirectory are rejected.
func (s *Storage) Path(name string) (string, error) {
	clean := filepath.ToSlash(filepath.Clean(filepath.FromSlash(name)))
	dir, file := filepath.Split(filepath.FromSlash(clean))
	if filepath.ToSlash(filepath.Clean(dir)) != s.subdir || file == "" || strings.HasPrefix(file, ".") {
		return "", fmt.Errorf("invalid image name %q", name)
	}
	return filepath.Join(s.root, s.subdir, file), nil
}

// Get reads a stored image.
func (s *Storage) Get(name string) ([]byte, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	//#nosec G304 -- path is confined to the storage directory by Path
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return data, err
}

// Delete removes a stored image. Deleting a missing image is not an error.
func (s *Storage) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}
