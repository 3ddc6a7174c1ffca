package prompt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrTemplateNotFound is returned by a Store when the named template
// does not exist in the backing source.
var ErrTemplateNotFound = errors.New("prompt template not found")

// Store is the backing source of template definitions, keyed by template
// name. Implementations: local files and MinIO objects.
type Store interface {
	Get(ctx context.Context, name string) ([]byte, error)
}

// templateKey maps a template name to its storage key.
func templateKey(name string) string {
	return name + ".prompt.yaml"
}

// FSStore reads template definitions from a local directory.
type FSStore struct {
	dir string
}

func NewFSStore(dir string) *FSStore {
	return &FSStore{dir: dir}
}

func (s *FSStore) Get(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, templateKey(name)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		return nil, err
	}
	return data, nil
}
