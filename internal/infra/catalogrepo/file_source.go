package catalogrepo

import (
	"context"
	"fmt"
	"os"

	"github.com/yanqian/skincare-api/internal/domain/recommendation"
)

// FileSource reads a catalog YAML document from disk.
type FileSource struct {
	path string
}

// NewFileSource constructs a source for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// LoadProducts implements recommendation.CatalogSource.
func (s *FileSource) LoadProducts(_ context.Context) ([]recommendation.Product, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return recommendation.ParseCatalogYAML(data)
}

var _ recommendation.CatalogSource = (*FileSource)(nil)
