package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bobmcallan/free-apis-mcp/internal/common"
)

// Store reads the catalog file. It keeps no parsed state: every call goes
// back to disk, so edits to the file show up on the next query.
type Store struct {
	path   string
	logger *common.Logger
}

// NewStore creates a store backed by the catalog file at path.
func NewStore(path string, logger *common.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the catalog file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads and decodes the catalog file.
// YAML is used for .yaml and .yml files, JSON for everything else.
func (s *Store) Load(ctx context.Context) ([]Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrCatalogUnavailable, s.path, err)
	}

	doc, err := decode(s.path, data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrCatalogUnavailable, s.path, err)
	}
	if doc.Categories == nil {
		return nil, fmt.Errorf("%w: %s has no categories list", ErrCatalogUnavailable, s.path)
	}

	return doc.Categories, nil
}

// Check loads the catalog once and logs its size. Called at startup.
func (s *Store) Check(ctx context.Context) error {
	categories, err := s.Load(ctx)
	if err != nil {
		return err
	}
	s.logger.Info().
		Str("path", s.path).
		Int("categories", len(categories)).
		Int("apis", len(Flatten(categories))).
		Msg("catalog loaded")
	return nil
}

// Flatten annotates every API with its enclosing category, keeping file order.
func Flatten(categories []Category) []Record {
	n := 0
	for _, c := range categories {
		n += len(c.APIs)
	}
	records := make([]Record, 0, n)
	for _, c := range categories {
		for _, api := range c.APIs {
			records = append(records, Record{
				API:          api,
				Category:     c.Name,
				CategorySlug: c.Slug,
			})
		}
	}
	return records
}

func decode(path string, data []byte) (*Document, error) {
	var doc Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&doc); err != nil {
			return nil, err
		}
		if dec.More() {
			return nil, fmt.Errorf("unexpected data after catalog document")
		}
	}
	return &doc, nil
}
