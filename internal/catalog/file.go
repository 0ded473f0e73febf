package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/temcen/storerank/pkg/models"
)

type catalogDocument struct {
	Products []models.Item `json:"products" yaml:"products"`
}

// FileSource serves a static catalog loaded from a YAML or JSON file. The snapshot is
// validated against the catalog schema and held in memory until Reload.
type FileSource struct {
	path   string
	schema *gojsonschema.Schema
	logger *logrus.Logger

	mu    sync.RWMutex
	items []models.Item
}

func NewFileSource(path string, logger *logrus.Logger) (*FileSource, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(catalogSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile catalog schema: %w", err)
	}

	s := &FileSource{
		path:   path,
		schema: schema,
		logger: logger,
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *FileSource) Items(ctx context.Context) ([]models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.Item, len(s.items))
	copy(items, s.items)
	return items, nil
}

// Reload re-reads the file. On failure the previous snapshot stays in place.
func (s *FileSource) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read catalog %s: %w", s.path, err)
	}

	items, err := s.parse(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"path":  s.path,
		"items": len(items),
	}).Info("Catalog loaded")

	return nil
}

func (s *FileSource) parse(data []byte) ([]models.Item, error) {
	var (
		doc    catalogDocument
		loader gojsonschema.JSONLoader
	)

	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		var raw interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
		loader = gojsonschema.NewGoLoader(raw)
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
	case ".json":
		loader = gojsonschema.NewBytesLoader(data)
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported catalog format %q", ErrInvalidCatalog, filepath.Ext(s.path))
	}

	result, err := s.schema.Validate(loader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(problems, "; "))
	}

	for i := range doc.Products {
		normalizeItem(&doc.Products[i])
	}
	if err := ensureUnique(doc.Products); err != nil {
		return nil, err
	}

	return doc.Products, nil
}

// normalizeItem trims and NFC-normalizes the text attributes the vectorizer matches on.
func normalizeItem(item *models.Item) {
	item.ID = strings.TrimSpace(item.ID)
	item.Name = normalizeText(item.Name)
	item.Category = normalizeText(item.Category)
	item.Brand = normalizeText(item.Brand)
	for i, tag := range item.Tags {
		item.Tags[i] = normalizeText(tag)
	}
}

func normalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
