// Package store reads tenant category lists from a YAML file.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"fjacquet/statement-import/internal/logging"
	"fjacquet/statement-import/internal/models"
)

// categoriesDocument is the on-disk layout:
//
//	tenants:
//	  acme:
//	    - id: cat-food
//	      name: Alimentação
//	      type: expense
//	      active: true
type categoriesDocument struct {
	Tenants map[string][]models.Category `yaml:"tenants"`
}

// CategoryStore loads categories from CategoriesFile on every call, so edits
// to the file are picked up by the next batch.
type CategoryStore struct {
	CategoriesFile string
	logger         logging.Logger
}

// NewCategoryStore creates a store over categoriesFile.
func NewCategoryStore(categoriesFile string, logger logging.Logger) *CategoryStore {
	return &CategoryStore{
		CategoriesFile: categoriesFile,
		logger:         logging.OrDefault(logger),
	}
}

// FindConfigFile looks for filename as given, then under ./config and
// ~/.config/statement-import.
func (s *CategoryStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "statement-import", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// ListAll returns every category of tenant, active or not, in file order.
// A missing file yields an empty list.
func (s *CategoryStore) ListAll(ctx context.Context, tenantID string) ([]models.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	categories := doc.Tenants[tenantID]
	out := make([]models.Category, len(categories))
	for i, c := range categories {
		c.TenantID = tenantID
		out[i] = c
	}
	return out, nil
}

// ListActive returns tenant's active categories in file order.
func (s *CategoryStore) ListActive(ctx context.Context, tenantID string) ([]models.Category, error) {
	all, err := s.ListAll(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	active := models.ActiveOnly(all)
	s.logger.Debug("Loaded categories",
		logging.F(logging.FieldTenant, tenantID),
		logging.F(logging.FieldCount, len(active)))
	return active, nil
}

func (s *CategoryStore) load() (*categoriesDocument, error) {
	filename := s.CategoriesFile
	if filename == "" {
		filename = "categories.yaml"
	}

	path, err := s.FindConfigFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Categories file not found", logging.F(logging.FieldFile, filename))
			return &categoriesDocument{}, nil
		}
		return nil, fmt.Errorf("error resolving categories file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading categories file: %w", err)
	}

	var doc categoriesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing categories file %s: %w", path, err)
	}
	for tenant, categories := range doc.Tenants {
		for i, c := range categories {
			if c.ID == "" || c.Name == "" {
				return nil, fmt.Errorf("categories file %s: tenant %s entry %d needs id and name", path, tenant, i)
			}
		}
	}
	return &doc, nil
}

// StaticCategories serves a fixed list per tenant.
type StaticCategories struct {
	Categories map[string][]models.Category
	Err        error
}

// ListActive implements the category lister used by the orchestrator.
func (s *StaticCategories) ListActive(ctx context.Context, tenantID string) ([]models.Category, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return models.ActiveOnly(s.Categories[tenantID]), nil
}
