package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"deals-scraper/models"
)

// JSONWriter dumps a normalized product batch to a JSON file so it can be
// replayed into the database later without touching the network.
type JSONWriter struct {
	path string
}

// NewJSONWriter prepares a writer for the given path. Intermediate
// directories are created automatically.
func NewJSONWriter(path string) (*JSONWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("json: create output dir: %w", err)
	}
	return &JSONWriter{path: path}, nil
}

// Dump writes the batch as a JSON array, replacing any previous dump.
func (w *JSONWriter) Dump(products []*models.Product) error {
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("json: marshal products: %w", err)
	}
	if err := os.WriteFile(w.path, data, 0644); err != nil {
		return fmt.Errorf("json: write %q: %w", w.path, err)
	}
	return nil
}

// Path returns the dump file location.
func (w *JSONWriter) Path() string {
	return w.path
}

// ReadProducts loads a previously dumped batch for offline replay.
func ReadProducts(path string) ([]*models.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("json: read %q: %w", path, err)
	}

	var products []*models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("json: parse %q: %w", path, err)
	}
	return products, nil
}
