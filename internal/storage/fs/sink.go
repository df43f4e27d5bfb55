// Package fs implements the persistence sink on the local filesystem:
// one JSON document and one image file per accepted product.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dpkgyl/catalog-scraper/internal/scrape"
)

// Config captures the parameters for the filesystem sink.
type Config struct {
	// BasePath is the directory products and images are written under.
	BasePath string `mapstructure:"base_path"`
}

// Sink writes product JSON and image bytes under a base directory.
type Sink struct {
	basePath string
}

// New creates a Sink, creating the base directory if needed and verifying it
// is writable.
func New(cfg Config) (*Sink, error) {
	if strings.TrimSpace(cfg.BasePath) == "" {
		return nil, fmt.Errorf("base path is required")
	}
	info, err := os.Stat(cfg.BasePath)
	switch {
	case err != nil && os.IsNotExist(err):
		if mkErr := os.MkdirAll(cfg.BasePath, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create base directory: %w", mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("stat base directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("base path %q is not a directory", cfg.BasePath)
	}

	probe := filepath.Join(cfg.BasePath, ".writable_test")
	if err := os.WriteFile(probe, []byte("test"), 0o600); err != nil {
		return nil, fmt.Errorf("base directory is not writable: %w", err)
	}
	if err := os.Remove(probe); err != nil {
		return nil, fmt.Errorf("clean up probe file: %w", err)
	}
	return &Sink{basePath: cfg.BasePath}, nil
}

// productDocument is the on-disk JSON shape, field names inherited from the
// service's original consumers.
type productDocument struct {
	Title       string  `json:"product_title"`
	Price       float64 `json:"product_price"`
	PathToImage string  `json:"path_to_image"`
}

// SaveProduct writes <base>/<title>.json embedding the computed image path.
func (s *Sink) SaveProduct(_ context.Context, p scrape.Product) error {
	doc := productDocument{
		Title:       p.Title,
		Price:       p.Price,
		PathToImage: s.imagePath(p.Title),
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal product %q: %w", p.Title, err)
	}
	path, err := s.resolve(p.Title + ".json")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write product file: %w", err)
	}
	return nil
}

// SaveImage writes the raw bytes to <base>/<key>.jpg.
func (s *Sink) SaveImage(_ context.Context, img scrape.ImageAsset) error {
	path, err := s.resolve(img.Key + ".jpg")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, img.Data, 0o600); err != nil {
		return fmt.Errorf("write image file: %w", err)
	}
	return nil
}

func (s *Sink) imagePath(title string) string {
	return filepath.Join(s.basePath, title+".jpg")
}

// resolve joins name onto the base directory and rejects anything that would
// escape it.
func (s *Sink) resolve(name string) (string, error) {
	if strings.TrimSpace(name) == "" || name == ".json" || name == ".jpg" {
		return "", fmt.Errorf("empty file name")
	}
	full := filepath.Join(s.basePath, name)
	rel, err := filepath.Rel(filepath.Clean(s.basePath), filepath.Clean(full))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected in %q", name)
	}
	return full, nil
}
