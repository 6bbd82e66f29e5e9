package provider

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"lead-insights/internal/leads"
	"lead-insights/internal/store"
)

// FileProvider reads a JSONL (or JSON array) lead export from disk.
type FileProvider struct {
	path string
}

func NewFileProvider(cfg FileConfig) (*FileProvider, error) {
	if cfg.Path == "" {
		return nil, errors.New("file source requires LEADS_FILE")
	}
	return &FileProvider{path: cfg.Path}, nil
}

// Name is the file's base name without extension.
func (p *FileProvider) Name() string {
	base := filepath.Base(p.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (p *FileProvider) Fetch(ctx context.Context) ([]leads.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ls, err := store.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read leads from %s: %w", p.path, err)
	}
	if ls == nil {
		ls = []leads.Lead{}
	}
	return ls, nil
}
