package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/campusmedia/gallery/internal/markdown"
	"github.com/campusmedia/gallery/internal/model"
)

// frontmatter is the metadata block at the top of a markdown entry.
type frontmatter struct {
	ID            string   `yaml:"id"`
	Title         string   `yaml:"title"`
	Type          string   `yaml:"type"`
	Category      any      `yaml:"category"`
	Categories    []string `yaml:"categories"`
	Tags          []string `yaml:"tags"`
	CreatedAt     string   `yaml:"created_at"`
	UpdatedAt     string   `yaml:"updated_at"`
	ViewCount     int      `yaml:"view_count"`
	DownloadCount int      `yaml:"download_count"`
	ThumbnailURL  string   `yaml:"thumbnail_url"`
	FileURL       string   `yaml:"file_url"`
	UploadedBy    string   `yaml:"uploaded_by"`
}

// LoadMarkdownDir reads every .md file in dir as one resource. The file
// name (without extension) is the id unless frontmatter sets one, and the
// markdown body becomes the description. Files are read in name order.
func LoadMarkdownDir(dir string, parser *markdown.Parser) ([]*model.Resource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog directory: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".md") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	records := make([]*model.Resource, 0, len(names))
	for _, name := range names {
		source, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		r, err := parseEntry(parser, strings.TrimSuffix(name, filepath.Ext(name)), source)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		records = append(records, r)
	}

	return dedupe(records, dir), nil
}

func parseEntry(parser *markdown.Parser, defaultID string, source []byte) (*model.Resource, error) {
	var meta frontmatter
	body, err := parser.Document(source, &meta)
	if err != nil {
		return nil, err
	}

	id := strings.TrimSpace(meta.ID)
	if id == "" {
		id = defaultID
	}

	categories := model.NormalizeStrings(meta.Categories)
	if len(categories) == 0 {
		categories = model.NormalizeStrings(categoryValues(meta.Category))
	}

	r := &model.Resource{
		ID:            id,
		Title:         strings.TrimSpace(meta.Title),
		Description:   string(body),
		Type:          strings.TrimSpace(meta.Type),
		Categories:    categories,
		Tags:          model.NormalizeStrings(meta.Tags),
		CreatedAt:     model.ParseTime(meta.CreatedAt),
		UpdatedAt:     model.ParseTime(meta.UpdatedAt),
		ViewCount:     max(meta.ViewCount, 0),
		DownloadCount: max(meta.DownloadCount, 0),
		ThumbnailURL:  meta.ThumbnailURL,
		FileURL:       meta.FileURL,
		UploadedBy:    meta.UploadedBy,
	}
	r.ClampUpdatedAt()
	return r, nil
}

// categoryValues accepts a scalar or a list, as YAML authors write both.
func categoryValues(v any) []string {
	switch v := v.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
