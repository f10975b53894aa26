// Package catalog loads resource collections from JSON fixtures and
// markdown directories.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/campusmedia/gallery/internal/model"
)

//go:embed fixtures/resources.json
var defaultFixture []byte

// DefaultFixture returns the demo collection shipped with the binary.
func DefaultFixture() ([]*model.Resource, error) {
	return LoadJSON(bytes.NewReader(defaultFixture))
}

// LoadJSON reads a JSON array of resources. Records without an id and
// repeated ids are skipped with a warning; the first occurrence wins.
func LoadJSON(r io.Reader) ([]*model.Resource, error) {
	var records []*model.Resource
	err := json.NewDecoder(r).Decode(&records)
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return dedupe(records, "json"), nil
}

func dedupe(records []*model.Resource, source string) []*model.Resource {
	out := make([]*model.Resource, 0, len(records))
	seen := make(map[string]bool, len(records))

	for i, r := range records {
		if r == nil {
			continue
		}
		r.ID = strings.TrimSpace(r.ID)
		if r.ID == "" {
			slog.Warn("skipping catalog record without id", "source", source, "index", i)
			continue
		}
		if seen[r.ID] {
			slog.Warn("skipping duplicate catalog record", "source", source, "resource_id", r.ID)
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}
