package model

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	ResourceTypeImage   = "image"
	ResourceTypeVideo   = "video"
	ResourceTypeGraphic = "graphic"
)

// Resource is one catalog entry. Type and Categories are opaque strings:
// fixtures mix spellings ("image", "Image", "photo") and nothing in the
// gallery treats them as a closed enum.
type Resource struct {
	ID            string    `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	Description   string    `db:"description" json:"description,omitempty"`
	Type          string    `db:"type" json:"type"`
	Categories    []string  `db:"-" json:"categories"`
	Tags          []string  `db:"-" json:"tags"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
	ViewCount     int       `db:"view_count" json:"viewCount"`
	DownloadCount int       `db:"download_count" json:"downloadCount"`
	ThumbnailURL  string    `db:"thumbnail_url" json:"thumbnailUrl,omitempty"`
	FileURL       string    `db:"file_url" json:"fileUrl,omitempty"`
	UploadedBy    string    `db:"uploaded_by" json:"uploadedBy,omitempty"`
	StoragePath   string    `db:"storage_path" json:"-"`
}

// HasCreatedAt reports whether the creation timestamp parsed. Records with
// an unparseable createdAt keep the zero time and sort as the minimum.
func (r *Resource) HasCreatedAt() bool {
	return !r.CreatedAt.IsZero()
}

// HasFile reports whether the resource bytes live in our own storage
// rather than behind an external URL.
func (r *Resource) HasFile() bool {
	return r.StoragePath != ""
}

// HasCategory reports whether any of the resource categories equals c.
func (r *Resource) HasCategory(c string) bool {
	for _, category := range r.Categories {
		if category == c {
			return true
		}
	}
	return false
}

// timeLayouts lists the createdAt/updatedAt spellings seen in fixtures.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses a fixture timestamp. It returns the zero time for
// empty or malformed input instead of failing the whole record.
func ParseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t
		}
	}
	return time.Time{}
}

// resourceJSON is the wire shape accepted from fixtures and admin imports.
// Category may arrive as a single string or as an array; both become
// Categories.
type resourceJSON struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Type          string          `json:"type"`
	Category      json.RawMessage `json:"category"`
	Categories    json.RawMessage `json:"categories"`
	Tags          []string        `json:"tags"`
	CreatedAt     string          `json:"createdAt"`
	UpdatedAt     string          `json:"updatedAt"`
	ViewCount     int             `json:"viewCount"`
	DownloadCount int             `json:"downloadCount"`
	ThumbnailURL  string          `json:"thumbnailUrl"`
	FileURL       string          `json:"fileUrl"`
	UploadedBy    string          `json:"uploadedBy"`
}

func (r *Resource) UnmarshalJSON(data []byte) error {
	var raw resourceJSON
	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	categories := decodeStrings(raw.Categories)
	if len(categories) == 0 {
		categories = decodeStrings(raw.Category)
	}
	if categories == nil {
		categories = []string{}
	}

	*r = Resource{
		ID:            raw.ID,
		Title:         raw.Title,
		Description:   raw.Description,
		Type:          raw.Type,
		Categories:    categories,
		Tags:          NormalizeStrings(raw.Tags),
		CreatedAt:     ParseTime(raw.CreatedAt),
		UpdatedAt:     ParseTime(raw.UpdatedAt),
		ViewCount:     max(raw.ViewCount, 0),
		DownloadCount: max(raw.DownloadCount, 0),
		ThumbnailURL:  raw.ThumbnailURL,
		FileURL:       raw.FileURL,
		UploadedBy:    raw.UploadedBy,
	}
	r.ClampUpdatedAt()
	return nil
}

// ClampUpdatedAt keeps createdAt <= updatedAt.
func (r *Resource) ClampUpdatedAt() {
	if r.HasCreatedAt() && r.UpdatedAt.Before(r.CreatedAt) {
		r.UpdatedAt = r.CreatedAt
	}
}

// decodeStrings accepts a JSON string or array of strings. Anything else
// decodes to nil.
func decodeStrings(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var single string
	if json.Unmarshal(raw, &single) == nil {
		return NormalizeStrings([]string{single})
	}

	var many []string
	if json.Unmarshal(raw, &many) == nil {
		return NormalizeStrings(many)
	}

	return nil
}

// NormalizeStrings trims values, drops empties and duplicates, and keeps
// first-seen order (display order matters for tags).
func NormalizeStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
