package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/campusmedia/gallery/internal/markdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFixture(t *testing.T) {
	records, err := DefaultFixture()
	require.NoError(t, err)
	require.Len(t, records, 12)

	ids := map[string]bool{}
	for _, r := range records {
		assert.NotEmpty(t, r.ID)
		assert.False(t, ids[r.ID], "duplicate id %s", r.ID)
		ids[r.ID] = true
		assert.NotNil(t, r.Categories)
		assert.NotNil(t, r.Tags)
		if r.HasCreatedAt() {
			assert.False(t, r.UpdatedAt.Before(r.CreatedAt), r.ID)
		}
	}

	assert.Equal(t, []string{"กราฟิก", "แผนที่"}, records[1].Categories)
	assert.Equal(t, []string{"ภาพถ่าย"}, records[0].Categories)
	assert.False(t, records[10].HasCreatedAt())
}

func TestLoadJSONSkipsBadRecords(t *testing.T) {
	input := `[
		{"id": "a", "title": "First"},
		{"title": "No id"},
		{"id": "a", "title": "Duplicate"},
		null,
		{"id": " b ", "title": "Second", "viewCount": -4}
	]`

	records, err := LoadJSON(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "First", records[0].Title)
	assert.Equal(t, "b", records[1].ID)
	assert.Equal(t, 0, records[1].ViewCount)
}

func TestLoadJSONInvalid(t *testing.T) {
	_, err := LoadJSON(strings.NewReader(`{"id": "not an array"}`))
	assert.Error(t, err)
}

func TestLoadMarkdownDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	write("b-poster.md", `---
title: โปสเตอร์งานวิจัย
type: graphic
category: กราฟิก
tags: [research, poster]
created_at: 2024-05-01
uploaded_by: Research Office
---
Poster for the **annual** research fair.
`)
	write("a-lab.md", `---
id: lab-42
title: Network Lab
type: image
category: [ภาพถ่าย, งานวิจัย]
created_at: "2024-01-02T03:04:05Z"
updated_at: "2023-01-01T00:00:00Z"
view_count: 9
---
`)
	write("notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.md"), 0755))

	records, err := LoadMarkdownDir(dir, markdown.NewParser())
	require.NoError(t, err)
	require.Len(t, records, 2)

	lab := records[0]
	assert.Equal(t, "lab-42", lab.ID)
	assert.Equal(t, []string{"ภาพถ่าย", "งานวิจัย"}, lab.Categories)
	assert.Equal(t, 9, lab.ViewCount)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), lab.CreatedAt)
	assert.Equal(t, lab.CreatedAt, lab.UpdatedAt)
	assert.Empty(t, lab.Description)

	poster := records[1]
	assert.Equal(t, "b-poster", poster.ID)
	assert.Equal(t, "โปสเตอร์งานวิจัย", poster.Title)
	assert.Equal(t, []string{"กราฟิก"}, poster.Categories)
	assert.Equal(t, []string{"research", "poster"}, poster.Tags)
	assert.Equal(t, 2024, poster.CreatedAt.Year())
	assert.Equal(t, "Research Office", poster.UploadedBy)
	assert.Equal(t, "Poster for the **annual** research fair.", poster.Description)
}

func TestLoadMarkdownDirMissing(t *testing.T) {
	_, err := LoadMarkdownDir(filepath.Join(t.TempDir(), "nope"), markdown.NewParser())
	assert.Error(t, err)
}
