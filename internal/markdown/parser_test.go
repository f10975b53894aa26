package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	p := NewParser()

	html, err := p.Render([]byte("# Campus\n\nPhotos of the **main** hall."))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<h1 id=\"campus\">Campus</h1>")
	assert.Contains(t, string(html), "<strong>main</strong>")
}

func TestRenderEscapesRawHTML(t *testing.T) {
	p := NewParser()

	html, err := p.Render([]byte("<script>alert(1)</script>"))
	require.NoError(t, err)
	assert.NotContains(t, string(html), "<script>")
}

func TestRenderDropsFrontmatter(t *testing.T) {
	p := NewParser()

	html, err := p.Render([]byte("---\ntitle: Hidden\n---\nVisible"))
	require.NoError(t, err)
	assert.NotContains(t, string(html), "Hidden")
	assert.Contains(t, string(html), "Visible")
}

func TestDocument(t *testing.T) {
	p := NewParser()
	source := []byte(`---
title: ภาพถ่ายอาคารเรียน
type: image
tags: [campus, architecture]
---

# Heading

Body text.
`)

	var meta struct {
		Title string   `yaml:"title"`
		Type  string   `yaml:"type"`
		Tags  []string `yaml:"tags"`
	}
	body, err := p.Document(source, &meta)
	require.NoError(t, err)

	assert.Equal(t, "ภาพถ่ายอาคารเรียน", meta.Title)
	assert.Equal(t, "image", meta.Type)
	assert.Equal(t, []string{"campus", "architecture"}, meta.Tags)
	assert.Equal(t, "# Heading\n\nBody text.", string(body))
}

func TestDocumentWithoutFrontmatter(t *testing.T) {
	p := NewParser()

	var meta map[string]any
	body, err := p.Document([]byte("  plain body  \n"), &meta)
	require.NoError(t, err)
	assert.Nil(t, meta)
	assert.Equal(t, "plain body", string(body))
}
