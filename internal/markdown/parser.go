// Package markdown renders resource descriptions and reads the YAML
// frontmatter of markdown catalog entries.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/frontmatter"
)

type Parser struct {
	md goldmark.Markdown
}

// NewParser returns a parser with GFM and frontmatter support. Raw HTML
// in descriptions is escaped since uploads come from admins via a form.
func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			&frontmatter.Extender{},
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
		),
	)

	return &Parser{
		md: md,
	}
}

// Render converts markdown to HTML. A leading frontmatter block is
// dropped from the output.
func (p *Parser) Render(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	err := p.md.Convert(source, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// Document decodes the frontmatter of source into meta and returns the
// markdown body that follows it. Sources without frontmatter leave meta
// untouched and return the whole input as body.
func (p *Parser) Document(source []byte, meta any) (body []byte, err error) {
	context := parser.NewContext()
	p.md.Parser().Parse(text.NewReader(source), parser.WithContext(context))

	data := frontmatter.Get(context)
	if data == nil {
		return bytes.TrimSpace(source), nil
	}

	err = data.Decode(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frontmatter: %w", err)
	}

	return bytes.TrimSpace(source[bodyOffset(source):]), nil
}

// bodyOffset returns the index just past the closing frontmatter
// delimiter ("---" for YAML, "+++" for TOML).
func bodyOffset(source []byte) int {
	lines := bytes.SplitAfter(source, []byte("\n"))
	if len(lines) == 0 {
		return 0
	}

	delim := bytes.TrimSpace(lines[0])
	if !bytes.Equal(delim, []byte("---")) && !bytes.Equal(delim, []byte("+++")) {
		return 0
	}

	offset := len(lines[0])
	for _, line := range lines[1:] {
		offset += len(line)
		if bytes.Equal(bytes.TrimSpace(line), delim) {
			return offset
		}
	}
	return 0
}
