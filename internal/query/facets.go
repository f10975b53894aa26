package query

import (
	"sort"

	"github.com/campusmedia/gallery/internal/model"
	"golang.org/x/text/collate"
)

// Facets lists the distinct filter values present in a collection, for
// building checkbox and dropdown options.
type Facets struct {
	Types      []string `json:"types"`
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
	Years      []int    `json:"years"`
}

// Facets collects distinct types, categories and tags in collation order,
// and display years newest first.
func (e *Engine) Facets(collection []*model.Resource) Facets {
	types := map[string]bool{}
	categories := map[string]bool{}
	tags := map[string]bool{}
	years := map[int]bool{}

	for _, r := range collection {
		if r == nil {
			continue
		}
		if r.Type != "" {
			types[r.Type] = true
		}
		for _, c := range r.Categories {
			categories[c] = true
		}
		for _, t := range r.Tags {
			tags[t] = true
		}
		if year, ok := e.DisplayYear(r); ok {
			years[year] = true
		}
	}

	col := collate.New(e.opts.Locale)
	f := Facets{
		Types:      sortedKeys(col, types),
		Categories: sortedKeys(col, categories),
		Tags:       sortedKeys(col, tags),
		Years:      make([]int, 0, len(years)),
	}
	for y := range years {
		f.Years = append(f.Years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(f.Years)))
	return f
}

func sortedKeys(col *collate.Collator, set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	col.SortStrings(keys)
	return keys
}
