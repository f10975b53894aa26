// Package query implements the gallery search pipeline: keyword, type,
// category, tag, year and timeframe filters, followed by a stable sort and
// pagination. Evaluation is a pure function of the collection, the query
// and the supplied clock reading.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

// All is the sentinel selection that disables the type and category filters.
const All = "all"

type SearchField string

const (
	SearchByTitle       SearchField = "title"
	SearchByAuthor      SearchField = "author"
	SearchByCategory    SearchField = "category"
	SearchByDescription SearchField = "description"
)

type Combinator string

const (
	CombinatorAnd Combinator = "AND"
	CombinatorOr  Combinator = "OR"
)

type Timeframe string

const (
	TimeframeAny   Timeframe = ""
	TimeframeToday Timeframe = "today"
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
	TimeframeYear  Timeframe = "year"
)

type SortKey string

const (
	SortNewest  SortKey = "newest"
	SortLatest  SortKey = "latest"
	SortOldest  SortKey = "oldest"
	SortPopular SortKey = "popular"
	SortAZ      SortKey = "az"
	SortZA      SortKey = "za"
)

// Query describes one search request. Empty selections disable their
// stage; Page is 1-based.
type Query struct {
	Keyword    string      `json:"keyword,omitempty"`
	SearchBy   SearchField `json:"searchBy,omitempty"`
	Combinator Combinator  `json:"combinator,omitempty"`
	Types      []string    `json:"types,omitempty"`
	Categories []string    `json:"categories,omitempty"`
	Tags       []string    `json:"tags,omitempty"`
	Years      []int       `json:"years,omitempty"`
	Timeframe  Timeframe   `json:"timeframe,omitempty"`
	Sort       SortKey     `json:"sort,omitempty"`
	Page       int         `json:"page"`
}

// FromValues builds a Query from URL parameters. List parameters may be
// repeated (?tag=AI&tag=IoT) or comma separated (?tag=AI,IoT). Malformed
// numbers are ignored rather than rejected.
func FromValues(values url.Values) Query {
	q := Query{
		Keyword:    values.Get("q"),
		SearchBy:   SearchField(strings.ToLower(strings.TrimSpace(values.Get("searchBy")))),
		Combinator: Combinator(strings.ToUpper(strings.TrimSpace(values.Get("combinator")))),
		Types:      listParam(values, "type"),
		Categories: listParam(values, "category"),
		Tags:       listParam(values, "tag"),
		Timeframe:  Timeframe(strings.ToLower(strings.TrimSpace(values.Get("timeframe")))),
		Sort:       SortKey(strings.ToLower(strings.TrimSpace(values.Get("sort")))),
		Page:       1,
	}

	for _, raw := range listParam(values, "year") {
		year, err := strconv.Atoi(raw)
		if err == nil {
			q.Years = append(q.Years, year)
		}
	}

	page, err := strconv.Atoi(values.Get("page"))
	if err == nil && page > 0 {
		q.Page = page
	}

	return q
}

func listParam(values url.Values, key string) []string {
	var out []string
	for _, raw := range values[key] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// selectsAll reports whether a type/category selection is inactive.
func selectsAll(selection []string) bool {
	if len(selection) == 0 {
		return true
	}
	for _, s := range selection {
		if strings.EqualFold(s, All) {
			return true
		}
	}
	return false
}
