package query

import (
	"time"

	"github.com/campusmedia/gallery/internal/model"
	"golang.org/x/text/language"
)

const (
	DefaultPageSize = 12

	// BuddhistEraOffset converts a Gregorian year to the Thai display year.
	BuddhistEraOffset = 543
)

// Popularity selects the counter that defines the "popular" sort.
type Popularity string

const (
	PopularByDownloads Popularity = "downloads"
	PopularByViews     Popularity = "views"
)

type Options struct {
	PageSize   int
	YearOffset int
	Popularity Popularity
	// Locale drives title collation for the az/za sorts.
	Locale language.Tag
	// Location defines calendar days and years for the year and today filters.
	Location *time.Location
}

// Result is one page of an evaluated query.
type Result struct {
	Items      []*model.Resource `json:"items"`
	TotalCount int               `json:"totalCount"`
	TotalPages int               `json:"totalPages"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
}

// Engine evaluates queries against an in-memory collection. It holds only
// immutable options and is safe for concurrent use.
type Engine struct {
	opts Options
}

func NewEngine(opts Options) *Engine {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Popularity == "" {
		opts.Popularity = PopularByDownloads
	}
	if opts.Locale == language.Und {
		opts.Locale = language.Thai
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Engine{opts: opts}
}

func (e *Engine) Options() Options {
	return e.opts
}

// Evaluate filters, sorts and paginates collection. The input slice is
// never reordered; the returned items share record pointers with it.
func (e *Engine) Evaluate(collection []*model.Resource, q Query, now time.Time) Result {
	matched := e.Filter(collection, q, now)
	e.Sort(matched, q.Sort)
	return e.paginate(matched, q.Page)
}

// Filter runs the filter stages in pipeline order and returns the records
// that pass every active stage, in collection order.
func (e *Engine) Filter(collection []*model.Resource, q Query, now time.Time) []*model.Resource {
	stages := e.stages(q, now)

	out := make([]*model.Resource, 0, len(collection))
	for _, r := range collection {
		if r == nil {
			continue
		}
		if passes(r, stages) {
			out = append(out, r)
		}
	}
	return out
}

func passes(r *model.Resource, stages []stage) bool {
	for _, keep := range stages {
		if !keep(r) {
			return false
		}
	}
	return true
}

func (e *Engine) paginate(items []*model.Resource, page int) Result {
	size := e.opts.PageSize
	total := len(items)
	if page < 1 {
		page = 1
	}

	result := Result{
		Items:      []*model.Resource{},
		TotalCount: total,
		TotalPages: (total + size - 1) / size,
		Page:       page,
		PageSize:   size,
	}

	start := (page - 1) * size
	if start >= total {
		return result
	}
	end := min(start+size, total)
	result.Items = items[start:end]
	return result
}

// DisplayYear is the calendar year of createdAt shifted by the configured
// regional offset. The second result is false for unparseable dates.
func (e *Engine) DisplayYear(r *model.Resource) (int, bool) {
	if !r.HasCreatedAt() {
		return 0, false
	}
	return r.CreatedAt.In(e.opts.Location).Year() + e.opts.YearOffset, true
}
