package query

import (
	"strings"
	"time"

	"github.com/campusmedia/gallery/internal/model"
	"golang.org/x/text/cases"
)

type stage func(*model.Resource) bool

const day = 24 * time.Hour

var timeframeWindows = map[Timeframe]time.Duration{
	TimeframeWeek:  7 * day,
	TimeframeMonth: 30 * day,
	TimeframeYear:  365 * day,
}

// stages returns the active predicates in pipeline order. Inactive stages
// are omitted so an empty query keeps the whole collection.
func (e *Engine) stages(q Query, now time.Time) []stage {
	candidates := []stage{
		keywordStage(q),
		typeStage(q.Types),
		categoryStage(q.Categories),
		tagStage(q.Tags),
		e.yearStage(q.Years),
		e.timeframeStage(q.Timeframe, now),
	}

	active := candidates[:0]
	for _, s := range candidates {
		if s != nil {
			active = append(active, s)
		}
	}
	return active
}

// keywordStage matches a case-folded substring of the selected field.
//
// The AND and OR combinators run the same single-field test. There is no
// defined multi-field or multi-term meaning for them yet, so the value is
// carried on the query but has no effect on matching.
func keywordStage(q Query) stage {
	keyword := strings.TrimSpace(q.Keyword)
	if keyword == "" {
		return nil
	}

	// Casers are stateful; this one is confined to a single evaluation.
	folder := cases.Fold()
	needle := folder.String(keyword)
	field := searchField(q.SearchBy)

	return func(r *model.Resource) bool {
		for _, value := range field(r) {
			if strings.Contains(folder.String(value), needle) {
				return true
			}
		}
		return false
	}
}

func searchField(by SearchField) func(*model.Resource) []string {
	switch by {
	case SearchByAuthor:
		return func(r *model.Resource) []string { return []string{r.UploadedBy} }
	case SearchByCategory:
		return func(r *model.Resource) []string { return r.Categories }
	case SearchByDescription:
		return func(r *model.Resource) []string { return []string{r.Description} }
	default:
		return func(r *model.Resource) []string { return []string{r.Title} }
	}
}

func typeStage(types []string) stage {
	if selectsAll(types) {
		return nil
	}
	selected := toSet(types)
	return func(r *model.Resource) bool {
		return selected[r.Type]
	}
}

func categoryStage(categories []string) stage {
	if selectsAll(categories) {
		return nil
	}
	selected := toSet(categories)
	return func(r *model.Resource) bool {
		return anyIn(r.Categories, selected)
	}
}

// tagStage keeps records sharing at least one tag with the selection.
func tagStage(tags []string) stage {
	if len(tags) == 0 {
		return nil
	}
	selected := toSet(tags)
	return func(r *model.Resource) bool {
		return anyIn(r.Tags, selected)
	}
}

func (e *Engine) yearStage(years []int) stage {
	if len(years) == 0 {
		return nil
	}
	selected := make(map[int]bool, len(years))
	for _, y := range years {
		selected[y] = true
	}
	return func(r *model.Resource) bool {
		year, ok := e.DisplayYear(r)
		return ok && selected[year]
	}
}

// timeframeStage keeps records whose age is within the bucket, boundary
// inclusive. "today" means the same calendar day as now in the engine
// location. Future-dated records have a negative age and pass the
// week/month/year buckets.
func (e *Engine) timeframeStage(tf Timeframe, now time.Time) stage {
	if tf == TimeframeToday {
		loc := e.opts.Location
		ny, nm, nd := now.In(loc).Date()
		return func(r *model.Resource) bool {
			if !r.HasCreatedAt() {
				return false
			}
			y, m, d := r.CreatedAt.In(loc).Date()
			return y == ny && m == nm && d == nd
		}
	}

	window, ok := timeframeWindows[tf]
	if !ok {
		return nil
	}
	return func(r *model.Resource) bool {
		return r.HasCreatedAt() && now.Sub(r.CreatedAt) <= window
	}
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func anyIn(values []string, set map[string]bool) bool {
	for _, v := range values {
		if set[v] {
			return true
		}
	}
	return false
}
