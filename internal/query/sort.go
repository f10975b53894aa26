package query

import (
	"sort"

	"github.com/campusmedia/gallery/internal/model"
	"golang.org/x/text/collate"
)

// Sort orders items in place by key. Every ordering is stable, so records
// with equal keys keep their collection order. Unknown keys leave the
// order untouched.
func (e *Engine) Sort(items []*model.Resource, key SortKey) {
	switch key {
	case SortNewest, SortLatest:
		sort.SliceStable(items, func(i, j int) bool {
			return createdBefore(items[j], items[i])
		})
	case SortOldest:
		sort.SliceStable(items, func(i, j int) bool {
			return createdBefore(items[i], items[j])
		})
	case SortPopular:
		counter := e.popularity()
		sort.SliceStable(items, func(i, j int) bool {
			return counter(items[i]) > counter(items[j])
		})
	case SortAZ, SortZA:
		// Collators keep scratch buffers and must not be shared across
		// goroutines, so each sort gets its own.
		col := collate.New(e.opts.Locale)
		desc := key == SortZA
		sort.SliceStable(items, func(i, j int) bool {
			c := col.CompareString(items[i].Title, items[j].Title)
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
}

// createdBefore orders by createdAt with unparseable dates as the minimum.
func createdBefore(a, b *model.Resource) bool {
	if !a.HasCreatedAt() || !b.HasCreatedAt() {
		return !a.HasCreatedAt() && b.HasCreatedAt()
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func (e *Engine) popularity() func(*model.Resource) int {
	if e.opts.Popularity == PopularByViews {
		return func(r *model.Resource) int { return r.ViewCount }
	}
	return func(r *model.Resource) int { return r.DownloadCount }
}
