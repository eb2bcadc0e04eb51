package media

import (
	"context"
	"strings"
)

const defaultPageLimit = 20

// Query selects and pages catalog entries.
type Query struct {
	Kind         string
	Search       string
	MarkdownOnly bool
	Limit        int
	Cursor       string
}

// Store is the append-only, newest-first catalog. Both backends filter the
// full set before paginating, so a page is under-filled only when the catalog
// is exhausted. An empty next cursor means no further pages.
type Store interface {
	Add(ctx context.Context, item *Item) error
	List(ctx context.Context, q Query) ([]*Item, string, error)
}

// filterItems applies kind, markdown-only and literal substring search, in
// that order.
func filterItems(items []*Item, q Query) []*Item {
	out := make([]*Item, 0, len(items))
	needle := strings.ToLower(q.Search)
	for _, it := range items {
		if q.Kind != "" && it.Kind != q.Kind {
			continue
		}
		if q.MarkdownOnly && len(it.MarkdownFiles) == 0 {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(it.Title), needle) &&
			!strings.Contains(strings.ToLower(it.Description), needle) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// paginate slices the filtered set. The cursor is "<createdAt>|<id>" of the
// last returned item; ties on createdAt are disambiguated by id. A cursor
// that matches nothing resets to the start.
func paginate(items []*Item, limit int, cursor string) ([]*Item, string) {
	if limit <= 0 {
		limit = defaultPageLimit
	}

	index := 0
	if cursor != "" {
		if createdAt, id, ok := strings.Cut(cursor, "|"); ok {
			for i, it := range items {
				if it.CreatedAt == createdAt && it.ID == id {
					index = i + 1
					break
				}
			}
		}
	}

	end := index + limit
	if end > len(items) {
		end = len(items)
	}
	page := items[index:end]

	next := ""
	if end < len(items) && len(page) > 0 {
		last := page[len(page)-1]
		next = last.CreatedAt + "|" + last.ID
	}
	return page, next
}
