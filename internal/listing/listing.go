// Package listing implements search, enum filtering and fixed-size pagination
// over an in-memory registry slice. Items keep registry insertion order.
package listing

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DefaultPageSize is the page size of every list view.
const DefaultPageSize = 10

// ErrUnknownFilter is returned when a query names a filter that is not configured.
var ErrUnknownFilter = errors.New("unknown filter")

// Spec describes how one entity kind is searched and filtered.
type Spec[T any] struct {
	// SearchFields are matched case-insensitively as substrings; a term
	// matches an item if it matches any field.
	SearchFields []func(T) string
	// Filters maps a filter name to the enum field it compares against.
	Filters map[string]func(T) string
}

// FilterNames returns the configured filter names in sorted order.
func (s Spec[T]) FilterNames() []string {
	names := make([]string, 0, len(s.Filters))
	for name := range s.Filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Query is a snapshot of a list view's inputs. Page is 1-based.
type Query struct {
	Term    string            `json:"term"`
	Filters map[string]string `json:"filters"`
	Page    int               `json:"page"`
}

// Page is the visible slice of a filtered registry.
type Page[T any] struct {
	Items     []T  `json:"items"`
	Total     int  `json:"total"`
	Page      int  `json:"page"`
	PageSize  int  `json:"pageSize"`
	PageCount int  `json:"pageCount"`
	Empty     bool `json:"empty"`
}

// Validate checks that every named filter is configured.
func (s Spec[T]) Validate(filters map[string]string) error {
	for name := range filters {
		if _, ok := s.Filters[name]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownFilter, name)
		}
	}
	return nil
}

// Match reports whether item satisfies the search term and every active filter.
func (s Spec[T]) Match(item T, term string, filters map[string]string) bool {
	if term != "" {
		needle := strings.ToLower(term)
		found := false
		for _, field := range s.SearchFields {
			if strings.Contains(strings.ToLower(field(item)), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for name, want := range filters {
		if want == "" {
			continue
		}
		get, ok := s.Filters[name]
		if !ok || get(item) != want {
			return false
		}
	}
	return true
}

// Filter returns the items matching term and filters, in input order.
func Filter[T any](items []T, spec Spec[T], term string, filters map[string]string) ([]T, error) {
	if err := spec.Validate(filters); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if spec.Match(item, term, filters) {
			out = append(out, item)
		}
	}
	return out, nil
}

// PageCount is ceil(total/pageSize), never less than 1.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	n := (total + pageSize - 1) / pageSize
	if n < 1 {
		return 1
	}
	return n
}

// ClampPage bounds page to [1, PageCount(total, pageSize)].
func ClampPage(page, total, pageSize int) int {
	if page < 1 {
		return 1
	}
	if last := PageCount(total, pageSize); page > last {
		return last
	}
	return page
}

// Paginate slices items for the requested page after clamping it.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(items)
	page = ClampPage(page, total, pageSize)

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page[T]{
		Items:     items[start:end:end],
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
		PageCount: PageCount(total, pageSize),
		Empty:     total == 0,
	}
}

// Apply filters items with q and returns the requested page.
func Apply[T any](items []T, spec Spec[T], q Query, pageSize int) (Page[T], error) {
	matched, err := Filter(items, spec, q.Term, q.Filters)
	if err != nil {
		return Page[T]{}, err
	}
	return Paginate(matched, q.Page, pageSize), nil
}
