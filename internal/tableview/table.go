// Package tableview is a small tabular-data engine: column configuration,
// an explicit serializable view-state, and a pure Compute step that turns
// (rows, state) into one displayable page. It owns no rendering and no IO.
package tableview

import (
	"sort"
	"strings"
)

type Column[T any] struct {
	ID         string
	Header     string
	Sortable   bool
	Filterable bool
	// Value produces the display/filter text for a row.
	Value func(T) string
	// SortKey overrides Value for ordering, e.g. an RFC 3339 timestamp
	// that sorts correctly as a string. Nil falls back to Value.
	SortKey func(T) string
}

type Table[T any] struct {
	columns []Column[T]
}

func New[T any](columns []Column[T]) *Table[T] {
	return &Table[T]{columns: columns}
}

func (t *Table[T]) Columns() []Column[T] {
	return t.columns
}

func (t *Table[T]) Column(id string) (Column[T], bool) {
	for _, c := range t.columns {
		if c.ID == id {
			return c, true
		}
	}
	var zero Column[T]
	return zero, false
}

// Page is the computed result for the current state: the visible rows plus
// everything pagination controls need.
type Page[T any] struct {
	Rows      []T
	TotalRows int
	PageIndex int
	PageCount int
	CanPrev   bool
	CanNext   bool
}

// Compute applies filter → sort → paginate over the given rows. The input
// slice is never mutated.
func (t *Table[T]) Compute(rows []T, s State) Page[T] {
	filtered := t.filter(rows, s)
	t.sortRows(filtered, s)

	pageSize := s.PageSize
	if pageSize <= 0 {
		pageSize = len(filtered)
		if pageSize == 0 {
			pageSize = 1
		}
	}

	total := len(filtered)
	pageCount := (total + pageSize - 1) / pageSize

	pageIndex := s.PageIndex
	if pageCount > 0 && pageIndex >= pageCount {
		pageIndex = pageCount - 1
	}
	if pageIndex < 0 {
		pageIndex = 0
	}

	start := pageIndex * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page[T]{
		Rows:      filtered[start:end],
		TotalRows: total,
		PageIndex: pageIndex,
		PageCount: pageCount,
		CanPrev:   pageIndex > 0,
		CanNext:   pageIndex < pageCount-1,
	}
}

func (t *Table[T]) filter(rows []T, s State) []T {
	needle := strings.ToLower(strings.TrimSpace(s.GlobalFilter))
	out := make([]T, 0, len(rows))

	for _, row := range rows {
		if !t.matchesColumnFilters(row, s.ColumnFilters) {
			continue
		}
		if needle != "" && !t.matchesGlobal(row, needle) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func (t *Table[T]) matchesGlobal(row T, needle string) bool {
	for _, c := range t.columns {
		if !c.Filterable || c.Value == nil {
			continue
		}
		if strings.Contains(strings.ToLower(c.Value(row)), needle) {
			return true
		}
	}
	return false
}

func (t *Table[T]) matchesColumnFilters(row T, filters map[string]string) bool {
	for id, want := range filters {
		c, ok := t.Column(id)
		if !ok || c.Value == nil {
			continue
		}
		if c.Value(row) != want {
			return false
		}
	}
	return true
}

func (t *Table[T]) sortRows(rows []T, s State) {
	if s.SortOrder == SortNone || s.SortColumn == "" {
		return
	}
	c, ok := t.Column(s.SortColumn)
	if !ok || !c.Sortable {
		return
	}

	key := c.SortKey
	if key == nil {
		key = c.Value
	}
	if key == nil {
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := key(rows[i]), key(rows[j])
		if s.SortOrder == SortDesc {
			return a > b
		}
		return a < b
	})
}
