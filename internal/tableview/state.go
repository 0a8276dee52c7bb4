package tableview

type SortOrder int

const (
	SortNone SortOrder = iota
	SortAsc
	SortDesc
)

// State is the serializable view-state of a table: how the currently loaded
// rows are sorted, filtered and paginated. All transitions are pure: each
// returns a new State and never mutates the receiver.
type State struct {
	SortColumn    string            `json:"sort_column,omitempty"`
	SortOrder     SortOrder         `json:"sort_order,omitempty"`
	GlobalFilter  string            `json:"global_filter,omitempty"`
	ColumnFilters map[string]string `json:"column_filters,omitempty"`
	PageIndex     int               `json:"page_index"`
	PageSize      int               `json:"page_size"`
}

func NewState(pageSize int) State {
	return State{PageSize: pageSize}
}

// ToggleSort cycles the named column through none → asc → desc → none.
// Toggling a different column drops the previous sort and starts at asc,
// so at most one column is ever sorted.
func (s State) ToggleSort(column string) State {
	next := s
	if s.SortColumn != column {
		next.SortColumn = column
		next.SortOrder = SortAsc
		return next
	}

	switch s.SortOrder {
	case SortNone:
		next.SortOrder = SortAsc
	case SortAsc:
		next.SortOrder = SortDesc
	default:
		next.SortColumn = ""
		next.SortOrder = SortNone
	}
	return next
}

// WithGlobalFilter also rewinds to the first page: a changed filter can
// shrink the row set below the current page offset.
func (s State) WithGlobalFilter(value string) State {
	next := s
	next.GlobalFilter = value
	next.PageIndex = 0
	return next
}

func (s State) WithColumnFilter(column, value string) State {
	next := s
	next.ColumnFilters = make(map[string]string, len(s.ColumnFilters)+1)
	for k, v := range s.ColumnFilters {
		next.ColumnFilters[k] = v
	}
	if value == "" {
		delete(next.ColumnFilters, column)
	} else {
		next.ColumnFilters[column] = value
	}
	next.PageIndex = 0
	return next
}

// SortDirection reports "asc", "desc" or "" for the named column, for
// header rendering.
func (s State) SortDirection(column string) string {
	if s.SortColumn != column {
		return ""
	}
	switch s.SortOrder {
	case SortAsc:
		return "asc"
	case SortDesc:
		return "desc"
	}
	return ""
}

func (s State) WithPageIndex(index int) State {
	next := s
	if index < 0 {
		index = 0
	}
	next.PageIndex = index
	return next
}
