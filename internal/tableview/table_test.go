package tableview_test

import (
	"fmt"
	"testing"

	"project-manager/webapp/internal/tableview"
)

type row struct {
	Title  string
	Status string
	Budget string
}

func testTable() *tableview.Table[row] {
	return tableview.New([]tableview.Column[row]{
		{ID: "title", Header: "Title", Sortable: true, Filterable: true, Value: func(r row) string { return r.Title }},
		{ID: "status", Header: "Status", Filterable: true, Value: func(r row) string { return r.Status }},
		{ID: "budget", Header: "Budget", Sortable: true, Value: func(r row) string { return r.Budget }},
	})
}

func testRows() []row {
	return []row{
		{Title: "Zeta", Status: "Active", Budget: "300"},
		{Title: "Alpha", Status: "On Hold", Budget: "100"},
		{Title: "Mango", Status: "Active", Budget: "200"},
	}
}

func TestToggleSortCycle(t *testing.T) {
	s := tableview.NewState(6)

	s = s.ToggleSort("title")
	if s.SortColumn != "title" || s.SortOrder != tableview.SortAsc {
		t.Errorf("Expected title asc, got %s %d", s.SortColumn, s.SortOrder)
	}

	s = s.ToggleSort("title")
	if s.SortOrder != tableview.SortDesc {
		t.Errorf("Expected desc, got %d", s.SortOrder)
	}

	s = s.ToggleSort("title")
	if s.SortColumn != "" || s.SortOrder != tableview.SortNone {
		t.Errorf("Expected no sort after full cycle, got %s %d", s.SortColumn, s.SortOrder)
	}
}

func TestToggleSortSingleColumn(t *testing.T) {
	s := tableview.NewState(6)

	s = s.ToggleSort("title")
	s = s.ToggleSort("budget")

	if s.SortColumn != "budget" || s.SortOrder != tableview.SortAsc {
		t.Errorf("Expected switching columns to start at asc on budget, got %s %d", s.SortColumn, s.SortOrder)
	}
}

func TestComputeSorting(t *testing.T) {
	table := testTable()
	rows := testRows()

	s := tableview.NewState(6).ToggleSort("title")
	page := table.Compute(rows, s)

	if page.Rows[0].Title != "Alpha" || page.Rows[2].Title != "Zeta" {
		t.Errorf("Expected ascending title order, got %+v", page.Rows)
	}

	s = s.ToggleSort("title")
	page = table.Compute(rows, s)
	if page.Rows[0].Title != "Zeta" {
		t.Errorf("Expected descending title order, got %+v", page.Rows)
	}

	// Input must keep its original order.
	if rows[0].Title != "Zeta" {
		t.Errorf("Compute mutated its input: %+v", rows)
	}
}

func TestComputeNoSortKeepsOrder(t *testing.T) {
	table := testTable()
	page := table.Compute(testRows(), tableview.NewState(6))

	if page.Rows[0].Title != "Zeta" || page.Rows[1].Title != "Alpha" {
		t.Errorf("Expected original order without sort, got %+v", page.Rows)
	}
}

func TestGlobalFilter(t *testing.T) {
	table := testTable()

	s := tableview.NewState(6).WithGlobalFilter("alp")
	page := table.Compute(testRows(), s)

	if page.TotalRows != 1 || page.Rows[0].Title != "Alpha" {
		t.Errorf("Expected only Alpha, got %+v", page.Rows)
	}
}

func TestGlobalFilterResetsPage(t *testing.T) {
	s := tableview.NewState(6).WithPageIndex(3)
	s = s.WithGlobalFilter("x")

	if s.PageIndex != 0 {
		t.Errorf("Expected page reset to 0, got %d", s.PageIndex)
	}
}

func TestColumnFilterExactMatch(t *testing.T) {
	table := testTable()

	s := tableview.NewState(6).WithColumnFilter("status", "Active")
	page := table.Compute(testRows(), s)

	if page.TotalRows != 2 {
		t.Fatalf("Expected 2 active rows, got %d", page.TotalRows)
	}
	for _, r := range page.Rows {
		if r.Status != "Active" {
			t.Errorf("Expected only Active rows, got %+v", r)
		}
	}

	s = s.WithColumnFilter("status", "")
	page = table.Compute(testRows(), s)
	if page.TotalRows != 3 {
		t.Errorf("Expected filter cleared, got %d rows", page.TotalRows)
	}
}

func TestPagination(t *testing.T) {
	table := testTable()

	var rows []row
	for i := 0; i < 7; i++ {
		rows = append(rows, row{Title: fmt.Sprintf("P%d", i)})
	}

	s := tableview.NewState(3)
	page := table.Compute(rows, s)

	if len(page.Rows) != 3 || page.PageCount != 3 {
		t.Errorf("Expected 3 rows over 3 pages, got %d rows, %d pages", len(page.Rows), page.PageCount)
	}
	if page.CanPrev {
		t.Error("Expected Prev disabled on first page")
	}
	if !page.CanNext {
		t.Error("Expected Next enabled on first page")
	}

	page = table.Compute(rows, s.WithPageIndex(2))
	if len(page.Rows) != 1 {
		t.Errorf("Expected 1 row on last page, got %d", len(page.Rows))
	}
	if page.CanNext {
		t.Error("Expected Next disabled on last page")
	}
	if !page.CanPrev {
		t.Error("Expected Prev enabled on last page")
	}
}

func TestPageIndexClampedWhenFilterShrinksRows(t *testing.T) {
	table := testTable()

	s := tableview.NewState(2)
	s.PageIndex = 5
	page := table.Compute(testRows(), s)

	if page.PageIndex != 1 {
		t.Errorf("Expected page index clamped to 1, got %d", page.PageIndex)
	}
	if len(page.Rows) != 1 {
		t.Errorf("Expected last page rows, got %d", len(page.Rows))
	}
}

func TestEmptyRows(t *testing.T) {
	table := testTable()
	page := table.Compute(nil, tableview.NewState(6))

	if page.TotalRows != 0 || len(page.Rows) != 0 {
		t.Errorf("Expected empty page, got %+v", page)
	}
	if page.CanPrev || page.CanNext {
		t.Error("Expected both pagination controls disabled when empty")
	}
}

func TestUnknownSortColumnIgnored(t *testing.T) {
	table := testTable()

	s := tableview.NewState(6)
	s.SortColumn = "nope"
	s.SortOrder = tableview.SortAsc

	page := table.Compute(testRows(), s)
	if page.Rows[0].Title != "Zeta" {
		t.Errorf("Expected original order for unknown sort column, got %+v", page.Rows)
	}
}
