// Package view turns the snapshot into a display-independent table.
//
// Nothing here touches the terminal; internal/ui draws the result.
package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nconklindev/dexcel/internal/state"
	"github.com/nconklindev/dexcel/internal/types"
)

// RowNumberHeader labels the Excel row number column.
const RowNumberHeader = "#"

// NoSelection is the selected row value when nothing is selected.
const NoSelection = 0

type RowView struct {
	ExcelRow int
	Cells    []string
	Status   types.Status
	Selected bool
	Header   bool
}

type TableView struct {
	Header []string
	Rows   []RowView
	// Empty is set when the snapshot has no columns to draw.
	Empty bool
}

// StatusOf classifies a row by its marker columns. CONVERTITA wins
// when both markers are set.
func StatusOf(snap *types.Snapshot, row types.Row) types.Status {
	if idx := snap.ColumnIndex(types.ColConverted); idx >= 0 && types.IsMarked(row.Value(idx)) {
		return types.StatusConverted
	}
	if idx := snap.ColumnIndex(types.ColNotConverted); idx >= 0 && types.IsMarked(row.Value(idx)) {
		return types.StatusNotConverted
	}
	return types.StatusNone
}

// Render builds the table for rows, which must come from snap
// (directly or through ApplyFilter). selected is an Excel row number.
func Render(snap *types.Snapshot, rows []types.Row, selected int) TableView {
	if len(snap.Columns) == 0 {
		return TableView{Header: []string{RowNumberHeader}, Empty: true}
	}

	tv := TableView{
		Header: make([]string, 0, len(snap.Columns)+1),
		Rows:   make([]RowView, 0, len(rows)),
	}
	tv.Header = append(tv.Header, RowNumberHeader)
	tv.Header = append(tv.Header, snap.Columns...)

	for _, row := range rows {
		cells := make([]string, 0, len(snap.Columns)+1)
		cells = append(cells, strconv.Itoa(row.ExcelRow))
		for i := range snap.Columns {
			cells = append(cells, row.Value(i))
		}
		tv.Rows = append(tv.Rows, RowView{
			ExcelRow: row.ExcelRow,
			Cells:    cells,
			Status:   StatusOf(snap, row),
			Selected: selected != NoSelection && row.ExcelRow == selected,
			Header:   row.IsHeader(),
		})
	}
	return tv
}

// ApplyFilter keeps rows whose value in column contains search,
// case-insensitively. The header row is always kept. An empty search,
// empty column, or unknown column returns every row.
func ApplyFilter(snap *types.Snapshot, column, search string) []types.Row {
	search = strings.ToLower(strings.TrimSpace(search))
	if column == "" || search == "" {
		return snap.Rows
	}

	idx := -1
	for i, col := range snap.Columns {
		if col == column {
			idx = i
			break
		}
	}
	if idx == -1 {
		return snap.Rows
	}

	filtered := make([]types.Row, 0, len(snap.Rows))
	for _, row := range snap.Rows {
		if row.IsHeader() || strings.Contains(strings.ToLower(row.Value(idx)), search) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// FindRow returns the row with the given Excel row number.
func FindRow(rows []types.Row, excelRow int) (types.Row, bool) {
	for _, row := range rows {
		if row.ExcelRow == excelRow {
			return row, true
		}
	}
	return types.Row{}, false
}

// Summary is the counter line shown under the table.
func Summary(shown int) string {
	return fmt.Sprintf("Righe visualizzate: %d | Clienti: %d", shown, state.CustomerCount(shown))
}

// LoadedSummary is the counter line shown after a refresh.
func LoadedSummary(s *state.AppState) string {
	return fmt.Sprintf("Righe caricate: %d | Clienti: %d", s.RowCount(), s.CustomerCount())
}
