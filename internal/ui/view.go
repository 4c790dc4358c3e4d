package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nconklindev/dexcel/internal/types"
	"github.com/nconklindev/dexcel/internal/view"

	"github.com/charmbracelet/lipgloss"
)

// maxCellWidth caps a table column so wide values do not push the rest
// of the row off screen.
const maxCellWidth = 24

func (m Model) View() string {
	var body string
	switch m.section {
	case sectionDashboard:
		body = m.viewDashboard()
	case sectionTable:
		body = m.viewTable()
	case sectionManual:
		body = m.viewManual()
	case sectionImport:
		body = m.viewImport()
	case sectionMerge:
		body = m.viewMerge()
	case sectionTemplates:
		body = m.viewTemplates()
	}

	if m.alert != "" {
		alert := AlertStyle.Render(m.alert + "\n\n" + HelpStyle.Render("Premi un tasto per continuare"))
		return lipgloss.JoinVertical(lipgloss.Left, body, alert)
	}
	return body
}

func (m Model) header(title string) string {
	var s strings.Builder
	s.WriteString(TitleStyle.Render("📒 Dexcel - " + title))
	s.WriteString("\n")

	sub := fmt.Sprintf("DB in uso: %s", m.state.Snapshot.SourceName)
	if m.busy > 0 {
		sub = m.spinner.View() + " " + BusyStyle.Render(sub)
	}
	s.WriteString(SubtitleStyle.Render(sub))
	s.WriteString("\n")
	return s.String()
}

func (m Model) footer() string {
	return HelpStyle.Render(m.help.View(m.keys.helpFor(m.section)))
}

func (m Model) statusView(s section) string {
	line, ok := m.status[s]
	if !ok || line.text == "" {
		return ""
	}
	if line.isError {
		return ErrorStyle.Render(line.text)
	}
	return SuccessStyle.Render(line.text)
}

func (m Model) viewDashboard() string {
	var s strings.Builder
	s.WriteString(m.header("Gestione clienti"))
	s.WriteString("\n")

	if m.state.Loaded {
		s.WriteString(view.LoadedSummary(m.state))
		s.WriteString("\n")
		s.WriteString(SubtitleStyle.Render("Ultimo aggiornamento: " + m.state.LastRefresh.Format("15:04:05")))
	} else {
		s.WriteString(SubtitleStyle.Render("Caricamento dati..."))
	}
	s.WriteString("\n\n")

	for i, item := range menu {
		line := fmt.Sprintf("  %d. %s", i+1, item.label)
		if i == m.menuCursor {
			line = SelectedStyle.Render(fmt.Sprintf("> %d. %s", i+1, item.label))
		} else {
			line = UnselectedStyle.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}
	s.WriteString("\n")
	s.WriteString(m.footer())

	return BoxStyle.Render(s.String())
}

// tablePreamble is everything drawn above the table header line.
func (m Model) tablePreamble() string {
	var s strings.Builder
	s.WriteString(m.header("Tabella"))
	s.WriteString("\n")

	col := m.filterColumn()
	if col == "" {
		col = "-"
	}
	if m.filtering {
		s.WriteString(fmt.Sprintf("Colonna: %s  %s", col, m.filterInput.View()))
	} else {
		filter := m.filterInput.Value()
		if filter == "" {
			filter = "(nessuno)"
		}
		s.WriteString(SubtitleStyle.Render(fmt.Sprintf("Colonna: %s  Filtro: %s", col, filter)))
	}
	s.WriteString("\n\n")
	return s.String()
}

// firstRowLine is the screen line of the first visible data row.
func (m Model) firstRowLine() int {
	return strings.Count(m.tablePreamble(), "\n") + 1
}

func (m Model) viewTable() string {
	var s strings.Builder
	s.WriteString(m.tablePreamble())

	tv := view.Render(&m.state.Snapshot, m.rows, m.selected)
	if tv.Empty {
		s.WriteString(ErrorStyle.Render("Nessuna colonna nel DB."))
		s.WriteString("\n")
	} else {
		s.WriteString(m.drawTable(tv))
		s.WriteString("\n")
		s.WriteString(view.Summary(len(m.rows)))
		s.WriteString("\n")
	}

	if line := m.statusView(sectionTable); line != "" {
		s.WriteString(line)
		s.WriteString("\n")
	}
	s.WriteString(m.footer())
	return s.String()
}

// drawTable renders the visible window of tv. The row number column is
// always shown; data columns scroll horizontally from colOffset.
func (m Model) drawTable(tv view.TableView) string {
	cols := visibleColumns(len(tv.Header), m.colOffset)
	widths := columnWidths(tv, cols)

	var s strings.Builder
	s.WriteString("  ")
	s.WriteString(HeaderCellStyle.Render(joinCells(tv.Header, cols, widths)))
	s.WriteString("\n")

	end := m.offset + m.visibleRows()
	if end > len(tv.Rows) {
		end = len(tv.Rows)
	}
	for i := m.offset; i < end; i++ {
		row := tv.Rows[i]
		line := joinCells(row.Cells, cols, widths)

		switch {
		case row.Selected:
			line = SelectedRowStyle.Render(line)
		case row.Header:
			line = HeaderCellStyle.Render(line)
		case row.Status == types.StatusConverted:
			line = ConvertedRowStyle.Render(line)
		case row.Status == types.StatusNotConverted:
			line = NotConvertedRowStyle.Render(line)
		}

		marker := "  "
		if i == m.cursor {
			marker = CursorStyle.Render("> ")
		}
		s.WriteString(marker + line + "\n")
	}
	return s.String()
}

// visibleColumns returns the row number column followed by the data
// columns from offset on.
func visibleColumns(n, offset int) []int {
	if n == 0 {
		return nil
	}
	cols := []int{0}
	for i := 1 + offset; i < n; i++ {
		cols = append(cols, i)
	}
	return cols
}

func columnWidths(tv view.TableView, cols []int) map[int]int {
	widths := make(map[int]int, len(cols))
	for _, c := range cols {
		w := lipgloss.Width(tv.Header[c])
		for _, row := range tv.Rows {
			if c < len(row.Cells) {
				w = max(w, lipgloss.Width(row.Cells[c]))
			}
		}
		widths[c] = min(w, maxCellWidth)
	}
	return widths
}

func joinCells(cells []string, cols []int, widths map[int]int) string {
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		v := ""
		if c < len(cells) {
			v = cells[c]
		}
		parts = append(parts, pad(truncate(v, widths[c]), widths[c]))
	}
	return strings.Join(parts, " │ ")
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}

func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func (m Model) viewManual() string {
	var s strings.Builder
	s.WriteString(m.header("Inserimento manuale"))
	s.WriteString("\n")

	if len(m.manualInputs) == 0 {
		s.WriteString(SubtitleStyle.Render("Carica prima il DB per generare i campi."))
		s.WriteString("\n")
	}
	for _, in := range m.manualInputs {
		s.WriteString(in.View())
		s.WriteString("\n")
	}

	if line := m.statusView(sectionManual); line != "" {
		s.WriteString("\n")
		s.WriteString(line)
		s.WriteString("\n")
	}
	s.WriteString(m.footer())
	return BoxStyle.Render(s.String())
}

func previewLine(p *types.FilePreview) string {
	line := fmt.Sprintf("%s: %d colonne, %d righe", filepath.Base(p.Path), len(p.Headers), p.RowCount)
	if p.StatusColumn {
		line += ", con colonne di stato"
	}
	if len(p.MissingKeys) > 0 {
		line += ErrorStyle.Render(" (mancano: " + strings.Join(p.MissingKeys, ", ") + ")")
	}
	return line
}

func (m Model) viewImport() string {
	var s strings.Builder
	s.WriteString(m.header("Importa DB"))
	s.WriteString(SubtitleStyle.Render("Il file scelto sostituisce il DB in uso"))
	s.WriteString("\n")
	s.WriteString(m.importPicker.View())
	s.WriteString("\n\n")

	if m.importPreview != nil {
		s.WriteString("File: " + previewLine(m.importPreview))
	} else if m.importPath != "" {
		s.WriteString("File: " + filepath.Base(m.importPath))
	} else {
		s.WriteString(SubtitleStyle.Render("Nessun file selezionato."))
	}
	s.WriteString("\n")

	if line := m.statusView(sectionImport); line != "" {
		s.WriteString(line)
		s.WriteString("\n")
	}
	s.WriteString(m.footer())
	return s.String()
}

func (m Model) viewMerge() string {
	var s strings.Builder
	s.WriteString(m.header("Unisci file"))
	s.WriteString(SubtitleStyle.Render("Le righe dei file scelti vengono aggiunte al DB in uso"))
	s.WriteString("\n")
	s.WriteString(m.mergePicker.View())
	s.WriteString("\n\n")

	if len(m.mergeFiles) == 0 {
		s.WriteString(SubtitleStyle.Render("Nessun file selezionato."))
		s.WriteString("\n")
	}
	for _, path := range m.mergeFiles {
		if p, ok := m.mergePreviews[path]; ok && p != nil {
			s.WriteString("• " + previewLine(p))
		} else {
			s.WriteString("• " + filepath.Base(path))
		}
		s.WriteString("\n")
	}

	if line := m.statusView(sectionMerge); line != "" {
		s.WriteString(line)
		s.WriteString("\n")
	}
	s.WriteString(m.footer())
	return s.String()
}

func (m Model) viewTemplates() string {
	var s strings.Builder
	s.WriteString(m.header("Modifica template"))
	placeholders := make([]string, len(types.Placeholders))
	for i, p := range types.Placeholders {
		placeholders[i] = "{" + p + "}"
	}
	s.WriteString(SubtitleStyle.Render("Segnaposto: " + strings.Join(placeholders, " ")))
	s.WriteString("\n")

	s.WriteString(SelectedStyle.Render("Convertita"))
	s.WriteString("\n")
	s.WriteString(m.tplConverted.View())
	s.WriteString("\n\n")
	s.WriteString(SelectedStyle.Render("Non convertita"))
	s.WriteString("\n")
	s.WriteString(m.tplNotConverted.View())
	s.WriteString("\n")

	if line := m.statusView(sectionTemplates); line != "" {
		s.WriteString(line)
		s.WriteString("\n")
	}
	s.WriteString(m.footer())
	return BoxStyle.Render(s.String())
}
