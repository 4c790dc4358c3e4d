package ui

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nconklindev/dexcel/internal/actions"
	"github.com/nconklindev/dexcel/internal/api"
	"github.com/nconklindev/dexcel/internal/types"
	"github.com/nconklindev/dexcel/internal/view"
	"github.com/nconklindev/dexcel/internal/workbook"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeBackend struct {
	api.Backend
	snap      *types.Snapshot
	statusReq types.StatusRequest
	fetches   int
	added     []string
	uploaded  []string
	saved     types.Templates
	saveErr   error
}

func (b *fakeBackend) Snapshot(ctx context.Context) (*types.Snapshot, error) {
	b.fetches++
	return b.snap, nil
}

func (b *fakeBackend) SetRowStatus(ctx context.Context, req types.StatusRequest) (string, error) {
	b.statusReq = req
	return "Stato aggiornato.", nil
}

func (b *fakeBackend) AddRow(ctx context.Context, values []string) (string, error) {
	b.added = values
	return "Riga aggiunta.", nil
}

func (b *fakeBackend) Import(ctx context.Context, path string) (string, error) {
	b.uploaded = []string{path}
	return "DB importato.", nil
}

func (b *fakeBackend) Merge(ctx context.Context, paths []string) (string, error) {
	b.uploaded = paths
	return "File uniti.", nil
}

func (b *fakeBackend) SaveTemplates(ctx context.Context, t types.Templates) (string, error) {
	if b.saveErr != nil {
		return "", b.saveErr
	}
	b.saved = t
	return "Template salvati.", nil
}

type fakeClipboard struct {
	text string
}

func (c *fakeClipboard) WriteText(text string) error {
	c.text = text
	return nil
}

func testSnapshot() *types.Snapshot {
	return &types.Snapshot{
		Columns:    []string{"NOME", "CONVERTITA"},
		SourceName: "clienti.xlsx",
		Rows: []types.Row{
			{ExcelRow: 1, Values: []string{"NOME", "CONVERTITA"}},
			{ExcelRow: 2, Values: []string{"Mario", "X"}},
			{ExcelRow: 3, Values: []string{"Luigi", ""}},
		},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// newTableModel returns a model with the test snapshot loaded and the
// table section open.
func newTableModel(t *testing.T) (Model, *fakeBackend, *fakeClipboard) {
	t.Helper()
	backend := &fakeBackend{snap: testSnapshot()}
	cb := &fakeClipboard{}
	m := InitialModel(Options{
		Backend:   backend,
		Clipboard: cb,
		Templates: types.Templates{Converted: "Ciao {NOME}", NotConverted: "Peccato {NOME}"},
	})

	m, _ = update(m, snapshotMsg{snap: testSnapshot()})
	m, _ = update(m, runes("1"))
	if m.section != sectionTable {
		t.Fatalf("section = %d; want table", m.section)
	}
	return m, backend, cb
}

// openSection goes back to the dashboard and opens the menu entry n.
func openSection(t *testing.T, m Model, n string, want section) Model {
	t.Helper()
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEscape})
	m, _ = update(m, runes(n))
	if m.section != want {
		t.Fatalf("section = %d; want %d", m.section, want)
	}
	return m
}

func TestStatusChangeRequiresSelection(t *testing.T) {
	m, backend, _ := newTableModel(t)

	m, cmd := update(m, runes("c"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m, _ = update(m, cmd())

	if m.alert != "Seleziona una riga prima di modificare lo stato." {
		t.Errorf("alert = %q", m.alert)
	}
	if backend.statusReq != (types.StatusRequest{}) {
		t.Errorf("backend received %+v", backend.statusReq)
	}
}

func TestHeaderRowIsRefused(t *testing.T) {
	m, backend, cb := newTableModel(t)

	m, _ = update(m, tea.KeyMsg{Type: tea.KeySpace})
	if m.selected != types.HeaderExcelRow {
		t.Fatalf("selected = %d; want header", m.selected)
	}

	m, cmd := update(m, runes("c"))
	m, _ = update(m, cmd())
	if m.alert != "Non puoi modificare la riga di intestazione." {
		t.Errorf("status alert = %q", m.alert)
	}

	m, _ = update(m, runes("z"))
	if m.alert != "" {
		t.Fatalf("alert not dismissed: %q", m.alert)
	}

	m, cmd = update(m, runes("y"))
	m, _ = update(m, cmd())
	if m.alert != "Non puoi copiare la riga di intestazione." {
		t.Errorf("copy alert = %q", m.alert)
	}

	if backend.statusReq != (types.StatusRequest{}) || cb.text != "" {
		t.Error("header row action reached the backend or clipboard")
	}
}

func TestCopyRowText(t *testing.T) {
	m, _, cb := newTableModel(t)

	m, _ = update(m, runes("j"))
	m, _ = update(m, tea.KeyMsg{Type: tea.KeySpace})
	m, cmd := update(m, runes("y"))
	m, cmd = update(m, cmd())

	if cb.text != "Ciao Mario" {
		t.Errorf("clipboard = %q; want %q", cb.text, "Ciao Mario")
	}
	if m.alert != "Testo copiato negli appunti!" {
		t.Errorf("alert = %q", m.alert)
	}
	if cmd != nil {
		t.Error("copy should not trigger a refresh")
	}
}

func TestStatusChangeRefreshesAndClearsSelection(t *testing.T) {
	m, backend, _ := newTableModel(t)

	m, _ = update(m, runes("j"))
	m, _ = update(m, runes("j"))
	m, _ = update(m, tea.KeyMsg{Type: tea.KeySpace})
	if m.selected != 3 {
		t.Fatalf("selected = %d; want 3", m.selected)
	}

	m, cmd := update(m, runes("n"))
	m, cmd = update(m, cmd())
	if backend.statusReq != (types.StatusRequest{ExcelRow: 3, NotConverted: true}) {
		t.Errorf("request = %+v", backend.statusReq)
	}
	if m.alert != "Stato aggiornato." {
		t.Errorf("alert = %q", m.alert)
	}
	if cmd == nil {
		t.Fatal("expected a refresh")
	}

	fetches := backend.fetches
	m, _ = update(m, cmd())
	if backend.fetches != fetches+1 {
		t.Errorf("fetches = %d; want %d", backend.fetches, fetches+1)
	}
	if m.selected != view.NoSelection {
		t.Errorf("selection survived refresh: %d", m.selected)
	}
}

func TestFilter(t *testing.T) {
	m, _, _ := newTableModel(t)

	m, _ = update(m, runes("/"))
	if !m.filtering {
		t.Fatal("filter input not focused")
	}
	m, _ = update(m, runes("lui"))
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(m.rows) != 2 {
		t.Fatalf("rows = %d; want header and Luigi", len(m.rows))
	}
	if m.rows[1].ExcelRow != 3 {
		t.Errorf("kept row %d; want 3", m.rows[1].ExcelRow)
	}

	m, _ = update(m, runes("R"))
	if len(m.rows) != 3 {
		t.Errorf("rows after reset = %d; want 3", len(m.rows))
	}
}

func TestRefreshFailureKeepsPreviousState(t *testing.T) {
	m, _, _ := newTableModel(t)

	m, _ = update(m, snapshotMsg{err: &api.RequestError{Endpoint: "/api/data", Err: errors.New("connection refused")}})
	if m.alert == "" {
		t.Error("expected an alert")
	}
	if len(m.state.Snapshot.Rows) != 3 {
		t.Errorf("snapshot replaced after failed refresh")
	}
}

func TestAlertText(t *testing.T) {
	tests := []struct {
		name     string
		kind     actionKind
		err      error
		expected string
	}{
		{"Copy without selection", actionCopy, actions.ErrNoSelection, "Seleziona una riga prima di copiare il testo."},
		{"Manual without columns", actionAddRow, actions.ErrNoColumns, "Carica prima il DB per generare i campi."},
		{"Manual blank", actionAddRow, actions.ErrBlankRow, "Compila almeno un campo."},
		{"Import without file", actionImport, actions.ErrNoFile, "Seleziona un file da importare."},
		{"Merge without file", actionMerge, actions.ErrNoFile, "Seleziona almeno un file da unire."},
		{"Clipboard", actionCopy, &actions.ClipboardError{Err: errors.New("no display")}, "Errore nella copia: no display"},
		{"Server detail", actionStatus, &api.APIError{Status: 400, Detail: "Nessun DB caricato"}, "Errore: Nessun DB caricato"},
		{"Wrapped", actionImport, fmt.Errorf("upload: %w", api.ErrUnsupported), "Operazione non supportata da questo server."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := alertText(tt.kind, tt.err); got != tt.expected {
				t.Errorf("alertText() = %q; want %q", got, tt.expected)
			}
		})
	}
}

func TestFailureLineSkipsValidation(t *testing.T) {
	if _, ok := failureLine(actionImport, actions.ErrNoFile); ok {
		t.Error("validation failure should not set a status line")
	}
	line, ok := failureLine(actionMerge, &api.APIError{Status: 500})
	if !ok || line.text != "Unione file fallita." || !line.isError {
		t.Errorf("failureLine() = %+v, %v", line, ok)
	}
}

func TestExportName(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	tests := []struct {
		source   string
		expected string
	}{
		{"clienti.xlsx", "clienti_20240305_140709.xlsx"},
		{"(nessuno)", "nessuno_20240305_140709.xlsx"},
		{"", "clienti_20240305_140709.xlsx"},
	}

	for _, tt := range tests {
		if got := exportName(tt.source, now); got != tt.expected {
			t.Errorf("exportName(%q) = %q; want %q", tt.source, got, tt.expected)
		}
	}
}

func TestSavedTemplatesAreUsedForCopy(t *testing.T) {
	m, backend, cb := newTableModel(t)
	m = openSection(t, m, "5", sectionTemplates)

	m.tplConverted.SetValue("Bentornato {NOME}")
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m, cmd = update(m, cmd())
	if cmd != nil {
		t.Error("saving templates should not refresh")
	}
	if backend.saved.Converted != "Bentornato {NOME}" {
		t.Fatalf("saved = %+v", backend.saved)
	}

	m = openSection(t, m, "1", sectionTable)
	m, _ = update(m, runes("j"))
	m, _ = update(m, tea.KeyMsg{Type: tea.KeySpace})
	m, cmd = update(m, runes("y"))
	update(m, cmd())

	if cb.text != "Bentornato Mario" {
		t.Errorf("clipboard = %q; want %q", cb.text, "Bentornato Mario")
	}
}

func TestFailedTemplateSaveKeepsTemplates(t *testing.T) {
	tests := []struct {
		name      string
		converted string
		saveErr   error
	}{
		{"Backend error", "Nuovo {NOME}", &api.APIError{Status: 500, Detail: "disco pieno"}},
		{"Blank template", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, backend, _ := newTableModel(t)
			backend.saveErr = tt.saveErr
			m = openSection(t, m, "5", sectionTemplates)

			m.tplConverted.SetValue(tt.converted)
			m, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlS})
			m, _ = update(m, cmd())

			if m.state.Templates.Converted != "Ciao {NOME}" {
				t.Errorf("templates changed to %q", m.state.Templates.Converted)
			}
			if line := m.status[sectionTemplates]; !line.isError {
				t.Errorf("status = %+v; want an error line", line)
			}
		})
	}
}

func TestAddRowClearsInputsAndRefreshes(t *testing.T) {
	m, backend, _ := newTableModel(t)
	m = openSection(t, m, "2", sectionManual)
	if len(m.manualInputs) != 2 {
		t.Fatalf("inputs = %d; want one per column", len(m.manualInputs))
	}

	m, _ = update(m, runes("Anna"))
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m, cmd = update(m, cmd())

	if len(backend.added) != 2 || backend.added[0] != "Anna" || backend.added[1] != "" {
		t.Errorf("added = %q", backend.added)
	}
	for i, in := range m.manualInputs {
		if in.Value() != "" {
			t.Errorf("input %d = %q; want cleared", i, in.Value())
		}
	}
	if m.status[sectionManual].text != "Riga aggiunta." {
		t.Errorf("status = %+v", m.status[sectionManual])
	}
	if cmd == nil {
		t.Fatal("expected a refresh")
	}
	if _, ok := cmd().(snapshotMsg); !ok {
		t.Error("refresh did not fetch a snapshot")
	}
}

func TestImportWithoutPreviewUploads(t *testing.T) {
	m, backend, _ := newTableModel(t)
	m = openSection(t, m, "3", sectionImport)

	m, _ = update(m, previewMsg{section: sectionImport, path: "single_column.xlsx", err: errors.New("could not find header row")})
	if m.importPath != "single_column.xlsx" {
		t.Fatalf("importPath = %q", m.importPath)
	}
	if line := m.status[sectionImport]; line.isError || line.text == "" {
		t.Errorf("status = %+v; want an informational line", line)
	}

	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m, cmd = update(m, cmd())

	if len(backend.uploaded) != 1 || backend.uploaded[0] != "single_column.xlsx" {
		t.Errorf("uploaded = %v", backend.uploaded)
	}
	if m.importPath != "" || m.status[sectionImport].text != "DB importato." {
		t.Errorf("import not reset: path %q, status %+v", m.importPath, m.status[sectionImport])
	}
	if cmd == nil {
		t.Error("expected a refresh")
	}
}

func TestMergeSuccessResetsList(t *testing.T) {
	m, backend, _ := newTableModel(t)
	m = openSection(t, m, "4", sectionMerge)

	m, _ = update(m, previewMsg{section: sectionMerge, path: "a.xlsx", preview: &types.FilePreview{Path: "a.xlsx"}})
	m, _ = update(m, previewMsg{section: sectionMerge, path: "b.xlsx", err: errors.New("empty file")})
	if len(m.mergeFiles) != 2 {
		t.Fatalf("mergeFiles = %v", m.mergeFiles)
	}

	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m, cmd = update(m, cmd())

	if len(backend.uploaded) != 2 {
		t.Errorf("uploaded = %v", backend.uploaded)
	}
	if len(m.mergeFiles) != 0 || len(m.mergePreviews) != 0 {
		t.Errorf("merge list not reset: %v", m.mergeFiles)
	}
	if cmd == nil {
		t.Error("expected a refresh")
	}
}

func TestPreviewRefusesUnsupportedFile(t *testing.T) {
	m, _, _ := newTableModel(t)
	m = openSection(t, m, "4", sectionMerge)

	m, _ = update(m, previewMsg{section: sectionMerge, path: "notes.txt", err: fmt.Errorf("notes.txt: %w", workbook.ErrUnsupportedFile)})
	if len(m.mergeFiles) != 0 {
		t.Errorf("mergeFiles = %v; want none", m.mergeFiles)
	}
	if m.alert == "" {
		t.Error("expected an alert")
	}
}

func TestClickSelectsRow(t *testing.T) {
	m, _, _ := newTableModel(t)

	first := m.firstRowLine()
	m, _ = update(m, tea.MouseMsg{X: 4, Y: first + 1, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if m.selected != 2 || m.cursor != 1 {
		t.Errorf("selected = %d, cursor = %d; want row 2", m.selected, m.cursor)
	}

	m, _ = update(m, tea.MouseMsg{X: 4, Y: first + 2, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	if m.selected != 2 {
		t.Errorf("release changed selection to %d", m.selected)
	}

	m, _ = update(m, tea.MouseMsg{X: 4, Y: first - 1, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if m.selected != 2 {
		t.Errorf("click on the table header changed selection to %d", m.selected)
	}
}

func TestTemplateLoadKeepsTypedText(t *testing.T) {
	m, _, _ := newTableModel(t)
	m.tplConverted.SetValue("scritto a mano")

	server := types.Templates{Converted: "Server {NOME}", NotConverted: "Server no {NOME}"}
	m, _ = update(m, templatesMsg{templates: server})

	if m.tplConverted.Value() != "scritto a mano" {
		t.Errorf("typed template overwritten with %q", m.tplConverted.Value())
	}
	if m.tplNotConverted.Value() != server.NotConverted {
		t.Errorf("untouched template = %q; want the loaded one", m.tplNotConverted.Value())
	}
	if m.state.Templates != server {
		t.Errorf("state templates = %+v", m.state.Templates)
	}
}

func TestRefreshKeepsFilterApplied(t *testing.T) {
	m, _, _ := newTableModel(t)

	m, _ = update(m, runes("/"))
	m, _ = update(m, runes("lui"))
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = update(m, snapshotMsg{snap: testSnapshot()})
	if len(m.rows) != 2 || m.rows[1].ExcelRow != 3 {
		t.Errorf("rows after refresh = %+v; want header and Luigi", m.rows)
	}
	if m.filterInput.Value() != "lui" {
		t.Errorf("filter = %q", m.filterInput.Value())
	}
}
