package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/nconklindev/dexcel/internal/actions"
	"github.com/nconklindev/dexcel/internal/api"
	"github.com/nconklindev/dexcel/internal/state"
	"github.com/nconklindev/dexcel/internal/types"
	"github.com/nconklindev/dexcel/internal/view"
	"github.com/nconklindev/dexcel/internal/workbook"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type section int

const (
	sectionDashboard section = iota
	sectionTable
	sectionManual
	sectionImport
	sectionMerge
	sectionTemplates
)

// menu lists the sections reachable from the dashboard, in order.
var menu = []struct {
	section section
	label   string
}{
	{sectionTable, "Visualizza tabella"},
	{sectionManual, "Inserimento manuale"},
	{sectionImport, "Importa DB"},
	{sectionMerge, "Unisci file"},
	{sectionTemplates, "Modifica template"},
}

type actionKind int

const (
	actionStatus actionKind = iota
	actionCopy
	actionAddRow
	actionImport
	actionMerge
	actionSaveTemplates
	actionExport
)

type statusLine struct {
	text    string
	isError bool
}

// Options wires the model to its collaborators.
type Options struct {
	Backend   api.Backend
	Clipboard actions.Clipboard
	Templates types.Templates
	ExportDir string
	Logger    *slog.Logger
}

type Model struct {
	backend    api.Backend
	controller *actions.Controller
	logger     *slog.Logger
	keys       KeyMap
	help       help.Model
	spinner    spinner.Model

	state     *state.AppState
	fallback  types.Templates
	exportDir string

	section    section
	menuCursor int

	// table section
	rows        []types.Row
	cursor      int
	offset      int
	colOffset   int
	selected    int
	filterCol   int
	filterInput textinput.Model
	filtering   bool

	// manual section
	manualInputs []textinput.Model
	manualFocus  int

	// import and merge sections
	importPicker  filepicker.Model
	importPath    string
	importPreview *types.FilePreview
	mergePicker   filepicker.Model
	mergeFiles    []string
	mergePreviews map[string]*types.FilePreview

	// templates section
	tplConverted    textarea.Model
	tplNotConverted textarea.Model
	tplFocus        int

	status map[section]statusLine
	alert  string
	busy   int
	width  int
	height int
}

type snapshotMsg struct {
	snap *types.Snapshot
	err  error
}

type templatesMsg struct {
	templates types.Templates
	err       error
}

type actionDoneMsg struct {
	kind      actionKind
	message   string
	err       error
	templates types.Templates
}

type previewMsg struct {
	section section
	path    string
	preview *types.FilePreview
	err     error
}

func newFilePicker() filepicker.Model {
	fp := filepicker.New()
	fp.AllowedTypes = workbook.UploadTypes
	fp.CurrentDirectory, _ = os.Getwd()

	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C42"))
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB84D"))
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB84D"))
	fp.Styles.File = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C42")).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	return fp
}

func newTemplateArea(placeholder string) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.SetWidth(60)
	ta.SetHeight(7)
	return ta
}

func InitialModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C42"))

	filter := textinput.New()
	filter.Placeholder = "testo da cercare"
	filter.Prompt = "Filtra: "
	filter.CharLimit = 120

	m := Model{
		backend:         opts.Backend,
		controller:      actions.NewController(opts.Backend, opts.Clipboard, logger),
		logger:          logger,
		keys:            DefaultKeyMap(),
		help:            help.New(),
		spinner:         sp,
		state:           state.New(opts.Templates),
		fallback:        opts.Templates,
		exportDir:       opts.ExportDir,
		filterInput:     filter,
		importPicker:    newFilePicker(),
		mergePicker:     newFilePicker(),
		mergePreviews:   make(map[string]*types.FilePreview),
		tplConverted:    newTemplateArea("Template convertita"),
		tplNotConverted: newTemplateArea("Template non convertita"),
		status:          make(map[section]statusLine),
		selected:        view.NoSelection,
	}
	m.tplConverted.SetValue(opts.Templates.Converted)
	m.tplNotConverted.SetValue(opts.Templates.NotConverted)
	m.busy = 2
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.refresh(),
		m.loadTemplates(),
		m.importPicker.Init(),
		m.mergePicker.Init(),
		m.spinner.Tick,
	)
}

// refresh fetches the snapshot. It is the only path to new state.
func (m Model) refresh() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		snap, err := state.Fetch(context.Background(), backend)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m Model) loadTemplates() tea.Cmd {
	backend, fallback := m.backend, m.fallback
	return func() tea.Msg {
		t, err := state.LoadTemplates(context.Background(), backend, fallback)
		return templatesMsg{templates: t, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Leave room for title, status lines and help
		height := msg.Height - 16
		if height < 5 {
			height = 5
		}
		m.importPicker.SetHeight(height)
		m.mergePicker.SetHeight(height)
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case snapshotMsg:
		m.busy--
		if msg.err != nil {
			m.alert = alertText(actionStatus, msg.err)
			return m, nil
		}
		m.applySnapshot(msg.snap)
		return m, nil

	case templatesMsg:
		m.busy--
		if msg.err != nil {
			m.alert = alertText(actionSaveTemplates, msg.err)
			return m, nil
		}
		m.state.SetTemplates(msg.templates)
		// Leave alone anything typed before the load finished.
		if m.tplConverted.Value() == m.fallback.Converted {
			m.tplConverted.SetValue(msg.templates.Converted)
		}
		if m.tplNotConverted.Value() == m.fallback.NotConverted {
			m.tplNotConverted.SetValue(msg.templates.NotConverted)
		}
		return m, nil

	case actionDoneMsg:
		m.busy--
		return m.handleActionDone(msg)

	case previewMsg:
		return m.handlePreview(msg), nil

	case tea.MouseMsg:
		if m.section == sectionTable && m.alert == "" {
			return m.handleTableClick(msg), nil
		}

	case tea.KeyMsg:
		if m.alert != "" {
			m.alert = ""
			return m, nil
		}
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	return m.updatePickers(msg)
}

// applySnapshot installs a fresh snapshot and redraws from it. The
// current filter is applied again; the selection does not survive.
func (m *Model) applySnapshot(snap *types.Snapshot) {
	prevColumns := m.state.Snapshot.Columns
	m.state.Apply(snap, time.Now())

	m.filtering = false
	m.filterInput.Blur()
	if m.filterCol >= len(m.state.Snapshot.Columns) {
		m.filterCol = 0
	}
	m.rows = m.filteredRows()
	m.selected = view.NoSelection
	m.clampCursor()

	if m.manualInputs == nil || !slices.Equal(prevColumns, m.state.Snapshot.Columns) {
		m.buildManualForm()
	}
	m.logger.Debug("snapshot applied", "rows", len(snap.Rows), "columns", len(snap.Columns))
}

func (m Model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, actions.ErrBlankTemplate) {
			m.status[sectionTemplates] = statusLine{text: "I template non possono essere vuoti.", isError: true}
			return m, nil
		}
		m.alert = alertText(msg.kind, msg.err)
		if line, ok := failureLine(msg.kind, msg.err); ok {
			m.status[sectionOf(msg.kind)] = line
		}
		return m, nil
	}

	switch msg.kind {
	case actionStatus:
		m.alert = msg.message
	case actionCopy:
		m.alert = "Testo copiato negli appunti!"
		return m, nil
	case actionAddRow:
		m.status[sectionManual] = statusLine{text: msg.message}
		for i := range m.manualInputs {
			m.manualInputs[i].Reset()
		}
	case actionImport:
		m.status[sectionImport] = statusLine{text: msg.message}
		m.importPath = ""
		m.importPreview = nil
	case actionMerge:
		m.status[sectionMerge] = statusLine{text: msg.message}
		m.mergeFiles = nil
		m.mergePreviews = make(map[string]*types.FilePreview)
	case actionSaveTemplates:
		m.status[sectionTemplates] = statusLine{text: msg.message}
		m.state.SetTemplates(msg.templates)
		return m, nil
	case actionExport:
		m.status[sectionTable] = statusLine{text: msg.message}
		return m, nil
	}

	m.busy++
	return m, m.refresh()
}

// handlePreview records a picked file. Only an unsupported extension
// keeps it from being chosen; a file that cannot be previewed is still
// uploaded and the backend decides.
func (m Model) handlePreview(msg previewMsg) Model {
	kind := actionImport
	if msg.section == sectionMerge {
		kind = actionMerge
	}
	if errors.Is(msg.err, workbook.ErrUnsupportedFile) {
		m.alert = alertText(kind, msg.err)
		return m
	}

	line := statusLine{}
	if msg.err != nil {
		m.logger.Debug("preview unavailable", "path", msg.path, "error", msg.err)
		line = statusLine{text: "Anteprima non disponibile: " + msg.err.Error()}
		msg.preview = nil
	}

	switch msg.section {
	case sectionImport:
		m.importPath = msg.path
		m.importPreview = msg.preview
	case sectionMerge:
		m.mergePreviews[msg.path] = msg.preview
		if !slices.Contains(m.mergeFiles, msg.path) {
			m.mergeFiles = append(m.mergeFiles, msg.path)
		}
	}
	m.status[msg.section] = line
	return m
}

// handleTableClick selects the data row under a left click.
func (m Model) handleTableClick(msg tea.MouseMsg) Model {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m
	}

	first := m.firstRowLine()
	if msg.Y < first {
		return m
	}
	i := m.offset + msg.Y - first
	if i >= len(m.rows) || i >= m.offset+m.visibleRows() {
		return m
	}
	m.cursor = i
	m.selected = m.rows[i].ExcelRow
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.section != sectionDashboard && key.Matches(msg, m.keys.Back) && !m.filtering {
		m.section = sectionDashboard
		m.blurAll()
		return m, nil
	}

	switch m.section {
	case sectionDashboard:
		return m.updateDashboard(msg)
	case sectionTable:
		return m.updateTable(msg)
	case sectionManual:
		return m.updateManual(msg)
	case sectionImport, sectionMerge:
		return m.updatePickerSection(msg)
	case sectionTemplates:
		return m.updateTemplates(msg)
	}
	return m, nil
}

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.menuCursor < len(menu)-1 {
			m.menuCursor++
		}
	case key.Matches(msg, m.keys.Refresh):
		m.busy++
		return m, m.refresh()
	case key.Matches(msg, m.keys.Open):
		return m.showSection(menu[m.menuCursor].section)
	default:
		if s := msg.String(); len(s) == 1 && s[0] >= '1' && int(s[0]-'1') < len(menu) {
			return m.showSection(menu[s[0]-'1'].section)
		}
	}
	return m, nil
}

// showSection switches the visible section and redraws it from state.
func (m Model) showSection(s section) (tea.Model, tea.Cmd) {
	m.section = s
	m.blurAll()
	m.logger.Debug("section shown", "section", int(s))

	switch s {
	case sectionTable:
		m.rows = m.filteredRows()
		m.selected = view.NoSelection
		m.clampCursor()
	case sectionManual:
		m.buildManualForm()
		if len(m.manualInputs) > 0 {
			m.manualFocus = 0
			return m, m.manualInputs[0].Focus()
		}
	case sectionTemplates:
		m.tplFocus = 0
		return m, m.tplConverted.Focus()
	}
	return m, nil
}

func (m *Model) blurAll() {
	m.filtering = false
	m.filterInput.Blur()
	for i := range m.manualInputs {
		m.manualInputs[i].Blur()
	}
	m.tplConverted.Blur()
	m.tplNotConverted.Blur()
}

// selectedRow returns the selected row, or nil when nothing is selected.
func (m Model) selectedRow() *types.Row {
	if m.selected == view.NoSelection {
		return nil
	}
	row, ok := view.FindRow(m.rows, m.selected)
	if !ok {
		return nil
	}
	return &row
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		switch msg.String() {
		case "enter":
			m.filtering = false
			m.filterInput.Blur()
			m.applyFilter()
			return m, nil
		case "esc":
			m.filtering = false
			m.filterInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Left):
		if m.colOffset > 0 {
			m.colOffset--
		}
	case key.Matches(msg, m.keys.Right):
		if m.colOffset < len(m.state.Snapshot.Columns)-1 {
			m.colOffset++
		}
	case key.Matches(msg, m.keys.Select):
		if m.cursor < len(m.rows) {
			m.selected = m.rows[m.cursor].ExcelRow
		}
	case key.Matches(msg, m.keys.Converted):
		return m.setRowStatus(types.StatusConverted)
	case key.Matches(msg, m.keys.NotConverted):
		return m.setRowStatus(types.StatusNotConverted)
	case key.Matches(msg, m.keys.Clear):
		return m.setRowStatus(types.StatusNone)
	case key.Matches(msg, m.keys.Copy):
		return m.copyRowText()
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		return m, m.filterInput.Focus()
	case key.Matches(msg, m.keys.FilterColumn):
		if n := len(m.state.Snapshot.Columns); n > 0 {
			m.filterCol = (m.filterCol + 1) % n
		}
	case key.Matches(msg, m.keys.ResetFilter):
		m.filterInput.SetValue("")
		m.rows = m.state.Snapshot.Rows
		m.selected = view.NoSelection
		m.clampCursor()
	case key.Matches(msg, m.keys.Export):
		return m.export()
	case key.Matches(msg, m.keys.Refresh):
		m.busy++
		return m, m.refresh()
	}

	m.scrollToCursor()
	return m, nil
}

func (m Model) filterColumn() string {
	cols := m.state.Snapshot.Columns
	if m.filterCol < 0 || m.filterCol >= len(cols) {
		return ""
	}
	return cols[m.filterCol]
}

// filteredRows is the snapshot seen through the filter line.
func (m Model) filteredRows() []types.Row {
	return view.ApplyFilter(&m.state.Snapshot, m.filterColumn(), m.filterInput.Value())
}

func (m *Model) applyFilter() {
	m.rows = m.filteredRows()
	m.selected = view.NoSelection
	m.cursor = 0
	m.offset = 0
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.scrollToCursor()
}

// visibleRows is how many table rows fit on screen.
func (m Model) visibleRows() int {
	n := m.height - 14
	if n < 5 {
		n = 5
	}
	return n
}

func (m *Model) scrollToCursor() {
	window := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+window {
		m.offset = m.cursor - window + 1
	}
}

func (m Model) setRowStatus(status types.Status) (tea.Model, tea.Cmd) {
	row := m.selectedRow()
	controller := m.controller
	m.busy++
	return m, func() tea.Msg {
		msg, err := controller.SetRowStatus(context.Background(), row, status)
		return actionDoneMsg{kind: actionStatus, message: msg, err: err}
	}
}

func (m Model) copyRowText() (tea.Model, tea.Cmd) {
	row := m.selectedRow()
	controller := m.controller
	columns := m.state.Snapshot.Columns
	templates := m.state.Templates
	m.busy++
	return m, func() tea.Msg {
		text, err := controller.CopyRowText(row, columns, templates)
		return actionDoneMsg{kind: actionCopy, message: text, err: err}
	}
}

func (m Model) export() (tea.Model, tea.Cmd) {
	snap := m.state.Snapshot
	path := filepath.Join(m.exportDir, exportName(snap.SourceName, time.Now()))
	controller := m.controller
	m.busy++
	m.status[sectionTable] = statusLine{text: "Esportazione in corso..."}
	return m, func() tea.Msg {
		err := controller.Export(path, &snap)
		return actionDoneMsg{kind: actionExport, message: "Esportato in " + path, err: err}
	}
}

// exportName derives the export file name from the database name.
func exportName(source string, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	base = strings.Map(func(r rune) rune {
		switch r {
		case '(', ')', ' ', '/', '\\':
			return '_'
		}
		return r
	}, base)
	base = strings.Trim(base, "_")
	if base == "" || base == "." {
		base = "clienti"
	}
	return fmt.Sprintf("%s_%s.xlsx", base, now.Format("20060102_150405"))
}

func (m *Model) buildManualForm() {
	cols := m.state.Snapshot.Columns
	inputs := make([]textinput.Model, len(cols))
	for i, col := range cols {
		ti := textinput.New()
		ti.Prompt = col + ": "
		ti.CharLimit = 256
		if i < len(m.manualInputs) {
			ti.SetValue(m.manualInputs[i].Value())
		}
		inputs[i] = ti
	}
	m.manualInputs = inputs
	if m.manualFocus >= len(inputs) {
		m.manualFocus = 0
	}
}

func (m Model) updateManual(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.addRow()
	case key.Matches(msg, m.keys.NextField), key.Matches(msg, m.keys.PrevField):
		if len(m.manualInputs) == 0 {
			return m, nil
		}
		m.manualInputs[m.manualFocus].Blur()
		if key.Matches(msg, m.keys.NextField) {
			m.manualFocus = (m.manualFocus + 1) % len(m.manualInputs)
		} else {
			m.manualFocus = (m.manualFocus - 1 + len(m.manualInputs)) % len(m.manualInputs)
		}
		return m, m.manualInputs[m.manualFocus].Focus()
	}

	if len(m.manualInputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.manualInputs[m.manualFocus], cmd = m.manualInputs[m.manualFocus].Update(msg)
	return m, cmd
}

func (m Model) addRow() (tea.Model, tea.Cmd) {
	columns := m.state.Snapshot.Columns
	values := make([]string, len(m.manualInputs))
	for i, in := range m.manualInputs {
		values[i] = in.Value()
	}
	controller := m.controller

	m.busy++
	m.status[sectionManual] = statusLine{text: "Aggiunta riga in corso..."}
	return m, func() tea.Msg {
		msg, err := controller.AddRow(context.Background(), columns, values)
		return actionDoneMsg{kind: actionAddRow, message: msg, err: err}
	}
}

func (m Model) updatePickerSection(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Submit):
		if m.section == sectionImport {
			return m.importFile()
		}
		return m.mergeSelected()
	case key.Matches(msg, m.keys.ClearList) && m.section == sectionMerge:
		m.mergeFiles = nil
		m.mergePreviews = make(map[string]*types.FilePreview)
		return m, nil
	}
	return m.updatePickers(msg)
}

// updatePickers routes keys to the visible picker and everything else
// to both, since directory reads are addressed by picker id.
func (m Model) updatePickers(msg tea.Msg) (tea.Model, tea.Cmd) {
	_, isKey := msg.(tea.KeyMsg)
	var cmds []tea.Cmd

	if !isKey || m.section == sectionImport {
		var cmd tea.Cmd
		m.importPicker, cmd = m.importPicker.Update(msg)
		cmds = append(cmds, cmd)
		if m.section == sectionImport {
			if didSelect, path := m.importPicker.DidSelectFile(msg); didSelect {
				cmds = append(cmds, previewFile(sectionImport, path))
			}
		}
	}

	if !isKey || m.section == sectionMerge {
		var cmd tea.Cmd
		m.mergePicker, cmd = m.mergePicker.Update(msg)
		cmds = append(cmds, cmd)
		if m.section == sectionMerge {
			if didSelect, path := m.mergePicker.DidSelectFile(msg); didSelect {
				if i := slices.Index(m.mergeFiles, path); i >= 0 {
					// Selecting a listed file again removes it.
					m.mergeFiles = slices.Delete(m.mergeFiles, i, i+1)
					delete(m.mergePreviews, path)
				} else {
					cmds = append(cmds, previewFile(sectionMerge, path))
				}
			}
		}
	}

	return m, tea.Batch(cmds...)
}

func previewFile(s section, path string) tea.Cmd {
	return func() tea.Msg {
		preview, err := workbook.Preview(path)
		return previewMsg{section: s, path: path, preview: preview, err: err}
	}
}

func (m Model) importFile() (tea.Model, tea.Cmd) {
	path := m.importPath
	controller := m.controller
	m.busy++
	if path != "" {
		m.status[sectionImport] = statusLine{text: "Importazione in corso..."}
	}
	return m, func() tea.Msg {
		msg, err := controller.Import(context.Background(), path)
		return actionDoneMsg{kind: actionImport, message: msg, err: err}
	}
}

func (m Model) mergeSelected() (tea.Model, tea.Cmd) {
	paths := slices.Clone(m.mergeFiles)
	controller := m.controller
	m.busy++
	if len(paths) > 0 {
		m.status[sectionMerge] = statusLine{text: "Unione file in corso..."}
	}
	return m, func() tea.Msg {
		msg, err := controller.Merge(context.Background(), paths)
		return actionDoneMsg{kind: actionMerge, message: msg, err: err}
	}
}

func (m Model) updateTemplates(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.saveTemplates()
	case key.Matches(msg, m.keys.NextField), key.Matches(msg, m.keys.PrevField):
		m.tplFocus = 1 - m.tplFocus
		if m.tplFocus == 0 {
			m.tplNotConverted.Blur()
			return m, m.tplConverted.Focus()
		}
		m.tplConverted.Blur()
		return m, m.tplNotConverted.Focus()
	}

	var cmd tea.Cmd
	if m.tplFocus == 0 {
		m.tplConverted, cmd = m.tplConverted.Update(msg)
	} else {
		m.tplNotConverted, cmd = m.tplNotConverted.Update(msg)
	}
	return m, cmd
}

func (m Model) saveTemplates() (tea.Model, tea.Cmd) {
	t := types.Templates{
		Converted:    m.tplConverted.Value(),
		NotConverted: m.tplNotConverted.Value(),
	}
	controller := m.controller
	m.busy++
	m.status[sectionTemplates] = statusLine{text: "Salvataggio in corso..."}
	return m, func() tea.Msg {
		msg, err := controller.SaveTemplates(context.Background(), t)
		return actionDoneMsg{kind: actionSaveTemplates, message: msg, err: err, templates: t}
	}
}

func sectionOf(kind actionKind) section {
	switch kind {
	case actionAddRow:
		return sectionManual
	case actionImport:
		return sectionImport
	case actionMerge:
		return sectionMerge
	case actionSaveTemplates:
		return sectionTemplates
	}
	return sectionTable
}

// failureLine is the inline status shown after a request failed. Pure
// validation failures only raise the alert.
func failureLine(kind actionKind, err error) (statusLine, bool) {
	if errors.Is(err, actions.ErrNoFile) || errors.Is(err, actions.ErrBlankRow) || errors.Is(err, actions.ErrNoColumns) {
		return statusLine{}, false
	}
	switch kind {
	case actionAddRow:
		return statusLine{text: "Aggiunta riga fallita.", isError: true}, true
	case actionImport:
		return statusLine{text: "Importazione fallita.", isError: true}, true
	case actionMerge:
		return statusLine{text: "Unione file fallita.", isError: true}, true
	case actionSaveTemplates:
		return statusLine{text: "Salvataggio fallito.", isError: true}, true
	case actionExport:
		return statusLine{text: "Esportazione fallita.", isError: true}, true
	}
	return statusLine{}, false
}

// alertText is the message shown in the alert box for a failed action.
func alertText(kind actionKind, err error) string {
	var cbErr *actions.ClipboardError
	switch {
	case errors.Is(err, actions.ErrNoSelection):
		if kind == actionCopy {
			return "Seleziona una riga prima di copiare il testo."
		}
		return "Seleziona una riga prima di modificare lo stato."
	case errors.Is(err, actions.ErrHeaderRow):
		if kind == actionCopy {
			return "Non puoi copiare la riga di intestazione."
		}
		return "Non puoi modificare la riga di intestazione."
	case errors.Is(err, actions.ErrNoColumns):
		return "Carica prima il DB per generare i campi."
	case errors.Is(err, actions.ErrBlankRow):
		return "Compila almeno un campo."
	case errors.Is(err, actions.ErrNoFile):
		if kind == actionMerge {
			return "Seleziona almeno un file da unire."
		}
		return "Seleziona un file da importare."
	case errors.As(err, &cbErr):
		return "Errore nella copia: " + cbErr.Err.Error()
	case errors.Is(err, api.ErrUnsupported):
		return "Operazione non supportata da questo server."
	case errors.Is(err, workbook.ErrUnsupportedFile):
		return "Errore: formato non supportato, usa un file .xlsx."
	}
	return "Errore: " + err.Error()
}
