package types

import "strings"

// Status marker columns in the customer sheet.
const (
	ColConverted    = "CONVERTITA"
	ColNotConverted = "PASSATA NON CONVERTITA"
)

// HeaderExcelRow is the Excel row number of the header row.
const HeaderExcelRow = 1

// Placeholders substituted into copy templates.
var Placeholders = []string{"NOME", "COGNOME", "TELEFONO", "MQ", "INDIRIZZO"}

// MergeKeyColumns are the columns the backend deduplicates merged rows on.
var MergeKeyColumns = []string{"NOME", "COGNOME", "ZONA"}

type Status int

const (
	StatusNone Status = iota
	StatusConverted
	StatusNotConverted
)

func (s Status) String() string {
	switch s {
	case StatusConverted:
		return "convertita"
	case StatusNotConverted:
		return "non convertita"
	}
	return "nessuno"
}

type Row struct {
	ExcelRow int      `json:"riga_excel"`
	Values   []string `json:"valori"`
}

// Value returns the value at column index i, or "" if the row is shorter.
func (r Row) Value(i int) string {
	if i < 0 || i >= len(r.Values) {
		return ""
	}
	return r.Values[i]
}

// IsHeader reports whether r is the spreadsheet header row.
func (r Row) IsHeader() bool {
	return r.ExcelRow == HeaderExcelRow
}

type Snapshot struct {
	Columns    []string `json:"colonne"`
	Rows       []Row    `json:"righe"`
	SourceName string   `json:"db_name"`
}

// ColumnIndex finds a column by exact name, then case-insensitively.
// It returns -1 if the column is missing.
func (s *Snapshot) ColumnIndex(name string) int {
	for i, col := range s.Columns {
		if col == name {
			return i
		}
	}
	for i, col := range s.Columns {
		if strings.EqualFold(strings.TrimSpace(col), strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

type Templates struct {
	Converted    string `json:"convertita"`
	NotConverted string `json:"non_convertita"`
}

// DefaultTemplates are used when the backend does not serve templates.
var DefaultTemplates = Templates{
	Converted: "-{NOME} {COGNOME};\n" +
		"-{TELEFONO};\n" +
		"-{MQ};\n" +
		"-{INDIRIZZO};\n" +
		"(Già chiamato, si aspetta una chiamata in giornata)",
	NotConverted: "-{NOME} {COGNOME};\n" +
		"-{TELEFONO};\n" +
		"-{MQ};\n" +
		"-{INDIRIZZO};\n" +
		"Passata non convertita, continuiamo a provare a contattarla.",
}

type StatusRequest struct {
	ExcelRow     int  `json:"riga_excel"`
	Converted    bool `json:"convertita"`
	NotConverted bool `json:"non_convertita"`
	Clear        bool `json:"pulisci"`
}

// StatusRequestFor builds the request that moves a row to status s.
func StatusRequestFor(excelRow int, s Status) StatusRequest {
	switch s {
	case StatusConverted:
		return StatusRequest{ExcelRow: excelRow, Converted: true}
	case StatusNotConverted:
		return StatusRequest{ExcelRow: excelRow, NotConverted: true}
	}
	return StatusRequest{ExcelRow: excelRow, Clear: true}
}

// Reply is the acknowledgement returned by mutating endpoints.
type Reply struct {
	Message string `json:"messaggio"`
}

type FileData struct {
	Headers   []string
	Rows      [][]string
	HeaderRow int
}

// FilePreview summarizes a local file before it is uploaded.
type FilePreview struct {
	Path         string
	Headers      []string
	RowCount     int
	MissingKeys  []string
	StatusColumn bool
}

// IsMarked reports whether a status cell holds the "X" marker.
func IsMarked(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "X")
}
