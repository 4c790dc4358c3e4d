package workbook

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/dexcel/internal/types"

	"github.com/xuri/excelize/v2"
)

const RowDetectionLimit = 10

// SheetName is the sheet written by Export.
const SheetName = "Clienti"

// UploadTypes are the extensions the backend can import.
var UploadTypes = []string{".xlsx", ".xlsm"}

var (
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrEmptyFile       = errors.New("empty file")
	ErrNoHeader        = errors.New("could not find header row")
)

// Fill colors for status rows, matching the table colors.
const (
	convertedFill    = "#C6EFCE"
	notConvertedFill = "#FFEB9C"
)

// IsUploadable reports whether path has an extension the backend imports.
func IsUploadable(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range UploadTypes {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Preview inspects a file before it is uploaded.
func Preview(path string) (*types.FilePreview, error) {
	if !IsUploadable(path) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFile)
	}

	data, err := ReadFileData(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	preview := &types.FilePreview{
		Path:     path,
		Headers:  data.Headers,
		RowCount: len(data.Rows),
	}

	present := make(map[string]bool, len(data.Headers))
	for _, h := range data.Headers {
		present[strings.ToUpper(strings.TrimSpace(h))] = true
	}
	for _, key := range types.MergeKeyColumns {
		if !present[key] {
			preview.MissingKeys = append(preview.MissingKeys, key)
		}
	}
	preview.StatusColumn = present[types.ColConverted] && present[types.ColNotConverted]

	return preview, nil
}

// ReadFileData reads the header and data rows of a spreadsheet
func ReadFileData(filePath string) (*types.FileData, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".xlsx", ".xlsm":
		return readXLSXData(filePath)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, ext)
	}
}

func readXLSXData(filePath string) (*types.FileData, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	headerRowIdx := findHeaderRow(rows)
	if headerRowIdx == -1 {
		return nil, ErrNoHeader
	}

	return &types.FileData{
		Headers:   rows[headerRowIdx],
		Rows:      rows[headerRowIdx+1:],
		HeaderRow: headerRowIdx,
	}, nil
}

// findHeaderRow locates the first row that appears to be a header
// by finding the row with the most non-empty text cells
func findHeaderRow(rows [][]string) int {
	maxNonEmpty := 0
	headerIdx := -1

	searchLimit := len(rows)
	if searchLimit > RowDetectionLimit*2 {
		searchLimit = RowDetectionLimit * 2
	}

	for i := 0; i < searchLimit; i++ {
		nonEmptyCount := 0
		hasText := false

		for _, cell := range rows[i] {
			trimmed := strings.TrimSpace(cell)
			if trimmed != "" {
				nonEmptyCount++
				if containsLetters(trimmed) {
					hasText = true
				}
			}
		}

		// Header should have multiple columns AND contain text
		if nonEmptyCount >= 2 && hasText && nonEmptyCount > maxNonEmpty {
			maxNonEmpty = nonEmptyCount
			headerIdx = i
		}
	}

	return headerIdx
}

// containsLetters checks if a string contains any alphabetic characters
func containsLetters(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

// exportRows returns the header followed by every data row, each padded
// to the column count.
func exportRows(snap *types.Snapshot) [][]string {
	records := make([][]string, 0, len(snap.Rows)+1)
	records = append(records, append([]string(nil), snap.Columns...))
	for _, row := range snap.Rows {
		if row.IsHeader() {
			continue
		}
		record := make([]string, len(snap.Columns))
		for i := range record {
			record[i] = row.Value(i)
		}
		records = append(records, record)
	}
	return records
}

// Export writes the snapshot to path as .xlsx or .csv. Status rows
// are filled in .xlsx output.
func Export(path string, snap *types.Snapshot) error {
	if len(snap.Columns) == 0 {
		return ErrEmptyFile
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return exportCSV(path, snap)
	case ".xlsx":
		return exportXLSX(path, snap)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(path))
	}
}

func exportCSV(path string, snap *types.Snapshot) error {
	outFile, err := os.Create(path)
	if err != nil {
		return err
	}
	defer outFile.Close()

	writer := csv.NewWriter(outFile)
	if err := writer.WriteAll(exportRows(snap)); err != nil {
		return err
	}
	return outFile.Close()
}

func exportXLSX(path string, snap *types.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	fills := make(map[types.Status]int, 2)
	for status, color := range map[types.Status]string{
		types.StatusConverted:    convertedFill,
		types.StatusNotConverted: notConvertedFill,
	} {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return err
		}
		fills[status] = id
	}

	convIdx := snap.ColumnIndex(types.ColConverted)
	nonConvIdx := snap.ColumnIndex(types.ColNotConverted)
	lastCol := len(snap.Columns)

	for i, record := range exportRows(snap) {
		rowNum := i + 1
		start, _ := excelize.CoordinatesToCellName(1, rowNum)
		end, _ := excelize.CoordinatesToCellName(lastCol, rowNum)

		if err := f.SetSheetRow(SheetName, start, &record); err != nil {
			return err
		}

		style := 0
		switch {
		case rowNum == 1:
			style = headerStyle
		case convIdx >= 0 && types.IsMarked(record[convIdx]):
			style = fills[types.StatusConverted]
		case nonConvIdx >= 0 && types.IsMarked(record[nonConvIdx]):
			style = fills[types.StatusNotConverted]
		}
		if style != 0 {
			if err := f.SetCellStyle(SheetName, start, end, style); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}
