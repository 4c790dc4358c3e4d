package copytext

import (
	"strings"

	"github.com/nconklindev/dexcel/internal/types"
)

// FieldMap maps each uppercased, trimmed column name to the row value
// in the same position. Blank column names are skipped.
func FieldMap(columns []string, row types.Row) map[string]string {
	fields := make(map[string]string, len(columns))
	for i, col := range columns {
		key := strings.ToUpper(strings.TrimSpace(col))
		if key == "" {
			continue
		}
		fields[key] = row.Value(i)
	}
	return fields
}

// Choose picks the converted template when the row carries the
// CONVERTITA marker, and the not-converted template otherwise.
func Choose(fields map[string]string, t types.Templates) string {
	if types.IsMarked(fields[types.ColConverted]) {
		return t.Converted
	}
	return t.NotConverted
}

// Substitute replaces every placeholder in template with its field
// value, or "" when the row has no such column.
func Substitute(template string, fields map[string]string) string {
	pairs := make([]string, 0, 2*len(types.Placeholders))
	for _, name := range types.Placeholders {
		pairs = append(pairs, "{"+name+"}", fields[name])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Build produces the trimmed clipboard text for row.
func Build(columns []string, row types.Row, t types.Templates) string {
	fields := FieldMap(columns, row)
	return strings.TrimSpace(Substitute(Choose(fields, t), fields))
}
