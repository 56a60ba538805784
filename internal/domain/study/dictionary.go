package study

// DictionaryEntry labels one column of a CRF data table.
type DictionaryEntry struct {
	ColumnName   string
	DisplayLabel string
	Ordinal      int
}

// Field is a labelled value of a patient's CRF.
type Field struct {
	Key   string
	Label string
	Value any
}

// Column is a value to write into a CRF data table.
type Column struct {
	Name  string
	Value any
}

// BuildFields projects a CRF data row through the dictionary. Columns the
// dictionary does not list are hidden; listed columns missing from the row
// (or a nil row) yield nil values.
func BuildFields(dictionary []DictionaryEntry, row map[string]any) []Field {
	fields := make([]Field, 0, len(dictionary))
	for _, entry := range dictionary {
		fields = append(fields, Field{
			Key:   entry.ColumnName,
			Label: entry.DisplayLabel,
			Value: row[entry.ColumnName],
		})
	}
	return fields
}
