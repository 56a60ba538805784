package study

// CRFDetailRequest selects one CRF of one patient.
type CRFDetailRequest struct {
	PatientID string
	EventCode string
	CRFCode   string
}

// CRFDetailResponse is the labelled CRF data. When Error is set, TableName is
// empty and Fields is empty.
type CRFDetailResponse struct {
	TableName string
	Fields    []Field
	Error     string
}

// Field is one labelled CRF value.
type Field struct {
	Key   string
	Label string
	Value any
}

// SaveCRFRequest carries the values to write into a CRF data table.
type SaveCRFRequest struct {
	PatientID string
	TableName string
	Data      map[string]any
}

// SaveCRFResponse reports the outcome of a CRF save.
type SaveCRFResponse struct {
	Success bool
	Error   string
}
