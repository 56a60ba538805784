package patient

// ListPatientsRequest filters the patient list. An empty query lists everyone.
type ListPatientsRequest struct {
	Query string
}

// Patient represents a patient row of the listing.
type Patient struct {
	ID           string
	SubjectLabel string
	ProtocolID   string
	CreatedAt    string // YYYY-MM-DD
}

// CreatePatientRequest represents the request payload for enrolling a patient.
// Empty labels are stored as given; only the column width is enforced.
type CreatePatientRequest struct {
	SubjectLabel string `validate:"max=100"`
	ProtocolID   string `validate:"max=100"`
}

// UpdatePatientRequest represents the request payload for editing a patient.
type UpdatePatientRequest struct {
	ID           string `validate:"required"`
	SubjectLabel string `validate:"max=100"`
	ProtocolID   string `validate:"max=100"`
}

// DeletePatientRequest represents the request payload for deleting a patient.
type DeletePatientRequest struct {
	ID string `validate:"required"`
}

// MutationResponse reports the outcome of a write. ID is set on create only.
type MutationResponse struct {
	Success bool
	ID      string
	Error   string
}
