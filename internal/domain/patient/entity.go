package patient

import "time"

// CreatedAtLayout is how a patient's enrolment date is presented in listings.
const CreatedAtLayout = "2006-01-02"

// Patient represents a study subject.
type Patient struct {
	ID           string    // ID is a uuid assigned on creation
	SubjectLabel string    // SubjectLabel is the human-facing subject code, e.g. "SUBJ-001"
	ProtocolID   string    // ProtocolID identifies the study protocol the subject is enrolled in
	CreatedAt    time.Time // CreatedAt is set by the database on insert
}

// CreatedDate returns the enrolment date formatted as YYYY-MM-DD.
func (p Patient) CreatedDate() string {
	if p.CreatedAt.IsZero() {
		return ""
	}
	return p.CreatedAt.Format(CreatedAtLayout)
}
