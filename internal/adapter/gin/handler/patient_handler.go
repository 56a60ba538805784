package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crf-service/internal/usecase/patient"
)

// PatientHandler handles HTTP requests for patients
type PatientHandler struct {
	uc  patient.Usecase
	log *zap.Logger
}

// NewPatientHandler creates a new PatientHandler instance
func NewPatientHandler(uc patient.Usecase, log *zap.Logger) *PatientHandler {
	return &PatientHandler{uc: uc, log: log}
}

// PatientRequest is the body of patient create and update.
type PatientRequest struct {
	SubjectLabel *string `json:"subject_label" binding:"required"`
	ProtocolID   *string `json:"protocol_id" binding:"required"`
}

// PatientResponse is one row of the patient listing.
type PatientResponse struct {
	ID           string `json:"id"`
	SubjectLabel string `json:"subject_label"`
	ProtocolID   string `json:"protocol_id"`
	CreatedAt    string `json:"created_at"`
}

// ListPatients handles GET /api/patients
func (h *PatientHandler) ListPatients(c *gin.Context) {
	patients, err := h.uc.ListPatients(c.Request.Context(), patient.ListPatientsRequest{
		Query: c.Query("query"),
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	out := make([]PatientResponse, len(patients))
	for i, p := range patients {
		out[i] = PatientResponse{
			ID:           p.ID,
			SubjectLabel: p.SubjectLabel,
			ProtocolID:   p.ProtocolID,
			CreatedAt:    p.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, out)
}

// CreatePatient handles POST /api/patients
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, h.log, err)
		return
	}

	resp, err := h.uc.CreatePatient(c.Request.Context(), patient.CreatePatientRequest{
		SubjectLabel: *req.SubjectLabel,
		ProtocolID:   *req.ProtocolID,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toMutationResponse(resp))
}

// UpdatePatient handles PUT /api/patients/:patient_id
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	var req PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, h.log, err)
		return
	}

	resp, err := h.uc.UpdatePatient(c.Request.Context(), patient.UpdatePatientRequest{
		ID:           c.Param("patient_id"),
		SubjectLabel: *req.SubjectLabel,
		ProtocolID:   *req.ProtocolID,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toMutationResponse(resp))
}

// DeletePatient handles DELETE /api/patients/:patient_id
func (h *PatientHandler) DeletePatient(c *gin.Context) {
	resp, err := h.uc.DeletePatient(c.Request.Context(), patient.DeletePatientRequest{ID: c.Param("patient_id")})
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toMutationResponse(resp))
}

func toMutationResponse(r *patient.MutationResponse) MutationResponse {
	return MutationResponse{Success: r.Success, ID: r.ID, Error: r.Error}
}
