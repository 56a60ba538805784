package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"crf-service/internal/usecase/study"
)

// StudyHandler serves the study tree and CRF data
type StudyHandler struct {
	uc  study.Usecase
	log *zap.Logger
}

// NewStudyHandler creates a new StudyHandler instance
func NewStudyHandler(uc study.Usecase, log *zap.Logger) *StudyHandler {
	return &StudyHandler{uc: uc, log: log}
}

// EventResponse is one event of the study tree.
type EventResponse struct {
	EventCode string        `json:"event_code"`
	EventName string        `json:"event_name"`
	CRFs      []CRFResponse `json:"crfs"`
}

// CRFResponse is one CRF under an event.
type CRFResponse struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	ParentCode *string `json:"parent_code"`
	Ordinal    int     `json:"ordinal"`
}

// CRFDetailResponse is the labelled data of one CRF.
type CRFDetailResponse struct {
	TableName string          `json:"table_name,omitempty"`
	Error     string          `json:"error,omitempty"`
	Fields    []FieldResponse `json:"fields"`
}

// FieldResponse is one labelled CRF value.
type FieldResponse struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value any    `json:"value"`
}

// SaveCRFRequest is the body of a CRF save. Numbers in Data stay json.Number
// so integers wider than 53 bits reach the database intact.
type SaveCRFRequest struct {
	TableName *string        `json:"table_name" binding:"required"`
	Data      map[string]any `json:"data" binding:"required"`
}

// Structure handles GET /api/structure. Failures yield an empty list.
func (h *StudyHandler) Structure(c *gin.Context) {
	tree, err := h.uc.Structure(c.Request.Context())
	if err != nil {
		h.log.Error("failed to fetch study structure", zap.Error(err))
		c.JSON(http.StatusOK, []EventResponse{})
		return
	}

	out := make([]EventResponse, len(tree))
	for i, e := range tree {
		crfs := make([]CRFResponse, len(e.CRFs))
		for j, n := range e.CRFs {
			crfs[j] = CRFResponse{Code: n.Code, Name: n.Name, ParentCode: n.ParentCode, Ordinal: n.Ordinal}
		}
		out[i] = EventResponse{EventCode: e.EventCode, EventName: e.EventName, CRFs: crfs}
	}
	c.JSON(http.StatusOK, out)
}

// CRFDetail handles GET /api/crf/:patient_id/:event_code/:crf_code
func (h *StudyHandler) CRFDetail(c *gin.Context) {
	resp, err := h.uc.CRFDetail(c.Request.Context(), study.CRFDetailRequest{
		PatientID: c.Param("patient_id"),
		EventCode: c.Param("event_code"),
		CRFCode:   c.Param("crf_code"),
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	fields := make([]FieldResponse, len(resp.Fields))
	for i, f := range resp.Fields {
		fields[i] = FieldResponse{Key: f.Key, Label: f.Label, Value: f.Value}
	}
	c.JSON(http.StatusOK, CRFDetailResponse{TableName: resp.TableName, Error: resp.Error, Fields: fields})
}

// SaveCRF handles POST /api/crf/save/:patient_id
func (h *StudyHandler) SaveCRF(c *gin.Context) {
	var req SaveCRFRequest
	if err := decodeJSON(c, &req); err != nil {
		bindError(c, h.log, err)
		return
	}

	resp, err := h.uc.SaveCRF(c.Request.Context(), study.SaveCRFRequest{
		PatientID: c.Param("patient_id"),
		TableName: *req.TableName,
		Data:      req.Data,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MutationResponse{Success: resp.Success, Error: resp.Error})
}

// decodeJSON binds the request body like ShouldBindJSON but keeps numbers as
// json.Number.
func decodeJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil {
		return errors.New("invalid request")
	}
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(obj); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(obj)
}
