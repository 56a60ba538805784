package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crf-service/internal/usecase/admin"
)

// AdminHandler serves the administrator dashboard
type AdminHandler struct {
	uc  admin.Usecase
	log *zap.Logger
}

// NewAdminHandler creates a new AdminHandler instance
func NewAdminHandler(uc admin.Usecase, log *zap.Logger) *AdminHandler {
	return &AdminHandler{uc: uc, log: log}
}

// StatsResponse is the dashboard summary.
type StatsResponse struct {
	UserCount    int64          `json:"user_count"`
	PatientCount int64          `json:"patient_count"`
	GenderStats  []GenderBucket `json:"gender_stats"`
	YearStats    []YearBucket   `json:"year_stats"`
}

// GenderBucket is a labelled gender count, shaped for chart libraries.
type GenderBucket struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// YearBucket is a birth year count.
type YearBucket struct {
	Year  string `json:"year"`
	Count int64  `json:"count"`
}

// Stats handles GET /api/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	s, err := h.uc.Stats(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	out := StatsResponse{
		UserCount:    s.UserCount,
		PatientCount: s.PatientCount,
		GenderStats:  make([]GenderBucket, len(s.GenderStats)),
		YearStats:    make([]YearBucket, len(s.YearStats)),
	}
	for i, g := range s.GenderStats {
		out.GenderStats[i] = GenderBucket{Name: g.Name, Value: g.Value}
	}
	for i, y := range s.YearStats {
		out.YearStats[i] = YearBucket{Year: y.Year, Count: y.Count}
	}
	c.JSON(http.StatusOK, out)
}
