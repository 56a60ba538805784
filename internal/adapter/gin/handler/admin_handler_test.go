package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"

	"crf-service/internal/domain/stats"
)

// MockAdminUsecase is a mock implementation of admin.Usecase
type MockAdminUsecase struct {
	mock.Mock
}

func (m *MockAdminUsecase) Stats(ctx context.Context) (*stats.AdminStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stats.AdminStats), args.Error(1)
}

func setupAdminTest(t *testing.T) (*gin.Engine, *MockAdminUsecase) {
	gin.SetMode(gin.TestMode)
	mockUsecase := new(MockAdminUsecase)
	h := NewAdminHandler(mockUsecase, zaptest.NewLogger(t))

	r := gin.New()
	r.GET("/api/admin/stats", h.Stats)
	return r, mockUsecase
}

func TestAdminStats(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupAdminTest(t)
		mockUsecase.On("Stats", mock.Anything).Return(&stats.AdminStats{
			UserCount:    5,
			PatientCount: 0,
			GenderStats:  []stats.GenderStat{{Name: "男", Value: 3}},
			YearStats:    []stats.YearStat{},
		}, nil)

		w := serve(r, http.MethodGet, "/api/admin/stats", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_count":5,"patient_count":0,"gender_stats":[{"name":"男","value":3}],"year_stats":[]}`, w.Body.String())
	})

	t.Run("Failure", func(t *testing.T) {
		r, mockUsecase := setupAdminTest(t)
		mockUsecase.On("Stats", mock.Anything).Return(nil, errors.New("count users: connection refused"))

		w := serve(r, http.MethodGet, "/api/admin/stats", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"detail":"Internal Server Error"}`, w.Body.String())
	})
}
