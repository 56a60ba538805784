package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	usecase "crf-service/internal/usecase/user"
	pkgerrors "crf-service/pkg/errors"
)

// MockUserUsecase is a mock implementation of user.Usecase
type MockUserUsecase struct {
	mock.Mock
}

func (m *MockUserUsecase) GetUser(ctx context.Context, req usecase.GetUserRequest) (*usecase.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.User), args.Error(1)
}

func (m *MockUserUsecase) UpdateProfile(ctx context.Context, req usecase.UpdateProfileRequest) (*usecase.UpdateProfileResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.UpdateProfileResponse), args.Error(1)
}

func setupUserTest(t *testing.T) (*gin.Engine, *MockUserUsecase) {
	gin.SetMode(gin.TestMode)
	mockUsecase := new(MockUserUsecase)
	h := NewUserHandler(mockUsecase, zaptest.NewLogger(t))

	r := gin.New()
	r.GET("/api/user/:user_id", h.GetUser)
	r.PUT("/api/user/:user_id/profile", h.UpdateProfile)
	return r, mockUsecase
}

func strPtr(s string) *string { return &s }

func TestGetUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupUserTest(t)
		birthday := time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)
		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: "u-1"}).
			Return(&usecase.User{ID: "u-1", Email: "a@example.com", Name: strPtr("张三"), Birthday: &birthday}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/user/u-1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "u-1", body["id"])
		assert.Equal(t, "张三", body["name"])
		assert.Nil(t, body["gender"])
		assert.Equal(t, "1990-01-02T00:00:00Z", body["birthday"])
		assert.Contains(t, body, "createdAt")
	})

	t.Run("NotFound", func(t *testing.T) {
		r, mockUsecase := setupUserTest(t)
		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: "ghost"}).
			Return(nil, pkgerrors.NewNotFoundError("user", "User not found"))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/user/ghost", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"detail":"User not found"}`, w.Body.String())
	})

	t.Run("InternalError", func(t *testing.T) {
		r, mockUsecase := setupUserTest(t)
		mockUsecase.On("GetUser", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: connection refused"))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/user/u-1", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"detail":"Internal Server Error"}`, w.Body.String())
	})
}

func TestUpdateProfile(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupUserTest(t)
		mockUsecase.On("UpdateProfile", mock.Anything, usecase.UpdateProfileRequest{
			ID:       "u-1",
			Gender:   strPtr("female"),
			Birthday: strPtr("1992-03-04T00:00:00.000Z"),
		}).Return(&usecase.UpdateProfileResponse{Success: true, User: &usecase.User{ID: "u-1", Gender: strPtr("female")}}, nil)

		body := `{"gender":"female","birthday":"1992-03-04T00:00:00.000Z"}`
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/user/u-1/profile", bytes.NewBufferString(body)))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["success"])
		assert.NotContains(t, resp, "error")
		user := resp["user"].(map[string]any)
		assert.Equal(t, "female", user["gender"])
		mockUsecase.AssertExpectations(t)
	})

	t.Run("NoChanges", func(t *testing.T) {
		r, mockUsecase := setupUserTest(t)
		mockUsecase.On("UpdateProfile", mock.Anything, usecase.UpdateProfileRequest{ID: "u-1"}).
			Return(&usecase.UpdateProfileResponse{Error: usecase.ErrNoChanges}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/user/u-1/profile", bytes.NewBufferString(`{}`)))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"没有提交任何更改"}`, w.Body.String())
	})

	t.Run("MalformedBody", func(t *testing.T) {
		r, mockUsecase := setupUserTest(t)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/user/u-1/profile", bytes.NewBufferString(`{"name":`)))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUsecase.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
	})
}
