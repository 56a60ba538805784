package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crf-service/internal/usecase/user"
)

// UserHandler handles HTTP requests for user profiles
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{uc: uc, log: log}
}

// UpdateProfileRequest represents the HTTP request body for a profile update.
// Every field is optional.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Gender   *string `json:"gender"`
	Birthday *string `json:"birthday"`
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      *string    `json:"name"`
	Gender    *string    `json:"gender"`
	Birthday  *time.Time `json:"birthday"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// UpdateProfileResponse represents the HTTP response of a profile update
type UpdateProfileResponse struct {
	Success bool          `json:"success"`
	User    *UserResponse `json:"user,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// GetUser handles GET /api/user/:user_id
func (h *UserHandler) GetUser(c *gin.Context) {
	id := c.Param("user_id")

	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: id})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp))
}

// UpdateProfile handles PUT /api/user/:user_id/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, h.log, err)
		return
	}

	resp, err := h.uc.UpdateProfile(c.Request.Context(), user.UpdateProfileRequest{
		ID:       c.Param("user_id"),
		Name:     req.Name,
		Gender:   req.Gender,
		Birthday: req.Birthday,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	out := UpdateProfileResponse{Success: resp.Success, Error: resp.Error}
	if resp.User != nil {
		out.User = toUserResponse(resp.User)
	}
	c.JSON(http.StatusOK, out)
}

func toUserResponse(u *user.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Gender:    u.Gender,
		Birthday:  u.Birthday,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
