package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-service/internal/usecase/user"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{uc: uc, log: log}
}

// RegisterUserRequest represents the HTTP request body for registering a user
type RegisterUserRequest struct {
	Roll    string            `json:"roll" binding:"required"`
	Email   string            `json:"email" binding:"required,email"`
	Name    string            `json:"name"`
	Profile map[string]string `json:"profile"`
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID        string            `json:"id"`
	Roll      string            `json:"roll"`
	Email     string            `json:"email"`
	Name      string            `json:"name,omitempty"`
	Profile   map[string]string `json:"profile,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	// AlreadyExists is set on register when the email was already taken.
	AlreadyExists bool `json:"already_exists,omitempty"`
}

func toUserResponse(u user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Roll:      u.Roll,
		Email:     u.Email,
		Name:      u.Name,
		Profile:   u.Profile,
		CreatedAt: u.CreatedAt,
	}
}

// RegisterUser handles POST /v1/users. It answers 201 for a new user and
// 200 with the existing record when the email is already registered.
func (h *UserHandler) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid register user request", zap.Error(err))
		badRequest(c, err)
		return
	}

	resp, err := h.uc.Register(c.Request.Context(), user.RegisterUserRequest{
		Roll:    req.Roll,
		Email:   req.Email,
		Name:    req.Name,
		Profile: req.Profile,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	out := toUserResponse(resp.User)
	code := http.StatusCreated
	if !resp.Created {
		code = http.StatusOK
		out.AlreadyExists = true
	}
	c.JSON(code, out)
}

// GetUserByEmail handles GET /v1/users/email/:email
func (h *UserHandler) GetUserByEmail(c *gin.Context) {
	resp, err := h.uc.GetByEmail(c.Request.Context(), user.GetUserByEmailRequest{Email: c.Param("email")})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(resp.User))
}

// GetUserByRoll handles GET /v1/users/roll/:roll
func (h *UserHandler) GetUserByRoll(c *gin.Context) {
	resp, err := h.uc.GetByRoll(c.Request.Context(), user.GetUserByRollRequest{Roll: c.Param("roll")})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(resp.User))
}
