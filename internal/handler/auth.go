package handler

import (
	"net/http"

	"agenda/internal/middleware"
	"agenda/internal/model"
	"agenda/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles registration, login and the caller's own profile
type AuthHandler struct {
	users *service.UserService
}

func NewAuthHandler(users *service.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

// Register handles user registration
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	resp, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.NewSuccessResponse("User registered", resp))
}

// Login exchanges credentials for a session token
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	resp, err := h.users.Login(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Logged in", resp))
}

// Me returns the authenticated user
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.Session(c).User
	c.JSON(http.StatusOK, model.NewSuccessResponse("", user.ToResponse()))
}

// UpdateProfile changes the caller's descriptive fields
// @Router /auth/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req model.ProfileRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), middleware.Session(c).User, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Profile updated", user.ToResponse()))
}
