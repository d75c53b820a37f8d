package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/mycurrency/internal/core/ports/services"
	"github.com/SscSPs/mycurrency/internal/dto"
	"github.com/SscSPs/mycurrency/internal/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication related requests.
type AuthHandler struct {
	authService portssvc.AuthSvc
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as portssvc.AuthSvc) *AuthHandler {
	return &AuthHandler{authService: as}
}

// registerAuthRoutes sets up the routes for authentication.
// The login route is rate limited per client IP.
func registerAuthRoutes(r *gin.Engine, authService portssvc.AuthSvc, limit gin.HandlerFunc) {
	h := NewAuthHandler(authService)

	auth := r.Group("/auth")
	{
		auth.POST("/login", limit, h.Login)
	}
}

// Login godoc
// @Summary Admin login
// @Description Authenticates the administrator and returns a JWT token.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	token, expiresAt, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		status, msg := statusAndMessage(err, "Failed to generate token")
		if status >= http.StatusInternalServerError {
			logger := middleware.GetLoggerFromCtx(c.Request.Context())
			logger.Error("Login failed", slog.String("error", err.Error()))
		}
		c.JSON(status, ErrorResponse{Error: msg})
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{Token: token, ExpiresAt: expiresAt})
}
