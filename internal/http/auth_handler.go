package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"book-catalog/internal/service"
	"book-catalog/internal/validation"
)

// AuthHandler mantiene dependencias para endpoints de autenticación.
type AuthHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	tokenSvc *service.TokenService
}

// NewAuthHandler crea una instancia de AuthHandler con dependencias necesarias.
func NewAuthHandler(logger *zap.Logger, userServ *service.UserService, tokenSvc *service.TokenService) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		userServ: userServ,
		tokenSvc: tokenSvc,
	}
}

// Register maneja POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req validation.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		respondError(c, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	input, details := validation.ParseRegister(req)
	if details != nil {
		respondValidationError(c, details)
		return
	}

	user, err := h.userServ.Register(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			respondError(c, http.StatusBadRequest, "Bad Request", "User with this email already exists")
			return
		}
		h.logger.Error("register failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Internal Server Error", "Failed to register user")
		return
	}

	token, err := h.tokenSvc.Issue(user.ID)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Internal Server Error", "Failed to issue token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   token,
		"user":    user,
	})
}

// Login maneja POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req validation.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		respondError(c, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	input, details := validation.ParseLogin(req)
	if details != nil {
		respondValidationError(c, details)
		return
	}

	user, err := h.userServ.Authenticate(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			// Mismo cuerpo para email inexistente y contraseña incorrecta.
			respondError(c, http.StatusUnauthorized, "Unauthorized", "Invalid credentials")
			return
		case errors.Is(err, service.ErrRateLimited):
			respondError(c, http.StatusTooManyRequests, "Too Many Requests", "Too many login attempts")
			return
		default:
			h.logger.Error("login failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "Internal Server Error", "Failed to login")
			return
		}
	}

	token, err := h.tokenSvc.Issue(user.ID)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Internal Server Error", "Failed to issue token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// GetProfile maneja GET /api/auth/profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Access denied", "No token provided")
		return
	}

	user, err := h.userServ.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "Not Found", "User not found")
			return
		}
		h.logger.Error("get profile failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
