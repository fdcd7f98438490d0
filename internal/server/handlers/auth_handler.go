package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/meuestoque/internal/domain/models"
	"github.com/mamadbah2/meuestoque/internal/repository/memory"
	"github.com/mamadbah2/meuestoque/internal/server/auth"
)

const loginContextKey = "login"

// AuthHandler serves login and registration and guards the record routes.
type AuthHandler struct {
	users  *memory.UserRepository
	tokens *auth.TokenService
	logger *zap.Logger
}

// NewAuthHandler constructs the auth handler.
func NewAuthHandler(users *memory.UserRepository, tokens *auth.TokenService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{users: users, tokens: tokens, logger: logger}
}

// Login exchanges credentials for a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		abortWithMessage(c, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	if err := h.users.Authenticate(creds.Login, creds.Password); err != nil {
		h.logger.Info("login rejected", zap.String("login", creds.Login))
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	token, err := h.tokens.Generate(creds.Login)
	if err != nil {
		h.logger.Error("token generation failed", zap.Error(err))
		abortWithMessage(c, http.StatusInternalServerError, "Erro ao gerar token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Register creates a user; an existing login is rejected with 400.
func (h *AuthHandler) Register(c *gin.Context) {
	var reg models.Registration
	if err := c.ShouldBindJSON(&reg); err != nil || strings.TrimSpace(reg.Login) == "" || reg.Password == "" {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	if reg.Role == "" {
		reg.Role = "USER"
	}

	if err := h.users.Register(reg.Login, reg.Password, reg.Role); err != nil {
		if errors.Is(err, memory.ErrUserExists) {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		h.logger.Error("register failed", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusOK)
}

// RequireToken rejects requests without a valid bearer token with 403.
func (h *AuthHandler) RequireToken(c *gin.Context) {
	login, err := h.tokens.Validate(c.GetHeader("Authorization"))
	if err != nil {
		h.logger.Debug("request without valid token", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
	c.Set(loginContextKey, login)
	c.Next()
}
