package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/panel_api/internal/metrics"
	"github.com/GTDGit/panel_api/internal/service"
	"github.com/GTDGit/panel_api/internal/utils"
)

type AuthHandler struct {
	authService   *service.AuthService
	secureCookies bool
}

func NewAuthHandler(authService *service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookies: secureCookies}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	session, err := h.authService.Login(req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			metrics.LoginAttempts.WithLabelValues("rejected").Inc()
			utils.Error(c, 401, "INVALID_CREDENTIALS", "Invalid password")
			return
		}
		utils.ServiceError(c, err, "Failed to log in")
		return
	}
	metrics.LoginAttempts.WithLabelValues("ok").Inc()

	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	h.setCookie(c, session.Token, maxAge)
	utils.Success(c, 200, "Login successful", session)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.setCookie(c, "", -1)
	utils.Success(c, 200, "Logged out", nil)
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.SessionCookie, value, maxAge, "/", "", h.secureCookies, true)
}
