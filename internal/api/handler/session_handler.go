package handler

import (
	"errors"
	"net/http"

	"casteaching-go/internal/api/dto"
	"casteaching-go/internal/api/middleware"
	"casteaching-go/internal/config"
	"casteaching-go/internal/service"
	"casteaching-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const LoginPath = "/login"

// SessionHandler 网页登录与注销
type SessionHandler struct {
	authService *service.AuthService
	cfg         *config.SessionConfig
}

func NewSessionHandler(authService *service.AuthService, cfg *config.SessionConfig) *SessionHandler {
	return &SessionHandler{authService: authService, cfg: cfg}
}

// LoginForm GET /login
func (h *SessionHandler) LoginForm(c *gin.Context) {
	if _, ok := middleware.GetCurrentUser(c); ok {
		c.Redirect(http.StatusFound, ManageVideosPath)
		return
	}
	c.HTML(http.StatusOK, "auth/login.html", newPage(c, "Log in"))
}

// Login POST /login
func (h *SessionHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.loginFailed(c, req.Email, "Please provide a valid email and password.")
		return
	}

	sid, user, err := h.authService.StartSession(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredential) {
			h.loginFailed(c, req.Email, err.Error())
			return
		}
		logger.Error("Login failed", zap.Error(err))
		ServerErrorPage(c)
		return
	}

	middleware.SetSessionCookie(c, h.cfg, sid)
	logger.Info("User logged in", zap.Int64("user_id", user.ID))
	c.Redirect(http.StatusFound, ManageVideosPath)
}

// Logout POST /logout
func (h *SessionHandler) Logout(c *gin.Context) {
	if err := h.authService.EndSession(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		logger.Warn("Destroy session failed", zap.Error(err))
	}
	middleware.ClearSessionCookie(c, h.cfg)
	c.Redirect(http.StatusFound, LoginPath)
}

func (h *SessionHandler) loginFailed(c *gin.Context, email, message string) {
	page := newPage(c, "Log in")
	page.Email = email
	page.Error = message
	c.HTML(http.StatusUnprocessableEntity, "auth/login.html", page)
}
