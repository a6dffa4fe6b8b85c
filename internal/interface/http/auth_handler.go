package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bonsai-buddy/internal/application"
	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
	"github.com/oksasatya/bonsai-buddy/pkg/helpers"
	"github.com/oksasatya/bonsai-buddy/pkg/response"
)

type AuthHandler struct {
	base
	Auth     *application.AuthService
	Profiles *application.ProfileService
	Cookies  *helpers.Manager
}

func NewAuthHandler(svc *application.Services, cookies *helpers.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{base: base{Logger: logger}, Auth: svc.Auth, Profiles: svc.Profiles, Cookies: cookies}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

func tokenMeta(pair application.TokenPair) map[string]any {
	return map[string]any{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req application.RegisterInput
	if !h.bind(c, &req) {
		return
	}
	profile, pair, err := h.Auth.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusCreated, profile, "account created", tokenMeta(pair))
}

// Login POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !h.bind(c, &req) {
		return
	}
	profile, pair, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, profile, "login successful", tokenMeta(pair))
}

// Refresh POST /api/refresh, refresh token from the cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		h.fail(c, apperror.NotAuthenticated("missing refresh token"))
		return
	}
	pair, _, err := h.Auth.Refresh(c.Request.Context(), refresh)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotAuthenticated {
			h.Cookies.Clear(c)
		}
		h.fail(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{"refreshed": true}, "token refreshed", tokenMeta(pair))
}

// Logout POST /api/logout always clears the cookies; the session is ended
// when the caller is identified.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context(), viewer(c)); err != nil {
		h.fail(c, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

// Me GET /api/me
func (h *AuthHandler) Me(c *gin.Context) {
	p, err := h.Profiles.Me(c.Request.Context(), viewer(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "current user", nil)
}

// ResetInit POST /api/auth/reset/init {email}. The answer does not reveal
// whether the address has an account.
func (h *AuthHandler) ResetInit(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if !h.bind(c, &req) {
		return
	}
	meta := application.RequestMeta{IP: clientIP(c), UserAgent: c.GetHeader("User-Agent")}
	if err := h.Auth.ResetInit(c.Request.Context(), req.Email, meta); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sent": true}, "if the address has an account, a reset link is on its way", nil)
}

// ResetConfirm POST /api/auth/reset/confirm {token, new_password}
func (h *AuthHandler) ResetConfirm(c *gin.Context) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if !h.bind(c, &req) {
		return
	}
	if err := h.Auth.ResetConfirm(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		h.fail(c, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"reset": true}, "password updated", nil)
}
