package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bonsai-buddy/internal/application"
	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
	"github.com/oksasatya/bonsai-buddy/pkg/response"
)

type ProfileHandler struct {
	base
	Svc *application.ProfileService
}

func NewProfileHandler(svc *application.Services, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{base: base{Logger: logger}, Svc: svc.Profiles}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	p, err := h.Svc.Me(c.Request.Context(), viewer(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "profile", nil)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req application.UpdateProfileInput
	if !h.bind(c, &req) {
		return
	}
	p, err := h.Svc.Update(c.Request.Context(), viewer(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "profile updated", nil)
}

// UploadAvatar POST /api/profile/avatar (multipart, field "avatar")
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	img, err := formImage(c, "avatar")
	if err != nil {
		h.fail(c, err)
		return
	}
	p, err := h.Svc.UploadAvatar(c.Request.Context(), viewer(c), img)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "avatar updated", nil)
}

func (h *ProfileHandler) Preferences(c *gin.Context) {
	prefs, err := h.Svc.Preferences(c.Request.Context(), viewer(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, prefs, "preferences", nil)
}

func (h *ProfileHandler) preferencesResult(c *gin.Context, prefs entity.Preferences, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, prefs, "preferences updated", nil)
}

func (h *ProfileHandler) SetTheme(c *gin.Context) {
	var req struct {
		Theme string `json:"theme"`
	}
	if !h.bind(c, &req) {
		return
	}
	prefs, err := h.Svc.SetTheme(c.Request.Context(), viewer(c), req.Theme)
	h.preferencesResult(c, prefs, err)
}

func (h *ProfileHandler) SetPrivacy(c *gin.Context) {
	var req struct {
		IsPrivate *bool `json:"is_private"`
	}
	if !h.bind(c, &req) {
		return
	}
	if req.IsPrivate == nil {
		h.fail(c, apperror.Validation("invalid payload", map[string]string{"is_private": "is required"}))
		return
	}
	prefs, err := h.Svc.SetPrivacy(c.Request.Context(), viewer(c), *req.IsPrivate)
	h.preferencesResult(c, prefs, err)
}

func (h *ProfileHandler) SetEmailPreferences(c *gin.Context) {
	var req entity.EmailPreferences
	if !h.bind(c, &req) {
		return
	}
	prefs, err := h.Svc.SetEmailPreferences(c.Request.Context(), viewer(c), req)
	h.preferencesResult(c, prefs, err)
}

func (h *ProfileHandler) SetNotificationSettings(c *gin.Context) {
	var req entity.NotificationSettings
	if !h.bind(c, &req) {
		return
	}
	prefs, err := h.Svc.SetNotificationSettings(c.Request.Context(), viewer(c), req)
	h.preferencesResult(c, prefs, err)
}

// Search GET /api/users/search?q=&seq=
func (h *ProfileHandler) Search(c *gin.Context) {
	users, err := h.Svc.SearchUsers(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, users, "users", seqMeta(c))
}

// UserPage GET /api/users/:id
func (h *ProfileHandler) UserPage(c *gin.Context) {
	page, err := h.Svc.UserPage(c.Request.Context(), viewer(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, page, "user", nil)
}
