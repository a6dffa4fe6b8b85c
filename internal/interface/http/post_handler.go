package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bonsai-buddy/internal/application"
	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
	"github.com/oksasatya/bonsai-buddy/pkg/response"
)

type PostHandler struct {
	base
	Svc *application.PostService
}

func NewPostHandler(svc *application.Services, logger *logrus.Logger) *PostHandler {
	return &PostHandler{base: base{Logger: logger}, Svc: svc.Posts}
}

// Feed GET /api/posts
func (h *PostHandler) Feed(c *gin.Context) {
	posts, err := h.Svc.Feed(c.Request.Context(), viewer(c), queryLimit(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, posts, "feed", nil)
}

func (h *PostHandler) Get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), viewer(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "post", nil)
}

// Create POST /api/posts (multipart: specimen_id, caption, is_public, image)
func (h *PostHandler) Create(c *gin.Context) {
	in := application.CreatePostInput{
		SpecimenID: c.PostForm("specimen_id"),
		Caption:    formString(c, "caption"),
	}
	if raw := strings.TrimSpace(c.PostForm("is_public")); raw != "" {
		public, err := strconv.ParseBool(raw)
		if err != nil {
			h.fail(c, apperror.Validation("invalid input", map[string]string{"is_public": "must be true or false"}))
			return
		}
		in.IsPublic = &public
	}
	img, err := formImage(c, "image")
	if err != nil {
		h.fail(c, err)
		return
	}
	p, err := h.Svc.Create(c.Request.Context(), viewer(c), in, img)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p, "post created", nil)
}

// Update PATCH /api/posts/:id accepts JSON {caption}, or multipart when the
// photo is replaced.
func (h *PostHandler) Update(c *gin.Context) {
	var (
		in  application.UpdatePostInput
		img *application.ImageUpload
		err error
	)
	if isMultipart(c) {
		in.Caption = formString(c, "caption")
		if img, err = formImage(c, "image"); err != nil {
			h.fail(c, err)
			return
		}
	} else if !h.bind(c, &in) {
		return
	}
	p, err := h.Svc.Update(c.Request.Context(), viewer(c), c.Param("id"), in, img)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "post updated", nil)
}

// SetPrivacy PUT /api/posts/:id/privacy {is_public}
func (h *PostHandler) SetPrivacy(c *gin.Context) {
	var req struct {
		IsPublic *bool `json:"is_public"`
	}
	if !h.bind(c, &req) {
		return
	}
	if req.IsPublic == nil {
		h.fail(c, apperror.Validation("invalid payload", map[string]string{"is_public": "is required"}))
		return
	}
	p, err := h.Svc.SetPrivacy(c.Request.Context(), viewer(c), c.Param("id"), *req.IsPublic)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "post updated", nil)
}

// Delete DELETE /api/posts/:id?confirm=true
func (h *PostHandler) Delete(c *gin.Context) {
	if !h.confirmed(c) {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), viewer(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "post deleted", nil)
}

func (h *PostHandler) Like(c *gin.Context) {
	st, err := h.Svc.Like(c.Request.Context(), viewer(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, st, "post liked", nil)
}

func (h *PostHandler) Unlike(c *gin.Context) {
	st, err := h.Svc.Unlike(c.Request.Context(), viewer(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, st, "post unliked", nil)
}
