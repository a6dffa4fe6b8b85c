package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bonsai-buddy/internal/application"
	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
	"github.com/oksasatya/bonsai-buddy/pkg/response"
)

type SpecimenHandler struct {
	base
	Svc  *application.SpecimenService
	Subs *application.SubscriptionService
}

func NewSpecimenHandler(svc *application.Services, logger *logrus.Logger) *SpecimenHandler {
	return &SpecimenHandler{base: base{Logger: logger}, Svc: svc.Specimens, Subs: svc.Subscriptions}
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

// formInt parses an optional integer form field.
func formInt(c *gin.Context, field string) (*int, error) {
	raw, ok := c.GetPostForm(field)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, apperror.Validation("invalid input", map[string]string{field: "must be a whole number"})
	}
	return &n, nil
}

func formString(c *gin.Context, field string) *string {
	if v, ok := c.GetPostForm(field); ok {
		return &v
	}
	return nil
}

func (h *SpecimenHandler) List(c *gin.Context) {
	rows, err := h.Svc.List(c.Request.Context(), viewer(c), queryLimit(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows, "specimens", nil)
}

// Search GET /api/specimens/search?q=&seq=
func (h *SpecimenHandler) Search(c *gin.Context) {
	rows, err := h.Svc.Search(c.Request.Context(), viewer(c), c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows, "specimens", seqMeta(c))
}

func (h *SpecimenHandler) Get(c *gin.Context) {
	sp, err := h.Svc.Get(c.Request.Context(), viewer(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, sp, "specimen", nil)
}

// Create POST /api/specimens (multipart: name, species, age, health,
// care_notes, image)
func (h *SpecimenHandler) Create(c *gin.Context) {
	age, err := formInt(c, "age")
	if err != nil {
		h.fail(c, err)
		return
	}
	in := application.AddSpecimenInput{
		Name:      c.PostForm("name"),
		Species:   c.PostForm("species"),
		Health:    c.PostForm("health"),
		CareNotes: formString(c, "care_notes"),
	}
	if age != nil {
		in.Age = *age
	}
	img, err := formImage(c, "image")
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.Svc.Add(c.Request.Context(), viewer(c), in, img)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res, "specimen added", nil)
}

// Update PATCH /api/specimens/:id accepts JSON, or multipart when the photo
// is replaced.
func (h *SpecimenHandler) Update(c *gin.Context) {
	var (
		patch entity.SpecimenPatch
		img   *application.ImageUpload
		err   error
	)
	if isMultipart(c) {
		if patch.Age, err = formInt(c, "age"); err != nil {
			h.fail(c, err)
			return
		}
		patch.Name = formString(c, "name")
		patch.Species = formString(c, "species")
		patch.CareNotes = formString(c, "care_notes")
		if v := formString(c, "health"); v != nil {
			health := entity.HealthStatus(strings.TrimSpace(*v))
			patch.Health = &health
		}
		if img, err = formImage(c, "image"); err != nil {
			h.fail(c, err)
			return
		}
	} else if !h.bind(c, &patch) {
		return
	}
	sp, err := h.Svc.Update(c.Request.Context(), viewer(c), c.Param("id"), patch, img)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, sp, "specimen updated", nil)
}

// Delete DELETE /api/specimens/:id?confirm=true removes the specimen and
// everything attached to it.
func (h *SpecimenHandler) Delete(c *gin.Context) {
	if !h.confirmed(c) {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), viewer(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "specimen deleted", nil)
}

// Posts GET /api/specimens/:id/posts
func (h *SpecimenHandler) Posts(c *gin.Context) {
	posts, err := h.Svc.Timeline(c.Request.Context(), viewer(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, posts, "posts", nil)
}

func (h *SpecimenHandler) subscription(c *gin.Context, st application.SubscriptionStatus, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, st, "subscription", nil)
}

func (h *SpecimenHandler) SubscriptionStatus(c *gin.Context) {
	st, err := h.Subs.Status(c.Request.Context(), viewer(c), c.Param("id"))
	h.subscription(c, st, err)
}

func (h *SpecimenHandler) Subscribe(c *gin.Context) {
	st, err := h.Subs.Subscribe(c.Request.Context(), viewer(c), c.Param("id"))
	h.subscription(c, st, err)
}

func (h *SpecimenHandler) Unsubscribe(c *gin.Context) {
	st, err := h.Subs.Unsubscribe(c.Request.Context(), viewer(c), c.Param("id"))
	h.subscription(c, st, err)
}
