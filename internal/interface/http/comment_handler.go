package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bonsai-buddy/internal/application"
	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
	"github.com/oksasatya/bonsai-buddy/internal/domain/thread"
	"github.com/oksasatya/bonsai-buddy/pkg/response"
)

type CommentHandler struct {
	base
	Svc *application.CommentService
}

func NewCommentHandler(svc *application.Services, logger *logrus.Logger) *CommentHandler {
	return &CommentHandler{base: base{Logger: logger}, Svc: svc.Comments}
}

// Thread GET /api/posts/:id/comments?sort=newest|oldest|most-liked
func (h *CommentHandler) Thread(c *gin.Context) {
	order, err := thread.ParseSortOrder(c.Query("sort"))
	if err != nil {
		h.fail(c, apperror.Validation("invalid sort order", map[string]string{"sort": "must be newest, oldest or most-liked"}))
		return
	}
	nodes, err := h.Svc.Thread(c.Request.Context(), viewer(c), c.Param("id"), order)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, nodes, "comments", map[string]any{
		"sort":  order,
		"total": thread.CountVisible(nodes),
	})
}

// Count GET /api/posts/:id/comments/count
func (h *CommentHandler) Count(c *gin.Context) {
	n, err := h.Svc.Count(c.Request.Context(), viewer(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"count": n}, "comment count", nil)
}

// Create POST /api/posts/:id/comments {content, parent_comment_id}
func (h *CommentHandler) Create(c *gin.Context) {
	var req application.CreateCommentInput
	if !h.bind(c, &req) {
		return
	}
	comment, err := h.Svc.Create(c.Request.Context(), viewer(c), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, comment, "comment added", nil)
}

// Update PATCH /api/comments/:id {content}
func (h *CommentHandler) Update(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if !h.bind(c, &req) {
		return
	}
	comment, err := h.Svc.Update(c.Request.Context(), viewer(c), c.Param("id"), req.Content)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, comment, "comment updated", nil)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), viewer(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "comment deleted", nil)
}

func (h *CommentHandler) Like(c *gin.Context) {
	if err := h.Svc.Like(c.Request.Context(), viewer(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"liked": true}, "comment liked", nil)
}

func (h *CommentHandler) Unlike(c *gin.Context) {
	if err := h.Svc.Unlike(c.Request.Context(), viewer(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"liked": false}, "comment unliked", nil)
}
