package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bonsai-buddy/internal/application"
	"github.com/oksasatya/bonsai-buddy/pkg/response"
)

type ContactHandler struct {
	base
	Svc *application.ContactService
}

func NewContactHandler(svc *application.Services, logger *logrus.Logger) *ContactHandler {
	return &ContactHandler{base: base{Logger: logger}, Svc: svc.Contact}
}

// Submit POST /api/contact {first_name, last_name, email, message}
func (h *ContactHandler) Submit(c *gin.Context) {
	var req application.ContactInput
	if !h.bind(c, &req) {
		return
	}
	id, err := h.Svc.Submit(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{"id": id}, "message sent", nil)
}
