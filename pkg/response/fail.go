package response

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
)

// Fail writes err as an error envelope. The status, kind and retry hint come
// from its apperror kind; anything unclassified is a 500 with a generic message.
func Fail(ctx *gin.Context, err error) APIResponse[any] {
	kind := apperror.KindOf(err)
	message := "internal server error"
	var details any
	if e, ok := apperror.As(err); ok && kind != apperror.KindUnknown {
		message = e.Message
		if message == "" {
			message = kind.String()
		}
		details = e.Details
	}
	_ = ctx.Error(err)
	return Error[any](ctx, kind.HTTPStatus(), message, ErrorBody{
		Kind:      kind.String(),
		Retryable: kind.Retryable(),
		Details:   details,
	})
}
