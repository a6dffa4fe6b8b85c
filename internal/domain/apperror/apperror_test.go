package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByKind(t *testing.T) {
	err := NotFound("specimen not found")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))

	wrapped := fmt.Errorf("load specimen: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, KindOf(errors.New("boom")).HTTPStatus())
}

func TestHTTPStatusAndRetryable(t *testing.T) {
	tests := []struct {
		kind      Kind
		status    int
		retryable bool
	}{
		{KindNotAuthenticated, http.StatusUnauthorized, false},
		{KindNotAuthorized, http.StatusForbidden, false},
		{KindNotFound, http.StatusNotFound, false},
		{KindConflict, http.StatusConflict, false},
		{KindValidation, http.StatusBadRequest, false},
		{KindUpstreamUnavailable, http.StatusServiceUnavailable, true},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.status, tt.kind.HTTPStatus())
			assert.Equal(t, tt.retryable, tt.kind.Retryable())
		})
	}
}

func TestUpstreamUnwraps(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Upstream(cause, "store unavailable")

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
	assert.Contains(t, err.Error(), "connection refused")
}
