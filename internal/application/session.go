package application

import "github.com/oksasatya/bonsai-buddy/internal/domain/apperror"

// Viewer is the identity a request acts as. The zero value is an
// unauthenticated visitor.
type Viewer struct {
	UserID string
	Email  string
}

func (v Viewer) Authenticated() bool { return v.UserID != "" }

func (v Viewer) require() error {
	if !v.Authenticated() {
		return apperror.NotAuthenticated("sign in required")
	}
	return nil
}
