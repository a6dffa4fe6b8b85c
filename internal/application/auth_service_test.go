package application

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
	"github.com/oksasatya/bonsai-buddy/pkg/helpers"
)

func TestRegisterCreatesProfileAndSession(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	p, pair, err := e.Auth.Register(ctx, RegisterInput{Email: " Ann@Example.com ", Password: "password123", FullName: "Ann Lee"})
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", p.Name)
	assert.Equal(t, "ann@example.com", p.Email)
	assert.Equal(t, entity.ThemeDark, p.Theme)
	assert.Equal(t, entity.DefaultEmailPreferences(), p.EmailPreferences)

	v, err := e.Auth.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, p.ID, v.UserID)
	assert.Equal(t, "ann@example.com", v.Email)

	_, _, err = e.Auth.Register(ctx, RegisterInput{Email: "ann@example.com", Password: "password123"})
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestRegisterValidatesBeforeWriting(t *testing.T) {
	e := newEnv(t, nil)
	_, _, err := e.Auth.Register(context.Background(), RegisterInput{Email: "not-an-email", Password: "short"})
	require.True(t, errors.Is(err, apperror.ErrValidation))

	ae, _ := apperror.As(err)
	details, _ := ae.Details.(map[string]string)
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
	assert.Zero(t, e.store.RowCounts()["users"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e := newEnv(t, nil)
	e.member(t, "ann")

	_, _, err := e.Auth.Login(context.Background(), "ann@example.com", "wrong-password")
	assert.True(t, errors.Is(err, apperror.ErrNotAuthenticated))
	_, _, err = e.Auth.Login(context.Background(), "nobody@example.com", "password123")
	assert.True(t, errors.Is(err, apperror.ErrNotAuthenticated))
}

func TestLoginCreatesMissingProfile(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	hash, err := helpers.HashPassword("password123")
	require.NoError(t, err)
	u := &entity.User{Email: "grower@example.com", Password: hash}
	require.NoError(t, e.Auth.Users.Create(ctx, u))

	p, _, err := e.Auth.Login(ctx, "grower@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.ID)
	assert.Equal(t, "grower", p.Name)

	again, _, err := e.Auth.Login(ctx, "grower@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, p.CreatedAt, again.CreatedAt)
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		full, name, email, want string
	}{
		{"Ann Lee", "ann", "a@x.io", "Ann Lee"},
		{"  ", "ann", "a@x.io", "ann"},
		{"", "", "maple.fan@x.io", "maple.fan"},
		{"", "", "", "User"},
		{"", "", "@x.io", "User"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DisplayName(tt.full, tt.name, tt.email))
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	e.member(t, "ann")
	_, first, err := e.Auth.Login(ctx, "ann@example.com", "password123")
	require.NoError(t, err)

	second, uid, err := e.Auth.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, uid)

	_, err = e.Auth.Authenticate(ctx, first.AccessToken)
	assert.True(t, errors.Is(err, apperror.ErrNotAuthenticated), "old access token must stop working")
	_, _, err = e.Auth.Refresh(ctx, first.RefreshToken)
	assert.True(t, errors.Is(err, apperror.ErrNotAuthenticated), "old refresh token must stop working")

	v, err := e.Auth.Authenticate(ctx, second.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uid, v.UserID)

	require.NoError(t, e.Auth.Logout(ctx, v))
	_, err = e.Auth.Authenticate(ctx, second.AccessToken)
	assert.True(t, errors.Is(err, apperror.ErrNotAuthenticated))
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	e := newEnv(t, nil)
	_, err := e.Auth.Authenticate(context.Background(), "")
	assert.True(t, errors.Is(err, apperror.ErrNotAuthenticated))
	_, err = e.Auth.Authenticate(context.Background(), "not.a.jwt")
	assert.True(t, errors.Is(err, apperror.ErrNotAuthenticated))
}

func TestSessionStoreDownIsUpstream(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	e.member(t, "ann")
	_, pair, err := e.Auth.Login(ctx, "ann@example.com", "password123")
	require.NoError(t, err)

	e.mr.Close()
	_, err = e.Auth.Authenticate(ctx, pair.AccessToken)
	require.Error(t, err)
	assert.True(t, apperror.KindOf(err).Retryable())
}

func TestLoginBroadcastsStoredTheme(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	ann := e.member(t, "ann")
	_, err := e.Profiles.SetTheme(ctx, ann, "light")
	require.NoError(t, err)

	var got []ThemeChange
	unsubscribe := e.themes.Subscribe(ThemeObserverFunc(func(_ context.Context, c ThemeChange) error {
		got = append(got, c)
		return nil
	}))
	e.themes.Subscribe(ThemeObserverFunc(func(context.Context, ThemeChange) error { return errBoom }))

	_, _, err = e.Auth.Login(ctx, "ann@example.com", "password123")
	require.NoError(t, err, "observer failures must not fail login")
	require.Len(t, got, 1)
	assert.Equal(t, ThemeChange{UserID: ann.UserID, Theme: entity.ThemeLight}, got[0])

	unsubscribe()
	_, _, err = e.Auth.Login(ctx, "ann@example.com", "password123")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

var tokenRe = regexp.MustCompile(`token=([A-Za-z0-9_-]+)`)

func TestPasswordReset(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	e.member(t, "ann")
	_, oldPair, err := e.Auth.Login(ctx, "ann@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, e.Auth.ResetInit(ctx, "nobody@example.com", RequestMeta{}))
	assert.Empty(t, e.mail.sent)

	require.NoError(t, e.Auth.ResetInit(ctx, "ANN@example.com", RequestMeta{IP: "10.1.2.3"}))
	msg := e.mail.last()
	assert.Equal(t, "ann@example.com", msg.To)
	assert.Equal(t, "Reset your Bonsai Buddy password", msg.Subject)
	m := tokenRe.FindStringSubmatch(msg.Text)
	require.Len(t, m, 2)
	token := m[1]

	err = e.Auth.ResetConfirm(ctx, token, "short")
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	require.NoError(t, e.Auth.ResetConfirm(ctx, token, "new-password-1"))
	_, _, err = e.Auth.Login(ctx, "ann@example.com", "password123")
	assert.True(t, errors.Is(err, apperror.ErrNotAuthenticated))
	_, _, err = e.Auth.Login(ctx, "ann@example.com", "new-password-1")
	assert.NoError(t, err)

	_, err = e.Auth.Authenticate(ctx, oldPair.AccessToken)
	assert.True(t, errors.Is(err, apperror.ErrNotAuthenticated))

	err = e.Auth.ResetConfirm(ctx, token, "another-password")
	assert.True(t, errors.Is(err, apperror.ErrValidation), "tokens are single use")
}

func TestResetInitMailFailureIsUpstream(t *testing.T) {
	e := newEnv(t, nil)
	e.member(t, "ann")
	e.mail.err = errBoom
	err := e.Auth.ResetInit(context.Background(), "ann@example.com", RequestMeta{})
	assert.True(t, errors.Is(err, apperror.ErrUpstreamUnavailable))
}
