package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
	"github.com/oksasatya/bonsai-buddy/pkg/helpers"
	"github.com/oksasatya/bonsai-buddy/pkg/mailer"
	mailtpl "github.com/oksasatya/bonsai-buddy/pkg/mailer/templates"
)

// ResetTokenTTL bounds how long an emailed reset link stays valid.
const ResetTokenTTL = 30 * time.Minute

var errInvalidCredentials = apperror.NotAuthenticated("invalid credentials")

type AuthService struct {
	*core
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,pwd,max=72"`
	FullName string `json:"full_name" validate:"omitempty,max=120"`
	Name     string `json:"name" validate:"omitempty,max=120"`
}

// RequestMeta describes the client behind a request, for security emails.
type RequestMeta struct {
	IP        string
	UserAgent string
}

func sessionKey(userID string) string { return "user:session:" + userID }
func resetKey(token string) string    { return "pwd:reset:token:" + token }

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func genToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DisplayName picks the first usable name: full name, then name, then the
// local part of the email, then "User".
func DisplayName(fullName, name, email string) string {
	for _, s := range []string{fullName, name} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	if local, _, ok := strings.Cut(email, "@"); ok && strings.TrimSpace(local) != "" {
		return strings.TrimSpace(local)
	}
	return "User"
}

// Register creates the identity record and its profile, then signs the user in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.Profile, TokenPair, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate(in); err != nil {
		return nil, TokenPair{}, err
	}
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	u := &entity.User{Email: in.Email, Password: hash}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, TokenPair{}, apperror.Conflict("an account with this email already exists")
		}
		return nil, TokenPair{}, err
	}
	profile, err := s.EnsureProfile(ctx, u, DisplayName(in.FullName, in.Name, in.Email))
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	s.Logger.WithField("user_id", u.ID).Info("user registered")
	return profile, pair, nil
}

// Login checks credentials, makes sure a profile exists, opens a session and
// broadcasts the stored theme.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.Profile, TokenPair, error) {
	u, err := s.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, TokenPair{}, errInvalidCredentials
		}
		return nil, TokenPair{}, err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, TokenPair{}, errInvalidCredentials
	}
	if helpers.PasswordNeedsRehash(u.Password) {
		if hash, err := helpers.HashPassword(password); err == nil {
			s.bestEffort("login", "rehash password", s.Users.UpdatePassword(ctx, u.ID, hash), logrus.Fields{"user_id": u.ID})
		}
	}
	profile, err := s.EnsureProfile(ctx, u, "")
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	s.Themes.Publish(ctx, ThemeChange{UserID: u.ID, Theme: profile.Theme})
	return profile, pair, nil
}

// EnsureProfile returns the user's profile, creating it on first sign-in.
func (s *AuthService) EnsureProfile(ctx context.Context, u *entity.User, name string) (*entity.Profile, error) {
	p, err := s.Profiles.GetByID(ctx, u.ID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}
	p = &entity.Profile{
		ID:                   u.ID,
		Name:                 DisplayName(name, "", u.Email),
		Email:                u.Email,
		Theme:                entity.ThemeDark,
		EmailPreferences:     entity.DefaultEmailPreferences(),
		NotificationSettings: entity.DefaultNotificationSettings(),
	}
	if err := s.Profiles.Create(ctx, p); err != nil {
		// A concurrent sign-in created it first.
		if errors.Is(err, apperror.ErrConflict) {
			return s.Profiles.GetByID(ctx, u.ID)
		}
		return nil, err
	}
	if s.Index != nil {
		s.bestEffort("ensure_profile", "index profile", s.Index.IndexProfile(ctx, *p), logrus.Fields{"user_id": p.ID})
	}
	return p, nil
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
func (s *AuthService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	pair, err := s.tokens(u.ID, sid)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate tokens failed")
		return TokenPair{}, err
	}
	if s.Redis != nil {
		fields := map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"sid":        sid,
			"created_at": nowRFC3339(),
		}
		key := sessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, s.SessionTTL)
		if _, err := pipe.Exec(ctx); err != nil {
			return TokenPair{}, apperror.Upstream(err, "session store unavailable")
		}
	}
	return pair, nil
}

func (s *AuthService) tokens(userID, sid string) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// session returns the stored session hash, or NotAuthenticated when it is
// missing or belongs to another sid.
func (s *AuthService) session(ctx context.Context, userID, sid string) (map[string]string, error) {
	if s.Redis == nil {
		return map[string]string{"user_id": userID}, nil
	}
	data, err := s.Redis.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return nil, apperror.Upstream(err, "session store unavailable")
	}
	if len(data) == 0 || data["sid"] != sid {
		return nil, apperror.NotAuthenticated("session not found")
	}
	return data, nil
}

// Authenticate resolves an access token to the Viewer it belongs to.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (Viewer, error) {
	if accessToken == "" {
		return Viewer{}, apperror.NotAuthenticated("missing access token")
	}
	claims, err := s.JWT.ParseAccessToken(accessToken)
	if err != nil {
		return Viewer{}, apperror.Wrap(apperror.KindNotAuthenticated, err, "invalid access token")
	}
	data, err := s.session(ctx, claims.UserID, claims.SessionID)
	if err != nil {
		return Viewer{}, err
	}
	return Viewer{UserID: claims.UserID, Email: data["email"]}, nil
}

// Refresh validates the refresh token against the live session and rotates
// both the session id and the token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", apperror.NotAuthenticated("invalid refresh token")
	}
	if _, err := s.Users.GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return TokenPair{}, "", apperror.NotAuthenticated("invalid refresh token")
		}
		return TokenPair{}, "", err
	}
	if _, err := s.session(ctx, claims.UserID, claims.SessionID); err != nil {
		return TokenPair{}, "", err
	}
	sid := uuid.NewString()
	pair, err := s.tokens(claims.UserID, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	if s.Redis != nil {
		key := sessionKey(claims.UserID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{"sid": sid, "updated_at": nowRFC3339()})
		pipe.Expire(ctx, key, s.SessionTTL)
		if _, err := pipe.Exec(ctx); err != nil {
			return TokenPair{}, "", apperror.Upstream(err, "session store unavailable")
		}
	}
	return pair, claims.UserID, nil
}

func (s *AuthService) Logout(ctx context.Context, v Viewer) error {
	if !v.Authenticated() || s.Redis == nil {
		return nil
	}
	if err := helpers.RedisDel(ctx, s.Redis, sessionKey(v.UserID)); err != nil {
		return apperror.Upstream(err, "session store unavailable")
	}
	return nil
}

// resetRecord is stored under a reset token until it is used or expires.
type resetRecord struct {
	UserID   string    `json:"uid"`
	IP       string    `json:"ip,omitempty"`
	IssuedAt time.Time `json:"iat"`
}

// ResetInit emails a reset link when the address belongs to an account. The
// outcome is the same either way so addresses cannot be enumerated.
func (s *AuthService) ResetInit(ctx context.Context, email string, meta RequestMeta) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate(struct {
		Email string `json:"email" validate:"required,email"`
	}{email}); err != nil {
		return err
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, apperror.ErrNotFound) {
		s.Logger.WithField("email", email).Info("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}
	if s.Redis == nil {
		return apperror.Upstream(nil, "password reset unavailable")
	}
	tok, err := genToken(32)
	if err != nil {
		return err
	}
	rec := resetRecord{UserID: u.ID, IP: meta.IP, IssuedAt: time.Now().UTC()}
	if err := helpers.RedisSetJSON(ctx, s.Redis, resetKey(tok), rec, ResetTokenTTL); err != nil {
		return apperror.Upstream(err, "password reset unavailable")
	}

	name := ""
	if p, err := s.Profiles.GetByID(ctx, u.ID); err == nil {
		name = p.Name
	}
	data := mailtpl.NewForgotPasswordData(s.Branding, name, u.Email, s.ResetURL+"?token="+tok, ResetTokenTTL,
		mailtpl.WithIP(meta.IP), mailtpl.WithUserAgent(meta.UserAgent))
	subject, text, html, err := mailtpl.Render(mailtpl.ForgotPassword, data)
	if err != nil {
		return err
	}
	if s.Mail == nil {
		return apperror.Upstream(nil, "email delivery unavailable")
	}
	if _, err := s.Mail.Send(ctx, mailer.Message{To: u.Email, Subject: subject, Text: text, HTML: html}); err != nil {
		return apperror.Upstream(err, "email delivery failed")
	}
	s.Logger.WithField("user_id", u.ID).Info("password reset issued")
	return nil
}

// ResetConfirm sets a new password for the account behind token and ends its
// session. The token is single-use.
func (s *AuthService) ResetConfirm(ctx context.Context, token, newPassword string) error {
	if err := validate(struct {
		Token       string `json:"token" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,pwd,max=72"`
	}{token, newPassword}); err != nil {
		return err
	}
	if s.Redis == nil {
		return apperror.Upstream(nil, "password reset unavailable")
	}
	var rec resetRecord
	found, err := helpers.RedisGetJSON(ctx, s.Redis, resetKey(token), &rec)
	if err != nil {
		return apperror.Upstream(err, "password reset unavailable")
	}
	if !found || rec.UserID == "" {
		return apperror.Validation("invalid or expired token", nil)
	}
	uid := rec.UserID
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePassword(ctx, uid, hash); err != nil {
		return err
	}
	pipe := s.Redis.Pipeline()
	pipe.Del(ctx, resetKey(token))
	pipe.Del(ctx, sessionKey(uid))
	if _, err := pipe.Exec(ctx); err != nil {
		s.bestEffort("reset_confirm", "clear token", err, logrus.Fields{"user_id": uid})
	}
	return nil
}
