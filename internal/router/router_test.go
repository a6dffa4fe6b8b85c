package router

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/bonsai-buddy/config"
	"github.com/oksasatya/bonsai-buddy/internal/application"
	"github.com/oksasatya/bonsai-buddy/internal/container"
	"github.com/oksasatya/bonsai-buddy/internal/infrastructure/memory"
	"github.com/oksasatya/bonsai-buddy/internal/interface/middleware"
	"github.com/oksasatya/bonsai-buddy/pkg/helpers"
	"github.com/oksasatya/bonsai-buddy/pkg/mailer"
	"github.com/oksasatya/bonsai-buddy/pkg/validation"
)

type outbox struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (o *outbox) Send(_ context.Context, msg mailer.Message) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return "queued", nil
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
	Error   struct {
		Kind      string            `json:"kind"`
		Retryable bool              `json:"retryable"`
		Details   map[string]string `json:"details"`
	} `json:"error"`
}

type api struct {
	t       *testing.T
	engine  *gin.Engine
	objects *memory.ObjectStore
	mail    *outbox
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memory.NewStore()
	objects := memory.NewObjectStore("https://objects.test/bonsai-images")
	mail := &outbox{}
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	svc := application.NewServices(application.Deps{
		Repos: application.Repos{
			Users:         memory.NewUserRepository(store),
			Profiles:      memory.NewProfileRepository(store),
			Specimens:     memory.NewSpecimenRepository(store),
			Posts:         memory.NewPostRepository(store),
			Comments:      memory.NewCommentRepository(store),
			Likes:         memory.NewLikeRepository(store),
			Subscriptions: memory.NewSubscriptionRepository(store),
		},
		Objects:  objects,
		Mail:     mail,
		Redis:    rdb,
		JWT:      jwt,
		Logger:   logger,
		Contact:  application.ContactConfig{From: "noreply@bonsai.test", To: "team@bonsai.test"},
		ResetURL: "https://bonsai.test/reset",
	})

	container.SetConfig(&config.Config{CookieDomain: "localhost"})
	container.SetLogger(logger)
	container.SetRedis(rdb)
	container.SetJWT(jwt)
	container.SetServices(svc)

	r := gin.New()
	r.Use(middleware.RealIP(), middleware.RequestIDMiddleware())
	reg := NewRegistry(r)
	InitModules(reg)
	reg.RegisterAll()

	return &api{t: t, engine: r, objects: objects, mail: mail}
}

func (a *api) do(req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (a *api) json(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, token)
}

func (a *api) multipart(method, path, token string, fields map[string]string, image []byte) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(a.t, mw.WriteField(k, v))
	}
	if image != nil {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="image"; filename="tree.jpg"`)
		h.Set("Content-Type", "image/jpeg")
		part, err := mw.CreatePart(h)
		require.NoError(a.t, err)
		_, err = part.Write(image)
		require.NoError(a.t, err)
	}
	require.NoError(a.t, mw.Close())
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.do(req, token)
}

func (a *api) register(email, name string) string {
	a.t.Helper()
	w, env := a.json(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": "password123", "name": name,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	require.True(a.t, env.Success)
	for _, c := range w.Result().Cookies() {
		if c.Name == "access_token" {
			return c.Value
		}
	}
	a.t.Fatal("no access_token cookie")
	return ""
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for x := 0; x < 40; x++ {
		for y := 0; y < 30; y++ {
			img.Set(x, y, color.RGBA{R: 30, G: uint8(100 + x), B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

type idOnly struct {
	ID string `json:"id"`
}

func TestSpecimenLifecycleOverHTTP(t *testing.T) {
	a := newAPI(t)
	ann := a.register("ann@example.com", "Ann Pine")
	bob := a.register("bob@example.com", "Bob Maple")

	w, env := a.multipart(http.MethodPost, "/api/specimens", ann, map[string]string{
		"name": "Old Juniper", "species": "Juniperus chinensis", "age": "35", "health": "excellent",
	}, jpegBytes(t))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct {
		Specimen idOnly `json:"specimen"`
		Post     idOnly `json:"post"`
	}](t, env.Data)
	require.NotEmpty(t, created.Specimen.ID)
	assert.Equal(t, 1, a.objects.Len())

	// anonymous feed sees the announcement post
	w, env = a.json(http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	feed := decode[[]idOnly](t, env.Data)
	require.Len(t, feed, 1)
	assert.Equal(t, created.Post.ID, feed[0].ID)

	likePath := "/api/posts/" + created.Post.ID + "/like"
	w, env = a.json(http.MethodPost, likePath, bob, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, application.LikeState{Liked: true, Likes: 1}, decode[application.LikeState](t, env.Data))

	w, env = a.json(http.MethodPost, likePath, bob, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", env.Error.Kind)
	assert.False(t, env.Error.Retryable)

	commentsPath := "/api/posts/" + created.Post.ID + "/comments"
	w, _ = a.json(http.MethodPost, commentsPath, bob, map[string]string{"content": "Lovely deadwood"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env = a.json(http.MethodGet, commentsPath+"?sort=most-liked", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]idOnly](t, env.Data), 1)
	assert.EqualValues(t, 1, env.Meta["total"])

	w, env = a.json(http.MethodGet, commentsPath+"?sort=sideways", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", env.Error.Kind)
	assert.Contains(t, env.Error.Details, "sort")

	specimenPath := "/api/specimens/" + created.Specimen.ID
	w, env = a.json(http.MethodDelete, specimenPath, bob, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "deletes need confirm=true")
	assert.Contains(t, env.Error.Details, "confirm")

	w, env = a.json(http.MethodDelete, specimenPath+"?confirm=true", bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "not_authorized", env.Error.Kind)

	w, _ = a.json(http.MethodDelete, specimenPath+"?confirm=true", ann, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = a.json(http.MethodDelete, specimenPath+"?confirm=true", ann, nil)
	assert.Equal(t, http.StatusOK, w.Code, "deleting twice is a no-op")

	w, env = a.json(http.MethodGet, specimenPath, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", env.Error.Kind)
	assert.Zero(t, a.objects.Len())
}

func TestAuthAndProfileOverHTTP(t *testing.T) {
	a := newAPI(t)

	w, env := a.json(http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "not_authenticated", env.Error.Kind)

	w, env = a.json(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "nope", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error.Details, "email")

	token := a.register("ann@example.com", "Ann Pine")
	w, env = a.json(http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ann Pine", decode[struct {
		Name string `json:"name"`
	}](t, env.Data).Name)

	w, env = a.json(http.MethodGet, "/api/users/search?q=pine&seq=7", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 7, env.Meta["seq"])
	assert.Len(t, decode[[]idOnly](t, env.Data), 1)

	w, _ = a.json(http.MethodPut, "/api/profile/privacy", token, map[string]bool{"is_private": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, env = a.json(http.MethodGet, "/api/users/search?q=pine", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]idOnly](t, env.Data))

	w, _ = a.json(http.MethodPost, "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = a.json(http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "logout ends the session")
}

func TestContactOverHTTP(t *testing.T) {
	a := newAPI(t)
	w, env := a.json(http.MethodPost, "/api/contact", "", map[string]string{
		"first_name": "Ann", "last_name": "Pine", "email": "ann@example.com", "message": "Hello!",
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, "queued", decode[map[string]string](t, env.Data)["id"])
	require.Len(t, a.mail.sent, 1)
	assert.Equal(t, "ann@example.com", a.mail.sent[0].ReplyTo)
}

func TestMetricsHiddenFromPublicCallers(t *testing.T) {
	a := newAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	req.RemoteAddr = "203.0.113.9:4000"
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	req.RemoteAddr = "127.0.0.1:4000"
	w = httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	a := newAPI(t)

	w, env := a.json(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	w, env = a.json(http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", env.Error.Kind)

	w, env = a.json(http.MethodPut, "/api/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "method_not_allowed", env.Error.Kind)
}

func TestEmptyListsRenderAsArrays(t *testing.T) {
	a := newAPI(t)

	for _, path := range []string{"/api/posts", "/api/specimens", "/api/specimens/search?q=maple", "/api/users/search?q=nobody"} {
		w, env := a.json(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, `[]`, string(env.Data), path)
	}
}
