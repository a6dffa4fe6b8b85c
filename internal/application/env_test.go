package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
	"github.com/oksasatya/bonsai-buddy/internal/infrastructure/memory"
	"github.com/oksasatya/bonsai-buddy/pkg/helpers"
	"github.com/oksasatya/bonsai-buddy/pkg/mailer"
	mailtpl "github.com/oksasatya/bonsai-buddy/pkg/mailer/templates"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return fmt.Sprintf("msg-%d", len(f.sent)), nil
}

func (f *fakeMailer) last() mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return mailer.Message{}
	}
	return f.sent[len(f.sent)-1]
}

type fakeIndex struct {
	mu        sync.Mutex
	profiles  map[string]entity.Profile
	specimens map[string]entity.Specimen
	err       error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{profiles: map[string]entity.Profile{}, specimens: map[string]entity.Specimen{}}
}

func (f *fakeIndex) IndexProfile(_ context.Context, p entity.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.ID] = p
	return f.err
}

func (f *fakeIndex) IndexSpecimen(_ context.Context, s entity.Specimen) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.specimens[s.ID] = s
	return f.err
}

func (f *fakeIndex) DeleteSpecimen(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.specimens, id)
	return f.err
}

// SearchProfiles deliberately ignores privacy so callers must filter.
func (f *fakeIndex) SearchProfiles(_ context.Context, q string, _ int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var ids []string
	for id, p := range f.profiles {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(q)) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeIndex) SearchSpecimens(_ context.Context, q string, _ int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var ids []string
	for id, s := range f.specimens {
		if strings.Contains(strings.ToLower(s.Name+" "+s.Species), strings.ToLower(q)) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

var errBoom = errors.New("boom")

type env struct {
	*Services
	store   *memory.Store
	objects *memory.ObjectStore
	mail    *fakeMailer
	redis   *redis.Client
	mr      *miniredis.Miniredis
	themes  *ThemeHub
}

func newEnv(t *testing.T, index SearchIndex) *env {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := memory.NewStore()
	objects := memory.NewObjectStore("https://objects.test/bonsai")
	mail := &fakeMailer{}
	themes := NewThemeHub(nil)
	svc := NewServices(Deps{
		Repos: Repos{
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
		Index:    index,
		Redis:    rdb,
		JWT:      helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour),
		Themes:   themes,
		Contact:  ContactConfig{From: "noreply@bonsai.test", To: "team@bonsai.test"},
		Branding: mailtpl.Branding{AppName: "Bonsai Buddy"},
		ResetURL: "https://app.test/reset-password",
	})
	return &env{Services: svc, store: store, objects: objects, mail: mail, redis: rdb, mr: mr, themes: themes}
}

// member registers an account and returns the viewer acting as it.
func (e *env) member(t *testing.T, name string) Viewer {
	t.Helper()
	p, _, err := e.Auth.Register(context.Background(), RegisterInput{
		Email:    strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Password: "password123",
		Name:     name,
	})
	require.NoError(t, err)
	return Viewer{UserID: p.ID, Email: p.Email}
}

func (e *env) makePrivate(t *testing.T, v Viewer) {
	t.Helper()
	_, err := e.Profiles.SetPrivacy(context.Background(), v, true)
	require.NoError(t, err)
}

func (e *env) addSpecimen(t *testing.T, v Viewer, name string) *AddSpecimenResult {
	t.Helper()
	res, err := e.Specimens.Add(context.Background(), v, AddSpecimenInput{
		Name: name, Species: "Juniperus chinensis", Age: 12, Health: "good",
	}, pngUpload(40, 30))
	require.NoError(t, err)
	return res
}

func pngBytes(w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: 60, G: 120, B: 60, A: 255})
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func jpegBytes(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func pngUpload(w, h int) *ImageUpload {
	return &ImageUpload{Filename: "tree.png", ContentType: "image/png", Data: pngBytes(w, h)}
}
