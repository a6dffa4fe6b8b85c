package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
)

func TestUserPagePrivacy(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	ann := e.member(t, "ann")
	bob := e.member(t, "bob")
	e.addSpecimen(t, ann, "Juniper")
	e.makePrivate(t, ann)

	page, err := e.Profiles.UserPage(ctx, bob, ann.UserID)
	require.NoError(t, err)
	assert.False(t, page.ContentVisible)
	assert.Empty(t, page.Specimens)
	assert.Empty(t, page.Posts)
	assert.Equal(t, "ann", page.Profile.Name)
	assert.Empty(t, page.Profile.Email)
	assert.True(t, page.Profile.IsPrivate)

	page, err = e.Profiles.UserPage(ctx, ann, ann.UserID)
	require.NoError(t, err)
	assert.True(t, page.ContentVisible)
	assert.Len(t, page.Specimens, 1)
	assert.Len(t, page.Posts, 1)
	assert.Equal(t, ann.Email, page.Profile.Email)

	_, err = e.Profiles.UserPage(ctx, bob, "00000000-0000-0000-0000-000000000000")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestUserPageHidesPrivatePosts(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	ann := e.member(t, "ann")
	res := e.addSpecimen(t, ann, "Juniper")
	_, err := e.Posts.SetPrivacy(ctx, ann, res.Post.ID, false)
	require.NoError(t, err)

	page, err := e.Profiles.UserPage(ctx, Viewer{}, ann.UserID)
	require.NoError(t, err)
	assert.True(t, page.ContentVisible)
	assert.Len(t, page.Specimens, 1)
	assert.Empty(t, page.Posts)
}

func TestPreferences(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	ann := e.member(t, "ann")

	prefs, err := e.Profiles.Preferences(ctx, ann)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultEmailPreferences(), prefs.EmailPreferences)
	assert.Equal(t, entity.DefaultNotificationSettings(), prefs.NotificationSettings)
	assert.False(t, prefs.IsPrivate)

	_, err = e.Profiles.SetTheme(ctx, ann, "purple")
	assert.True(t, errors.Is(err, apperror.ErrValidation))
	prefs, err = e.Profiles.SetTheme(ctx, ann, "dark")
	require.NoError(t, err)
	assert.Equal(t, entity.ThemeDark, prefs.Theme)

	email := entity.EmailPreferences{WeeklyDigest: true}
	prefs, err = e.Profiles.SetEmailPreferences(ctx, ann, email)
	require.NoError(t, err)
	assert.Equal(t, email, prefs.EmailPreferences)

	notify := entity.NotificationSettings{Comments: true}
	prefs, err = e.Profiles.SetNotificationSettings(ctx, ann, notify)
	require.NoError(t, err)
	assert.Equal(t, notify, prefs.NotificationSettings)

	_, err = e.Profiles.Preferences(ctx, Viewer{})
	assert.True(t, errors.Is(err, apperror.ErrNotAuthenticated))
}

func TestUpdateProfileAndAvatar(t *testing.T) {
	index := newFakeIndex()
	e := newEnv(t, index)
	ctx := context.Background()
	ann := e.member(t, "ann")

	empty := ""
	_, err := e.Profiles.Update(ctx, ann, UpdateProfileInput{Name: &empty})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
	name := "Ann Pine"
	p, err := e.Profiles.Update(ctx, ann, UpdateProfileInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, p.Name)
	assert.Equal(t, name, index.profiles[ann.UserID].Name)

	p, err = e.Profiles.UploadAvatar(ctx, ann, pngUpload(300, 300))
	require.NoError(t, err)
	require.NotNil(t, p.Avatar)
	first := *p.Avatar
	p, err = e.Profiles.UploadAvatar(ctx, ann, pngUpload(200, 200))
	require.NoError(t, err)
	assert.NotEqual(t, first, *p.Avatar)
	assert.Equal(t, 1, e.objects.Len())

	_, err = e.Profiles.UploadAvatar(ctx, ann, &ImageUpload{Data: []byte("GIF89a not allowed")})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestSearchUsers(t *testing.T) {
	for name, index := range map[string]*fakeIndex{"relation store": nil, "search index": newFakeIndex()} {
		t.Run(name, func(t *testing.T) {
			var idx SearchIndex
			if index != nil {
				idx = index
			}
			e := newEnv(t, idx)
			ctx := context.Background()
			e.member(t, "Pine Zed")
			e.member(t, "Pine Amy")
			hidden := e.member(t, "Pine Secret")
			e.makePrivate(t, hidden)
			e.member(t, "Oak")

			found, err := e.Profiles.SearchUsers(ctx, "pine")
			require.NoError(t, err)
			require.Len(t, found, 2)
			assert.Equal(t, "Pine Amy", found[0].Name)
			assert.Equal(t, "Pine Zed", found[1].Name)
			assert.Empty(t, found[0].Email)

			if index != nil {
				index.err = errBoom
				found, err = e.Profiles.SearchUsers(ctx, "pine")
				require.NoError(t, err)
				assert.Len(t, found, 2)
			}
		})
	}
}
