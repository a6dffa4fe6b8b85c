package memory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
)

type fixture struct {
	store     *Store
	users     *UserRepository
	profiles  *ProfileRepository
	specimens *SpecimenRepository
	posts     *PostRepository
	comments  *CommentRepository
	likes     *LikeRepository
	subs      *SubscriptionRepository
}

func newFixture() fixture {
	s := NewStore()
	return fixture{
		store:     s,
		users:     NewUserRepository(s),
		profiles:  NewProfileRepository(s),
		specimens: NewSpecimenRepository(s),
		posts:     NewPostRepository(s),
		comments:  NewCommentRepository(s),
		likes:     NewLikeRepository(s),
		subs:      NewSubscriptionRepository(s),
	}
}

func (f fixture) member(t *testing.T, name string, private bool) string {
	t.Helper()
	ctx := context.Background()
	u := &entity.User{Email: name + "@example.com", Password: "hash"}
	require.NoError(t, f.users.Create(ctx, u))
	require.NoError(t, f.profiles.Create(ctx, &entity.Profile{ID: u.ID, Name: name, IsPrivate: private}))
	return u.ID
}

func (f fixture) specimenWithPost(t *testing.T, owner string, public bool) (string, string) {
	t.Helper()
	ctx := context.Background()
	sp := &entity.Specimen{UserID: owner, Name: "Juniper", Species: "Juniperus chinensis", Age: 10, Health: entity.HealthGood}
	require.NoError(t, f.specimens.Create(ctx, sp))
	p := &entity.Post{SpecimenID: sp.ID, UserID: owner, IsPublic: public}
	require.NoError(t, f.posts.Create(ctx, p))
	return sp.ID, p.ID
}

func TestUserEmailIsUnique(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.users.Create(ctx, &entity.User{Email: "Ann@Example.com"}))

	err := f.users.Create(ctx, &entity.User{Email: "ann@example.com"})
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	u, err := f.users.GetByEmail(ctx, "ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", u.Email)
}

func TestLikePostTwiceIsConflictAndOneRow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.member(t, "alice", false)
	bob := f.member(t, "bob", false)
	_, postID := f.specimenWithPost(t, alice, true)

	require.NoError(t, f.likes.LikePost(ctx, postID, bob))
	err := f.likes.LikePost(ctx, postID, bob)
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	p, err := f.posts.GetByID(ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Likes)
	assert.Equal(t, 1, f.store.RowCounts()["post_likes"])

	require.NoError(t, f.likes.UnlikePost(ctx, postID, bob))
	require.NoError(t, f.likes.UnlikePost(ctx, postID, bob))
	p, _ = f.posts.GetByID(ctx, postID)
	assert.Equal(t, 0, p.Likes)
}

func TestSubscribeTwiceIsConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.member(t, "alice", false)
	specimenID, _ := f.specimenWithPost(t, alice, true)

	require.NoError(t, f.subs.Subscribe(ctx, specimenID, alice))
	assert.True(t, errors.Is(f.subs.Subscribe(ctx, specimenID, alice), apperror.ErrConflict))

	n, _ := f.subs.CountBySpecimen(ctx, specimenID)
	assert.Equal(t, 1, n)
	require.NoError(t, f.subs.Unsubscribe(ctx, specimenID, alice))
	ok, _ := f.subs.IsSubscribed(ctx, specimenID, alice)
	assert.False(t, ok)
}

func TestListVisibleAppliesPrivacy(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.member(t, "alice", false)
	hidden := f.member(t, "hidden", true)
	_, public := f.specimenWithPost(t, alice, true)
	_, private := f.specimenWithPost(t, alice, false)
	_, fromPrivate := f.specimenWithPost(t, hidden, true)

	ids := func(viewer string) []string {
		posts, err := f.posts.ListVisible(ctx, viewer, 50)
		require.NoError(t, err)
		out := []string{}
		for _, p := range posts {
			out = append(out, p.ID)
		}
		return out
	}

	assert.ElementsMatch(t, []string{public}, ids(""))
	assert.ElementsMatch(t, []string{public, private}, ids(alice))
	assert.ElementsMatch(t, []string{public, fromPrivate}, ids(hidden))
}

func TestDeleteSpecimenCascades(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.member(t, "alice", false)
	specimenID, postID := f.specimenWithPost(t, alice, true)
	c := &entity.Comment{PostID: postID, UserID: alice, Content: "nice"}
	require.NoError(t, f.comments.Create(ctx, c))
	require.NoError(t, f.likes.LikeComment(ctx, c.ID, alice))
	require.NoError(t, f.likes.LikePost(ctx, postID, alice))
	require.NoError(t, f.subs.Subscribe(ctx, specimenID, alice))

	require.NoError(t, f.specimens.Delete(ctx, specimenID, alice))
	require.NoError(t, f.specimens.Delete(ctx, specimenID, alice))

	counts := f.store.RowCounts()
	for _, table := range []string{"bonsai_specimens", "bonsai_posts", "comments", "post_likes", "comment_likes", "specimen_subscriptions"} {
		assert.Zero(t, counts[table], table)
	}
	assert.Equal(t, 1, counts["profiles"])
}

func TestCommentSoftDeleteAndCounts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.member(t, "alice", false)
	_, postID := f.specimenWithPost(t, alice, true)

	root := &entity.Comment{PostID: postID, UserID: alice, Content: "root"}
	require.NoError(t, f.comments.Create(ctx, root))
	reply := &entity.Comment{PostID: postID, UserID: alice, Content: "reply", ParentCommentID: &root.ID}
	require.NoError(t, f.comments.Create(ctx, reply))

	require.NoError(t, f.comments.SoftDelete(ctx, root.ID))
	rows, err := f.comments.ListByPost(ctx, postID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, root.ID, rows[0].ID)
	assert.True(t, rows[0].IsDeleted)
	assert.Empty(t, rows[0].Content)

	counts, err := f.comments.CountActiveByPosts(ctx, []string{postID})
	require.NoError(t, err)
	assert.Equal(t, 1, counts[postID])

	_, err = f.comments.UpdateContent(ctx, root.ID, "revived")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestSearch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.member(t, "Alice Pine", false)
	f.member(t, "Pine Private", true)
	f.specimenWithPost(t, alice, true)

	profiles, err := f.profiles.SearchPublic(ctx, "pine", 20)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Alice Pine", profiles[0].Name)

	specimens, err := f.specimens.Search(ctx, "CHINENSIS", 20)
	require.NoError(t, err)
	assert.Len(t, specimens, 1)
}

func TestObjectStore(t *testing.T) {
	o := NewObjectStore("https://objects.test/bonsai-images/")
	url, err := o.Upload(context.Background(), "specimens/u1/1.jpg", "image/jpeg", strings.NewReader("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "https://objects.test/bonsai-images/specimens/u1/1.jpg", url)

	key, ok := o.KeyFromURL(url)
	require.True(t, ok)
	require.NoError(t, o.Delete(context.Background(), key))
	assert.Zero(t, o.Len())

	_, ok = o.KeyFromURL("https://elsewhere/x.jpg")
	assert.False(t, ok)
}
