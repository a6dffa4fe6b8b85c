package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
	"github.com/oksasatya/bonsai-buddy/internal/domain/thread"
)

func TestThreadKeepsRepliesOfDeletedComment(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	ann := e.member(t, "ann")
	bob := e.member(t, "bob")
	post := e.addSpecimen(t, ann, "Juniper").Post

	root, err := e.Comments.Create(ctx, bob, post.ID, CreateCommentInput{Content: "  what soil?  "})
	require.NoError(t, err)
	assert.Equal(t, "what soil?", root.Content)
	reply, err := e.Comments.Create(ctx, ann, post.ID, CreateCommentInput{Content: "akadama", ParentCommentID: &root.ID})
	require.NoError(t, err)
	require.NoError(t, e.Comments.Like(ctx, bob, reply.ID))

	// The post author may moderate comments on their post.
	require.NoError(t, e.Comments.Delete(ctx, ann, root.ID))
	require.NoError(t, e.Comments.Delete(ctx, ann, root.ID))

	nodes, err := e.Comments.Thread(ctx, bob, post.ID, thread.SortNewest)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.True(t, nodes[0].IsDeleted())
	assert.Equal(t, thread.DeletedPlaceholder, nodes[0].Content())
	require.Len(t, nodes[0].Replies, 1)
	r := nodes[0].Replies[0]
	assert.Equal(t, "akadama", r.Content())
	assert.Equal(t, 1, r.LikeCount)
	assert.True(t, r.ViewerLiked)

	n, err := e.Comments.Count(ctx, Viewer{}, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCommentRules(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	ann := e.member(t, "ann")
	bob := e.member(t, "bob")
	carl := e.member(t, "carl")
	post := e.addSpecimen(t, ann, "Juniper").Post
	other := e.addSpecimen(t, ann, "Maple").Post

	c, err := e.Comments.Create(ctx, bob, post.ID, CreateCommentInput{Content: "nice"})
	require.NoError(t, err)

	_, err = e.Comments.Create(ctx, bob, post.ID, CreateCommentInput{Content: "   "})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
	_, err = e.Comments.Create(ctx, Viewer{}, post.ID, CreateCommentInput{Content: "hi"})
	assert.True(t, errors.Is(err, apperror.ErrNotAuthenticated))
	_, err = e.Comments.Create(ctx, bob, other.ID, CreateCommentInput{Content: "x", ParentCommentID: &c.ID})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = e.Comments.Update(ctx, carl, c.ID, "hijack")
	assert.True(t, errors.Is(err, apperror.ErrNotAuthorized))
	_, err = e.Comments.Update(ctx, ann, c.ID, "post author cannot edit")
	assert.True(t, errors.Is(err, apperror.ErrNotAuthorized))
	edited, err := e.Comments.Update(ctx, bob, c.ID, "very nice")
	require.NoError(t, err)
	assert.Equal(t, "very nice", edited.Content)
	assert.NotNil(t, edited.EditedAt)

	assert.True(t, errors.Is(e.Comments.Delete(ctx, carl, c.ID), apperror.ErrNotAuthorized))
	require.NoError(t, e.Comments.Like(ctx, carl, c.ID))
	assert.True(t, errors.Is(e.Comments.Like(ctx, carl, c.ID), apperror.ErrConflict))
	require.NoError(t, e.Comments.Unlike(ctx, carl, c.ID))
	require.NoError(t, e.Comments.Unlike(ctx, carl, c.ID))

	require.NoError(t, e.Comments.Delete(ctx, bob, c.ID))
	_, err = e.Comments.Update(ctx, bob, c.ID, "back")
	assert.True(t, errors.Is(err, apperror.ErrValidation))
	_, err = e.Comments.Create(ctx, carl, post.ID, CreateCommentInput{Content: "reply", ParentCommentID: &c.ID})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
	assert.True(t, errors.Is(e.Comments.Like(ctx, carl, c.ID), apperror.ErrValidation))

	require.NoError(t, e.Comments.Delete(ctx, bob, "00000000-0000-0000-0000-000000000000"))
}

func TestCommentsOnHiddenPost(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	ann := e.member(t, "ann")
	bob := e.member(t, "bob")
	post := e.addSpecimen(t, ann, "Juniper").Post
	e.makePrivate(t, ann)

	_, err := e.Comments.Thread(ctx, bob, post.ID, thread.SortOldest)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
	_, err = e.Comments.Create(ctx, bob, post.ID, CreateCommentInput{Content: "hello"})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	nodes, err := e.Comments.Thread(ctx, ann, post.ID, thread.SortOldest)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}
