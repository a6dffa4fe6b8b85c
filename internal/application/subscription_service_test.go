package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
)

func TestSubscriptions(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	ann := e.member(t, "ann")
	bob := e.member(t, "bob")
	sp := e.addSpecimen(t, ann, "Juniper").Specimen

	st, err := e.Subscriptions.Status(ctx, Viewer{}, sp.ID)
	require.NoError(t, err)
	assert.Equal(t, SubscriptionStatus{}, st)

	st, err = e.Subscriptions.Subscribe(ctx, bob, sp.ID)
	require.NoError(t, err)
	assert.Equal(t, SubscriptionStatus{Subscribed: true, Subscribers: 1}, st)
	_, err = e.Subscriptions.Subscribe(ctx, bob, sp.ID)
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	st, err = e.Subscriptions.Status(ctx, ann, sp.ID)
	require.NoError(t, err)
	assert.Equal(t, SubscriptionStatus{Subscribed: false, Subscribers: 1}, st)

	st, err = e.Subscriptions.Unsubscribe(ctx, bob, sp.ID)
	require.NoError(t, err)
	assert.Equal(t, SubscriptionStatus{}, st)
	_, err = e.Subscriptions.Unsubscribe(ctx, bob, sp.ID)
	require.NoError(t, err)

	_, err = e.Subscriptions.Subscribe(ctx, Viewer{}, sp.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotAuthenticated))
}

func TestSubscribeToHiddenSpecimen(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	ann := e.member(t, "ann")
	bob := e.member(t, "bob")
	sp := e.addSpecimen(t, ann, "Juniper").Specimen
	e.makePrivate(t, ann)

	_, err := e.Subscriptions.Subscribe(ctx, bob, sp.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
	_, err = e.Subscriptions.Status(ctx, bob, sp.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
	_, err = e.Subscriptions.Subscribe(ctx, ann, sp.ID)
	require.NoError(t, err)
}
