package application

import (
	"context"

	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
	"github.com/oksasatya/bonsai-buddy/internal/domain/visibility"
)

type SubscriptionService struct {
	*core
}

type SubscriptionStatus struct {
	Subscribed  bool `json:"subscribed"`
	Subscribers int  `json:"subscribers"`
}

func (s *SubscriptionService) visibleSpecimen(ctx context.Context, v Viewer, id string) error {
	sp, err := s.Specimens.GetByID(ctx, id)
	if err != nil {
		return err
	}
	owners, err := s.profilesByID(ctx, []string{sp.UserID})
	if err != nil {
		return err
	}
	if o, ok := owners[sp.UserID]; ok {
		sp.Owner = &o
	}
	if !visibility.CanViewSpecimen(*sp, v.UserID) {
		return apperror.NotFound("specimen not found")
	}
	return nil
}

func (s *SubscriptionService) status(ctx context.Context, v Viewer, id string) (SubscriptionStatus, error) {
	n, err := s.Subscriptions.CountBySpecimen(ctx, id)
	if err != nil {
		return SubscriptionStatus{}, err
	}
	st := SubscriptionStatus{Subscribers: n}
	if v.Authenticated() {
		if st.Subscribed, err = s.Subscriptions.IsSubscribed(ctx, id, v.UserID); err != nil {
			return SubscriptionStatus{}, err
		}
	}
	return st, nil
}

func (s *SubscriptionService) Status(ctx context.Context, v Viewer, specimenID string) (SubscriptionStatus, error) {
	if err := s.visibleSpecimen(ctx, v, specimenID); err != nil {
		return SubscriptionStatus{}, err
	}
	return s.status(ctx, v, specimenID)
}

// Subscribe follows a specimen. Subscribing twice is a Conflict.
func (s *SubscriptionService) Subscribe(ctx context.Context, v Viewer, specimenID string) (SubscriptionStatus, error) {
	if err := v.require(); err != nil {
		return SubscriptionStatus{}, err
	}
	if err := s.visibleSpecimen(ctx, v, specimenID); err != nil {
		return SubscriptionStatus{}, err
	}
	if err := s.Subscriptions.Subscribe(ctx, specimenID, v.UserID); err != nil {
		return SubscriptionStatus{}, err
	}
	engagementEvents.WithLabelValues("subscribed").Inc()
	return s.status(ctx, v, specimenID)
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, v Viewer, specimenID string) (SubscriptionStatus, error) {
	if err := v.require(); err != nil {
		return SubscriptionStatus{}, err
	}
	if err := s.Subscriptions.Unsubscribe(ctx, specimenID, v.UserID); err != nil {
		return SubscriptionStatus{}, err
	}
	engagementEvents.WithLabelValues("unsubscribed").Inc()
	return s.status(ctx, v, specimenID)
}
