package service

import (
	"context"
	"fmt"
	"time"

	"github.com/example/zeus-tips-bot/internal/model"
	"github.com/example/zeus-tips-bot/internal/repository"
)

// SubscriptionService owns subscriber lifecycle transitions: activation after
// an approved payment and expiry once the period is over.
type SubscriptionService struct {
	repo repository.SubscriberRepository
	now  func() time.Time
}

func NewSubscriptionService(repo repository.SubscriberRepository) *SubscriptionService {
	return &SubscriptionService{repo: repo, now: time.Now}
}

// Activate records a paid subscription for the user, replacing any previous
// row. It is called from the payment-confirmation flow only.
func (s *SubscriptionService) Activate(ctx context.Context, userID int64, username string, plan model.Plan) (*model.Subscriber, error) {
	start := s.now()
	sub := &model.Subscriber{
		UserID:    userID,
		Username:  username,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, plan.DurationDays),
		Plan:      plan.Title,
		Status:    model.StatusActive,
	}
	if err := s.repo.Upsert(ctx, sub); err != nil {
		return nil, fmt.Errorf("activate subscriber %d: %w", userID, err)
	}
	return sub, nil
}

// ExpireDue flips every active subscriber whose end date has passed to
// expired and returns them so the caller can notify. Running it again right
// away finds nothing to do: the status filter makes it idempotent.
func (s *SubscriptionService) ExpireDue(ctx context.Context) ([]*model.Subscriber, error) {
	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active subscribers: %w", err)
	}
	now := s.now()
	var expired []*model.Subscriber
	for _, sub := range active {
		if !now.After(sub.EndDate) {
			continue
		}
		if err := s.repo.UpdateStatus(ctx, sub.UserID, model.StatusExpired); err != nil {
			return expired, fmt.Errorf("expire subscriber %d: %w", sub.UserID, err)
		}
		sub.Status = model.StatusExpired
		expired = append(expired, sub)
	}
	return expired, nil
}

// ActiveIDs returns the set of user IDs with an active subscription row.
func (s *SubscriptionService) ActiveIDs(ctx context.Context) (map[int64]bool, error) {
	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[int64]bool, len(active))
	for _, sub := range active {
		ids[sub.UserID] = true
	}
	return ids, nil
}
