package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/zeus-tips-bot/internal/model"
	"github.com/example/zeus-tips-bot/internal/repository"
)

type fakeSubscriberRepo struct {
	subs map[int64]*model.Subscriber
}

func newFakeSubscriberRepo() *fakeSubscriberRepo {
	return &fakeSubscriberRepo{subs: map[int64]*model.Subscriber{}}
}

func (f *fakeSubscriberRepo) Get(_ context.Context, userID int64) (*model.Subscriber, error) {
	s, ok := f.subs[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSubscriberRepo) Upsert(_ context.Context, s *model.Subscriber) error {
	cp := *s
	f.subs[s.UserID] = &cp
	return nil
}

func (f *fakeSubscriberRepo) UpdateStatus(_ context.Context, userID int64, status string) error {
	s, ok := f.subs[userID]
	if !ok {
		return repository.ErrNotFound
	}
	s.Status = status
	return nil
}

func (f *fakeSubscriberRepo) List(_ context.Context) ([]*model.Subscriber, error) {
	var out []*model.Subscriber
	for _, s := range f.subs {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeSubscriberRepo) ListActive(_ context.Context) ([]*model.Subscriber, error) {
	var out []*model.Subscriber
	for _, s := range f.subs {
		if s.Status == model.StatusActive {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeSubscriberRepo) CountActive(_ context.Context) (int, error) {
	active, _ := f.ListActive(context.Background())
	return len(active), nil
}

func TestActivate(t *testing.T) {
	repo := newFakeSubscriberRepo()
	svc := NewSubscriptionService(repo)
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	plan := model.Plan{Key: "plan_mensal", Title: "Plano Mensal", Price: 29.90, DurationDays: 30}
	sub, err := svc.Activate(context.Background(), 42, "joao", plan)
	require.NoError(t, err)

	assert.Equal(t, model.StatusActive, sub.Status)
	assert.Equal(t, "Plano Mensal", sub.Plan)
	assert.Equal(t, now.AddDate(0, 0, 30), sub.EndDate)
	assert.True(t, sub.Active(now))

	stored, err := repo.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, sub.EndDate, stored.EndDate)
}

func TestActivateRenewalReplacesRow(t *testing.T) {
	repo := newFakeSubscriberRepo()
	svc := NewSubscriptionService(repo)
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	plan := model.Plan{Key: "plan_mensal", Title: "Plano Mensal", DurationDays: 30}
	_, err := svc.Activate(context.Background(), 42, "joao", plan)
	require.NoError(t, err)

	later := now.AddDate(0, 0, 45)
	svc.now = func() time.Time { return later }
	_, err = svc.Activate(context.Background(), 42, "joao", plan)
	require.NoError(t, err)

	stored, err := repo.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, later.AddDate(0, 0, 30), stored.EndDate)
	assert.Equal(t, model.StatusActive, stored.Status)
}

func TestExpireDue(t *testing.T) {
	repo := newFakeSubscriberRepo()
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	repo.subs[1] = &model.Subscriber{UserID: 1, EndDate: now.Add(-time.Hour), Status: model.StatusActive}
	repo.subs[2] = &model.Subscriber{UserID: 2, EndDate: now.Add(time.Hour), Status: model.StatusActive}
	repo.subs[3] = &model.Subscriber{UserID: 3, EndDate: now.Add(-time.Hour), Status: model.StatusExpired}

	svc := NewSubscriptionService(repo)
	svc.now = func() time.Time { return now }

	expired, err := svc.ExpireDue(context.Background())
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, int64(1), expired[0].UserID)
	assert.Equal(t, model.StatusExpired, expired[0].Status)
	assert.Equal(t, model.StatusExpired, repo.subs[1].Status)
	assert.Equal(t, model.StatusActive, repo.subs[2].Status)

	// A second run finds nothing new.
	expired, err = svc.ExpireDue(context.Background())
	require.NoError(t, err)
	assert.Empty(t, expired)
}

func TestActiveIDs(t *testing.T) {
	repo := newFakeSubscriberRepo()
	repo.subs[1] = &model.Subscriber{UserID: 1, Status: model.StatusActive}
	repo.subs[2] = &model.Subscriber{UserID: 2, Status: model.StatusExpired}

	svc := NewSubscriptionService(repo)
	ids, err := svc.ActiveIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{1: true}, ids)
}
