package app

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/zeus-tips-bot/internal/model"
	"github.com/example/zeus-tips-bot/internal/service"
	"github.com/example/zeus-tips-bot/pkg/mercadopago"
)

type fakePayments struct {
	statuses map[int64]*mercadopago.PaymentStatus
}

func (f *fakePayments) CreatePayment(_ context.Context, _ float64, _, _ string) (*mercadopago.Payment, error) {
	panic("not used by the webhook")
}

func (f *fakePayments) GetPaymentStatus(_ context.Context, paymentID int64) (*mercadopago.PaymentStatus, error) {
	s, ok := f.statuses[paymentID]
	if !ok {
		return nil, assert.AnError
	}
	return s, nil
}

type fakeInviteTransport struct {
	messages []sentMessage
}

func (f *fakeInviteTransport) SendMessage(_ context.Context, chatID int64, text string) (int, error) {
	f.messages = append(f.messages, sentMessage{chatID: chatID, text: text})
	return len(f.messages), nil
}

func (f *fakeInviteTransport) CreateChatInviteLink(_ context.Context, _ int64, _ time.Time, _ int) (string, error) {
	return "https://t.me/+invite", nil
}

func newTestWebhook(subs *fakeSubs, payments *fakePayments, tg *fakeInviteTransport) *WebhookServer {
	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	settings := &fakeSettings{values: map[string]string{service.VIPChannelKey: "-100123"}}
	enrollment := service.NewEnrollmentService(
		service.NewSubscriptionService(subs),
		service.NewChannelService(settings, 0),
		tg,
		logger,
	)
	plans := map[string]model.Plan{
		"plan_mensal": {Key: "plan_mensal", Title: "Plano Mensal", Price: 29.90, DurationDays: 30},
	}
	return NewWebhookServer(":0", payments, enrollment, plans, logger)
}

func postNotification(t *testing.T, s *WebhookServer, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/mercadopago", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestWebhookApprovedPaymentActivatesSubscription(t *testing.T) {
	subs := &fakeSubs{subs: map[int64]*model.Subscriber{}}
	payments := &fakePayments{statuses: map[int64]*mercadopago.PaymentStatus{
		555: {
			ID:                555,
			Status:            mercadopago.StatusApproved,
			ExternalReference: service.PaymentReference(42, "plan_mensal", "joao"),
		},
	}}
	tg := &fakeInviteTransport{}
	s := newTestWebhook(subs, payments, tg)

	rec := postNotification(t, s, `{"type":"payment","data":{"id":"555"}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	sub, ok := subs.subs[42]
	require.True(t, ok)
	assert.Equal(t, model.StatusActive, sub.Status)
	assert.Equal(t, "joao", sub.Username)

	require.Len(t, tg.messages, 1)
	assert.Equal(t, int64(42), tg.messages[0].chatID)
	assert.Contains(t, tg.messages[0].text, "APROVADO")
	assert.Contains(t, tg.messages[0].text, "https://t.me/+invite")
}

func TestWebhookPendingPaymentIsAcknowledgedWithoutActivation(t *testing.T) {
	subs := &fakeSubs{subs: map[int64]*model.Subscriber{}}
	payments := &fakePayments{statuses: map[int64]*mercadopago.PaymentStatus{
		555: {ID: 555, Status: mercadopago.StatusPending},
	}}
	s := newTestWebhook(subs, payments, &fakeInviteTransport{})

	rec := postNotification(t, s, `{"type":"payment","data":{"id":"555"}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, subs.subs)
}

func TestWebhookIgnoresNonPaymentEvents(t *testing.T) {
	subs := &fakeSubs{subs: map[int64]*model.Subscriber{}}
	s := newTestWebhook(subs, &fakePayments{}, &fakeInviteTransport{})

	rec := postNotification(t, s, `{"type":"plan","data":{"id":"1"}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, subs.subs)
}

func TestWebhookStatusLookupFailureAsksForRetry(t *testing.T) {
	s := newTestWebhook(&fakeSubs{subs: map[int64]*model.Subscriber{}},
		&fakePayments{statuses: map[int64]*mercadopago.PaymentStatus{}}, &fakeInviteTransport{})

	rec := postNotification(t, s, `{"type":"payment","data":{"id":"777"}}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	s := newTestWebhook(&fakeSubs{subs: map[int64]*model.Subscriber{}},
		&fakePayments{}, &fakeInviteTransport{})

	rec := postNotification(t, s, `not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
