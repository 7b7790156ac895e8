package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/example/zeus-tips-bot/internal/model"
	"github.com/example/zeus-tips-bot/internal/service"
	"github.com/example/zeus-tips-bot/pkg/mercadopago"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// PaymentProvider is the part of the Mercado Pago client the bot uses.
type PaymentProvider interface {
	CreatePayment(ctx context.Context, amount float64, description, externalReference string) (*mercadopago.Payment, error)
	GetPaymentStatus(ctx context.Context, paymentID int64) (*mercadopago.PaymentStatus, error)
}

// WebhookServer receives Mercado Pago payment notifications. Polling via the
// /status command stays available as a fallback, so a lost notification only
// delays activation.
type WebhookServer struct {
	payments   PaymentProvider
	enrollment *service.EnrollmentService
	plans      map[string]model.Plan
	logger     *slog.Logger
	server     *http.Server
}

func NewWebhookServer(addr string, payments PaymentProvider, enrollment *service.EnrollmentService, plans map[string]model.Plan, logger *slog.Logger) *WebhookServer {
	s := &WebhookServer{
		payments:   payments,
		enrollment: enrollment,
		plans:      plans,
		logger:     logger,
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/webhooks/mercadopago", s.handleNotification)
	s.server = &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	return s
}

// Run serves until ctx is canceled.
func (s *WebhookServer) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(shutdownCtx)
	}()
	s.logger.Info("webhook server listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// handleNotification processes one payment event. Mercado Pago retries
// undelivered notifications, and completing the same approved payment twice
// is harmless, so the handler always acknowledges with 200 once the payload
// is readable.
func (s *WebhookServer) handleNotification(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type string `json:"type"`
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if body.Type != "payment" {
		w.WriteHeader(http.StatusOK)
		return
	}
	paymentID, err := strconv.ParseInt(body.Data.ID, 10, 64)
	if err != nil {
		http.Error(w, "bad payment id", http.StatusBadRequest)
		return
	}

	status, err := s.payments.GetPaymentStatus(r.Context(), paymentID)
	if err != nil {
		s.logger.Error("webhook: fetch payment status", "payment", paymentID, "error", err)
		// Let the provider retry later.
		http.Error(w, "upstream error", http.StatusBadGateway)
		return
	}
	if status.Status != mercadopago.StatusApproved {
		s.logger.Info("webhook: payment not approved yet", "payment", paymentID, "status", status.Status)
		w.WriteHeader(http.StatusOK)
		return
	}

	userID, planKey, username, err := service.ParsePaymentReference(status.ExternalReference)
	if err != nil {
		s.logger.Error("webhook: attribute payment", "payment", paymentID, "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}
	plan, ok := s.plans[planKey]
	if !ok {
		s.logger.Error("webhook: unknown plan", "payment", paymentID, "plan", planKey)
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := s.enrollment.Complete(r.Context(), userID, username, plan); err != nil {
		s.logger.Error("webhook: complete enrollment", "payment", paymentID, "user", userID, "error", err)
		http.Error(w, "enrollment failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
