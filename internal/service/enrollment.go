package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/zeus-tips-bot/internal/model"
)

// InviteTransport is the part of the messaging client enrollment needs.
type InviteTransport interface {
	SendMessage(ctx context.Context, chatID int64, text string) (int, error)
	CreateChatInviteLink(ctx context.Context, chatID int64, expire time.Time, memberLimit int) (string, error)
}

// inviteTTL is how long a freshly issued VIP invite link stays valid.
const inviteTTL = 24 * time.Hour

// EnrollmentService finishes a purchase: it activates the subscription and
// hands the user a single-use invite link into the VIP channel. It is driven
// from both the payment webhook and the /status polling path; activating the
// same approved payment twice just refreshes the same subscription row.
type EnrollmentService struct {
	subscriptions *SubscriptionService
	channel       *ChannelService
	tg            InviteTransport
	logger        *slog.Logger
	now           func() time.Time
}

func NewEnrollmentService(subscriptions *SubscriptionService, channel *ChannelService, tg InviteTransport, logger *slog.Logger) *EnrollmentService {
	return &EnrollmentService{
		subscriptions: subscriptions,
		channel:       channel,
		tg:            tg,
		logger:        logger,
		now:           time.Now,
	}
}

// InviteLink issues a fresh single-use invite link into the VIP channel.
func (e *EnrollmentService) InviteLink(ctx context.Context) (string, error) {
	channelID, err := e.channel.VIPChannelID(ctx)
	if err != nil {
		return "", err
	}
	link, err := e.tg.CreateChatInviteLink(ctx, channelID, e.now().Add(inviteTTL), 1)
	if err != nil {
		return "", fmt.Errorf("create invite link: %w", err)
	}
	return link, nil
}

// Complete activates the plan for the user and sends the welcome message
// with the invite link. The activation is the part that must not be lost; a
// failed welcome message is logged and the user can fetch a link via /status.
func (e *EnrollmentService) Complete(ctx context.Context, userID int64, username string, plan model.Plan) error {
	if _, err := e.subscriptions.Activate(ctx, userID, username, plan); err != nil {
		return err
	}
	e.logger.Info("subscription activated", "user", userID, "plan", plan.Key)

	link, err := e.InviteLink(ctx)
	if err != nil {
		e.logger.Error("issue invite link", "user", userID, "error", err)
		link = "#"
	}
	welcome := fmt.Sprintf(
		"🎉 Parabéns! Seu pagamento foi APROVADO!\n\n"+
			"Sua assinatura %s está ativa.\n"+
			"Acesse o canal VIP com seu link exclusivo (válido por 24h): %s\n\n"+
			"Bem-vindo ao time Zeus Tips! ⚡", plan.Title, link)
	if _, err := e.tg.SendMessage(ctx, userID, welcome); err != nil {
		e.logger.Error("send welcome message", "user", userID, "error", err)
	}
	return nil
}
