package cmdHandlers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/example/zeus-tips-bot/internal/model"
	"github.com/example/zeus-tips-bot/internal/repository"
	"github.com/example/zeus-tips-bot/internal/service"
	"github.com/example/zeus-tips-bot/pkg/apifootball"
	"github.com/example/zeus-tips-bot/pkg/mercadopago"
	"github.com/example/zeus-tips-bot/pkg/telegram"
)

const (
	StartCmd        = "/start"
	HelpCmd         = "/ajuda"
	SubscribeCmd    = "/assinar"
	StatusCmd       = "/status"
	TipsCmd         = "/palpites"
	AdminGamesCmd   = "/admin_jogos"
	AdminSendCmd    = "/admin_forcar_envio"
	AdminLiveCmd    = "/admin_aovivo"
	AdminResultsCmd = "/admin_verificar_resultados"
	AdminSummaryCmd = "/admin_resumo"
	AdminStatsCmd   = "/admin_estatisticas"
	AdminChannelCmd = "/admin_setchannel"
)

// PaymentProvider is the part of the Mercado Pago client the commands use.
type PaymentProvider interface {
	CreatePayment(ctx context.Context, amount float64, description, externalReference string) (*mercadopago.Payment, error)
	GetPaymentStatus(ctx context.Context, paymentID int64) (*mercadopago.PaymentStatus, error)
}

// JobRunner lets admin commands trigger a scheduled job out of cadence.
type JobRunner interface {
	SendDailyTips(ctx context.Context)
	SendLiveTips(ctx context.Context)
	CheckResults(ctx context.Context)
	SendDailySummary(ctx context.Context)
	PreviewTip(ctx context.Context) (string, error)
}

// FixtureLister is the slice of the data provider used by /admin_jogos.
type FixtureLister interface {
	FixturesByDate(ctx context.Context, date string) ([]apifootball.Fixture, error)
}

// pendingPayment remembers the charge a user generated via /assinar until
// /status confirms it or the webhook beats it to it.
type pendingPayment struct {
	paymentID int64
	planKey   string
}

type CmdHandler struct {
	logger     *slog.Logger
	adminID    int64
	plans      map[string]model.Plan
	tgClient   *telegram.Client
	subs       repository.SubscriberRepository
	preds      repository.PredictionRepository
	channel    *service.ChannelService
	enrollment *service.EnrollmentService
	payments   PaymentProvider
	jobs       JobRunner
	fixtures   FixtureLister

	// Updates are handled sequentially, so plain map access is fine.
	pending map[int64]pendingPayment
}

func NewCmdHandler(
	logger *slog.Logger,
	adminID int64,
	plans map[string]model.Plan,
	tgClient *telegram.Client,
	subs repository.SubscriberRepository,
	preds repository.PredictionRepository,
	channel *service.ChannelService,
	enrollment *service.EnrollmentService,
	payments PaymentProvider,
	jobs JobRunner,
	fixtures FixtureLister,
) *CmdHandler {
	return &CmdHandler{
		logger:     logger,
		adminID:    adminID,
		plans:      plans,
		tgClient:   tgClient,
		subs:       subs,
		preds:      preds,
		channel:    channel,
		enrollment: enrollment,
		payments:   payments,
		jobs:       jobs,
		fixtures:   fixtures,
		pending:    map[int64]pendingPayment{},
	}
}

// HandleMessage dispatches one incoming private message to its command.
func (c *CmdHandler) HandleMessage(ctx context.Context, m *telegram.Message) {
	fields := strings.Fields(m.Text)
	if len(fields) == 0 {
		return
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case StartCmd:
		c.handleStart(ctx, m)
	case HelpCmd, "/help":
		c.handleHelp(ctx, m)
	case SubscribeCmd:
		c.handleSubscribe(ctx, m)
	case StatusCmd:
		c.handleStatus(ctx, m)
	case TipsCmd:
		c.handleTips(ctx, m)

	case AdminGamesCmd:
		c.handleAdminGames(ctx, m, args)
	case AdminSendCmd:
		c.handleAdminSend(ctx, m)
	case AdminLiveCmd:
		c.handleAdminLive(ctx, m)
	case AdminResultsCmd:
		c.handleAdminResults(ctx, m)
	case AdminSummaryCmd:
		c.handleAdminSummary(ctx, m)
	case AdminStatsCmd:
		c.handleAdminStats(ctx, m)
	case AdminChannelCmd:
		c.handleAdminSetChannel(ctx, m, args)
	default:
		c.logger.Info("unhandled text", "user", m.Chat.ID, "text", m.Text)
	}
}

// sendMessage logs failures so callers can stay on the happy path.
func (c *CmdHandler) sendMessage(ctx context.Context, chatID int64, text string) {
	if _, err := c.tgClient.SendMessage(ctx, chatID, text); err != nil {
		c.logger.Error("send message", "chat", chatID, "error", err)
	}
}

// isAdmin gates the admin commands. The refusal is a normal reply, not an
// error condition.
func (c *CmdHandler) isAdmin(ctx context.Context, m *telegram.Message) bool {
	if c.adminID != 0 && m.Chat.ID == c.adminID {
		return true
	}
	c.sendMessage(ctx, m.Chat.ID, "Você não tem permissão para usar este comando.")
	return false
}

// Commands returns the command menu shown in the Telegram UI.
func Commands() []telegram.BotCommand {
	return []telegram.BotCommand{
		{Command: "start", Description: "Boas-vindas e apresentação"},
		{Command: "palpites", Description: "Prévia dos palpites do dia"},
		{Command: "assinar", Description: "Planos e pagamento via Pix"},
		{Command: "status", Description: "Status da sua assinatura"},
		{Command: "ajuda", Description: "Como o bot funciona"},
	}
}

func senderUsername(m *telegram.Message) string {
	if m.From != nil {
		if m.From.Username != "" {
			return m.From.Username
		}
		return m.From.FirstName
	}
	return m.Chat.Username
}

func remainingDays(end, now time.Time) int {
	d := int(end.Sub(now).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
