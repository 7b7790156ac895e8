package cmdHandlers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/zeus-tips-bot/internal/repository"
	"github.com/example/zeus-tips-bot/internal/service"
	"github.com/example/zeus-tips-bot/pkg/mercadopago"
	"github.com/example/zeus-tips-bot/pkg/telegram"
)

func (c *CmdHandler) handleStart(ctx context.Context, m *telegram.Message) {
	text := "⚡ Bem-vindo ao ZEUS TIPS! ⚡\n\n" +
		"Palpites diários de futebol com análise de IA, enviados direto no canal VIP.\n\n" +
		"Comandos:\n" +
		"/palpites - prévia do palpite do dia\n" +
		"/assinar - planos e pagamento via Pix\n" +
		"/status - situação da sua assinatura\n" +
		"/ajuda - como tudo funciona"
	c.sendMessage(ctx, m.Chat.ID, text)
}

func (c *CmdHandler) handleHelp(ctx context.Context, m *telegram.Message) {
	text := "Como funciona o Zeus Tips:\n\n" +
		"1. Todos os dias a IA analisa os jogos das principais ligas e monta os palpites.\n" +
		"2. Assinantes recebem os palpites no canal VIP, com odd sugerida e stake recomendada.\n" +
		"3. Os resultados são conferidos automaticamente e o resumo com ROI sai todo dia.\n\n" +
		"Use /assinar para escolher um plano e pagar via Pix.\n" +
		"Após a confirmação do pagamento você recebe o link do canal na hora."
	c.sendMessage(ctx, m.Chat.ID, text)
}

func (c *CmdHandler) handleSubscribe(ctx context.Context, m *telegram.Message) {
	keys := make([]string, 0, len(c.plans))
	for k := range c.plans {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return c.plans[keys[i]].Price < c.plans[keys[j]].Price })

	buttons := make([][]telegram.InlineButton, 0, len(keys))
	for _, k := range keys {
		p := c.plans[k]
		label := fmt.Sprintf("%s - %s (%d dias)", p.Title, formatPrice(p.Price), p.DurationDays)
		buttons = append(buttons, []telegram.InlineButton{{Text: label, CallbackData: p.Key}})
	}
	if _, err := c.tgClient.SendInlineKeyboard(ctx, m.Chat.ID, "Escolha seu plano:", buttons); err != nil {
		c.logger.Error("send plan keyboard", "chat", m.Chat.ID, "error", err)
	}
}

// HandleCallback processes a plan button press: it creates a Pix charge and
// sends the QR code plus copy-paste code to the user.
func (c *CmdHandler) HandleCallback(ctx context.Context, q *telegram.CallbackQuery) {
	if err := c.tgClient.AnswerCallbackQuery(ctx, q.ID); err != nil {
		c.logger.Error("answer callback", "callback", q.ID, "error", err)
	}
	userID := q.From.ID

	plan, ok := c.plans[q.Data]
	if !ok {
		c.sendMessage(ctx, userID, "Plano inválido. Use /assinar para ver os planos.")
		return
	}

	username := q.From.Username
	if username == "" {
		username = q.From.FirstName
	}
	ref := service.PaymentReference(userID, plan.Key, username)
	payment, err := c.payments.CreatePayment(ctx, plan.Price, "Zeus Tips - Plano "+plan.Title, ref)
	if err != nil {
		c.logger.Error("create payment", "user", userID, "plan", plan.Key, "error", err)
		c.sendMessage(ctx, userID, "Não foi possível gerar o pagamento agora. Tente novamente em instantes.")
		return
	}
	c.pending[userID] = pendingPayment{paymentID: payment.ID, planKey: plan.Key}
	c.logger.Info("payment created", "user", userID, "plan", plan.Key, "payment", payment.ID)

	if q.Message != nil {
		text := fmt.Sprintf("Plano %s selecionado. Pagamento Pix de %s gerado!", plan.Title, formatPrice(plan.Price))
		if err := c.tgClient.EditMessageText(ctx, q.Message.Chat.ID, q.Message.MessageID, text); err != nil {
			c.logger.Error("edit plan message", "user", userID, "error", err)
		}
	}
	if len(payment.QRCodeImage) > 0 {
		if err := c.tgClient.SendPhoto(ctx, userID, payment.QRCodeImage); err != nil {
			c.logger.Error("send qr code", "user", userID, "error", err)
		}
	}
	if payment.QRCodeText != "" {
		code := fmt.Sprintf("Escaneie o QR Code acima ou copie o código Pix:\n\n`%s`", payment.QRCodeText)
		if _, err := c.tgClient.SendMessageMarkdown(ctx, userID, code); err != nil {
			c.logger.Error("send pix code", "user", userID, "error", err)
		}
	}
	c.sendMessage(ctx, userID, "Assim que o pagamento for confirmado você recebe o link do canal VIP automaticamente. Você também pode conferir com /status.")
}

// handleStatus reports the subscription state. When the user has a pending
// charge it also polls the payment once, so a lost webhook does not strand
// an approved payment.
func (c *CmdHandler) handleStatus(ctx context.Context, m *telegram.Message) {
	userID := m.Chat.ID
	now := time.Now().UTC()

	sub, err := c.subs.Get(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		c.logger.Error("load subscriber", "user", userID, "error", err)
		c.sendMessage(ctx, userID, "Não consegui consultar sua assinatura agora. Tente novamente.")
		return
	}
	if sub != nil && sub.Active(now) {
		var b strings.Builder
		fmt.Fprintf(&b, "✅ Assinatura ativa!\n\nPlano: %s\nVálida até: %s (%d dias restantes)",
			sub.Plan, sub.EndDate.Format("02/01/2006"), remainingDays(sub.EndDate, now))
		if link, err := c.enrollment.InviteLink(ctx); err == nil {
			fmt.Fprintf(&b, "\n\nLink do canal VIP (válido por 24h): %s", link)
		} else {
			c.logger.Error("issue invite link", "user", userID, "error", err)
		}
		c.sendMessage(ctx, userID, b.String())
		return
	}

	if p, ok := c.pending[userID]; ok {
		status, err := c.payments.GetPaymentStatus(ctx, p.paymentID)
		if err != nil {
			c.logger.Error("poll payment", "user", userID, "payment", p.paymentID, "error", err)
			c.sendMessage(ctx, userID, "Não consegui verificar seu pagamento agora. Tente novamente em instantes.")
			return
		}
		switch status.Status {
		case mercadopago.StatusApproved:
			plan, ok := c.plans[p.planKey]
			if !ok {
				c.logger.Error("pending payment with unknown plan", "user", userID, "plan", p.planKey)
				c.sendMessage(ctx, userID, "Pagamento aprovado, mas algo deu errado. Fale com o suporte.")
				return
			}
			if err := c.enrollment.Complete(ctx, userID, senderUsername(m), plan); err != nil {
				c.logger.Error("complete enrollment", "user", userID, "error", err)
				c.sendMessage(ctx, userID, "Pagamento aprovado, mas não consegui ativar a assinatura. Tente /status novamente.")
				return
			}
			delete(c.pending, userID)
		case mercadopago.StatusRejected:
			delete(c.pending, userID)
			c.sendMessage(ctx, userID, "❌ Seu pagamento foi recusado. Use /assinar para gerar um novo.")
		default:
			c.sendMessage(ctx, userID, "⏳ Pagamento ainda pendente. Assim que for aprovado você recebe o link do canal.")
		}
		return
	}

	if sub != nil {
		c.sendMessage(ctx, userID, fmt.Sprintf("Sua assinatura %s expirou em %s.\nUse /assinar para renovar.",
			sub.Plan, sub.EndDate.Format("02/01/2006")))
		return
	}
	c.sendMessage(ctx, userID, "Você ainda não tem assinatura. Use /assinar para conhecer os planos.")
}

// handleTips gives non-subscribers a single free preview; subscribers are
// pointed at the channel where the full batch lands.
func (c *CmdHandler) handleTips(ctx context.Context, m *telegram.Message) {
	userID := m.Chat.ID
	sub, err := c.subs.Get(ctx, userID)
	if err == nil && sub.Active(time.Now().UTC()) {
		c.sendMessage(ctx, userID, "Você é assinante! Os palpites completos saem direto no canal VIP. ⚡")
		return
	}

	c.sendMessage(ctx, userID, "Buscando uma prévia dos jogos de hoje...")
	preview, err := c.jobs.PreviewTip(ctx)
	if err != nil {
		c.logger.Error("build preview tip", "user", userID, "error", err)
		c.sendMessage(ctx, userID, "Sem prévia disponível agora. Assine com /assinar e receba todos os palpites no canal VIP!")
		return
	}
	c.sendMessage(ctx, userID, preview)
	c.sendMessage(ctx, userID, "Gostou? Esse é só um dos palpites de hoje. Use /assinar para receber todos no canal VIP. ⚡")
}

func formatPrice(v float64) string {
	return "R$ " + strings.ReplaceAll(fmt.Sprintf("%.2f", v), ".", ",")
}
