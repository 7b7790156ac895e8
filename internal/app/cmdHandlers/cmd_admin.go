package cmdHandlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/zeus-tips-bot/pkg/telegram"
)

func (c *CmdHandler) handleAdminGames(ctx context.Context, m *telegram.Message, args []string) {
	if !c.isAdmin(ctx, m) {
		return
	}
	date := time.Now().UTC().Format("2006-01-02")
	if len(args) > 0 {
		if _, err := time.Parse("2006-01-02", args[0]); err != nil {
			c.sendMessage(ctx, m.Chat.ID, "Data inválida. Use o formato AAAA-MM-DD, ex: /admin_jogos 2026-08-25")
			return
		}
		date = args[0]
	}

	fixtures, err := c.fixtures.FixturesByDate(ctx, date)
	if err != nil {
		c.logger.Error("list fixtures", "date", date, "error", err)
		c.sendMessage(ctx, m.Chat.ID, "Erro ao buscar os jogos de "+date+".")
		return
	}
	if len(fixtures) == 0 {
		c.sendMessage(ctx, m.Chat.ID, "Nenhum jogo encontrado em "+date+".")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Jogos em %s (%d):\n", date, len(fixtures))
	for i, f := range fixtures {
		if i >= 40 {
			fmt.Fprintf(&b, "... e mais %d jogos", len(fixtures)-i)
			break
		}
		fmt.Fprintf(&b, "\n[%d] %s: %s x %s (%s)",
			f.Info.ID, f.League.Name, f.Teams.Home.Name, f.Teams.Away.Name,
			f.Info.Date.UTC().Format("15:04"))
	}
	c.sendMessage(ctx, m.Chat.ID, b.String())
}

func (c *CmdHandler) handleAdminSend(ctx context.Context, m *telegram.Message) {
	if !c.isAdmin(ctx, m) {
		return
	}
	c.sendMessage(ctx, m.Chat.ID, "Gerando e enviando os palpites do dia...")
	c.jobs.SendDailyTips(ctx)
	c.sendMessage(ctx, m.Chat.ID, "Envio de palpites concluído.")
}

func (c *CmdHandler) handleAdminLive(ctx context.Context, m *telegram.Message) {
	if !c.isAdmin(ctx, m) {
		return
	}
	c.sendMessage(ctx, m.Chat.ID, "Analisando jogos ao vivo...")
	c.jobs.SendLiveTips(ctx)
	c.sendMessage(ctx, m.Chat.ID, "Análise ao vivo concluída.")
}

func (c *CmdHandler) handleAdminResults(ctx context.Context, m *telegram.Message) {
	if !c.isAdmin(ctx, m) {
		return
	}
	c.sendMessage(ctx, m.Chat.ID, "Conferindo resultados pendentes...")
	c.jobs.CheckResults(ctx)
	c.sendMessage(ctx, m.Chat.ID, "Conferência de resultados concluída.")
}

func (c *CmdHandler) handleAdminSummary(ctx context.Context, m *telegram.Message) {
	if !c.isAdmin(ctx, m) {
		return
	}
	c.jobs.SendDailySummary(ctx)
	c.sendMessage(ctx, m.Chat.ID, "Resumo diário enviado ao canal.")
}

func (c *CmdHandler) handleAdminStats(ctx context.Context, m *telegram.Message) {
	if !c.isAdmin(ctx, m) {
		return
	}
	active, err := c.subs.CountActive(ctx)
	if err != nil {
		c.logger.Error("count active subscribers", "error", err)
		c.sendMessage(ctx, m.Chat.ID, "Erro ao contar assinantes.")
		return
	}
	stats, err := c.preds.Stats(ctx)
	if err != nil {
		c.logger.Error("load prediction stats", "error", err)
		c.sendMessage(ctx, m.Chat.ID, "Erro ao carregar estatísticas de palpites.")
		return
	}
	text := fmt.Sprintf(
		"📊 ESTATÍSTICAS\n\n"+
			"Assinantes ativos: %d\n\n"+
			"Palpites enviados: %d\n"+
			"🟢 Greens: %d\n"+
			"🔴 Reds: %d\n"+
			"⏳ Pendentes: %d\n"+
			"Taxa de acerto: %.1f%%",
		active, stats.Total, stats.Greens, stats.Reds, stats.Pending, stats.WinRate())
	c.sendMessage(ctx, m.Chat.ID, text)
}

func (c *CmdHandler) handleAdminSetChannel(ctx context.Context, m *telegram.Message, args []string) {
	if !c.isAdmin(ctx, m) {
		return
	}
	if len(args) == 0 {
		c.sendMessage(ctx, m.Chat.ID, "Informe o ID do canal, ex: /admin_setchannel -1001234567890")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || !strings.HasPrefix(args[0], "-100") {
		c.sendMessage(ctx, m.Chat.ID, "ID de canal inválido. Canais têm IDs no formato -100XXXXXXXXXX.")
		return
	}
	if err := c.channel.SetVIPChannelID(ctx, id); err != nil {
		c.logger.Error("set vip channel", "channel", id, "error", err)
		c.sendMessage(ctx, m.Chat.ID, "Erro ao salvar o canal VIP.")
		return
	}
	c.sendMessage(ctx, m.Chat.ID, fmt.Sprintf("Canal VIP atualizado para %d.", id))
}
