package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/zeus-tips-bot/internal/model"
	"github.com/example/zeus-tips-bot/internal/repository"
	"github.com/example/zeus-tips-bot/internal/service"
	"github.com/example/zeus-tips-bot/pkg/apifootball"
	"github.com/example/zeus-tips-bot/pkg/openai"
	"github.com/example/zeus-tips-bot/pkg/telegram"
	"golang.org/x/time/rate"
)

// DataProvider is the part of the API-Football client the jobs use.
type DataProvider interface {
	FixturesByDate(ctx context.Context, date string) ([]apifootball.Fixture, error)
	LiveFixtures(ctx context.Context) ([]apifootball.Fixture, error)
	TeamStatistics(ctx context.Context, teamID, leagueID, season int) (json.RawMessage, error)
	HeadToHead(ctx context.Context, teamA, teamB int) (json.RawMessage, error)
	FixtureResult(ctx context.Context, fixtureID int64) (*apifootball.FixtureResult, error)
}

// Analyzer is the part of the OpenAI client the jobs use.
type Analyzer interface {
	AnalyzeMatch(ctx context.Context, m openai.MatchContext) (string, error)
}

// Transport is the part of the Telegram client the jobs use.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string) (int, error)
	GetChatMember(ctx context.Context, chatID, userID int64) (*telegram.ChatMember, error)
	BanChatMember(ctx context.Context, chatID, userID int64) error
	UnbanChatMember(ctx context.Context, chatID, userID int64) error
}

// brt is the timezone match times are displayed in.
var brt = time.FixedZone("BRT", -3*60*60)

// maxLiveTips caps how many in-play tips one live run may send.
const maxLiveTips = 5

// Jobs holds the recurring work of the bot. Jobs never abort on a single bad
// fixture or user; failures are logged and the loop continues. All shared
// state lives in the repositories, so jobs only coordinate through the store.
type Jobs struct {
	logger        *slog.Logger
	adminID       int64
	subs          repository.SubscriberRepository
	preds         repository.PredictionRepository
	subscriptions *service.SubscriptionService
	channel       *service.ChannelService
	data          DataProvider
	ai            Analyzer
	tg            Transport
	limiter       *rate.Limiter
	now           func() time.Time
}

func NewJobs(
	logger *slog.Logger,
	adminID int64,
	subs repository.SubscriberRepository,
	preds repository.PredictionRepository,
	subscriptions *service.SubscriptionService,
	channel *service.ChannelService,
	data DataProvider,
	ai Analyzer,
	tg Transport,
) *Jobs {
	return &Jobs{
		logger:        logger,
		adminID:       adminID,
		subs:          subs,
		preds:         preds,
		subscriptions: subscriptions,
		channel:       channel,
		data:          data,
		ai:            ai,
		tg:            tg,
		// One upstream call per second keeps us far from provider limits.
		limiter: rate.NewLimiter(rate.Limit(1), 1),
		now:     time.Now,
	}
}

func (j *Jobs) vipChannelID(ctx context.Context) (int64, bool) {
	id, err := j.channel.VIPChannelID(ctx)
	if err != nil {
		j.logger.Warn("vip channel unavailable", "error", err)
		return 0, false
	}
	return id, true
}

// buildTip runs the per-fixture pipeline: statistics, head-to-head, AI
// analysis, field parsing. It returns nil when the fixture should be skipped.
func (j *Jobs) buildTip(ctx context.Context, f apifootball.Fixture) *model.PredictionRecord {
	home, away := f.Teams.Home, f.Teams.Away

	if err := j.limiter.Wait(ctx); err != nil {
		return nil
	}
	homeStats, err := j.data.TeamStatistics(ctx, home.ID, f.League.ID, f.League.Season)
	if err != nil {
		j.logger.Error("fetch home statistics", "fixture", f.Info.ID, "error", err)
		return nil
	}
	awayStats, err := j.data.TeamStatistics(ctx, away.ID, f.League.ID, f.League.Season)
	if err != nil {
		j.logger.Error("fetch away statistics", "fixture", f.Info.ID, "error", err)
		return nil
	}
	h2h, err := j.data.HeadToHead(ctx, home.ID, away.ID)
	if err != nil {
		j.logger.Error("fetch head to head", "fixture", f.Info.ID, "error", err)
		return nil
	}

	matchTime := f.Info.Date.In(brt).Format("15:04") + " BRT"
	answer, err := j.ai.AnalyzeMatch(ctx, openai.MatchContext{
		Championship: f.League.Name,
		HomeTeam:     home.Name,
		AwayTeam:     away.Name,
		MatchTime:    matchTime,
		HomeStats:    homeStats,
		AwayStats:    awayStats,
		HeadToHead:   h2h,
	})
	if err != nil {
		j.logger.Error("ai analysis", "fixture", f.Info.ID, "error", err)
		return nil
	}

	analysis := service.ParseAnalysis(answer)
	if !analysis.Usable() {
		j.logger.Warn("ai answer without a tip", "fixture", f.Info.ID, "missing", analysis.Missing)
		return nil
	}
	if len(analysis.Invalid) > 0 {
		j.logger.Warn("ai answer with unparseable fields", "fixture", f.Info.ID, "invalid", analysis.Invalid)
	}

	return &model.PredictionRecord{
		FixtureID:    f.Info.ID,
		Championship: f.League.Name,
		TeamA:        home.Name,
		TeamB:        away.Name,
		MatchTime:    matchTime,
		Analysis:     analysis.Summary,
		Prediction:   analysis.Prediction,
		Confidence:   analysis.Confidence,
		SuggestedOdd: analysis.SuggestedOdd,
		Market:       analysis.Market,
		Result:       model.ResultPending,
	}
}

// sortFixtures filters to league/cup matches and puts priority-league
// fixtures first, keeping discovery order inside each tier.
func sortFixtures(fixtures []apifootball.Fixture) []apifootball.Fixture {
	var priority, other []apifootball.Fixture
	for _, f := range fixtures {
		if f.League.Type != "league" && f.League.Type != "cup" {
			continue
		}
		if _, ok := service.PriorityLeagues[f.League.ID]; ok {
			priority = append(priority, f)
		} else {
			other = append(other, f)
		}
	}
	return append(priority, other...)
}

// SendDailyTips generates and broadcasts the day's tips. A tip is persisted
// only after its message was delivered, so the history never contains tips
// that were not shown.
func (j *Jobs) SendDailyTips(ctx context.Context) {
	j.logger.Info("daily tips: starting")
	channelID, ok := j.vipChannelID(ctx)
	if !ok {
		return
	}

	today := j.now().Format("2006-01-02")
	fixtures, err := j.data.FixturesByDate(ctx, today)
	if err != nil {
		j.logger.Error("daily tips: fetch fixtures", "error", err)
		return
	}
	sorted := sortFixtures(fixtures)
	if len(sorted) == 0 {
		j.logger.Info("daily tips: no fixtures today")
		return
	}
	target := service.TargetTipCount(len(sorted))
	j.logger.Info("daily tips: fixtures found", "total", len(sorted), "target", target)

	var candidates []*model.PredictionRecord
	for _, f := range sorted {
		if len(candidates) >= target+service.OverfetchMargin {
			break
		}
		if tip := j.buildTip(ctx, f); tip != nil {
			candidates = append(candidates, tip)
		}
	}
	service.SortByConfidence(candidates)

	var sent []*model.PredictionRecord
	for _, tip := range candidates {
		if len(sent) >= target {
			break
		}
		msg := service.FormatTipMessage(tip, service.DefaultTipHeader)
		if _, err := j.tg.SendMessage(ctx, channelID, msg); err != nil {
			j.logger.Error("daily tips: send", "fixture", tip.FixtureID, "error", err)
			continue
		}
		tip.SentDate = j.now()
		if err := j.preds.Add(ctx, tip); err != nil {
			j.logger.Error("daily tips: persist", "fixture", tip.FixtureID, "error", err)
		}
		sent = append(sent, tip)
	}

	if multiple, ok := service.BuildMultipleMessage(sent); ok {
		if err := j.limiter.Wait(ctx); err == nil {
			if _, err := j.tg.SendMessage(ctx, channelID, multiple); err != nil {
				j.logger.Error("daily tips: send multiple", "error", err)
			}
		}
	}

	j.logger.Info("daily tips: finished", "sent", len(sent))
}

// SendLiveTips broadcasts tips for in-play priority-league matches.
func (j *Jobs) SendLiveTips(ctx context.Context) {
	j.logger.Info("live tips: starting")
	channelID, ok := j.vipChannelID(ctx)
	if !ok {
		return
	}

	live, err := j.data.LiveFixtures(ctx)
	if err != nil {
		j.logger.Error("live tips: fetch fixtures", "error", err)
		return
	}

	sent := 0
	for _, f := range live {
		if sent >= maxLiveTips {
			break
		}
		if _, ok := service.PriorityLeagues[f.League.ID]; !ok {
			continue
		}
		switch f.Info.Status.Short {
		case "HT", "FT", "AET", "PEN", "PST", "CANC", "ABD":
			continue
		}

		tip := j.buildTip(ctx, f)
		if tip == nil {
			continue
		}
		homeGoals, awayGoals := 0, 0
		if f.Goals.Home != nil {
			homeGoals = *f.Goals.Home
		}
		if f.Goals.Away != nil {
			awayGoals = *f.Goals.Away
		}
		elapsed := f.Info.Status.Elapsed
		tip.MatchTime = fmt.Sprintf("AO VIVO - %d'", elapsed)

		msg := service.FormatLiveTipMessage(tip, homeGoals, awayGoals, elapsed)
		if _, err := j.tg.SendMessage(ctx, channelID, msg); err != nil {
			j.logger.Error("live tips: send", "fixture", tip.FixtureID, "error", err)
			continue
		}
		tip.SentDate = j.now()
		if err := j.preds.Add(ctx, tip); err != nil {
			j.logger.Error("live tips: persist", "fixture", tip.FixtureID, "error", err)
		}
		sent++
	}
	j.logger.Info("live tips: finished", "sent", sent)
}

// CheckResults resolves pending tips against final scores. A record is
// evaluated at most once: the store only accepts a verdict while the record
// is still pending.
func (j *Jobs) CheckResults(ctx context.Context) {
	j.logger.Info("results: starting")
	channelID, hasChannel := j.vipChannelID(ctx)

	pending, err := j.preds.ListPending(ctx)
	if err != nil {
		j.logger.Error("results: list pending", "error", err)
		return
	}
	if len(pending) == 0 {
		j.logger.Info("results: nothing pending")
		return
	}

	for _, p := range pending {
		if p.FixtureID == 0 {
			j.logger.Warn("results: record without fixture id, unreconcilable", "id", p.ID)
			continue
		}
		if err := j.limiter.Wait(ctx); err != nil {
			return
		}
		res, err := j.data.FixtureResult(ctx, p.FixtureID)
		if errors.Is(err, apifootball.ErrNotFound) {
			j.logger.Warn("results: fixture unknown to provider", "id", p.ID, "fixture", p.FixtureID)
			continue
		}
		if err != nil {
			j.logger.Error("results: fetch result", "fixture", p.FixtureID, "error", err)
			continue
		}
		if !res.Terminal() {
			continue
		}

		out := service.MatchOutcome{
			HomeGoals: res.HomeGoals,
			AwayGoals: res.AwayGoals,
			HomeTeam:  res.HomeTeam,
			AwayTeam:  res.AwayTeam,
		}
		verdict := service.EvaluateOutcome(p.Prediction, out)
		if err := j.preds.SetResult(ctx, p.ID, string(verdict)); err != nil {
			j.logger.Error("results: persist verdict", "id", p.ID, "error", err)
			continue
		}
		j.logger.Info("results: resolved", "id", p.ID, "verdict", verdict)

		if hasChannel {
			msg := service.FormatResultMessage(p, out, verdict)
			if _, err := j.tg.SendMessage(ctx, channelID, msg); err != nil {
				j.logger.Error("results: notify", "id", p.ID, "error", err)
			}
		}
	}
	j.logger.Info("results: finished")
}

// ExpireSubscriptions flips overdue subscriptions to expired and tells the
// user. A failed notification does not undo the state change.
func (j *Jobs) ExpireSubscriptions(ctx context.Context) {
	j.logger.Info("subscriptions: checking expirations")
	expired, err := j.subscriptions.ExpireDue(ctx)
	if err != nil {
		j.logger.Error("subscriptions: expire", "error", err)
	}
	for _, sub := range expired {
		j.logger.Info("subscriptions: expired", "user", sub.UserID)
		_, err := j.tg.SendMessage(ctx, sub.UserID,
			"Sua assinatura Zeus Tips expirou. Para continuar recebendo nossos palpites VIP, "+
				"por favor, renove sua assinatura usando o comando /assinar.")
		if err != nil {
			j.logger.Error("subscriptions: notify expiration", "user", sub.UserID, "error", err)
		}
	}
}

// ReconcileChannelMembers removes channel members without an active
// subscription. Removal is a deliberate two-step ban-then-unban so the user
// is out but free to rejoin after paying again; the user could in principle
// rejoin between the two steps, which is accepted.
func (j *Jobs) ReconcileChannelMembers(ctx context.Context) {
	j.logger.Info("members: starting reconciliation")
	channelID, ok := j.vipChannelID(ctx)
	if !ok {
		return
	}

	all, err := j.subs.List(ctx)
	if err != nil {
		j.logger.Error("members: list subscribers", "error", err)
		return
	}
	active, err := j.subscriptions.ActiveIDs(ctx)
	if err != nil {
		j.logger.Error("members: list active", "error", err)
		return
	}

	for _, sub := range all {
		if sub.UserID == j.adminID {
			continue
		}
		if err := j.limiter.Wait(ctx); err != nil {
			return
		}
		member, err := j.tg.GetChatMember(ctx, channelID, sub.UserID)
		if err != nil {
			// Users who already left routinely come back as not found.
			if isUserAbsent(err) {
				j.logger.Debug("members: user not in channel", "user", sub.UserID)
			} else {
				j.logger.Error("members: get member", "user", sub.UserID, "error", err)
			}
			continue
		}
		if !member.InChat() || active[sub.UserID] {
			continue
		}

		j.logger.Info("members: removing", "user", sub.UserID, "db_status", sub.Status, "channel_status", member.Status)
		if err := j.tg.BanChatMember(ctx, channelID, sub.UserID); err != nil {
			j.logger.Error("members: ban", "user", sub.UserID, "error", err)
			continue
		}
		if err := j.tg.UnbanChatMember(ctx, channelID, sub.UserID); err != nil {
			j.logger.Error("members: unban", "user", sub.UserID, "error", err)
		}
	}
	j.logger.Info("members: reconciliation finished")
}

// SendDailySummary posts the end-of-day scoreboard. Days without tips stay
// silent. The day is taken in the broadcast timezone: the job fires after
// UTC midnight, when the broadcast day is still ending in BRT.
func (j *Jobs) SendDailySummary(ctx context.Context) {
	j.logger.Info("summary: starting")
	channelID, ok := j.vipChannelID(ctx)
	if !ok {
		return
	}

	day := j.now().In(brt)
	records, err := j.preds.ListSentOn(ctx, day)
	if err != nil {
		j.logger.Error("summary: list records", "error", err)
		return
	}
	if len(records) == 0 {
		j.logger.Info("summary: no tips today")
		return
	}

	summary := service.Summarize(records)
	msg := service.FormatDailySummaryMessage(summary, day)
	if _, err := j.tg.SendMessage(ctx, channelID, msg); err != nil {
		j.logger.Error("summary: send", "error", err)
		return
	}
	j.logger.Info("summary: sent", "total", summary.Total, "greens", summary.Greens, "reds", summary.Reds)
}

// PreviewTip builds one tip for the first fixture of the day, used as the
// teaser for non-subscribers.
func (j *Jobs) PreviewTip(ctx context.Context) (string, error) {
	today := j.now().Format("2006-01-02")
	fixtures, err := j.data.FixturesByDate(ctx, today)
	if err != nil {
		return "", fmt.Errorf("fetch fixtures: %w", err)
	}
	sorted := sortFixtures(fixtures)
	if len(sorted) == 0 {
		return "", errors.New("no fixtures today")
	}
	tip := j.buildTip(ctx, sorted[0])
	if tip == nil {
		return "", errors.New("could not build a preview tip")
	}
	return service.FormatTipMessage(tip, "⚡ ZEUS TIPS - PRÉVIA ⚡"), nil
}

func isUserAbsent(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "user not found") ||
		strings.Contains(msg, "participant_id_invalid")
}
