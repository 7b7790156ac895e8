package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/zeus-tips-bot/internal/model"
)

// PriorityLeagues is the fixed allow-list of API-Football league IDs whose
// fixtures are analyzed before everything else.
var PriorityLeagues = map[int]string{
	71:  "Brasileirão Série A",
	72:  "Brasileirão Série B",
	73:  "Copa do Brasil",
	13:  "Libertadores",
	11:  "Sul-Americana",
	39:  "Premier League",
	140: "La Liga",
	135: "Serie A (Itália)",
	78:  "Bundesliga",
	61:  "Ligue 1",
	94:  "Liga Portugal",
	88:  "Eredivisie (Holanda)",
	2:   "Champions League",
	3:   "Europa League",
	1:   "Copa do Mundo",
	4:   "Euro (Eurocopa)",
}

// OverfetchMargin is how many candidates beyond the send target the generation
// job collects, to have spares when AI calls or parsing fail.
const OverfetchMargin = 5

// MultipleSize is how many tips make up the daily multiple.
const MultipleSize = 3

// TargetTipCount decides how many tips to send for a day with the given number
// of qualifying fixtures. Sparse days get the smaller target so subscribers are
// not flooded with low-quality picks.
func TargetTipCount(qualifyingFixtures int) int {
	if qualifyingFixtures >= 6 {
		return 10
	}
	return 3
}

// SortByConfidence orders tips by confidence descending. The sort is stable so
// ties keep fixture-discovery order, priority leagues first.
func SortByConfidence(preds []*model.PredictionRecord) {
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Confidence > preds[j].Confidence
	})
}

// StakeBand classifies an odd into a risk band with a suggested share of the
// bankroll. The bands are advisory copy only; result accounting is fixed-stake.
func StakeBand(odd float64) (label, stake string) {
	switch {
	case odd <= 1.50:
		return "🟢 SEGURA", "5%"
	case odd <= 2.00:
		return "🟡 MÉDIA", "3%"
	default:
		return "🔴 ALTA", "1-2%"
	}
}

// CombinedOdd is the product of the individual suggested odds.
func CombinedOdd(preds []*model.PredictionRecord) float64 {
	combined := 1.0
	for _, p := range preds {
		combined *= p.SuggestedOdd
	}
	return combined
}

// DefaultTipHeader opens every regular daily tip message.
const DefaultTipHeader = "⚡ ZEUS TIPS - PALPITE DO DIA ⚡"

// FormatTipMessage renders one tip for the VIP channel.
func FormatTipMessage(p *model.PredictionRecord, header string) string {
	band, stake := StakeBand(p.SuggestedOdd)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", header)
	fmt.Fprintf(&b, "🏆 Campeonato: %s\n", p.Championship)
	fmt.Fprintf(&b, "⚽ Jogo: %s vs %s\n", p.TeamA, p.TeamB)
	fmt.Fprintf(&b, "⏰ Horário: %s\n", p.MatchTime)
	fmt.Fprintf(&b, "📊 Análise: %s\n", p.Analysis)
	fmt.Fprintf(&b, "🎯 Palpite: %s (%s)\n", p.Prediction, p.Market)
	fmt.Fprintf(&b, "📈 Confiança: %.0f%%\n", p.Confidence*100)
	fmt.Fprintf(&b, "💰 Odd sugerida: %.2f %s\n", p.SuggestedOdd, band)
	fmt.Fprintf(&b, "💼 Gestão: Aposte %s da sua banca\n", stake)
	return b.String()
}

// FormatLiveTipMessage renders an in-play tip with the current score.
func FormatLiveTipMessage(p *model.PredictionRecord, homeGoals, awayGoals, elapsed int) string {
	band, stake := StakeBand(p.SuggestedOdd)
	var b strings.Builder
	b.WriteString("🔴 ZEUS TIPS - AO VIVO 🔴\n")
	fmt.Fprintf(&b, "🏆 Campeonato: %s\n", p.Championship)
	fmt.Fprintf(&b, "⚽ Jogo: %s %d x %d %s\n", p.TeamA, homeGoals, awayGoals, p.TeamB)
	fmt.Fprintf(&b, "⏱ Tempo: %d'\n", elapsed)
	fmt.Fprintf(&b, "📊 Análise: %s\n", p.Analysis)
	fmt.Fprintf(&b, "🎯 Palpite: %s (%s)\n", p.Prediction, p.Market)
	fmt.Fprintf(&b, "📈 Confiança: %.0f%%\n", p.Confidence*100)
	fmt.Fprintf(&b, "💰 Odd sugerida: %.2f %s\n", p.SuggestedOdd, band)
	fmt.Fprintf(&b, "💼 Gestão: Aposte %s da sua banca\n", stake)
	return b.String()
}

const separator = "━━━━━━━━━━━━━━━━━━━━━━━━\n"

// BuildMultipleMessage renders the daily multiple from the top tips by
// confidence. It returns false when there are not enough tips for a multiple.
func BuildMultipleMessage(preds []*model.PredictionRecord) (string, bool) {
	if len(preds) < MultipleSize {
		return "", false
	}
	top := preds[:MultipleSize]

	var b strings.Builder
	b.WriteString("🔱 ZEUS TIPS - MÚLTIPLA DO DIA 🔱\n")
	b.WriteString(separator)
	b.WriteString("\n")
	for i, p := range top {
		band, _ := StakeBand(p.SuggestedOdd)
		fmt.Fprintf(&b, "🎯 Jogo %d:\n", i+1)
		fmt.Fprintf(&b, "   🏆 %s\n", p.Championship)
		fmt.Fprintf(&b, "   ⚽ %s vs %s\n", p.TeamA, p.TeamB)
		fmt.Fprintf(&b, "   📊 Palpite: %s (%s)\n", p.Prediction, p.Market)
		fmt.Fprintf(&b, "   💰 Odd: %.2f %s\n", p.SuggestedOdd, band)
		fmt.Fprintf(&b, "   📈 Confiança: %.0f%%\n\n", p.Confidence*100)
	}
	b.WriteString(separator)
	fmt.Fprintf(&b, "💰 Odd combinada: %.2f\n", CombinedOdd(top))
	b.WriteString("💼 Gestão: Aposte 1% da sua banca para múltiplas\n")
	b.WriteString(separator)
	b.WriteString("⚠️ Múltiplas possuem risco elevado. Aposte com responsabilidade!")
	return b.String(), true
}

// FormatResultMessage renders the green/red notification for a resolved tip.
// Accounting is fixed-stake: one unit per bet regardless of the advised band.
func FormatResultMessage(p *model.PredictionRecord, out MatchOutcome, v Verdict) string {
	var b strings.Builder
	if v == VerdictGreen {
		b.WriteString("✅ GREEN - Acertamos! ✅\n")
	} else {
		b.WriteString("❌ RED - Não foi dessa vez ❌\n")
	}
	fmt.Fprintf(&b, "⚽ %s %d x %d %s\n", p.TeamA, out.HomeGoals, out.AwayGoals, p.TeamB)
	fmt.Fprintf(&b, "🏆 %s\n", p.Championship)
	fmt.Fprintf(&b, "🎯 Palpite: %s\n", p.Prediction)
	if v == VerdictGreen {
		fmt.Fprintf(&b, "💰 Lucro: +%.2f unidades por unidade apostada", p.SuggestedOdd-1)
	} else {
		b.WriteString("📉 Perda: -1.00 unidade por unidade apostada")
	}
	return b.String()
}
