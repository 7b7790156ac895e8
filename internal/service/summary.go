package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/zeus-tips-bot/internal/model"
)

// DailySummary aggregates one day of tips. Profit uses fixed one-unit stakes:
// a green earns odd-1 units, a red loses one unit.
type DailySummary struct {
	Total   int
	Greens  int
	Reds    int
	Pending int
	Profit  float64
}

// Summarize folds the day's records into counters and profit.
func Summarize(records []*model.PredictionRecord) DailySummary {
	var s DailySummary
	s.Total = len(records)
	for _, p := range records {
		switch p.Result {
		case model.ResultGreen:
			s.Greens++
			s.Profit += p.SuggestedOdd - 1
		case model.ResultRed:
			s.Reds++
			s.Profit--
		default:
			s.Pending++
		}
	}
	return s
}

// Resolved is the number of bets that have a final verdict.
func (s DailySummary) Resolved() int {
	return s.Greens + s.Reds
}

// WinRate is the green percentage over resolved bets.
func (s DailySummary) WinRate() float64 {
	if s.Resolved() == 0 {
		return 0
	}
	return float64(s.Greens) / float64(s.Resolved()) * 100
}

// ROI is profit over resolved stake, in percent. Every resolved bet counts as
// one staked unit.
func (s DailySummary) ROI() float64 {
	if s.Resolved() == 0 {
		return 0
	}
	return s.Profit / float64(s.Resolved()) * 100
}

// FormatDailySummaryMessage renders the end-of-day report for the VIP channel.
func FormatDailySummaryMessage(s DailySummary, day time.Time) string {
	roiEmoji := "📈"
	sign := "+"
	if s.ROI() < 0 {
		roiEmoji = "📉"
		sign = ""
	}

	var b strings.Builder
	b.WriteString("📊 ZEUS TIPS - RESUMO DO DIA 📊\n")
	b.WriteString(separator)
	b.WriteString("\n")
	fmt.Fprintf(&b, "📅 Data: %s\n\n", day.Format("02/01/2006"))
	fmt.Fprintf(&b, "📋 Total de palpites: %d\n", s.Total)
	fmt.Fprintf(&b, "✅ Greens: %d (%.0f%%)\n", s.Greens, s.WinRate())
	redPct := 0.0
	if s.Resolved() > 0 {
		redPct = float64(s.Reds) / float64(s.Resolved()) * 100
	}
	fmt.Fprintf(&b, "❌ Reds: %d (%.0f%%)\n", s.Reds, redPct)
	if s.Pending > 0 {
		fmt.Fprintf(&b, "⏳ Pendentes: %d\n", s.Pending)
	}
	fmt.Fprintf(&b, "\n%s ROI do dia: %s%.1f%%\n", roiEmoji, sign, s.ROI())
	fmt.Fprintf(&b, "💰 Lucro/Prejuízo: %s%.2f unidades\n", sign, s.Profit)
	b.WriteString("\n")
	b.WriteString(separator)
	if s.ROI() >= 0 {
		b.WriteString("✨ Dia positivo! Continuamos firmes! ⚡")
	} else {
		b.WriteString("💪 Dia difícil, mas seguimos com disciplina e gestão!")
	}
	return b.String()
}
