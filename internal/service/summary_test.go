package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/zeus-tips-bot/internal/model"
)

func TestSummarize(t *testing.T) {
	records := []*model.PredictionRecord{
		{Result: model.ResultGreen, SuggestedOdd: 2.0},
		{Result: model.ResultGreen, SuggestedOdd: 1.5},
		{Result: model.ResultRed, SuggestedOdd: 1.8},
		{Result: model.ResultPending, SuggestedOdd: 2.2},
	}
	s := Summarize(records)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Greens)
	assert.Equal(t, 1, s.Reds)
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, 3, s.Resolved())
	// (2.0-1) + (1.5-1) - 1 = 0.5 units over 3 staked units.
	assert.InDelta(t, 0.5, s.Profit, 1e-9)
	assert.InDelta(t, 66.67, s.WinRate(), 0.01)
	assert.InDelta(t, 16.67, s.ROI(), 0.01)
}

func TestSummarizeEmptyDay(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.WinRate())
	assert.Zero(t, s.ROI())
}

func TestFormatDailySummaryMessage(t *testing.T) {
	day := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	positive := DailySummary{Total: 3, Greens: 2, Reds: 1, Profit: 0.5}
	msg := FormatDailySummaryMessage(positive, day)
	assert.Contains(t, msg, "Data: 25/08/2026")
	assert.Contains(t, msg, "Greens: 2 (67%)")
	assert.Contains(t, msg, "ROI do dia: +16.7%")
	assert.Contains(t, msg, "Lucro/Prejuízo: +0.50 unidades")
	assert.Contains(t, msg, "Dia positivo!")
	assert.NotContains(t, msg, "Pendentes")

	negative := DailySummary{Total: 2, Greens: 0, Reds: 2, Pending: 1, Profit: -2}
	msg = FormatDailySummaryMessage(negative, day)
	assert.Contains(t, msg, "ROI do dia: -100.0%")
	assert.Contains(t, msg, "Pendentes: 1")
	assert.Contains(t, msg, "Dia difícil")
}
