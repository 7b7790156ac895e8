package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateOutcome(t *testing.T) {
	base := MatchOutcome{HomeTeam: "Flamengo", AwayTeam: "Palmeiras"}
	score := func(h, a int) MatchOutcome {
		out := base
		out.HomeGoals, out.AwayGoals = h, a
		return out
	}

	tests := []struct {
		name       string
		prediction string
		out        MatchOutcome
		want       Verdict
	}{
		{"over hit", "Over 2.5 gols", score(2, 1), VerdictGreen},
		{"over exact line loses", "Over 2.5 gols", score(1, 1), VerdictRed},
		{"over portuguese comma", "Mais de 1,5 gols", score(1, 1), VerdictGreen},
		{"under hit", "Under 2.5", score(1, 0), VerdictGreen},
		{"under miss", "Menos de 2.5 gols", score(2, 2), VerdictRed},
		{"btts hit", "Ambas marcam", score(2, 1), VerdictGreen},
		{"btts miss", "Ambas marcam sim", score(2, 0), VerdictRed},
		{"btts negated hit", "Não ambas marcam", score(2, 0), VerdictGreen},
		{"btts negated miss", "Não ambas marcam", score(1, 1), VerdictRed},
		{"draw hit", "Empate", score(1, 1), VerdictGreen},
		{"draw miss", "Empate anulado", score(2, 1), VerdictRed},
		{"home win hit", "Vitória do Flamengo", score(2, 1), VerdictGreen},
		{"home win miss", "Vitória do Flamengo", score(1, 2), VerdictRed},
		{"away win hit", "Palmeiras vence", score(1, 2), VerdictGreen},
		{"bare home mention as moneyline", "Flamengo", score(3, 0), VerdictGreen},
		{"bare away mention as moneyline", "Palmeiras", score(0, 1), VerdictGreen},
		{"both teams mentioned is ambiguous", "Flamengo x Palmeiras", score(2, 0), VerdictRed},
		{"over beats team mention", "Flamengo over 2.5", score(1, 0), VerdictRed},
		{"unparseable text", "xyzzy", score(5, 0), VerdictRed},
		{"empty prediction", "", score(1, 0), VerdictRed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateOutcome(tt.prediction, tt.out))
		})
	}
}

func TestEvaluateOutcomeIgnoresShortTeamTokens(t *testing.T) {
	out := MatchOutcome{HomeGoals: 0, AwayGoals: 2, HomeTeam: "FC Aba", AwayTeam: "Santos"}
	// Every home token is shorter than four runes, so "aba" in the tip must
	// not be read as a home pick.
	assert.Equal(t, VerdictRed, EvaluateOutcome("abafado favorito da casa", out))
}

func TestMentionsTeam(t *testing.T) {
	assert.True(t, mentionsTeam("vitória do flamengo hoje", "Flamengo FC"))
	assert.False(t, mentionsTeam("vitória da casa", "Flamengo FC"))
	assert.False(t, mentionsTeam("time fc favorito", "Flamengo FC"))
}
