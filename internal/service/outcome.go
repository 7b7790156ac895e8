package service

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Verdict is the outcome of a resolved tip.
type Verdict string

const (
	VerdictGreen Verdict = "green"
	VerdictRed   Verdict = "red"
)

// MatchOutcome is the final state of a finished fixture.
type MatchOutcome struct {
	HomeGoals int
	AwayGoals int
	HomeTeam  string
	AwayTeam  string
}

var (
	overRe    = regexp.MustCompile(`(?:over|mais de)\s*(\d+[.,]?\d*)`)
	underRe   = regexp.MustCompile(`(?:under|menos de)\s*(\d+[.,]?\d*)`)
	negatedRe = regexp.MustCompile(`(?:^|\s)(não|nao|no|not)(?:\s|$)`)
)

const (
	bttsMarker = "ambas marcam"
	bttsShort  = "btts"
)

var winWords = []string{"vitória", "vitoria", "vencer", "vence", "win", "ganha"}
var drawWords = []string{"empate", "draw"}

// EvaluateOutcome maps a free-text tip plus a final score onto green or red.
// Rules are tried in order and the first applicable one wins; numeric markets
// come before team-identity markets because over/under text may incidentally
// contain a team-name substring. Anything the rules cannot interpret is red:
// an unparseable tip is never credited as a win.
func EvaluateOutcome(prediction string, out MatchOutcome) Verdict {
	pred := strings.ToLower(strings.TrimSpace(prediction))
	total := out.HomeGoals + out.AwayGoals

	if m := overRe.FindStringSubmatch(pred); m != nil {
		if line, err := parseLine(m[1]); err == nil {
			return verdict(float64(total) > line)
		}
	}
	if m := underRe.FindStringSubmatch(pred); m != nil {
		if line, err := parseLine(m[1]); err == nil {
			return verdict(float64(total) < line)
		}
	}

	if strings.Contains(pred, bttsMarker) || strings.Contains(pred, bttsShort) {
		if negatedRe.MatchString(pred) {
			return verdict(out.HomeGoals == 0 || out.AwayGoals == 0)
		}
		return verdict(out.HomeGoals > 0 && out.AwayGoals > 0)
	}

	if containsAny(pred, drawWords) {
		return verdict(out.HomeGoals == out.AwayGoals)
	}

	mentionsHome := mentionsTeam(pred, out.HomeTeam)
	mentionsAway := mentionsTeam(pred, out.AwayTeam)

	if containsAny(pred, winWords) {
		switch {
		case mentionsHome && !mentionsAway:
			return verdict(out.HomeGoals > out.AwayGoals)
		case mentionsAway && !mentionsHome:
			return verdict(out.AwayGoals > out.HomeGoals)
		}
	}

	// Last resort: a bare team-name mention is read as a moneyline pick.
	switch {
	case mentionsHome && !mentionsAway:
		return verdict(out.HomeGoals > out.AwayGoals)
	case mentionsAway && !mentionsHome:
		return verdict(out.AwayGoals > out.HomeGoals)
	}

	return VerdictRed
}

func verdict(won bool) Verdict {
	if won {
		return VerdictGreen
	}
	return VerdictRed
}

func parseLine(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// mentionsTeam reports whether the tip text contains any token of the team
// name. Tokens shorter than four runes are ignored so that short words like
// "FC" or "de" cannot cause accidental matches.
func mentionsTeam(pred, team string) bool {
	for _, tok := range strings.Fields(strings.ToLower(team)) {
		if utf8.RuneCountInString(tok) < 4 {
			continue
		}
		if strings.Contains(pred, tok) {
			return true
		}
	}
	return false
}
