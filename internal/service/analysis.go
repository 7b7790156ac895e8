package service

import (
	"strconv"
	"strings"
)

// Labels the AI is asked to answer with, one per line.
const (
	labelAnalysis   = "Análise:"
	labelPrediction = "Palpite:"
	labelConfidence = "Confiança:"
	labelMarket     = "Mercado:"
	labelOdd        = "Odd Sugerida:"
)

// Analysis is the structured form of a free-text AI answer. Fields that were
// absent keep neutral defaults and are listed in Missing; fields that were
// present but could not be parsed are listed in Invalid.
type Analysis struct {
	Summary      string
	Prediction   string
	Confidence   float64
	SuggestedOdd float64
	Market       string

	Missing []string
	Invalid []string
}

// Usable reports whether the answer carried an actual tip. A missing odd or
// confidence is tolerated; a missing prediction line is not worth sending.
func (a Analysis) Usable() bool {
	for _, m := range a.Missing {
		if m == labelPrediction {
			return false
		}
	}
	return true
}

// ParseAnalysis scans the AI answer line by line for the labeled fields of the
// prompt contract. It never fails: callers get defaults plus the Missing and
// Invalid lists and decide how much imperfection they accept.
func ParseAnalysis(text string) Analysis {
	a := Analysis{
		Summary:    "N/A",
		Prediction: "N/A",
		Market:     "N/A",
	}

	found := map[string]bool{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, labelAnalysis):
			a.Summary = fieldValue(line, labelAnalysis)
			found[labelAnalysis] = true
		case strings.HasPrefix(line, labelPrediction):
			a.Prediction = fieldValue(line, labelPrediction)
			found[labelPrediction] = true
		case strings.HasPrefix(line, labelConfidence):
			found[labelConfidence] = true
			raw := strings.TrimSuffix(fieldValue(line, labelConfidence), "%")
			v, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(raw, ",", ".")), 64)
			if err != nil {
				a.Invalid = append(a.Invalid, labelConfidence)
				continue
			}
			a.Confidence = v / 100
		case strings.HasPrefix(line, labelMarket):
			a.Market = fieldValue(line, labelMarket)
			found[labelMarket] = true
		case strings.HasPrefix(line, labelOdd):
			found[labelOdd] = true
			raw := fieldValue(line, labelOdd)
			v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
			if err != nil {
				a.Invalid = append(a.Invalid, labelOdd)
				continue
			}
			a.SuggestedOdd = v
		}
	}

	for _, label := range []string{labelAnalysis, labelPrediction, labelConfidence, labelMarket, labelOdd} {
		if !found[label] {
			a.Missing = append(a.Missing, label)
		}
	}
	return a
}

func fieldValue(line, label string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, label))
}
