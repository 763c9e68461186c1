// Package enrich derives short summaries for candidates, preferring the
// cheapest usable signal and degrading gracefully down to a deterministic
// templated sentence.
package enrich

import (
	"strings"
	"unicode"
)

// QualityThresholds hold the content-rejection knobs. Extracted text that
// trips either predicate is treated as broken (bad encoding, markup soup)
// and falls through the summarization chain.
type QualityThresholds struct {
	// SymbolDensityMax rejects text whose fraction of non-alphanumeric,
	// non-space runes exceeds the threshold.
	SymbolDensityMax float64
	// SingleCharRatioMax rejects text where too many whitespace-separated
	// tokens are single characters.
	SingleCharRatioMax float64
}

// DefaultQualityThresholds match what worked against real article pages.
func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{SymbolDensityMax: 0.5, SingleCharRatioMax: 0.5}
}

// Acceptable reports whether the text passes both predicates.
func (q QualityThresholds) Acceptable(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if q.SymbolDensityMax > 0 && SymbolDensity(text) > q.SymbolDensityMax {
		return false
	}
	if q.SingleCharRatioMax > 0 && SingleCharTokenRatio(text) > q.SingleCharRatioMax {
		return false
	}
	return true
}

// SymbolDensity returns the fraction of runes that are neither letters,
// digits nor whitespace.
func SymbolDensity(text string) float64 {
	var total, symbols int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			symbols++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(symbols) / float64(total)
}

// SingleCharTokenRatio returns the fraction of whitespace-separated tokens
// of length one, a cheap broken-encoding signal.
func SingleCharTokenRatio(text string) float64 {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return 0
	}
	var single int
	for _, tok := range tokens {
		if len([]rune(tok)) == 1 {
			single++
		}
	}
	return float64(single) / float64(len(tokens))
}
