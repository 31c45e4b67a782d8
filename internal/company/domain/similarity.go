package domain

import (
	"strings"
)

// SimilarityThreshold is the minimum normalized-name score accepted by
// fuzzy company matching.
const SimilarityThreshold = 0.70

var legalSuffixes = []string{
	"inc", "inc.", "incorporated",
	"llc", "l.l.c", "llp",
	"ltd", "ltd.", "limited",
	"gmbh", "ag", "sa", "s.a", "srl", "s.r.l", "bv", "b.v",
	"co", "co.", "corp", "corp.", "corporation",
	"plc", "pty", "oy", "ab", "as", "aps", "kk", "pte",
}

// NormalizeName strips legal suffixes, punctuation and a leading "@"
// (GitHub org style), lower-cases and collapses whitespace.
func NormalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.TrimPrefix(s, "@")

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		case r == '-', r == '_', r == '.', r == ',', r == '&', r == '/':
			b.WriteRune(' ')
		}
	}

	tokens := strings.Fields(b.String())
	for len(tokens) > 1 && isLegalSuffix(tokens[len(tokens)-1]) {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

func isLegalSuffix(token string) bool {
	for _, suffix := range legalSuffixes {
		if token == suffix {
			return true
		}
	}
	return false
}

// NameSimilarity scores two raw company names: 1.0 when the normalized
// forms are equal, 0.85 when one contains the other, otherwise Jaccard
// similarity over whitespace-split token sets.
func NameSimilarity(a, b string) float64 {
	na := NormalizeName(a)
	nb := NormalizeName(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.85
	}
	return jaccard(strings.Fields(na), strings.Fields(nb))
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, tok := range a {
		setA[tok] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, tok := range b {
		setB[tok] = struct{}{}
	}
	intersection := 0
	for tok := range setB {
		if _, ok := setA[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}
