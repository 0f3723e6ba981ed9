// # internal/reorder/match.go
package reorder

import (
	"regexp"
	"strings"
)

var bitRangeRE = regexp.MustCompile(`\[.*\]`)

// strippedPrefixes are naming prefixes a reference name commonly lacks,
// e.g. OCR reads "tmp" where the generated signal is "out_tmp".
var strippedPrefixes = []string{"out_", "in_", "o_", "i_", "prev_"}

// confusableSets group single characters OCR frequently swaps.
var confusableSets = []string{"il1", "o0a"}

// normalizeOCRChars folds characters OCR frequently confuses (l/1 -> i,
// 0 -> o) onto a canonical form for comparison.
func normalizeOCRChars(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "l", "i")
	s = strings.ReplaceAll(s, "1", "i")
	return strings.ReplaceAll(s, "0", "o")
}

func baseName(s string) string {
	return bitRangeRE.ReplaceAllString(s, "")
}

// Score rates how well a possibly noisy reference name matches a generated
// signal name, from 0 (no match) to 1 (exact). Rules are tried in priority
// order; the first applicable one wins. Non-exact rules cap at 0.85.
func Score(refName, signalName string) float64 {
	ref := strings.ToLower(refName)
	sig := strings.ToLower(signalName)

	if ref == sig {
		return 1.0
	}
	if normalizeOCRChars(ref) == normalizeOCRChars(sig) {
		return 0.98
	}
	if len(ref) == 1 && len(sig) == 1 {
		for _, set := range confusableSets {
			if strings.Contains(set, ref) && strings.Contains(set, sig) {
				return 0.95
			}
		}
	}

	refBase := baseName(ref)
	sigBase := baseName(sig)
	if refBase == sigBase {
		return 0.95
	}

	for _, prefix := range strippedPrefixes {
		if strings.HasPrefix(sigBase, prefix) && refBase == sigBase[len(prefix):] {
			return 0.9
		}
	}

	if len(refBase) >= 3 && strings.HasSuffix(sigBase, refBase) {
		return 0.85
	}

	if len(refBase) >= 3 && len(sigBase) >= 3 {
		if strings.Contains(sigBase, refBase) {
			return 0.8 * float64(len(refBase)) / float64(len(sigBase))
		}
		if strings.Contains(refBase, sigBase) {
			return 0.8 * float64(len(sigBase)) / float64(len(refBase))
		}
	}

	return blendedScore(refBase, sigBase)
}

// blendedScore weighs positional character matches against common character
// counts, with a bonus for a shared literal prefix of two or more characters.
func blendedScore(a, b string) float64 {
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 0
	}

	positional := 0
	for i := 0; i < min(len(a), len(b)); i++ {
		if a[i] == b[i] {
			positional++
		}
	}

	// Each candidate character may satisfy at most one reference character.
	remaining := []byte(b)
	common := 0
	for i := 0; i < len(a); i++ {
		for j, c := range remaining {
			if c == a[i] {
				common++
				remaining = append(remaining[:j], remaining[j+1:]...)
				break
			}
		}
	}

	score := 0.6*float64(positional)/float64(maxLen) + 0.4*float64(common)/float64(maxLen)

	prefixLen := 0
	for i := 0; i < min(len(a), len(b)); i++ {
		if a[i] != b[i] {
			break
		}
		prefixLen++
	}
	if prefixLen >= 2 {
		score += 0.15 * float64(prefixLen) / float64(maxLen)
	}

	return min(score, 0.85)
}
