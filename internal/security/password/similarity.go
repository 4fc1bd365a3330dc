package password

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultThreshold is the ratio at or above which two passwords count as similar.
const DefaultThreshold = 0.7

// MsgTooSimilar is shown when a candidate is rejected for resembling history.
const MsgTooSimilar = "this password is too similar to a previously entered password, please choose a different one"

// IsSimilar reports Ratio(candidate, reference) >= threshold.
func IsSimilar(candidate, reference string, threshold float64) bool {
	return Ratio(candidate, reference) >= threshold
}

// Match is a history entry that resembles a candidate, with its ratio.
type Match struct {
	Entry HistoryEntry
	Ratio float64
}

// MatchHistory returns, in history order, the entries whose ratio to candidate
// is at least threshold. history is not modified.
func MatchHistory(candidate string, history []HistoryEntry, threshold float64) []Match {
	if len(history) == 0 {
		return nil
	}
	cand := runeSeq(candidate)
	var out []Match
	for _, e := range history {
		if r := ratioSeq(cand, runeSeq(e.Password)); r >= threshold {
			out = append(out, Match{Entry: e, Ratio: r})
		}
	}
	return out
}

// FindSimilar returns, in history order, the entries similar to candidate at
// DefaultThreshold. history is not modified.
func FindSimilar(candidate string, history []HistoryEntry) []HistoryEntry {
	return FindSimilarAt(candidate, history, DefaultThreshold)
}

// FindSimilarAt is FindSimilar with an explicit threshold.
func FindSimilarAt(candidate string, history []HistoryEntry, threshold float64) []HistoryEntry {
	var out []HistoryEntry
	for _, m := range MatchHistory(candidate, history, threshold) {
		out = append(out, m.Entry)
	}
	return out
}

// Ratio returns 2*M/T, where M is the total size of the matching blocks found
// by difflib's SequenceMatcher over runes and T the combined rune length.
// Two empty strings give 1. Not guaranteed to be symmetric for every input.
func Ratio(a, b string) float64 {
	return ratioSeq(runeSeq(a), runeSeq(b))
}

func ratioSeq(a, b []string) float64 {
	if len(a)+len(b) == 0 {
		return 1
	}
	return difflib.NewMatcher(a, b).Ratio()
}

// runeSeq splits s into one element per rune.
func runeSeq(s string) []string {
	return strings.Split(s, "")
}
