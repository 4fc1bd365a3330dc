package shared

import (
	"bufio"
	"io"
	"strings"

	"github.com/5w1tchy/passmeter/internal/security/password"
)

// maxEntryLen drops absurd lines from external lists.
const maxEntryLen = 256

// NormalizeEntry folds a blacklist line with password.Fold, the same form
// CommonSet looks candidates up in, and trims surrounding space. Returns ""
// for lines to skip.
func NormalizeEntry(s string) string {
	normed := strings.TrimSpace(password.Fold(s))
	if normed == "" || strings.HasPrefix(normed, "#") || len(normed) > maxEntryLen {
		return ""
	}
	return normed
}

// DedupEntries normalizes via NormalizeEntry and deduplicates, keeping first-seen order.
func DedupEntries(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		e := NormalizeEntry(s)
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// ReadLines reads a newline separated list (comments start with '#').
func ReadLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var out []string
	for sc.Scan() {
		if e := NormalizeEntry(sc.Text()); e != "" {
			out = append(out, e)
		}
	}
	return out, sc.Err()
}
