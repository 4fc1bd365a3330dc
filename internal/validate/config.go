package validate

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var ErrInvalid = errors.New("invalid")

// ParseCSV: "a, b,,a" -> []{"a","b"} (trimmed/deduped, order kept).
func ParseCSV(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	seen := map[string]struct{}{}
	out := []string{}
	for _, p := range strings.Split(csv, ",") {
		s := strings.TrimSpace(p)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// ParseUnit parses a ratio in [0,1].
func ParseUnit(raw string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > 1 {
		return 0, ErrInvalid
	}
	return f, nil
}

// ParseIntRange parses an integer in [min,max].
func ParseIntRange(raw string, min, max int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < min || n > max {
		return 0, ErrInvalid
	}
	return n, nil
}
