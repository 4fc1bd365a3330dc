package password

import (
	"math"

	zxcvbn "github.com/ccojocar/zxcvbn-go"
)

// Estimate is an advisory, pattern-aware guess at how hard pwd is to crack.
// It is reported next to the rule score and never changes it.
type Estimate struct {
	EntropyBits float64 `json:"entropy_bits"`
	CrackTime   string  `json:"crack_time"`
	Score       int     `json:"zxcvbn_score"` // 0..4
}

// estimateMaxRunes bounds the zxcvbn input; longer passwords are estimated on
// their prefix.
const estimateMaxRunes = 128

// EstimateStrength runs zxcvbn; hints are user-specific words (session id, email)
// that should not make a password look stronger.
func EstimateStrength(pwd string, hints ...string) Estimate {
	if pwd == "" {
		return Estimate{CrackTime: "instant"}
	}
	if r := []rune(pwd); len(r) > estimateMaxRunes {
		pwd = string(r[:estimateMaxRunes])
	}
	m := zxcvbn.PasswordStrength(pwd, hints)
	return Estimate{
		EntropyBits: math.Round(m.Entropy*100) / 100,
		CrackTime:   m.CrackTimeDisplay,
		Score:       m.Score,
	}
}
