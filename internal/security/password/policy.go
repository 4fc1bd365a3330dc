package password

import (
	"strings"
	"unicode/utf8"
)

const (
	// MinLen is the rune length that earns the first length point.
	MinLen = 8
	// StrongLen is the rune length that earns the second length point.
	StrongLen = 12
	// MaxScore is the highest score Evaluate returns.
	MaxScore = 5

	// SpecialChars is the set that counts toward the special-character rule.
	SpecialChars = "!@#$%^&*"
)

// Feedback messages, in the order the checks run.
const (
	MsgTooShort  = "at least 8 characters long"
	MsgCaseMix   = "include both uppercase and lowercase letters"
	MsgNoDigit   = "add at least one number (0–9)"
	MsgNoSpecial = "include at least one special character"
	MsgTooCommon = "password is too common and easily guessable"
)

const (
	bandStrongMsg   = "Strong Password! You're good to go!"
	bandModerateMsg = "Moderate Password - Consider adding more security features."
	bandWeakMsg     = "Weak Password - Improve it using the suggestions below."
)

// StrengthResult is what Evaluate returns.
type StrengthResult struct {
	Score    int      `json:"score"`    // 0..5
	Feedback []string `json:"feedback"` // deficiency messages, check order
}

// Band is the coarse classification callers render.
type Band string

const (
	BandWeak     Band = "weak"
	BandModerate Band = "moderate"
	BandStrong   Band = "strong"
)

// Classify maps a score to its band: MaxScore is strong, 3 and 4 are moderate.
func Classify(score int) Band {
	switch {
	case score >= MaxScore:
		return BandStrong
	case score >= 3:
		return BandModerate
	default:
		return BandWeak
	}
}

// Message is the human summary for a band.
func (b Band) Message() string {
	switch b {
	case BandStrong:
		return bandStrongMsg
	case BandModerate:
		return bandModerateMsg
	default:
		return bandWeakMsg
	}
}

// Evaluate scores pwd against the built-in common list.
func Evaluate(pwd string) StrengthResult {
	return EvaluateWith(pwd, Common())
}

// EvaluateWith is Evaluate against an explicit blacklist. A nil set disables
// the blacklist check.
func EvaluateWith(pwd string, common *CommonSet) StrengthResult {
	score := 0
	feedback := make([]string, 0, 4)

	switch l := utf8.RuneCountInString(pwd); {
	case l >= StrongLen:
		score += 2
	case l >= MinLen:
		score++
	default:
		feedback = append(feedback, MsgTooShort)
	}

	var hasL, hasU, hasD, hasS bool
	for _, r := range pwd {
		switch {
		case r >= 'a' && r <= 'z':
			hasL = true
		case r >= 'A' && r <= 'Z':
			hasU = true
		case r >= '0' && r <= '9':
			hasD = true
		case strings.ContainsRune(SpecialChars, r):
			hasS = true
		}
	}

	if hasL && hasU {
		score++
	} else {
		feedback = append(feedback, MsgCaseMix)
	}
	if hasD {
		score++
	} else {
		feedback = append(feedback, MsgNoDigit)
	}
	if hasS {
		score++
	} else {
		feedback = append(feedback, MsgNoSpecial)
	}

	// blacklist hit replaces everything above
	if common.Contains(pwd) {
		return StrengthResult{Score: 0, Feedback: []string{MsgTooCommon}}
	}
	return StrengthResult{Score: score, Feedback: feedback}
}
