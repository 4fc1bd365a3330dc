package password

import (
	"errors"
	"fmt"
	"strings"
)

const (
	lowerSet   = "abcdefghijklmnopqrstuvwxyz"
	upperSet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitSet   = "0123456789"
	specialSet = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

const (
	MinGenLen = 1
	MaxGenLen = 1024
)

var ErrInvalidPolicy = errors.New("invalid_policy")

// PolicyError says why a GenerationPolicy was rejected.
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string { return "invalid policy: " + e.Reason }

func (e *PolicyError) Unwrap() error { return ErrInvalidPolicy }

// GenerationPolicy selects the length and character classes of a generated password.
//
// Draws are independent, so a class that is enabled may still be missing from
// the output. Set RequireEachClass to get at least one rune of every enabled class.
type GenerationPolicy struct {
	Length           int  `json:"length"`
	Lowercase        bool `json:"lowercase"`
	Uppercase        bool `json:"uppercase"`
	Digits           bool `json:"digits"`
	Special          bool `json:"special"`
	RequireEachClass bool `json:"require_each_class"`
}

// DefaultPolicy enables every class.
func DefaultPolicy(length int) GenerationPolicy {
	return GenerationPolicy{Length: length, Lowercase: true, Uppercase: true, Digits: true, Special: true}
}

func (p GenerationPolicy) classes() []string {
	var out []string
	if p.Lowercase {
		out = append(out, lowerSet)
	}
	if p.Uppercase {
		out = append(out, upperSet)
	}
	if p.Digits {
		out = append(out, digitSet)
	}
	if p.Special {
		out = append(out, specialSet)
	}
	return out
}

// Charset is the union of the enabled classes.
func (p GenerationPolicy) Charset() string {
	return strings.Join(p.classes(), "")
}

func (p GenerationPolicy) Validate() error {
	if len(p.classes()) == 0 {
		return &PolicyError{Reason: "at least one character type must be selected"}
	}
	if p.Length < MinGenLen || p.Length > MaxGenLen {
		return &PolicyError{Reason: fmt.Sprintf("length must be between %d and %d", MinGenLen, MaxGenLen)}
	}
	if p.RequireEachClass && p.Length < len(p.classes()) {
		return &PolicyError{Reason: "length is shorter than the number of required classes"}
	}
	return nil
}

// Generate draws policy.Length characters uniformly (with replacement) from the
// union of enabled classes. All randomness comes from rng.
func Generate(policy GenerationPolicy, rng RandomSource) (string, error) {
	if err := policy.Validate(); err != nil {
		return "", err
	}
	charset := policy.Charset()

	out := make([]byte, 0, policy.Length)
	if policy.RequireEachClass {
		for _, class := range policy.classes() {
			out = append(out, class[rng.IntN(len(class))])
		}
	}
	for len(out) < policy.Length {
		out = append(out, charset[rng.IntN(len(charset))])
	}
	if policy.RequireEachClass {
		for i := len(out) - 1; i > 0; i-- {
			j := rng.IntN(i + 1)
			out[i], out[j] = out[j], out[i]
		}
	}
	return string(out), nil
}
