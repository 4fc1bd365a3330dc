package password

import (
	"crypto/rand"
	"math/big"
)

// RandomSource yields uniform ints in [0, n). *math/rand/v2.Rand satisfies it,
// which is what tests inject.
type RandomSource interface {
	IntN(n int) int
}

// CryptoSource draws from crypto/rand. Use it outside tests.
type CryptoSource struct{}

func (CryptoSource) IntN(n int) int {
	if n <= 0 {
		panic("password: IntN called with n <= 0")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand.Reader does not fail on supported platforms
		panic("password: crypto/rand: " + err.Error())
	}
	return int(v.Int64())
}
