package game

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
)

// Random is the only source of chance inside a session.
type Random interface {
	IntN(n int) int
}

// CryptoRandom draws from crypto/rand. Used for real-money sessions.
type CryptoRandom struct{}

func (CryptoRandom) IntN(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return int(v.Int64())
}

// NewSeeded returns a deterministic source for tests and replays.
func NewSeeded(seed uint64) Random {
	return mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func chance(r Random, num, den int) bool {
	return r.IntN(den) < num
}
