package ws

import (
	"crypto/rand"
	"math/big"
)

const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 4
)

// newCode returns a room code that taken does not report as in use.
func newCode(taken func(string) bool) string {
	buf := make([]byte, codeLength)
	for {
		for i := range buf {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
			if err != nil {
				panic(err)
			}
			buf[i] = codeAlphabet[n.Int64()]
		}
		if code := string(buf); !taken(code) {
			return code
		}
	}
}
