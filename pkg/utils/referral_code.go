package utils

import (
	"crypto/rand"
	"math/big"
)

const referralCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const referralCodeLength = 6

// GenerateReferralCode returns a random 6-character uppercase alphanumeric
// code. Uniqueness is enforced by the database constraint; callers retry on
// collision.
func GenerateReferralCode() (string, error) {
	code := make([]byte, referralCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referralCodeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = referralCodeAlphabet[n.Int64()]
	}

	return string(code), nil
}
