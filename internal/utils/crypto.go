// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"math/big"
)

const randomAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandomString returns length alphanumeric characters drawn from
// crypto/rand. Used for the generated staff password.
func GenerateRandomString(length int) (string, error) {
	max := big.NewInt(int64(len(randomAlphabet)))
	out := make([]byte, 0, length)
	for len(out) < length {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out = append(out, randomAlphabet[n.Int64()])
	}
	return string(out), nil
}
