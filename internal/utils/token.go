package utils

import (
	"crypto/rand"
	"math/big"
)

const base62Charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// GenerateToken returns a random base62 string of the given length, used for
// the gateway token and keyring password seeded at bootstrap.
func GenerateToken(length int) (string, error) {
	var result string
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(base62Charset))))
		if err != nil {
			return "", err
		}
		result += string(base62Charset[n.Int64()])
	}
	return result, nil
}
