package util

import (
	"crypto/rand"
)

const referralCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateReferralCode returns a random code of the given length drawn from
// uppercase letters and digits.
func GenerateReferralCode(length int) (string, error) {
	data := make([]byte, length)
	if _, err := rand.Read(data); err != nil {
		return "", err
	}
	for i, b := range data {
		data[i] = referralCodeAlphabet[int(b)%len(referralCodeAlphabet)]
	}
	return string(data), nil
}
