package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 12

// Registration keys mix letters, digits and symbols so they are not guessable
// from a team name. 20 characters gives well over 100 bits of entropy.
const (
	registrationKeyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"
	RegistrationKeyLength   = 20
)

// GenerateRegistrationKey returns a fresh random join key. The plaintext is
// handed to the captain exactly once; only the bcrypt hash is stored.
func GenerateRegistrationKey() (string, error) {
	key := make([]byte, RegistrationKeyLength)
	max := big.NewInt(int64(len(registrationKeyAlphabet)))
	for i := range key {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate registration key: %w", err)
		}
		key[i] = registrationKeyAlphabet[n.Int64()]
	}
	return string(key), nil
}

func HashRegistrationKey(key string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(key), BcryptCost)
	return string(bytes), err
}

func CheckRegistrationKey(key, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}

// FormatInTimezone renders t in the tournament's display timezone. An
// unknown timezone falls back to UTC rather than failing the message.
func FormatInTimezone(t time.Time, timezone string) string {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return t.In(loc).Format("Mon, 02 Jan 2006 15:04 MST")
}
