package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
	"golang.org/x/crypto/pbkdf2"

	"github.com/kolv02/backend/internal/models"
)

var (
	ErrWeakPassword  = errors.New("password is not strong enough")
	ErrUnknownEmail  = errors.New("no user found with this email")
	ErrWrongPassword = errors.New("wrong password")
)

// pbkdf2 parameters. The hex-encoded salt string feeds the derivation
// directly, so existing credentials stay verifiable across ports.
const (
	saltBytes  = 16
	iterations = 1000
	keyBytes   = 64

	// MinPasswordScore is the lowest acceptable zxcvbn score (0-4).
	MinPasswordScore = 2
)

// CheckPasswordStrength rejects passwords scoring below MinPasswordScore.
func CheckPasswordStrength(password string) error {
	if zxcvbn.PasswordStrength(password, nil).Score < MinPasswordScore {
		return ErrWeakPassword
	}
	return nil
}

// HashPassword generates a fresh salt and derives the password hash.
// Both return values are hex encoded.
func HashPassword(password string) (salt, hash string, err error) {
	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to generate salt: %w", err)
	}
	salt = hex.EncodeToString(raw)
	return salt, deriveHash(password, salt), nil
}

// VerifyPassword checks a password against the user's stored credentials.
func VerifyPassword(user *models.User, password string) error {
	derived := deriveHash(password, user.Salt)
	if subtle.ConstantTimeCompare([]byte(derived), []byte(user.Hash)) != 1 {
		return ErrWrongPassword
	}
	return nil
}

func deriveHash(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, keyBytes, sha512.New)
	return hex.EncodeToString(key)
}
