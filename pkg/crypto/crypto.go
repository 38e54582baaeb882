package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const friendlyAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// VerifyPassword verifies a password against a hash
func VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateRandomBytes generates random bytes
func GenerateRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// GenerateAPIKey generates a URL-safe random access token for a device.
func GenerateAPIKey() (string, error) {
	bytes, err := GenerateRandomBytes(24)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(bytes), nil
}

// GenerateFriendlyID generates a short human-readable device identifier.
// The alphabet omits easily confused characters (0/O, 1/I).
func GenerateFriendlyID() (string, error) {
	return randomString(6, friendlyAlphabet)
}

// RandomToken generates a short lowercase alphanumeric token, used to make
// per-poll filenames unique so device firmware never serves a stale cache.
func RandomToken(n int) (string, error) {
	return randomString(n, "abcdefghijklmnopqrstuvwxyz0123456789")
}

func randomString(n int, alphabet string) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b), nil
}
