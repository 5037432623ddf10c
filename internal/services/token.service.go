package services

import (
	"crypto/rand"
	"encoding/base64"

	logger "github.com/Bparsons0904/goLogger"
)

const tokenByteLength = 32

// TokenService mints capability tokens. A token is the whole credential for
// one transition on one row, so it must be unguessable; row ids and v4 UUIDs
// are not acceptable substitutes.
type TokenService struct {
	log logger.Logger
}

func NewTokenService() *TokenService {
	return &TokenService{
		log: logger.New("TokenService"),
	}
}

// Generate returns a fresh url-safe opaque token. Uniqueness across rows is
// enforced by the store's unique indexes; a collision surfaces as an insert
// error and is retried by the caller's resend path.
func (t *TokenService) Generate() (string, error) {
	log := t.log.Function("Generate")

	raw := make([]byte, tokenByteLength)
	if _, err := rand.Read(raw); err != nil {
		return "", log.Err("failed to read random bytes", err)
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}
