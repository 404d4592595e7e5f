package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/rafabene/onemore-backend/internal/domain/ports"
)

const tokenSize = 32

// RandomTokenGenerator gera tokens opacos base64url; apenas o SHA-256 é persistido
type RandomTokenGenerator struct{}

// NewRandomTokenGenerator cria um gerador de tokens
func NewRandomTokenGenerator() ports.TokenGenerator {
	return RandomTokenGenerator{}
}

func (RandomTokenGenerator) Generate() (string, error) {
	b := make([]byte, tokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (RandomTokenGenerator) Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
