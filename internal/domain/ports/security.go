package ports

import "time"

// PasswordHasher gera e confere hashes de senha
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenGenerator gera tokens opacos e o hash que é persistido no lugar deles
type TokenGenerator interface {
	Generate() (string, error)
	Hash(token string) string
}

// SessionClaims são os dados carregados por um token de sessão
type SessionClaims struct {
	UserID    string
	Email     string
	Role      string
	ExpiresAt time.Time
}

// SessionIssuer emite e valida tokens de sessão
type SessionIssuer interface {
	Issue(claims SessionClaims) (string, time.Time, error)
	Parse(token string) (*SessionClaims, error)
}
