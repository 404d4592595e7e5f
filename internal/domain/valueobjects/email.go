package valueobjects

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidEmail = errors.New("invalid email format")

const (
	maxEmailLength = 254
	maxLocalLength = 64
)

var emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// Email é sempre minúsculo, sem espaços nas pontas e com formato válido.
// O valor zero representa ausência de email.
type Email struct {
	value string
}

// NewEmail normaliza e valida um endereço
func NewEmail(raw string) (Email, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if !isValidEmail(email) {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: email}, nil
}

// MustEmail é NewEmail para seeds e testes; entra em pânico com entrada inválida
func MustEmail(raw string) Email {
	e, err := NewEmail(raw)
	if err != nil {
		panic(err)
	}
	return e
}

func (e Email) String() string {
	return e.value
}

// Domain retorna a parte após o @
func (e Email) Domain() string {
	return DomainOf(e.value)
}

// DomainOf extrai o domínio de um endereço qualquer, em minúsculas.
// Logs registram apenas o domínio do destinatário.
func DomainOf(address string) string {
	_, domain, ok := strings.Cut(strings.TrimSpace(address), "@")
	if !ok {
		return ""
	}
	return strings.ToLower(domain)
}

func (e Email) Equals(other Email) bool {
	return e.value == other.value
}

func isValidEmail(email string) bool {
	if len(email) < 3 || len(email) > maxEmailLength {
		return false
	}

	local, domain, ok := strings.Cut(email, "@")
	if !ok || len(local) > maxLocalLength {
		return false
	}
	// pontos não podem abrir, fechar ou repetir em nenhuma das partes
	for _, part := range []string{local, domain} {
		if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
	}

	return emailPattern.MatchString(email)
}
