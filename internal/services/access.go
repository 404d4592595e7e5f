package services

import (
	"context"
	"strings"

	"github.com/rafabene/onemore-backend/internal/domain/entities"
	domainerrors "github.com/rafabene/onemore-backend/internal/domain/errors"
	"github.com/rafabene/onemore-backend/internal/domain/ports"
)

// Principal é o usuário autenticado de uma requisição
type Principal struct {
	UserID string
	Email  string
	Role   entities.Role
}

// PrincipalFinder carrega o estado atual de quem apresentou a sessão
type PrincipalFinder interface {
	FindByID(ctx context.Context, id string) (*entities.User, error)
}

// AccessControl valida sessões e papéis.
// O papel vem do registro atual do usuário e não do token, então rebaixar ou
// remover uma conta vale já na próxima requisição.
type AccessControl struct {
	sessions ports.SessionIssuer
	users    PrincipalFinder
}

func NewAccessControl(sessions ports.SessionIssuer, users PrincipalFinder) *AccessControl {
	return &AccessControl{sessions: sessions, users: users}
}

// Authenticate troca um token de sessão por um Principal
func (a *AccessControl) Authenticate(ctx context.Context, token string) (*Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domainerrors.ErrUnauthorized
	}

	claims, err := a.sessions.Parse(token)
	if err != nil {
		return nil, domainerrors.ErrUnauthorized.Wrap(err)
	}
	if claims.UserID == "" {
		return nil, domainerrors.ErrUnauthorized
	}

	user, err := a.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	// conta removida depois da emissão do token
	if user == nil {
		return nil, domainerrors.ErrUnauthorized
	}

	return &Principal{
		UserID: user.ID,
		Email:  user.Email.String(),
		Role:   user.Role,
	}, nil
}

// RequireRole exige uma sessão com um dos papéis informados.
// Sem papéis, basta estar autenticado.
func RequireRole(principal *Principal, roles ...entities.Role) error {
	if principal == nil {
		return domainerrors.ErrUnauthorized
	}
	if len(roles) == 0 {
		return nil
	}
	for _, role := range roles {
		if principal.Role == role {
			return nil
		}
	}
	return domainerrors.ErrForbidden
}

// RequireAdmin exige ADMIN ou SUPER_ADMIN
func RequireAdmin(principal *Principal) error {
	return RequireRole(principal, entities.AdminRoles...)
}

func issueSession(sessions ports.SessionIssuer, user *entities.User) (*Session, error) {
	token, expiresAt, err := sessions.Issue(ports.SessionClaims{
		UserID: user.ID,
		Email:  user.Email.String(),
		Role:   string(user.Role),
	})
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, ExpiresAt: expiresAt}, nil
}
