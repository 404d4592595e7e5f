package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	domainerrors "github.com/rafabene/onemore-backend/internal/domain/errors"
	"github.com/rafabene/onemore-backend/internal/services"
)

const (
	// PrincipalContextKey guarda o usuário autenticado da requisição
	PrincipalContextKey = "principal"
	// AccessTokenQueryParam permite autenticar conexões websocket sem header
	AccessTokenQueryParam = "access_token"
)

// Auth autentica requisições a partir do token de sessão.
// Falhas são registradas em c.Errors e a cadeia é abortada; a renderização
// da resposta fica com o handler de erros do router.
type Auth struct {
	access *services.AccessControl
}

// NewAuth cria o middleware de autenticação
func NewAuth(access *services.AccessControl) *Auth {
	return &Auth{access: access}
}

// Protected exige uma sessão válida
func (a *Auth) Protected() gin.HandlerFunc {
	return a.require(func(p *services.Principal) error { return services.RequireRole(p) })
}

// Admin exige uma sessão com papel ADMIN ou SUPER_ADMIN
func (a *Auth) Admin() gin.HandlerFunc {
	return a.require(services.RequireAdmin)
}

func (a *Auth) require(check func(*services.Principal) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := a.access.Authenticate(c.Request.Context(), extractToken(c))
		if err == nil {
			err = check(principal)
		}
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(PrincipalContextKey, principal)
		c.Next()
	}
}

// GetPrincipal retorna o usuário autenticado ou nil
func GetPrincipal(c *gin.Context) *services.Principal {
	value, exists := c.Get(PrincipalContextKey)
	if !exists {
		return nil
	}
	principal, _ := value.(*services.Principal)
	return principal
}

// MustPrincipal é GetPrincipal para rotas protegidas
func MustPrincipal(c *gin.Context) (*services.Principal, error) {
	principal := GetPrincipal(c)
	if principal == nil {
		return nil, domainerrors.ErrUnauthorized
	}
	return principal, nil
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return c.Query(AccessTokenQueryParam)
}
