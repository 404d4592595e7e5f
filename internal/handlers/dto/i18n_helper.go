package dto

import (
	"github.com/gin-gonic/gin"

	"github.com/rafabene/onemore-backend/internal/handlers/middleware"
	"github.com/rafabene/onemore-backend/internal/infrastructure/i18n"
)

const fallbackLanguage = "en"

// T traduz um message ID no idioma da requisição.
// Sem o middleware de i18n na cadeia, a própria chave é devolvida.
//
//	dto.T(c, "admin.user.role_updated", map[string]interface{}{"Role": "ADMIN"})
func T(c *gin.Context, key string, params ...map[string]interface{}) string {
	service, ok := c.Value(middleware.I18nServiceContextKey).(*i18n.Service)
	if !ok || service == nil {
		return key
	}
	return service.T(GetLanguage(c), key, params...)
}

// GetLanguage retorna o idioma escolhido pelo middleware, ou inglês
func GetLanguage(c *gin.Context) string {
	if lang := c.GetString(middleware.LanguageContextKey); lang != "" {
		return lang
	}
	return fallbackLanguage
}
