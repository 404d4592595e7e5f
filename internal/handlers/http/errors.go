package http

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	domainerrors "github.com/rafabene/onemore-backend/internal/domain/errors"
	"github.com/rafabene/onemore-backend/internal/domain/ports"
	"github.com/rafabene/onemore-backend/internal/handlers/dto"
	"github.com/rafabene/onemore-backend/internal/services"
)

// ErrorHandler renderiza o último erro registrado em c.Errors quando
// nenhum handler respondeu, e loga os erros internos
func ErrorHandler(logger ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}

		if domainerrors.KindOf(last.Err) == domainerrors.KindInternal {
			logger.Error("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"error", last.Err,
			)
		}

		if !c.Writer.Written() {
			writeProblem(c, last.Err)
		}
	}
}

// respondError responde com RFC 7807 e registra o erro para o ErrorHandler
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	writeProblem(c, err)
	c.Abort()
}

func writeProblem(c *gin.Context, err error) {
	response := dto.ErrorResponseFrom(c, err)
	c.Header("Content-Type", dto.ProblemContentType)
	c.JSON(response.Status, response)
}

// bindingError converte falhas de bind do gin em erro de validação
func bindingError(field string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return services.ToValidationError(err)
	}
	return domainerrors.NewValidationError(field, "invalid", "")
}
