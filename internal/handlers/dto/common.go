package dto

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moogar0880/problems"

	domainerrors "github.com/rafabene/onemore-backend/internal/domain/errors"
)

// ProblemContentType é o media type das respostas de erro RFC 7807
const ProblemContentType = "application/problem+json"

// BaseURLContextKey guarda a URL base usada no campo type dos problemas
const BaseURLContextKey = "base_url"

// ErrorResponse segue RFC 7807 (Problem Details for HTTP APIs)
type ErrorResponse struct {
	*problems.DefaultProblem
	Code   string            `json:"code,omitempty"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError representa um erro de validação de campo
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag,omitempty"`
}

// StatusOf mapeia a classificação do erro para o status HTTP
func StatusOf(kind domainerrors.Kind) int {
	switch kind {
	case domainerrors.KindValidation, domainerrors.KindInvalidToken:
		return http.StatusBadRequest
	case domainerrors.KindConflict:
		return http.StatusConflict
	case domainerrors.KindNotFound:
		return http.StatusNotFound
	case domainerrors.KindUnauthorized:
		return http.StatusUnauthorized
	case domainerrors.KindForbidden:
		return http.StatusForbidden
	case domainerrors.KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func titleKey(kind domainerrors.Kind) string {
	switch kind {
	case domainerrors.KindValidation:
		return "error.validation.title"
	case domainerrors.KindConflict:
		return "error.conflict.title"
	case domainerrors.KindNotFound:
		return "error.not_found.title"
	case domainerrors.KindInvalidToken:
		return "error.invalid_token.title"
	case domainerrors.KindUnauthorized:
		return "error.unauthorized.title"
	case domainerrors.KindForbidden:
		return "error.forbidden.title"
	case domainerrors.KindTooManyRequests:
		return "error.too_many_requests.title"
	default:
		return "error.internal.title"
	}
}

// NewErrorResponse cria uma nova resposta de erro RFC 7807 traduzida
func NewErrorResponse(c *gin.Context, kind domainerrors.Kind, detail string) ErrorResponse {
	baseURL := c.GetString(BaseURLContextKey)
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	problem := problems.NewDetailedProblem(StatusOf(kind), detail)
	problem.Type = baseURL + domainerrors.ProblemTypeOf(kind)
	problem.Title = T(c, titleKey(kind))
	problem.Instance = c.Request.URL.Path

	return ErrorResponse{DefaultProblem: problem}
}

// ErrorResponseFrom converte qualquer erro em resposta RFC 7807.
// Erros internos nunca expõem a mensagem original.
func ErrorResponseFrom(c *gin.Context, err error) ErrorResponse {
	kind := domainerrors.KindOf(err)

	switch kind {
	case domainerrors.KindValidation:
		response := NewErrorResponse(c, kind, T(c, "error.validation.detail"))
		var verr *domainerrors.ValidationError
		if errors.As(err, &verr) {
			response.Errors = ValidationErrorsI18n(c, verr)
		}
		return response
	case domainerrors.KindInternal:
		return NewErrorResponse(c, kind, T(c, "error.internal.detail"))
	default:
		code := domainerrors.CodeOf(err)
		response := NewErrorResponse(c, kind, T(c, code))
		response.Code = code
		return response
	}
}

// ValidationErrorsI18n traduz as violações de campo
func ValidationErrorsI18n(c *gin.Context, verr *domainerrors.ValidationError) []ValidationError {
	out := make([]ValidationError, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		params := map[string]interface{}{"Field": f.Field, "Param": f.Param}

		key := "validation." + f.Tag
		message := T(c, key, params)
		if message == key {
			message = T(c, "validation.invalid", params)
		}

		out = append(out, ValidationError{Field: f.Field, Message: message, Tag: f.Tag})
	}
	return out
}

// MessageResponse é a resposta de sucesso sem payload
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PageMetadata descreve a página retornada
type PageMetadata struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// PageResponse é o envelope das listagens paginadas
type PageResponse[T any] struct {
	Data     []T          `json:"data"`
	Metadata PageMetadata `json:"metadata"`
}

// PageQuery é a paginação lida da query string
type PageQuery struct {
	Page  int `form:"page" json:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" json:"limit" binding:"omitempty,min=1"`
}
