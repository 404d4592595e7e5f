package errors

import (
	"errors"
	"strings"
)

// Kind classifica erros de domínio para a borda HTTP
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindInvalidToken
	KindUnauthorized
	KindForbidden
	KindTooManyRequests
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindConflict:
		return "CONFLICT"
	case KindNotFound:
		return "NOT_FOUND"
	case KindInvalidToken:
		return "INVALID_TOKEN"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindTooManyRequests:
		return "TOO_MANY_REQUESTS"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

// DomainError representa um erro de domínio com contexto adicional.
// Code é o message ID usado pelo i18n.
type DomainError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is compara pelo código, permitindo errors.Is contra cópias enriquecidas com Wrap
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// Wrap anexa uma causa mantendo código e classificação
func (e *DomainError) Wrap(err error) *DomainError {
	return &DomainError{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: err}
}

// Business errors
// Nota: Code são message IDs para i18n.
// As traduções devem estar em internal/infrastructure/i18n/locales/*.json
var (
	ErrUserAlreadyExists  = &DomainError{Kind: KindConflict, Code: "error.user_already_exists", Message: "User already exists"}
	ErrEmailAlreadyExists = &DomainError{Kind: KindConflict, Code: "error.email_already_exists", Message: "Email already in use"}
	ErrSocialIDTaken      = &DomainError{Kind: KindConflict, Code: "error.social_id_taken", Message: "Social account already linked to another user"}
	ErrUserNotFound       = &DomainError{Kind: KindNotFound, Code: "error.user_not_found", Message: "User not found"}
	ErrUserModified       = &DomainError{Kind: KindConflict, Code: "error.user_modified", Message: "User was modified by another request"}
	ErrRouteNotFound      = &DomainError{Kind: KindNotFound, Code: "error.route_not_found", Message: "Route not found"}
	ErrInvalidToken       = &DomainError{Kind: KindInvalidToken, Code: "error.invalid_token", Message: "Invalid or expired token"}
	ErrInvalidCredentials = &DomainError{Kind: KindUnauthorized, Code: "error.invalid_credentials", Message: "Invalid email or password"}
	ErrEmailNotVerified   = &DomainError{Kind: KindForbidden, Code: "error.email_not_verified", Message: "Please verify your email"}
	ErrUnauthorized       = &DomainError{Kind: KindUnauthorized, Code: "error.unauthorized", Message: "Unauthorized"}
	ErrForbidden          = &DomainError{Kind: KindForbidden, Code: "error.forbidden", Message: "Forbidden"}
	ErrCannotDeleteSelf   = &DomainError{Kind: KindForbidden, Code: "error.cannot_delete_self", Message: "Admins cannot delete their own account"}
	ErrTooManyRequests    = &DomainError{Kind: KindTooManyRequests, Code: "error.too_many_requests", Message: "Too many requests"}
)

// ProblemType define tipos de problemas (URIs RFC 7807)
// Nota: O domínio base virá de configuração (API_BASE_URL)
//
//nolint:misspell
const (
	ProblemTypeValidation      = "/problems/validation-error"
	ProblemTypeNotFound        = "/problems/not-found"
	ProblemTypeConflict        = "/problems/conflict"
	ProblemTypeInvalidToken    = "/problems/invalid-token"
	ProblemTypeUnauthorized    = "/problems/unauthorized"
	ProblemTypeForbidden       = "/problems/forbidden"
	ProblemTypeTooManyRequests = "/problems/too-many-requests"
	ProblemTypeInternal        = "/problems/internal-error"
)

// FieldError descreve uma violação de validação em um campo
type FieldError struct {
	Field string
	Tag   string
	Param string
}

// ValidationError agrega violações de validação de entrada
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Tag)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// NewValidationError cria um erro de validação para um único campo
func NewValidationError(field, tag, param string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Tag: tag, Param: param}}}
}

// KindOf classifica qualquer erro; erros desconhecidos são internos
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return KindValidation
	}

	var derr *DomainError
	if errors.As(err, &derr) {
		return derr.Kind
	}

	return KindInternal
}

// CodeOf retorna o message ID do erro, ou o código interno genérico
func CodeOf(err error) string {
	var derr *DomainError
	if errors.As(err, &derr) {
		return derr.Code
	}
	if KindOf(err) == KindValidation {
		return "error.validation.detail"
	}
	return "error.internal.detail"
}

// ProblemTypeOf retorna o caminho RFC 7807 de cada classificação
func ProblemTypeOf(kind Kind) string {
	switch kind {
	case KindValidation:
		return ProblemTypeValidation
	case KindConflict:
		return ProblemTypeConflict
	case KindNotFound:
		return ProblemTypeNotFound
	case KindInvalidToken:
		return ProblemTypeInvalidToken
	case KindUnauthorized:
		return ProblemTypeUnauthorized
	case KindForbidden:
		return ProblemTypeForbidden
	case KindTooManyRequests:
		return ProblemTypeTooManyRequests
	default:
		return ProblemTypeInternal
	}
}
