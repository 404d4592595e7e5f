package repositories

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination define página (começa em 1) e itens por página
type Pagination struct {
	Page  int
	Limit int
}

// Normalize aplica valores padrão e o limite máximo
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset retorna quantos registros pular. ok é false quando o deslocamento
// não cabe em int; espera uma paginação já normalizada.
func (p Pagination) Offset() (offset int, ok bool) {
	if p.Page-1 > math.MaxInt/p.Limit {
		return 0, false
	}
	return (p.Page - 1) * p.Limit, true
}

// Exceeds informa se a página começa depois do último de total registros
func (p Pagination) Exceeds(total int64) bool {
	offset, ok := p.Offset()
	return !ok || int64(offset) >= total
}

// PageMetadata descreve a página retornada
type PageMetadata struct {
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// NewPageMetadata calcula o total de páginas como ceil(total/limit)
func NewPageMetadata(total int64, p Pagination) PageMetadata {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return PageMetadata{
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
	}
}

// Page é um resultado paginado
type Page[T any] struct {
	Data     []T
	Metadata PageMetadata
}
