package dto

import "math"

// Envelope sobre JSON de todas las respuestas.
type Envelope struct {
	Success bool                `json:"success"`
	Data    interface{}         `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Count   *int                `json:"count,omitempty"`
	Code    string              `json:"code,omitempty"`
}

// PageRequest paginación por número de página (1..n).
type PageRequest struct {
	Page    int `query:"page"`
	PerPage int `query:"per_page"`
}

// Normalize aplica valores por defecto: página 1 y perPage fijo.
// La página se acota para que Offset no desborde.
func (p *PageRequest) Normalize(perPage int) {
	if perPage <= 0 {
		perPage = 1
	}
	p.PerPage = perPage
	if p.Page <= 0 {
		p.Page = 1
	}
	if maxPage := math.MaxInt32 / perPage; p.Page > maxPage {
		p.Page = maxPage
	}
}

// Offset desplazamiento para la consulta.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}
