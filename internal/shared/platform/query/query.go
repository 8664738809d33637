package query

import "math"

// ---------- Tipos de paginación / ordenamiento ----------

// OffsetPagination para paginación clásica
type OffsetPagination struct {
	Limit  int
	Offset int
}

// NewPagePagination traduce página (desde 1) y tamaño a limit/offset. Si el
// offset no cabe en un int se satura a math.MaxInt.
func NewPagePagination(page, perPage int) OffsetPagination {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	if page-1 > math.MaxInt/perPage {
		return OffsetPagination{Limit: perPage, Offset: math.MaxInt}
	}
	return OffsetPagination{Limit: perPage, Offset: (page - 1) * perPage}
}

// Sort indica campo y dirección.
type Sort struct {
	Field string // ej. "created_at", "title", "rating"
	Desc  bool
}
