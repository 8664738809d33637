package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/davicafu/medialist/internal/shared/domain"
	sharedQuery "github.com/davicafu/medialist/internal/shared/platform/query"
)

var (
	ErrSceneNotFound       = errors.New("scene not found")
	ErrSceneAlreadyExists  = errors.New("scene already exists")
	ErrInvalidScene        = errors.New("invalid scene")
	ErrInvalidSort         = errors.New("invalid sort field")
	ErrUnknownAttribute    = errors.New("unknown scene attribute")
	ErrUnsupportedModifier = errors.New("unsupported criterion modifier")
)

// --- Repositorio de Scenes ---
type SceneRepository interface {
	Create(ctx context.Context, s *Scene, evt sharedDomain.OutboxEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*Scene, error)
	// GetByIDs devuelve las escenas en el mismo orden que ids; los ids que no
	// existen se omiten.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Scene, error)
	ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria, pagination sharedQuery.OffsetPagination, sort sharedQuery.Sort) ([]*Scene, error)
	// ListIDs devuelve todos los ids que cumplen criteria, ordenados por id.
	ListIDs(ctx context.Context, criteria sharedDomain.Criteria) ([]uuid.UUID, error)
	Count(ctx context.Context, criteria sharedDomain.Criteria) (int, error)
}

// FilterUsage es una consulta de lista registrada para analítica.
type FilterUsage struct {
	Query       string
	Criteria    []string // tipos de criterio usados
	Sort        string
	ResultCount int
	At          time.Time
}

// CriterionUsage es el DTO del ranking de criterios.
type CriterionUsage struct {
	Criterion string `json:"criterion"`
	Uses      uint64 `json:"uses"`
}

type FilterUsageRepository interface {
	LogBatch(ctx context.Context, usages []FilterUsage) error
	TopCriteria(ctx context.Context, since time.Time, limit int) ([]CriterionUsage, error)
}

// ---------- Helpers comunes (cache keys, etc.) ----------

func SceneCacheKeyByID(id uuid.UUID) string {
	return fmt.Sprintf("scene:id:%s", id.String())
}

// SceneCacheKeyByQuery usa la query canónica del filtro como clave.
func SceneCacheKeyByQuery(query string) string {
	return "scene:query:" + query
}
