package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	lf "github.com/davicafu/medialist/internal/listfilter/domain"
	sceneDomain "github.com/davicafu/medialist/internal/scene/domain"
	sharedDomain "github.com/davicafu/medialist/internal/shared/domain"
	sharedCache "github.com/davicafu/medialist/internal/shared/platform/cache"
	sharedQuery "github.com/davicafu/medialist/internal/shared/platform/query"
	sharedUtils "github.com/davicafu/medialist/internal/shared/utils"
)

// ErrAnalyticsDisabled indica que no hay repositorio de analítica configurado.
var ErrAnalyticsDisabled = errors.New("analytics disabled")

const (
	sceneCacheTTL = 120
	// Las listas caducan antes: una escena nueva no invalida las consultas cacheadas.
	queryCacheTTL = 30
	usageTimeout  = 2 * time.Second
)

// FindResult es la respuesta de una consulta de lista.
type FindResult struct {
	Count      int                  `json:"count"`
	Scenes     []*sceneDomain.Scene `json:"scenes"`
	FindFilter lf.FindFilter        `json:"find_filter"`
	Query      string               `json:"query"`
	Skipped    []string             `json:"skipped_criteria,omitempty"`
}

// CreateSceneInput agrupa los campos editables de una escena nueva.
type CreateSceneInput struct {
	Title       string  `json:"title"`
	Path        string  `json:"path"`
	Details     string  `json:"details"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Rating      *int    `json:"rating"`
	OCounter    int     `json:"o_counter"`
	Duration    float64 `json:"duration"`
	Organized   bool    `json:"organized"`
	Interactive bool    `json:"interactive"`
}

// SceneService define los casos de uso de la lista de escenas.
type SceneService struct {
	repo  sceneDomain.SceneRepository
	usage sceneDomain.FilterUsageRepository
	cache sharedCache.Cache
	log   *zap.Logger
}

// NewSceneService crea el servicio. usage y cache pueden ser nil.
func NewSceneService(repo sceneDomain.SceneRepository, usage sceneDomain.FilterUsageRepository, cache sharedCache.Cache, log *zap.Logger) *SceneService {
	return &SceneService{
		repo:  repo,
		usage: usage,
		cache: cache,
		log:   log,
	}
}

// FindScenes resuelve un ListFilterModel contra el repositorio.
func (s *SceneService) FindScenes(ctx context.Context, model *lf.ListFilterModel) (*FindResult, error) {
	find := model.ToFindFilter()
	attrs := model.ToAttributeFilter()
	query := model.ToQueryString()
	cacheKey := sceneDomain.SceneCacheKeyByQuery(query)

	// 1. Intentar obtener de la caché
	if s.cache != nil {
		var cached FindResult
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	// 2. Traducir el filtro
	criteria, skipped := sceneDomain.CriteriaFromFilter(find, attrs)
	if len(skipped) > 0 {
		s.log.Warn("Criterios no aplicables ignorados", zap.Strings("criteria", skipped), zap.String("query", query))
	}

	sort, err := sceneDomain.SortFromFindFilter(find)
	if err != nil {
		return nil, err
	}
	pagination := sharedQuery.NewPagePagination(find.Page, find.PerPage)

	// 3. Consultar
	count, err := s.repo.Count(ctx, criteria)
	if err != nil {
		s.log.Error("Failed to count scenes", zap.Error(err))
		return nil, err
	}

	var scenes []*sceneDomain.Scene
	if sort.Random {
		scenes, err = s.randomPage(ctx, criteria, sort.Seed, pagination)
	} else {
		scenes, err = s.repo.ListByCriteria(ctx, criteria, pagination, sort.Sort)
	}
	if err != nil {
		s.log.Error("Failed to list scenes", zap.String("query", query), zap.Error(err))
		return nil, err
	}

	result := &FindResult{
		Count:      count,
		Scenes:     scenes,
		FindFilter: find,
		Query:      query,
		Skipped:    skipped,
	}

	// 4. Caché y analítica en segundo plano
	sharedCache.AsyncCacheSet(ctx, s.cache, cacheKey, result, queryCacheTTL, s.log)
	s.recordUsage(ctx, model, find, query, count)

	return result, nil
}

// randomPage baraja los ids con la semilla: la misma semilla da el mismo orden
// y por tanto páginas consistentes.
func (s *SceneService) randomPage(ctx context.Context, criteria sharedDomain.Criteria, seed int, p sharedQuery.OffsetPagination) ([]*sceneDomain.Scene, error) {
	ids, err := s.repo.ListIDs(ctx, criteria)
	if err != nil {
		return nil, err
	}

	ShuffleIDs(ids, seed)

	if p.Offset < 0 || p.Offset >= len(ids) {
		return []*sceneDomain.Scene{}, nil
	}
	end := len(ids)
	if p.Limit < end-p.Offset {
		end = p.Offset + p.Limit
	}
	return s.repo.GetByIDs(ctx, ids[p.Offset:end])
}

// ShuffleIDs permuta ids de forma determinista según seed.
func ShuffleIDs(ids []uuid.UUID, seed int) {
	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	r.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
}

func (s *SceneService) recordUsage(ctx context.Context, model *lf.ListFilterModel, find lf.FindFilter, query string, count int) {
	if s.usage == nil {
		return
	}

	types := make([]string, 0, len(model.Criteria))
	for _, c := range model.Criteria {
		types = append(types, c.Option().Type)
	}
	usage := sceneDomain.FilterUsage{
		Query:       query,
		Criteria:    types,
		Sort:        find.Sort,
		ResultCount: count,
		At:          time.Now().UTC(),
	}

	go func() {
		usageCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), usageTimeout)
		defer cancel()
		if err := s.usage.LogBatch(usageCtx, []sceneDomain.FilterUsage{usage}); err != nil {
			s.log.Warn("⚠️ No se pudo registrar el uso del filtro", zap.Error(err))
		}
	}()
}

// CreateScene crea una escena, su evento de outbox y actualiza la caché.
func (s *SceneService) CreateScene(ctx context.Context, in CreateSceneInput) (*sceneDomain.Scene, error) {
	scene, err := sceneDomain.NewScene(in.Title, in.Path, in.Width, in.Height)
	if err != nil {
		return nil, err
	}
	if in.Rating != nil {
		if err := scene.SetRating(*in.Rating); err != nil {
			return nil, err
		}
	}
	if in.OCounter < 0 || in.Duration < 0 {
		return nil, fmt.Errorf("%w: negative counter or duration", sceneDomain.ErrInvalidScene)
	}
	scene.Details = in.Details
	scene.OCounter = in.OCounter
	scene.Duration = in.Duration
	scene.Organized = in.Organized
	scene.Interactive = in.Interactive

	evt := sharedDomain.NewOutboxEvent(sceneDomain.SceneAggregateType, scene.ID.String(), sceneDomain.SceneCreated, scene)

	if err := s.repo.Create(ctx, scene, evt); err != nil {
		s.log.Error("Failed to create scene", zap.Error(err))
		return nil, err
	}

	sharedCache.AsyncCacheSet(ctx, s.cache, sceneDomain.SceneCacheKeyByID(scene.ID), scene, sceneCacheTTL, s.log)

	return scene, nil
}

// GetScene obtiene una escena, usando el patrón cache-aside con reintentos.
func (s *SceneService) GetScene(ctx context.Context, id uuid.UUID) (*sceneDomain.Scene, error) {
	// 1. Intentar obtener de la caché
	if s.cache != nil {
		var cached sceneDomain.Scene
		if hit, _ := s.cache.Get(ctx, sceneDomain.SceneCacheKeyByID(id), &cached); hit {
			return &cached, nil
		}
	}

	// 2. Si es 'miss', ir al repositorio con reintentos
	var scene *sceneDomain.Scene
	err := sharedUtils.Retry(ctx, 3, 100*time.Millisecond, func() error {
		var errRetry error
		scene, errRetry = s.repo.GetByID(ctx, id)
		return errRetry
	}, func(err error) bool { return errors.Is(err, sceneDomain.ErrSceneNotFound) })

	if err != nil {
		if errors.Is(err, sceneDomain.ErrSceneNotFound) {
			s.log.Warn("Scene not found", zap.String("scene_id", id.String()))
		} else {
			s.log.Error("Failed to fetch scene", zap.String("scene_id", id.String()), zap.Error(err))
		}
		return nil, err
	}

	// 3. Actualizar caché en segundo plano para la próxima vez
	sharedCache.AsyncCacheSet(ctx, s.cache, sceneDomain.SceneCacheKeyByID(id), scene, sceneCacheTTL, s.log)

	return scene, nil
}

// TopCriteria devuelve el ranking de criterios usados en las últimas horas.
func (s *SceneService) TopCriteria(ctx context.Context, window time.Duration, limit int) ([]sceneDomain.CriterionUsage, error) {
	if s.usage == nil {
		return nil, ErrAnalyticsDisabled
	}
	return s.usage.TopCriteria(ctx, time.Now().UTC().Add(-window), limit)
}
