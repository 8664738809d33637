package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	lf "github.com/davicafu/medialist/internal/listfilter/domain"
	sfDomain "github.com/davicafu/medialist/internal/savedfilter/domain"
	sharedDomain "github.com/davicafu/medialist/internal/shared/domain"
	sharedCache "github.com/davicafu/medialist/internal/shared/platform/cache"
	sharedUtils "github.com/davicafu/medialist/internal/shared/utils"
)

const savedFilterCacheTTL = 300

// SavedFilterService define los casos de uso de los filtros guardados.
type SavedFilterService struct {
	repo  sfDomain.SavedFilterRepository
	cache sharedCache.Cache
	codec *lf.Codec
	log   *zap.Logger
}

func NewSavedFilterService(repo sfDomain.SavedFilterRepository, cache sharedCache.Cache, codec *lf.Codec, log *zap.Logger) *SavedFilterService {
	return &SavedFilterService{repo: repo, cache: cache, codec: codec, log: log}
}

// Save guarda los parámetros canónicos del modelo. Si ya existe un filtro con
// el mismo nombre en el modo, se sobrescribe.
func (s *SavedFilterService) Save(ctx context.Context, mode sfDomain.FilterMode, name string, model *lf.ListFilterModel) (*sfDomain.SavedFilter, error) {
	params := model.ToQueryParameters()
	query := model.ToQueryString()

	filter, err := sfDomain.NewSavedFilter(mode, name, params, query)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ListByMode(ctx, mode)
	if err != nil {
		return nil, err
	}
	for _, f := range existing {
		if f.Name == filter.Name {
			f.Replace(params, query)
			filter = f
			break
		}
	}

	evt := sharedDomain.NewOutboxEvent(sfDomain.SavedFilterAggregateType, filter.ID, sfDomain.SavedFilterSaved,
		sfDomain.SavedFilterSavedEvent{ID: filter.ID, Mode: filter.Mode, Name: filter.Name, Query: filter.Query})

	if err := s.repo.Save(ctx, filter, evt); err != nil {
		s.log.Error("Failed to save filter", zap.String("name", filter.Name), zap.Error(err))
		return nil, err
	}

	sharedCache.AsyncCacheSet(ctx, s.cache, sfDomain.SavedFilterCacheKeyByID(filter.ID), filter, savedFilterCacheTTL, s.log)

	return filter, nil
}

// Get obtiene un filtro guardado, usando el patrón cache-aside con reintentos.
func (s *SavedFilterService) Get(ctx context.Context, id string) (*sfDomain.SavedFilter, error) {
	if !sfDomain.IsValidID(id) {
		return nil, sfDomain.ErrSavedFilterNotFound
	}

	// 1. Intentar obtener de la caché
	if s.cache != nil {
		var cached sfDomain.SavedFilter
		if hit, _ := s.cache.Get(ctx, sfDomain.SavedFilterCacheKeyByID(id), &cached); hit {
			return &cached, nil
		}
	}

	// 2. Si es 'miss', ir al repositorio con reintentos
	var filter *sfDomain.SavedFilter
	err := sharedUtils.Retry(ctx, 3, 100*time.Millisecond, func() error {
		var errRetry error
		filter, errRetry = s.repo.GetByID(ctx, id)
		return errRetry
	}, func(err error) bool { return errors.Is(err, sfDomain.ErrSavedFilterNotFound) })

	if err != nil {
		if errors.Is(err, sfDomain.ErrSavedFilterNotFound) {
			s.log.Warn("Saved filter not found", zap.String("filter_id", id))
		} else {
			s.log.Error("Failed to fetch saved filter", zap.String("filter_id", id), zap.Error(err))
		}
		return nil, err
	}

	// 3. Actualizar caché en segundo plano
	sharedCache.AsyncCacheSet(ctx, s.cache, sfDomain.SavedFilterCacheKeyByID(id), filter, savedFilterCacheTTL, s.log)

	return filter, nil
}

// List devuelve los filtros de un modo ordenados por nombre.
func (s *SavedFilterService) List(ctx context.Context, mode sfDomain.FilterMode) ([]*sfDomain.SavedFilter, error) {
	filters, err := s.repo.ListByMode(ctx, mode)
	if err != nil {
		s.log.Error("Failed to list saved filters", zap.String("mode", string(mode)), zap.Error(err))
		return nil, err
	}
	return filters, nil
}

// Delete borra el filtro y su entrada de caché.
func (s *SavedFilterService) Delete(ctx context.Context, id string) error {
	filter, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	evt := sharedDomain.NewOutboxEvent(sfDomain.SavedFilterAggregateType, id, sfDomain.SavedFilterDeleted,
		sfDomain.SavedFilterDeletedEvent{ID: id, Mode: filter.Mode})

	if err := s.repo.DeleteByID(ctx, id, evt); err != nil {
		s.log.Error("Failed to delete saved filter", zap.String("filter_id", id), zap.Error(err))
		return err
	}

	sharedCache.AsyncCacheDelete(ctx, s.cache, sfDomain.SavedFilterCacheKeyByID(id), s.log)
	return nil
}

// Load reconstruye el modelo de lista a partir de los parámetros guardados.
func (s *SavedFilterService) Load(ctx context.Context, id string) (*lf.ListFilterModel, *sfDomain.SavedFilter, error) {
	filter, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return s.codec.New(filter.Params, filter.Mode.DefaultSort(), nil), filter, nil
}
