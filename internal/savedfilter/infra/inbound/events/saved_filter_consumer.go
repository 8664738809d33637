package events

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	sfDomain "github.com/davicafu/medialist/internal/savedfilter/domain"
	sharedEvents "github.com/davicafu/medialist/internal/shared/events"
	sharedCache "github.com/davicafu/medialist/internal/shared/platform/cache"
	sharedUtils "github.com/davicafu/medialist/internal/shared/utils"
)

// SavedFilterConsumer invalida la caché de los filtros que cambian en otra instancia.
type SavedFilterConsumer struct {
	cache sharedCache.Cache
	log   *zap.Logger
}

func NewSavedFilterConsumer(cache sharedCache.Cache, logger *zap.Logger) *SavedFilterConsumer {
	return &SavedFilterConsumer{cache: cache, log: logger}
}

func (c *SavedFilterConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	var base sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &base); err != nil {
		c.log.Warn("Failed to unmarshal integration event", zap.String("key", key), zap.Error(err))
		return
	}

	switch base.Type {
	case sfDomain.SavedFilterSaved:
		sharedUtils.UnmarshalAndHandle[sfDomain.SavedFilterSavedEvent](c.log, base.Data, func(evt sfDomain.SavedFilterSavedEvent) {
			c.invalidate(ctx, evt.ID, base.Type)
		})

	case sfDomain.SavedFilterDeleted:
		sharedUtils.UnmarshalAndHandle[sfDomain.SavedFilterDeletedEvent](c.log, base.Data, func(evt sfDomain.SavedFilterDeletedEvent) {
			c.invalidate(ctx, evt.ID, base.Type)
		})

	default:
		// El topic lo comparten otros tipos de evento.
		c.log.Debug("Ignoring event", zap.String("type", base.Type))
	}
}

func (c *SavedFilterConsumer) invalidate(ctx context.Context, id, eventType string) {
	if id == "" {
		c.log.Warn("Saved filter event without id", zap.String("type", eventType))
		return
	}
	sharedCache.AsyncCacheDelete(ctx, c.cache, sfDomain.SavedFilterCacheKeyByID(id), c.log)
	c.log.Info("🧹 Saved filter cache invalidated",
		zap.String("filter_id", id),
		zap.String("type", eventType),
	)
}
