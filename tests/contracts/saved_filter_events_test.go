package contracts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	sfDomain "github.com/davicafu/medialist/internal/savedfilter/domain"
	sfEvents "github.com/davicafu/medialist/internal/savedfilter/infra/inbound/events"
	"github.com/davicafu/medialist/tests/mocks"
)

// Mensajes tal y como llegan por Kafka, NATS o el bus en memoria.
const (
	savedMessage = `{
		"type": "saved_filter.saved",
		"topic": "saved_filter",
		"key": "sf-Q1w2E3r4T5",
		"timestamp": "2026-03-01T10:00:00Z",
		"data": {"id": "sf-Q1w2E3r4T5", "mode": "SCENES", "name": "4k", "query": "c={\"type\":\"resolution\",\"value\":\"4k\",\"modifier\":\"EQUALS\"}"}
	}`
	deletedMessage = `{
		"type": "saved_filter.deleted",
		"topic": "saved_filter",
		"key": "sf-Q1w2E3r4T5",
		"timestamp": "2026-03-01T10:05:00Z",
		"data": {"id": "sf-Q1w2E3r4T5", "mode": "SCENES"}
	}`
)

func TestSavedFilterConsumer_WireContract(t *testing.T) {
	for name, message := range map[string]string{"saved": savedMessage, "deleted": deletedMessage} {
		t.Run(name, func(t *testing.T) {
			// Arrange
			ctx := context.Background()
			cache := mocks.NewDummyCache()
			key := sfDomain.SavedFilterCacheKeyByID("sf-Q1w2E3r4T5")
			require.NoError(t, cache.Set(ctx, key, sfDomain.SavedFilter{ID: "sf-Q1w2E3r4T5"}, 60))
			consumer := sfEvents.NewSavedFilterConsumer(cache, zap.NewNop())

			// Act
			consumer.HandleMessage(ctx, "sf-Q1w2E3r4T5", []byte(message))

			// Assert
			assert.Eventually(t, func() bool {
				var f sfDomain.SavedFilter
				hit, _ := cache.Get(ctx, key, &f)
				return !hit
			}, time.Second, 10*time.Millisecond)
		})
	}
}
