package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/nats-io/nats.go"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/davicafu/medialist/internal/config"
	lf "github.com/davicafu/medialist/internal/listfilter/domain"
	sfApp "github.com/davicafu/medialist/internal/savedfilter/application"
	sfDomain "github.com/davicafu/medialist/internal/savedfilter/domain"
	sfEvents "github.com/davicafu/medialist/internal/savedfilter/infra/inbound/events"
	sfHttp "github.com/davicafu/medialist/internal/savedfilter/infra/inbound/http"
	sfMongo "github.com/davicafu/medialist/internal/savedfilter/infra/outbound/db/mongodb"
	sfSQLite "github.com/davicafu/medialist/internal/savedfilter/infra/outbound/db/sqlite"
	sceneApp "github.com/davicafu/medialist/internal/scene/application"
	sceneDomain "github.com/davicafu/medialist/internal/scene/domain"
	sceneHttp "github.com/davicafu/medialist/internal/scene/infra/inbound/http"
	sceneAnalytics "github.com/davicafu/medialist/internal/scene/infra/outbound/analytics/clickhouse"
	scenePostgres "github.com/davicafu/medialist/internal/scene/infra/outbound/db/postgres"
	sceneSQLite "github.com/davicafu/medialist/internal/scene/infra/outbound/db/sqlite"
	sharedDomain "github.com/davicafu/medialist/internal/shared/domain"
	sharedEvents "github.com/davicafu/medialist/internal/shared/events"
	infraCache "github.com/davicafu/medialist/internal/shared/infra/cache"
	sharedMongo "github.com/davicafu/medialist/internal/shared/infra/db/mongodb"
	sharedPostgres "github.com/davicafu/medialist/internal/shared/infra/db/postgres"
	sharedSQLite "github.com/davicafu/medialist/internal/shared/infra/db/sqlite"
	infraEvents "github.com/davicafu/medialist/internal/shared/infra/events"
	infraRelayer "github.com/davicafu/medialist/internal/shared/infra/relayer"
	sharedBus "github.com/davicafu/medialist/internal/shared/platform/bus"
	sharedCache "github.com/davicafu/medialist/internal/shared/platform/cache"
	"github.com/davicafu/medialist/pkg/logger"
)

const consumerGroup = "medialist-saved-filters"

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the outbox relay and the event consumers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Init(debug)
			log := logger.Logger()
			defer log.Sync()

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, log)
		},
	}
}

// closers acumula los recursos a liberar al salir, en orden inverso.
type closers []func()

func (c *closers) add(f func()) { *c = append(*c, f) }

func (c closers) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	var cleanup closers
	defer cleanup.run()

	// ---------------- DB ----------------
	var (
		sceneRepo    sceneDomain.SceneRepository
		outboxRepos  []sharedDomain.OutboxRepository
		sqliteDB     *sql.DB
		openSQLiteDB = func() (*sql.DB, error) {
			if sqliteDB != nil {
				return sqliteDB, nil
			}
			db, err := sharedSQLite.Open(ctx, cfg.SQLitePath)
			if err != nil {
				return nil, fmt.Errorf("failed to open SQLite: %w", err)
			}
			cleanup.add(func() { db.Close() })
			outboxRepos = append(outboxRepos, sharedSQLite.NewOutboxRepoSQLite(db))
			sqliteDB = db
			return db, nil
		}
	)

	switch cfg.DBBackend {
	case config.DBPostgres:
		db, err := sharedPostgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("failed to open Postgres: %w", err)
		}
		cleanup.add(func() { db.Close() })
		sceneRepo = scenePostgres.NewSceneRepoPostgres(db)
		outboxRepos = append(outboxRepos, sharedPostgres.NewOutboxRepoPostgres(db))
		log.Info("✅ Postgres conectado, migraciones aplicadas")
	default:
		db, err := openSQLiteDB()
		if err != nil {
			return err
		}
		sceneRepo = sceneSQLite.NewSceneRepoSQLite(db)
		log.Info("✅ SQLite abierto, migraciones aplicadas", zap.String("path", cfg.SQLitePath))
	}

	var filterRepo sfDomain.SavedFilterRepository
	switch cfg.SavedFilterStore {
	case config.StoreMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		cleanup.add(func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		})
		repo, err := sfMongo.NewSavedFilterRepoMongoDB(ctx, client, cfg.MongoDB)
		if err != nil {
			return err
		}
		filterRepo = repo
		outboxRepos = append(outboxRepos, sharedMongo.NewOutboxRepoMongoDB(client.Database(cfg.MongoDB)))
		log.Info("✅ MongoDB conectado para filtros guardados")
	default:
		db, err := openSQLiteDB()
		if err != nil {
			return err
		}
		filterRepo = sfSQLite.NewSavedFilterRepoSQLite(db)
	}

	// ---------------- Cache ----------------
	var cacheInstance sharedCache.Cache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("⚠️ Redis no disponible, cache en memoria", zap.Error(err))
		_ = rdb.Close()
		memCache := infraCache.NewInMemoryCache(cfg.CacheTTL, 3*cfg.CacheTTL)
		cleanup.add(memCache.Stop)
		cacheInstance = memCache
	} else {
		cleanup.add(func() { rdb.Close() })
		cacheInstance = infraCache.NewRedisCache(rdb, "medialist:", cfg.CacheTTL)
		log.Info("✅ Redis conectado, cache habilitado")
	}

	// ---------------- Analytics ----------------
	var usageRepo sceneDomain.FilterUsageRepository
	if cfg.ClickHouseAddr != "" {
		repo, err := sceneAnalytics.NewFilterUsageRepo(cfg.ClickHouseAddr, cfg.ClickHouseDB)
		if err != nil {
			log.Warn("⚠️ ClickHouse no disponible, analítica desactivada", zap.Error(err))
		} else if err := repo.InitSchema(ctx); err != nil {
			log.Warn("⚠️ No se pudo crear el esquema de ClickHouse", zap.Error(err))
			repo.Close()
		} else {
			cleanup.add(func() { repo.Close() })
			usageRepo = repo
		}
	}

	// --------------- Servicios --------------
	codec := lf.NewCodec(nil, nil, log)
	sceneService := sceneApp.NewSceneService(sceneRepo, usageRepo, cacheInstance, log)
	filterService := sfApp.NewSavedFilterService(filterRepo, cacheInstance, codec, log)

	// ---------------- Events ---------------
	filterConsumer := sfEvents.NewSavedFilterConsumer(cacheInstance, log)
	publisher, err := startEventBus(ctx, cfg, filterConsumer, &cleanup, log)
	if err != nil {
		return err
	}

	// ------------ Outbox Worker ------------
	eventRegistry := sharedEvents.Registry{}.Merge(sceneDomain.NewEventRegistry(), sfDomain.NewEventRegistry())
	for _, repo := range outboxRepos {
		worker := infraRelayer.NewOutboxWorker(repo, publisher, eventRegistry, cfg.OutboxPeriod, cfg.OutboxLimit, log)
		go worker.Start(ctx)
	}

	// ---------------- HTTP ----------------
	router := gin.New()
	router.Use(gin.Recovery())
	sceneHttp.RegisterSceneRoutes(router, sceneHttp.NewSceneHandler(sceneService, codec))
	sfHttp.RegisterSavedFilterRoutes(router, sfHttp.NewSavedFilterHandler(filterService, sceneService, codec))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		log.Info("🚀 Server running", zap.String("url", "http://localhost:"+cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Info("🛑 Apagando servidor...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// startEventBus crea el publisher del outbox y engancha el consumidor de
// filtros guardados al mismo bus.
func startEventBus(ctx context.Context, cfg *config.Config, handler infraEvents.MessageHandler, cleanup *closers, log *zap.Logger) (sharedBus.EventPublisher, error) {
	switch cfg.EventBus {
	case config.BusKafka:
		log.Info("🚀 Usando Kafka como bus de eventos", zap.Strings("brokers", cfg.KafkaBrokers))

		// Sin Topic fijo: cada mensaje lleva el suyo.
		writer := &kafka.Writer{
			Addr:                   kafka.TCP(cfg.KafkaBrokers...),
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		}
		cleanup.add(func() { writer.Close() })

		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    sfDomain.SavedFilterTopic,
			GroupID:  consumerGroup,
			MinBytes: 10e3, // 10KB
			MaxBytes: 10e6, // 10MB
		})
		cleanup.add(func() { reader.Close() })
		infraEvents.NewConsumerAdapter(reader, handler, log).Start(ctx)

		return infraEvents.NewKafkaPublisher(writer, cfg.KafkaTopic, log), nil

	case config.BusNATS:
		log.Info("🚀 Usando NATS como bus de eventos", zap.String("url", cfg.NATSURL))

		publisher, err := infraEvents.NewNATSPublisher(cfg.NATSURL, cfg.NATSPrefix, log)
		if err != nil {
			return nil, err
		}
		cleanup.add(func() { publisher.Close() })

		nc, err := nats.Connect(cfg.NATSURL, nats.MaxReconnects(-1))
		if err != nil {
			return nil, fmt.Errorf("connecting NATS consumer: %w", err)
		}
		cleanup.add(nc.Close)
		if err := infraEvents.ConsumeNATS(ctx, nc, cfg.NATSPrefix+sfDomain.SavedFilterTopic, handler, log); err != nil {
			return nil, err
		}
		return publisher, nil

	default:
		log.Info("⚡️ Usando bus de eventos en memoria (canales de Go)")

		bus := infraEvents.NewInMemoryEventBus()
		cleanup.add(bus.Close)
		infraEvents.ConsumeChannel(ctx, bus.Subscribe(64), handler, log)
		return bus, nil
	}
}
