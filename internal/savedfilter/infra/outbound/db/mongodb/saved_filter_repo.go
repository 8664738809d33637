package mongodb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	sfDomain "github.com/davicafu/medialist/internal/savedfilter/domain"
	sharedDomain "github.com/davicafu/medialist/internal/shared/domain"
	sharedMongo "github.com/davicafu/medialist/internal/shared/infra/db/mongodb"
)

const savedFiltersCollection = "saved_filters"

// SavedFilterRepoMongoDB implementa SavedFilterRepository para MongoDB.
type SavedFilterRepoMongoDB struct {
	client      *mongo.Client
	filtersColl *mongo.Collection
	outboxColl  *mongo.Collection
}

// NewSavedFilterRepoMongoDB comprueba la conexión y crea el índice único (mode, name).
func NewSavedFilterRepoMongoDB(ctx context.Context, client *mongo.Client, dbName string) (*SavedFilterRepoMongoDB, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}

	db := client.Database(dbName)
	repo := &SavedFilterRepoMongoDB{
		client:      client,
		filtersColl: db.Collection(savedFiltersCollection),
		outboxColl:  db.Collection(sharedMongo.OutboxCollection),
	}

	_, err := repo.filtersColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "mode", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create saved filter index: %w", err)
	}
	return repo, nil
}

// Verificación estática
var _ sfDomain.SavedFilterRepository = (*SavedFilterRepoMongoDB)(nil)

// --- Structs de BSON para el mapeo ---

type mongoSavedFilter struct {
	ID        string              `bson:"_id"`
	Mode      string              `bson:"mode"`
	Name      string              `bson:"name"`
	Params    map[string][]string `bson:"params"`
	Query     string              `bson:"query"`
	CreatedAt time.Time           `bson:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt"`
}

func toMongoSavedFilter(f *sfDomain.SavedFilter) *mongoSavedFilter {
	return &mongoSavedFilter{
		ID:        f.ID,
		Mode:      string(f.Mode),
		Name:      f.Name,
		Params:    f.Params,
		Query:     f.Query,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func fromMongoSavedFilter(m *mongoSavedFilter) *sfDomain.SavedFilter {
	params := url.Values{}
	for k, v := range m.Params {
		params[k] = v
	}
	return &sfDomain.SavedFilter{
		ID:        m.ID,
		Mode:      sfDomain.FilterMode(m.Mode),
		Name:      m.Name,
		Params:    params,
		Query:     m.Query,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// --- CRUD Transaccional ---

func (r *SavedFilterRepoMongoDB) Save(ctx context.Context, f *sfDomain.SavedFilter, evt sharedDomain.OutboxEvent) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		// 1. Upsert del filtro
		doc := toMongoSavedFilter(f)
		opts := options.Replace().SetUpsert(true)
		if _, err := r.filtersColl.ReplaceOne(sessCtx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
			return nil, err
		}
		// 2. Insertar el evento de outbox
		return nil, sharedMongo.InsertOutbox(sessCtx, r.outboxColl, evt)
	})
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s/%s", sfDomain.ErrSavedFilterAlreadyExists, f.Mode, f.Name)
	}
	return err
}

func (r *SavedFilterRepoMongoDB) DeleteByID(ctx context.Context, id string, evt sharedDomain.OutboxEvent) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		res, err := r.filtersColl.DeleteOne(sessCtx, bson.M{"_id": id})
		if err != nil {
			return nil, err
		}
		if res.DeletedCount == 0 {
			return nil, sfDomain.ErrSavedFilterNotFound
		}
		return nil, sharedMongo.InsertOutbox(sessCtx, r.outboxColl, evt)
	})

	return err
}

// --- Lectura ---

func (r *SavedFilterRepoMongoDB) GetByID(ctx context.Context, id string) (*sfDomain.SavedFilter, error) {
	var m mongoSavedFilter
	err := r.filtersColl.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sfDomain.ErrSavedFilterNotFound
		}
		return nil, err
	}
	return fromMongoSavedFilter(&m), nil
}

func (r *SavedFilterRepoMongoDB) ListByMode(ctx context.Context, mode sfDomain.FilterMode) ([]*sfDomain.SavedFilter, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.filtersColl.Find(ctx, bson.M{"mode": string(mode)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	filters := []*sfDomain.SavedFilter{}
	for cursor.Next(ctx) {
		var m mongoSavedFilter
		if err := cursor.Decode(&m); err != nil {
			return nil, err
		}
		filters = append(filters, fromMongoSavedFilter(&m))
	}
	return filters, cursor.Err()
}
