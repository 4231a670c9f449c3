package mongoStore

import (
	"context"

	"github.com/akolanti/DocRagAPI/internal/config"
	"github.com/akolanti/DocRagAPI/pkg/logger_i"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	filesCollection     = "files"
	chunksCollection    = "chunks"
	customersCollection = "customers"
	ticketsCollection   = "tickets"
	runLogsCollection   = "agent_runs"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *logger_i.Logger
}

// GetMongoStore connects and pings the document database. Returns nil when
// the database is offline so the caller can fall back to the in-memory
// store, mirroring how external services degrade elsewhere in the service.
func GetMongoStore(ctx context.Context, uri string, dbName string) *Store {
	logger := logger_i.NewLogger("MongoStore")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		logger.Error("could not instantiate mongo client", "error", err)
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, config.MongoConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		logger.Error("Mongo is offline", "error", err)
		return nil
	}

	store := &Store{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}

	//ensure dedup lookups stay cheap
	store.ensureIndexes(ctx)

	go store.closeOnDone(ctx)
	logger.Info("Mongo store initialized", "db", dbName)
	return store
}

func (s *Store) ensureIndexes(ctx context.Context) {
	_, err := s.db.Collection(filesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "file_hash", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		s.logger.Warn("could not create file_hash index", "error", err)
	}
	_, err = s.db.Collection(chunksCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "file_id", Value: 1}},
	})
	if err != nil {
		s.logger.Warn("could not create file_id index", "error", err)
	}
}

func (s *Store) closeOnDone(ctx context.Context) {
	<-ctx.Done()
	s.logger.Info("Closing Mongo store")
	if err := s.client.Disconnect(context.Background()); err != nil {
		s.logger.Error("could not close Mongo client", "error", err)
	}
}
