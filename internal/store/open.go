package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"WorkshopNotifier/internal/config"
)

const connectTimeout = 10 * time.Second

// Open selects the backend once at startup: MongoDB when configured and
// reachable, the in-process store otherwise. Callers only ever see Store, so
// a degraded process behaves identically apart from durability.
func Open(lc fx.Lifecycle, cfg *config.MongoConfig, log *zap.Logger) Store {
	if cfg.URI == "" {
		log.Warn("MONGO_URI not set, using in-memory store")
		return NewMemory()
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err == nil {
		err = client.Ping(ctx, nil)
	}
	if err != nil {
		log.Warn("MongoDB unreachable, falling back to in-memory store", zap.Error(err))
		return NewMemory()
	}
	log.Info("connected to MongoDB", zap.String("database", databaseName))

	lc.Append(fx.Hook{
		OnStop: func(stopCtx context.Context) error {
			log.Info("closing MongoDB connection")
			return client.Disconnect(stopCtx)
		},
	})
	return newMongoStore(client.Database(databaseName))
}
