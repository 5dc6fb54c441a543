package config

import "os"

// MongoConfig carries the durable-store connection string. An empty URI is
// not an error: the store layer degrades to the in-memory backend.
type MongoConfig struct {
	URI string
}

func NewMongoConfig() *MongoConfig {
	return &MongoConfig{URI: os.Getenv("MONGO_URI")}
}
