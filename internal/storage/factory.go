package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrMissingDSN is returned when the selected driver has no connection string
var ErrMissingDSN = errors.New("connection string is required")

const (
	DefaultDatabase    = "ceylonmate"
	DefaultCollection  = "cultural_knowledge"
	DefaultVectorIndex = "vector_index"
	DefaultDimensions  = 768
)

// Config holds storage configuration
type Config struct {
	Driver string // "mongodb", "postgres", "sqlite"

	// Collection is the MongoDB collection, or the table name prefix for SQL drivers
	Collection string
	Dimensions int

	// SQLite
	SQLitePath string

	// Postgres
	PostgresDSN string

	// MongoDB
	MongoDBURI         string
	MongoDBDatabase    string
	MongoDBVectorIndex string
}

// New creates a Storage implementation based on config
func New(ctx context.Context, cfg Config) (Storage, error) {
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}

	switch cfg.Driver {
	case "", "mongodb":
		if cfg.MongoDBURI == "" {
			return nil, fmt.Errorf("mongodb URI: %w", ErrMissingDSN)
		}
		if cfg.MongoDBDatabase == "" {
			cfg.MongoDBDatabase = DefaultDatabase
		}
		if cfg.MongoDBVectorIndex == "" {
			cfg.MongoDBVectorIndex = DefaultVectorIndex
		}
		return NewMongoDB(ctx, MongoDBOptions{
			URI:         cfg.MongoDBURI,
			Database:    cfg.MongoDBDatabase,
			Collection:  cfg.Collection,
			VectorIndex: cfg.MongoDBVectorIndex,
		})

	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres DSN: %w", ErrMissingDSN)
		}
		return NewPostgres(ctx, cfg.PostgresDSN, cfg.Collection, cfg.Dimensions)

	case "sqlite":
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite path: %w", ErrMissingDSN)
		}
		return NewSQLite(cfg.SQLitePath, cfg.Collection, cfg.Dimensions)

	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}
