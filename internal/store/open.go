package store

import (
	"context"
	"fmt"

	"github.com/i474232898/apod-api/internal/apod"
	"github.com/i474232898/apod-api/internal/config"
)

// Open builds the record store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (apod.Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	case config.DriverSQLite:
		return OpenSQL(ctx, DialectSQLite, cfg.SQLDSN)
	case config.DriverMySQL:
		return OpenSQL(ctx, DialectMySQL, cfg.SQLDSN)
	case config.DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
