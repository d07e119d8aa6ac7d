package airtable

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"orgdir/internal"
	"orgdir/internal/config"
	"orgdir/internal/storage"
)

// RecordStore is the read contract shared by the live client and the mirror.
type RecordStore interface {
	ListRecords(ctx context.Context) ([]internal.RawRecord, error)
	FindRecord(ctx context.Context, id string) (internal.RawRecord, error)
}

// OpenSource picks the record store named by SOURCE.
func OpenSource(cfg config.Config, db *storage.DB, logger *zap.Logger) (RecordStore, error) {
	switch cfg.Source {
	case config.SourceAirtable:
		client, err := NewClient(cfg, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.SourceMirror:
		if db == nil {
			return nil, fmt.Errorf("source %s needs a database", cfg.Source)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported source: %s", cfg.Source)
	}
}
