package airtable

import (
	"context"
	"time"

	"go.uber.org/zap"

	"orgdir/internal"
	"orgdir/internal/storage"
)

const lastSyncKey = "mirror.last_sync"

type recordLister interface {
	ListRecords(ctx context.Context) ([]internal.RawRecord, error)
}

// MirrorService copies the primary table into the local SQLite mirror so the
// directory can be served without reaching Airtable.
type MirrorService struct {
	db     *storage.DB
	source recordLister
	logger *zap.Logger
}

func NewMirrorService(db *storage.DB, source recordLister, logger *zap.Logger) *MirrorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MirrorService{db: db, source: source, logger: logger}
}

func (s *MirrorService) Sync(ctx context.Context) (int, error) {
	start := time.Now()
	records, err := s.source.ListRecords(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.db.ReplaceRecords(records); err != nil {
		return 0, err
	}
	if err := s.db.SetMetadata(lastSyncKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
		s.logger.Warn("mirror sync metadata not saved", zap.Error(err))
	}
	s.logger.Info("mirror sync complete",
		zap.Int("records", len(records)),
		zap.Duration("elapsed", time.Since(start)))
	return len(records), nil
}

// LastSync returns the time of the last successful sync, if any.
func (s *MirrorService) LastSync() (*time.Time, error) {
	value, err := s.db.GetMetadata(lastSyncKey)
	if err != nil || value == nil {
		return nil, err
	}
	parsed, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil, nil
	}
	return &parsed, nil
}
