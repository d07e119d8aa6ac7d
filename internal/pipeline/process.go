package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"orgdir/internal"
)

// RecordSource is the record store the directory reads from: the Airtable
// client or the local mirror.
type RecordSource interface {
	ListRecords(ctx context.Context) ([]internal.RawRecord, error)
	RecordFinder
}

// RunRecorder persists one entry per fetch cycle.
type RunRecorder interface {
	InsertRun(traceID, source string, timings map[string]float64, counts map[string]int) error
}

type DirectoryService struct {
	source     RecordSource
	sourceName string
	runs       RunRecorder
	resolver   *Resolver
	normalizer *Normalizer
	logger     *zap.Logger
}

// NewDirectoryService wires one source into the resolve/normalize pipeline.
// runs may be nil.
func NewDirectoryService(source RecordSource, sourceName string, runs RunRecorder, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{
		source:     source,
		sourceName: sourceName,
		runs:       runs,
		resolver:   NewResolver(source, logger),
		normalizer: NewNormalizer(logger),
		logger:     logger,
	}
}

// FetchAll runs one full cycle: list the primary table, resolve linked
// records, then normalize every record in listing order. Only a listing
// failure is returned; everything after that degrades to fallback fields.
func (s *DirectoryService) FetchAll(ctx context.Context) ([]internal.Organization, error) {
	traceID := uuid.NewString()
	logger := s.logger.With(zap.String("traceId", traceID), zap.String("source", s.sourceName))
	start := time.Now()

	records, err := s.source.ListRecords(ctx)
	if err != nil {
		logger.Error("error fetching records", zap.Error(err))
		return nil, fmt.Errorf("fetch organizations: %w", err)
	}
	listed := time.Now()

	table := s.resolver.Resolve(ctx, records)
	resolved := time.Now()

	orgs := s.normalizer.NormalizeAll(records, table)
	done := time.Now()

	if len(orgs) > 0 {
		logger.Debug("fetched organizations", zap.Any("first", orgs[0]))
	}

	linked := 0
	for _, byID := range table {
		linked += len(byID)
	}
	timings := map[string]float64{
		"listMs":      float64(listed.Sub(start).Milliseconds()),
		"resolveMs":   float64(resolved.Sub(listed).Milliseconds()),
		"normalizeMs": float64(done.Sub(resolved).Milliseconds()),
		"totalMs":     float64(done.Sub(start).Milliseconds()),
	}
	counts := map[string]int{
		"records":       len(records),
		"linkedKeys":    len(table),
		"linkedRecords": linked,
		"organizations": len(orgs),
	}
	logger.Info("fetch cycle complete",
		zap.Int("organizations", len(orgs)),
		zap.Int("linkedRecords", linked),
		zap.Duration("elapsed", done.Sub(start)))

	if s.runs != nil {
		if err := s.runs.InsertRun(traceID, s.sourceName, timings, counts); err != nil {
			logger.Warn("fetch cycle not recorded", zap.Error(err))
		}
	}

	return orgs, nil
}
