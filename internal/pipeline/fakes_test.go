package pipeline

import (
	"context"
	"fmt"
	"sync"

	"orgdir/internal"
)

type fakeStore struct {
	records []internal.RawRecord
	byID    map[string]internal.Fields
	fail    map[string]error
	panicOn map[string]bool
	listErr error

	mu    sync.Mutex
	calls map[string]int
}

func newFakeStore(records ...internal.RawRecord) *fakeStore {
	return &fakeStore{
		records: records,
		byID:    map[string]internal.Fields{},
		fail:    map[string]error{},
		panicOn: map[string]bool{},
		calls:   map[string]int{},
	}
}

func (s *fakeStore) ListRecords(ctx context.Context) ([]internal.RawRecord, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.records, nil
}

func (s *fakeStore) FindRecord(ctx context.Context, id string) (internal.RawRecord, error) {
	s.mu.Lock()
	s.calls[id]++
	s.mu.Unlock()

	if s.panicOn[id] {
		panic("boom " + id)
	}
	if err := s.fail[id]; err != nil {
		return internal.RawRecord{}, err
	}
	fields, ok := s.byID[id]
	if !ok {
		return internal.RawRecord{}, fmt.Errorf("%w: %s", internal.ErrRecordNotFound, id)
	}
	return internal.RawRecord{ID: id, Fields: fields}, nil
}

func (s *fakeStore) callCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[id]
}

type recordedRun struct {
	traceID string
	source  string
	counts  map[string]int
}

type fakeRuns struct {
	runs []recordedRun
	err  error
}

func (r *fakeRuns) InsertRun(traceID, source string, timings map[string]float64, counts map[string]int) error {
	if r.err != nil {
		return r.err
	}
	r.runs = append(r.runs, recordedRun{traceID: traceID, source: source, counts: counts})
	return nil
}
