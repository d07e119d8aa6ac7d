package pipeline

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"orgdir/internal"
)

// ReferencePrefix marks a string cell value as a linked record id.
const ReferencePrefix = "rec"

// RecordFinder fetches one record by id from the primary table.
type RecordFinder interface {
	FindRecord(ctx context.Context, id string) (internal.RawRecord, error)
}

// IsReferenceArray reports whether a cell looks like a linked-record field.
// Only the first element is inspected: ["recA", 3] counts, ["x", "recA"]
// does not.
func IsReferenceArray(value any) bool {
	switch t := value.(type) {
	case []any:
		if len(t) == 0 {
			return false
		}
		first, ok := t[0].(string)
		return ok && strings.HasPrefix(first, ReferencePrefix)
	case []string:
		return len(t) > 0 && strings.HasPrefix(t[0], ReferencePrefix)
	default:
		return false
	}
}

// GuessCollectionKey derives the lookup key used for a linked field by
// dropping underscores and whitespace and lowercasing the rest.
// "Token Information", "token_information" and "tokenInformation" all map
// to "tokeninformation". Other punctuation is kept, so "Links/Social Media"
// becomes "links/socialmedia".
func GuessCollectionKey(field string) string {
	var b strings.Builder
	b.Grow(len(field))
	for _, r := range field {
		if r == '_' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// ReferenceSet is the batch-wide union of linked ids per guessed key.
// Keys and ids keep first-seen order.
type ReferenceSet struct {
	Keys []string
	IDs  map[string][]string
}

// DistinctIDs counts ids across all keys, each id once.
func (s ReferenceSet) DistinctIDs() int {
	seen := map[string]struct{}{}
	for _, ids := range s.IDs {
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

func CollectReferences(records []internal.RawRecord) ReferenceSet {
	set := ReferenceSet{IDs: map[string][]string{}}
	seen := map[string]map[string]struct{}{}

	for _, rec := range records {
		for _, field := range sortedFieldNames(rec.Fields) {
			value := rec.Fields[field]
			if !IsReferenceArray(value) {
				continue
			}
			key := GuessCollectionKey(field)
			if _, ok := seen[key]; !ok {
				seen[key] = map[string]struct{}{}
				set.Keys = append(set.Keys, key)
			}
			for _, id := range referenceIDs(value) {
				if _, dup := seen[key][id]; dup {
					continue
				}
				seen[key][id] = struct{}{}
				set.IDs[key] = append(set.IDs[key], id)
			}
		}
	}
	return set
}

func referenceIDs(value any) []string {
	switch t := value.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Resolver builds the ReferenceTable for one fetch cycle.
type Resolver struct {
	finder RecordFinder
	logger *zap.Logger
}

func NewResolver(finder RecordFinder, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{finder: finder, logger: logger}
}

// Resolve fetches every linked id found in records. One goroutine runs per
// key and one per id; there is no concurrency cap beyond the finder's own
// throttling. Failures never abort the batch: a failed or missing id is
// left out of the table, and a key that cannot finish is left empty.
func (r *Resolver) Resolve(ctx context.Context, records []internal.RawRecord) internal.ReferenceTable {
	refs := CollectReferences(records)
	table := internal.ReferenceTable{}
	if len(refs.Keys) == 0 {
		return table
	}

	r.logger.Debug("resolving linked records",
		zap.Int("keys", len(refs.Keys)),
		zap.Int("ids", refs.DistinctIDs()))

	memo := newFetchMemo(r.finder, r.logger)
	results := make([]map[string]internal.Fields, len(refs.Keys))

	var g errgroup.Group
	for i, key := range refs.Keys {
		ids := refs.IDs[key]
		if len(ids) == 0 {
			continue
		}
		g.Go(func() error {
			resolved, err := r.resolveKey(ctx, memo, key, ids)
			if err != nil {
				r.logger.Error("linked records for key not resolved",
					zap.String("key", key),
					zap.Int("ids", len(ids)),
					zap.Error(err))
				return nil
			}
			results[i] = resolved
			return nil
		})
	}
	_ = g.Wait()

	for i, key := range refs.Keys {
		if len(results[i]) > 0 {
			table[key] = results[i]
		}
	}
	return table
}

func (r *Resolver) resolveKey(ctx context.Context, memo *fetchMemo, key string, ids []string) (resolved map[string]internal.Fields, err error) {
	defer func() {
		if p := recover(); p != nil {
			resolved = nil
			err = fmt.Errorf("panic while resolving %s: %v", key, p)
		}
	}()

	found := make([]internal.Fields, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("panic fetching %s: %v", id, p)
				}
			}()
			fields, ok := memo.fetch(ctx, id)
			if !ok {
				return nil
			}
			found[i] = fields
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := map[string]internal.Fields{}
	for i, id := range ids {
		if found[i] != nil {
			out[id] = found[i]
		}
	}
	if missing := len(ids) - len(out); missing > 0 {
		r.logger.Warn("some linked records not found in primary table",
			zap.String("key", key),
			zap.Int("missing", missing),
			zap.Int("requested", len(ids)))
	}
	return out, nil
}

type fetchResult struct {
	fields internal.Fields
	ok     bool
}

// fetchMemo guarantees one fetch per id per cycle, even when the same id
// is linked under several keys.
type fetchMemo struct {
	finder RecordFinder
	logger *zap.Logger
	flight singleflight.Group

	mu   sync.Mutex
	done map[string]fetchResult
}

func newFetchMemo(finder RecordFinder, logger *zap.Logger) *fetchMemo {
	return &fetchMemo{finder: finder, logger: logger, done: map[string]fetchResult{}}
}

func (m *fetchMemo) cached(id string) (fetchResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.done[id]
	return res, ok
}

func (m *fetchMemo) fetch(ctx context.Context, id string) (internal.Fields, bool) {
	if res, ok := m.cached(id); ok {
		return res.fields, res.ok
	}

	v, _, _ := m.flight.Do(id, func() (any, error) {
		if res, ok := m.cached(id); ok {
			return res, nil
		}
		res := fetchResult{}
		rec, err := m.finder.FindRecord(ctx, id)
		switch {
		case err == nil:
			res.fields = rec.Fields
			if res.fields == nil {
				res.fields = internal.Fields{}
			}
			res.ok = true
		case errors.Is(err, internal.ErrRecordNotFound):
			m.logger.Debug("linked record not in primary table, might be in a different table", zap.String("id", id))
		default:
			m.logger.Warn("linked record fetch failed", zap.String("id", id), zap.Error(err))
		}
		m.mu.Lock()
		m.done[id] = res
		m.mu.Unlock()
		return res, err
	})
	res := v.(fetchResult)
	return res.fields, res.ok
}

func sortedFieldNames(fields internal.Fields) []string {
	return slices.Sorted(maps.Keys(fields))
}
