// Package cache memoizes ensemble aggregations.
//
// Recomputing an ensemble is the dominant cost of a forecast, and callers
// re-run unchanged configurations far more often than changed ones. The
// cache keys results by an exact fingerprint of the aggregation input and
// evicts the least recently used entry when full.
package cache

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/ensemble"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/models"
	"golang.org/x/sync/singleflight"
)

// DefaultCapacity is the number of results kept when no size is configured.
const DefaultCapacity = 10

// Aggregator computes ensemble results. *ensemble.Aggregator satisfies it.
type Aggregator interface {
	Aggregate(req ensemble.Request) (*models.EnsembleResult, error)
}

type entry struct {
	key    []byte
	result *models.EnsembleResult
}

// Stats are cumulative cache counters.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// ResultCache wraps an Aggregator with a bounded LRU memo. It is safe for
// concurrent use; concurrent misses on the same fingerprint share a single
// computation.
type ResultCache struct {
	agg    Aggregator
	lru    *lru.Cache[uint64, *entry]
	group  singleflight.Group
	logger *slog.Logger

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// Option configures a ResultCache.
type Option func(*ResultCache)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *ResultCache) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a cache holding at most capacity results.
func New(agg Aggregator, capacity int, opts ...Option) (*ResultCache, error) {
	if agg == nil {
		return nil, fmt.Errorf("aggregator is required")
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}

	c := &ResultCache{
		agg:    agg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}

	l, err := lru.NewWithEvict(capacity, func(_ uint64, _ *entry) {
		c.evictions.Add(1)
	})
	if err != nil {
		return nil, fmt.Errorf("creating lru: %w", err)
	}
	c.lru = l
	return c, nil
}

// Aggregate returns the memoized result for req, computing it on a miss.
// Results cut short by the time budget are returned but not stored, so a
// later call can complete the ensemble. The returned result is a copy the
// caller owns.
func (c *ResultCache) Aggregate(req ensemble.Request) (*models.EnsembleResult, error) {
	fp := NewFingerprint(req)
	if res, ok := c.lookup(fp); ok {
		c.hits.Add(1)
		c.logger.Debug("result cache hit", "fingerprint", fp.String())
		return res.Clone(), nil
	}

	computed := false
	v, err, _ := c.group.Do(string(fp.Key), func() (any, error) {
		computed = true
		return c.load(fp, req)
	})
	if err != nil {
		return nil, err
	}
	if !computed {
		c.logger.Debug("result cache joined in-flight computation", "fingerprint", fp.String())
	}
	return v.(*models.EnsembleResult).Clone(), nil
}

// load runs inside the singleflight group. It rechecks the LRU, since another
// flight may have stored the result after the caller's first lookup, and
// computes on a real miss.
func (c *ResultCache) load(fp Fingerprint, req ensemble.Request) (*models.EnsembleResult, error) {
	if res, ok := c.lookup(fp); ok {
		c.hits.Add(1)
		c.logger.Debug("result cache hit", "fingerprint", fp.String(), "rechecked", true)
		return res, nil
	}
	c.misses.Add(1)
	c.logger.Debug("result cache miss", "fingerprint", fp.String())
	res, err := c.agg.Aggregate(req)
	if err != nil {
		return nil, err
	}
	if !res.Truncated() {
		c.lru.Add(fp.Sum, &entry{key: fp.Key, result: res})
	}
	return res, nil
}

func (c *ResultCache) lookup(fp Fingerprint) (*models.EnsembleResult, bool) {
	e, ok := c.lru.Get(fp.Sum)
	if !ok || !bytes.Equal(e.key, fp.Key) {
		return nil, false
	}
	return e.result, true
}

// Contains reports whether a complete result for req is cached, without
// touching recency.
func (c *ResultCache) Contains(req ensemble.Request) bool {
	fp := NewFingerprint(req)
	e, ok := c.lru.Peek(fp.Sum)
	return ok && bytes.Equal(e.key, fp.Key)
}

// Len is the number of cached results.
func (c *ResultCache) Len() int {
	return c.lru.Len()
}

// Purge drops every cached result.
func (c *ResultCache) Purge() {
	c.lru.Purge()
}

// Stats returns the cumulative counters.
func (c *ResultCache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
