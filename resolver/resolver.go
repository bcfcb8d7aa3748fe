package resolver

import (
	"context"
	"errors"
	"time"

	"shortlink/cache"
	"shortlink/model"
	"shortlink/store"

	"github.com/rs/zerolog/log"
)

// Terminal lookup outcomes. None of them is retryable; the HTTP layer folds
// all three into a uniform "not available" response so callers cannot probe
// internal lifecycle state.
var (
	ErrNotFound = errors.New("short code not found")
	ErrExpired  = errors.New("link has expired")
	ErrInactive = errors.New("link is inactive")
)

// ClickSink accepts a visit for asynchronous capture. Enqueue must never
// block; the resolver does not look at the return value beyond logging.
type ClickSink interface {
	Enqueue(v model.Visit) bool
}

// Resolver looks up short codes and applies the lifecycle state machine at
// resolution time. The hot path is one store read (optionally served from
// the in-process cache) plus one atomic counter increment; click persistence,
// geo lookup, and analytics never run on it.
type Resolver struct {
	store *store.Store
	cache *cache.Cache // may be nil
	sink  ClickSink    // may be nil
}

func New(s *store.Store, c *cache.Cache, sink ClickSink) *Resolver {
	return &Resolver{store: s, cache: c, sink: sink}
}

// Resolve returns the target URL bound to code, or a terminal error.
//
// Lifecycle, evaluated lazily per call:
//   - absent code            -> ErrNotFound
//   - expiry passed          -> durable idempotent transition to inactive,
//     ErrExpired; the counter is NOT incremented
//   - explicitly inactive    -> ErrInactive
//   - active                 -> counter incremented atomically, target returned
//
// Every resolution that passes the lifecycle checks also enqueues a capture
// task for the visit, fire-and-forget, regardless of the increment outcome.
func (r *Resolver) Resolve(ctx context.Context, code string, visit model.Visit) (string, error) {
	m, err := r.lookup(ctx, code)
	if err != nil {
		return "", err
	}
	if m == nil {
		return "", ErrNotFound
	}

	now := time.Now()
	if m.Expired(now) {
		// Lazy deactivation. Concurrent resolutions of the same expiring
		// mapping may all take this branch; the write converges on the same
		// terminal value, so last-write-wins is fine and no lock is needed.
		r.cache.Delete(code)
		if m.Status != model.StatusInactive {
			if err := r.store.SetStatus(ctx, code, model.StatusInactive); err != nil {
				log.Error().Err(err).Str("short_code", code).Msg("Failed to deactivate expired link")
			}
		}
		return "", ErrExpired
	}

	if m.Status != model.StatusActive {
		return "", ErrInactive
	}

	// The click-capture enqueue is independent of the counter outcome and is
	// never awaited: resolution latency must not depend on event persistence.
	visit.MappingID = m.ID
	visit.ShortCode = code
	if r.sink != nil {
		r.sink.Enqueue(visit)
	}

	// A single atomic increment, not fetch-then-save: N concurrent
	// resolutions advance the stored count by exactly N.
	if _, err := r.store.IncrementClicks(ctx, code, 1); err != nil {
		return "", err
	}

	return m.TargetURL, nil
}

// lookup serves the mapping from the cache when possible, falling back to
// the store and repopulating on miss.
func (r *Resolver) lookup(ctx context.Context, code string) (*model.LinkMapping, error) {
	if m, found := r.cache.Get(code); found {
		log.Debug().Str("short_code", code).Msg("Cache hit")
		return m, nil
	}

	m, err := r.store.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}

	r.cache.Set(code, *m)
	return m, nil
}
