package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shortlink/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// Redis key layout. The mapping record and its click counter are separate
// keys so the counter is only ever touched by INCRBY, never by a
// read-modify-write of the record.
const (
	mappingKeyPrefix = "link:"   // link:<code> -> LinkMapping JSON
	counterKeyPrefix = "hits:"   // hits:<code> -> integer counter
	eventsKeyPrefix  = "events:" // events:<code> -> list of ClickEvent JSON
	codesKey         = "codes"   // set of all allocated short codes
	ownerKeyPrefix   = "owner:"  // owner:<id> -> set of that owner's codes
)

// ErrUnavailable wraps any transport-level store failure. Callers may retry
// with backoff; lookup outcomes (absent key) are not reported through it.
var ErrUnavailable = errors.New("mapping store unavailable")

func wrapErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

// Store is the durable home of link mappings, click counters, and the click
// event log. It exposes the two atomic primitives the resolution engine is
// built on: insert-if-absent (SETNX) and counter increment (INCRBY). Neither
// needs external locking.
type Store struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Ping verifies store connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return wrapErr("ping", err)
	}
	return nil
}

func mappingKey(code string) string { return mappingKeyPrefix + code }
func counterKey(code string) string { return counterKeyPrefix + code }
func eventsKey(code string) string  { return eventsKeyPrefix + code }
func ownerKey(owner string) string  { return ownerKeyPrefix + owner }

// InsertIfAbsent atomically reserves the mapping's short code. It returns
// false (and no error) when the code is already bound to another mapping.
// There is deliberately no separate exists-check: SETNX is the single
// indivisible operation that decides the race between concurrent creators.
func (s *Store) InsertIfAbsent(ctx context.Context, m model.LinkMapping) (bool, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return false, fmt.Errorf("marshal mapping: %w", err)
	}

	ok, err := s.rdb.SetNX(ctx, mappingKey(m.ShortCode), data, 0).Result()
	if err != nil {
		return false, wrapErr("insert", err)
	}
	if !ok {
		return false, nil
	}

	// Index upkeep is best-effort: the SETNX above is the source of truth
	// for uniqueness, the indexes only feed listing and analytics scans.
	if err := s.rdb.SAdd(ctx, codesKey, m.ShortCode).Err(); err != nil {
		log.Error().Err(err).Str("short_code", m.ShortCode).Msg("Failed to index short code")
	}
	if m.Owner != "" {
		if err := s.rdb.SAdd(ctx, ownerKey(m.Owner), m.ShortCode).Err(); err != nil {
			log.Error().Err(err).Str("owner", m.Owner).Msg("Failed to index owner code")
		}
	}
	return true, nil
}

// Get returns the mapping bound to code, or (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, code string) (*model.LinkMapping, error) {
	data, err := s.rdb.Get(ctx, mappingKey(code)).Bytes()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, wrapErr("get", err)
	}

	var m model.LinkMapping
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal mapping %q: %w", code, err)
	}
	return &m, nil
}

// IncrementClicks atomically adds delta to the click counter for code and
// returns the new value. N concurrent callers always advance the counter by
// exactly N; there is no fetch-then-save anywhere on this path.
func (s *Store) IncrementClicks(ctx context.Context, code string, delta int64) (int64, error) {
	n, err := s.rdb.IncrBy(ctx, counterKey(code), delta).Result()
	if err != nil {
		return 0, wrapErr("increment", err)
	}
	return n, nil
}

// Clicks returns the current click counter for code (0 if never resolved).
func (s *Store) Clicks(ctx context.Context, code string) (int64, error) {
	n, err := s.rdb.Get(ctx, counterKey(code)).Int64()
	if err == redis.Nil {
		return 0, nil
	} else if err != nil {
		return 0, wrapErr("clicks", err)
	}
	return n, nil
}

// SetStatus durably writes a new lifecycle status. The write is idempotent:
// concurrent callers converging on the same terminal value is acceptable and
// last-write-wins.
func (s *Store) SetStatus(ctx context.Context, code string, status model.Status) error {
	m, err := s.Get(ctx, code)
	if err != nil {
		return err
	}
	if m == nil {
		return nil // already gone, nothing to transition
	}
	m.Status = status
	m.UpdatedAt = time.Now()
	return s.Update(ctx, *m)
}

// Update overwrites an existing mapping record.
func (s *Store) Update(ctx context.Context, m model.LinkMapping) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}
	if err := s.rdb.Set(ctx, mappingKey(m.ShortCode), data, 0).Err(); err != nil {
		return wrapErr("update", err)
	}
	return nil
}

// Delete removes the mapping record, its counter, and its index entries.
// Historic click events are intentionally retained: events hold only a weak
// reference and analytics must tolerate dangling ones.
func (s *Store) Delete(ctx context.Context, code string) error {
	m, err := s.Get(ctx, code)
	if err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, mappingKey(code), counterKey(code)).Err(); err != nil {
		return wrapErr("delete", err)
	}
	if err := s.rdb.SRem(ctx, codesKey, code).Err(); err != nil {
		log.Error().Err(err).Str("short_code", code).Msg("Failed to unindex short code")
	}
	if m != nil && m.Owner != "" {
		if err := s.rdb.SRem(ctx, ownerKey(m.Owner), code).Err(); err != nil {
			log.Error().Err(err).Str("owner", m.Owner).Msg("Failed to unindex owner code")
		}
	}
	return nil
}

// Codes returns every allocated short code.
func (s *Store) Codes(ctx context.Context) ([]string, error) {
	codes, err := s.rdb.SMembers(ctx, codesKey).Result()
	if err != nil {
		return nil, wrapErr("codes", err)
	}
	return codes, nil
}

// OwnerCodes returns the short codes created by one owner.
func (s *Store) OwnerCodes(ctx context.Context, owner string) ([]string, error) {
	codes, err := s.rdb.SMembers(ctx, ownerKey(owner)).Result()
	if err != nil {
		return nil, wrapErr("owner codes", err)
	}
	return codes, nil
}

// AppendEvent appends one click event to the per-code event log.
func (s *Store) AppendEvent(ctx context.Context, ev model.ClickEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal click event: %w", err)
	}
	if err := s.rdb.RPush(ctx, eventsKey(ev.ShortCode), data).Err(); err != nil {
		return wrapErr("append event", err)
	}
	return nil
}

// Events returns the full event log for one short code, oldest first.
// Entries that fail to decode are skipped: the log may contain events from
// deleted mappings or older record shapes.
func (s *Store) Events(ctx context.Context, code string) ([]model.ClickEvent, error) {
	raw, err := s.rdb.LRange(ctx, eventsKey(code), 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, wrapErr("events", err)
	}

	events := make([]model.ClickEvent, 0, len(raw))
	for _, item := range raw {
		var ev model.ClickEvent
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			log.Warn().Err(err).Str("short_code", code).Msg("Skipping undecodable click event")
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// EventCodes returns every short code that has at least one recorded event,
// including codes whose mapping has since been deleted.
func (s *Store) EventCodes(ctx context.Context) ([]string, error) {
	keys, err := s.rdb.Keys(ctx, eventsKeyPrefix+"*").Result()
	if err != nil {
		return nil, wrapErr("event codes", err)
	}
	codes := make([]string, 0, len(keys))
	for _, k := range keys {
		codes = append(codes, k[len(eventsKeyPrefix):])
	}
	return codes, nil
}
