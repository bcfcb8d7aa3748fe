package clicks

import (
	"context"
	"sync"
	"time"

	"shortlink/model"
	"shortlink/store"

	"github.com/rs/zerolog/log"
)

// Recorder persists click events off the redirect path. Visits enter through
// a bounded queue feeding a pool of workers; a full queue drops the visit
// rather than block the resolver. Capture failures are logged and discarded,
// never retried and never surfaced to a caller.
type Recorder struct {
	store          *store.Store
	locator        Locator
	queue          chan model.Visit
	persistTimeout time.Duration

	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewRecorder starts workers consuming the capture queue. Close must be
// called on shutdown to drain in-flight visits.
func NewRecorder(s *store.Store, locator Locator, queueSize, workers int, persistTimeout time.Duration) *Recorder {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if workers <= 0 {
		workers = 1
	}
	if persistTimeout <= 0 {
		persistTimeout = 3 * time.Second
	}
	if locator == nil {
		locator = StubLocator{}
	}

	r := &Recorder{
		store:          s,
		locator:        locator,
		queue:          make(chan model.Visit, queueSize),
		persistTimeout: persistTimeout,
	}

	r.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go r.worker()
	}

	log.Info().
		Int("queue_size", queueSize).
		Int("workers", workers).
		Dur("persist_timeout", persistTimeout).
		Msg("Click recorder started")

	return r
}

// Enqueue hands a visit to the capture workers without waiting. It reports
// whether the visit was accepted; a saturated queue drops it, which only
// costs an analytics event, never the redirect or the click counter.
func (r *Recorder) Enqueue(v model.Visit) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// A visit arriving after shutdown is dropped like any other overflow;
	// enqueueing must never panic or block the redirect path.
	if r.closed {
		return false
	}

	select {
	case r.queue <- v:
		return true
	default:
		log.Warn().
			Str("short_code", v.ShortCode).
			Msg("Capture queue full, dropping click event")
		return false
	}
}

// Close stops accepting visits and waits for the workers to drain the queue.
func (r *Recorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	r.wg.Wait()
	log.Info().Msg("Click recorder stopped")
}

func (r *Recorder) worker() {
	defer r.wg.Done()
	for v := range r.queue {
		r.capture(v)
	}
}

// capture derives the classification fields and persists one event. Each
// task gets a fixed deadline after which it is abandoned and logged.
func (r *Recorder) capture(v model.Visit) {
	ctx, cancel := context.WithTimeout(context.Background(), r.persistTimeout)
	defer cancel()

	country, city := r.locator.Locate(v.IP)

	ev := model.ClickEvent{
		MappingID: v.MappingID,
		ShortCode: v.ShortCode,
		IP:        v.IP,
		UserAgent: v.UserAgent,
		Referer:   v.Referer,
		Country:   country,
		City:      city,
		Device:    DeviceClass(v.UserAgent),
		Browser:   BrowserClass(v.UserAgent),
		ClickedAt: v.At,
	}

	if err := r.store.AppendEvent(ctx, ev); err != nil {
		log.Error().Err(err).
			Str("short_code", v.ShortCode).
			Msg("Failed to persist click event, dropping")
	}
}
