package clicks

import (
	"context"
	"testing"
	"time"

	"shortlink/model"
	"shortlink/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	t.Cleanup(func() {
		client.Close()
		s.Close()
	})

	return store.New(client)
}

func TestRecorder_CapturesEvent(t *testing.T) {
	st := setupTestStore(t)
	rec := NewRecorder(st, StubLocator{}, 16, 2, time.Second)

	visit := model.Visit{
		MappingID: "id-abc",
		ShortCode: "abc123",
		IP:        "127.0.0.1:40000",
		UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 Version/16.0 Mobile Safari/605.1.15",
		Referer:   "https://news.example.org",
		At:        time.Now(),
	}

	if !rec.Enqueue(visit) {
		t.Fatal("Enqueue() rejected visit with room in the queue")
	}

	// Close drains the queue before returning
	rec.Close()

	events, err := st.Events(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 persisted event, got %d", len(events))
	}

	ev := events[0]
	if ev.MappingID != "id-abc" {
		t.Errorf("MappingID = %q, want id-abc", ev.MappingID)
	}
	if ev.Device != "Mobile" {
		t.Errorf("Device = %q, want Mobile", ev.Device)
	}
	if ev.Browser != "Safari" {
		t.Errorf("Browser = %q, want Safari", ev.Browser)
	}
	if ev.Country != "Local" || ev.City != "Localhost" {
		t.Errorf("Geo = (%q, %q), want loopback sentinel", ev.Country, ev.City)
	}
	if ev.Referer != visit.Referer {
		t.Errorf("Referer = %q, want %q", ev.Referer, visit.Referer)
	}
}

func TestRecorder_DrainsBacklogOnClose(t *testing.T) {
	st := setupTestStore(t)
	rec := NewRecorder(st, StubLocator{}, 64, 2, time.Second)

	const n = 30
	for i := 0; i < n; i++ {
		if !rec.Enqueue(model.Visit{ShortCode: "bulk", At: time.Now()}) {
			t.Fatalf("Enqueue() %d rejected", i)
		}
	}
	rec.Close()

	events, err := st.Events(context.Background(), "bulk")
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if len(events) != n {
		t.Errorf("Expected %d persisted events after drain, got %d", n, len(events))
	}
}

func TestRecorder_FullQueueDrops(t *testing.T) {
	// A recorder with no running workers: the queue can only fill up.
	rec := &Recorder{queue: make(chan model.Visit, 1)}

	if !rec.Enqueue(model.Visit{ShortCode: "first"}) {
		t.Fatal("Expected first enqueue to be accepted")
	}
	if rec.Enqueue(model.Visit{ShortCode: "second"}) {
		t.Error("Expected enqueue into a full queue to drop, not block")
	}
}

func TestRecorder_EnqueueAfterCloseDrops(t *testing.T) {
	st := setupTestStore(t)
	rec := NewRecorder(st, StubLocator{}, 4, 1, time.Second)
	rec.Close()

	if rec.Enqueue(model.Visit{ShortCode: "late", At: time.Now()}) {
		t.Error("Expected enqueue after close to drop")
	}

	// Close must stay idempotent alongside the guard
	rec.Close()
}

func TestRecorder_PersistFailureIsSwallowed(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	st := store.New(client)
	rec := NewRecorder(st, StubLocator{}, 4, 1, 200*time.Millisecond)

	// Kill the backend so persistence fails; capture must not panic or leak
	s.Close()

	rec.Enqueue(model.Visit{ShortCode: "doomed", At: time.Now()})
	rec.Close()
}
