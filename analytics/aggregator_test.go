package analytics

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

func appendEvent(t *testing.T, st *store.Store, code, country, device, browser string, at time.Time) {
	t.Helper()
	ev := model.ClickEvent{
		MappingID: "id-" + code,
		ShortCode: code,
		Country:   country,
		Device:    device,
		Browser:   browser,
		ClickedAt: at,
	}
	if err := st.AppendEvent(context.Background(), ev); err != nil {
		t.Fatalf("AppendEvent() error = %v", err)
	}
}

func TestAggregate_EmptyWindowHasAllDates(t *testing.T) {
	st := setupTestStore(t)
	agg := New(st)

	const days = 7
	report, err := agg.Aggregate(context.Background(), Global, days)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if len(report.ClicksByDate) != days {
		t.Errorf("Expected %d dates in empty window, got %d", days, len(report.ClicksByDate))
	}
	for date, count := range report.ClicksByDate {
		if count != 0 {
			t.Errorf("Expected 0 clicks on %s, got %d", date, count)
		}
	}
	if report.TotalClicks != 0 {
		t.Errorf("TotalClicks = %d, want 0", report.TotalClicks)
	}

	// Today must be among the zero-filled dates
	today := time.Now().Format("2006-01-02")
	if _, ok := report.ClicksByDate[today]; !ok {
		t.Errorf("Expected today (%s) in the window", today)
	}
}

func TestAggregate_GroupsRealEvents(t *testing.T) {
	st := setupTestStore(t)
	agg := New(st)
	now := time.Now()

	appendEvent(t, st, "a", "Unknown", "Mobile", "Chrome", now)
	appendEvent(t, st, "a", "Unknown", "Mobile", "Chrome", now.Add(-time.Hour))
	appendEvent(t, st, "b", "Local", "Desktop", "Firefox", now.AddDate(0, 0, -1))
	// Outside the window, must not count
	appendEvent(t, st, "b", "Local", "Desktop", "Firefox", now.AddDate(0, 0, -10))

	report, err := agg.Aggregate(context.Background(), Global, 7)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if report.TotalClicks != 3 {
		t.Errorf("TotalClicks = %d, want 3", report.TotalClicks)
	}
	if got := report.ClicksByDevice["Mobile"]; got != 2 {
		t.Errorf("ClicksByDevice[Mobile] = %d, want 2", got)
	}
	if got := report.ClicksByDevice["Desktop"]; got != 1 {
		t.Errorf("ClicksByDevice[Desktop] = %d, want 1", got)
	}
	if got := report.ClicksByCountry["Local"]; got != 1 {
		t.Errorf("ClicksByCountry[Local] = %d, want 1", got)
	}
	if got := report.ClicksByBrowser["Chrome"]; got != 2 {
		t.Errorf("ClicksByBrowser[Chrome] = %d, want 2", got)
	}

	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")
	if got := report.ClicksByDate[yesterday]; got != 1 {
		t.Errorf("ClicksByDate[%s] = %d, want 1", yesterday, got)
	}
}

func TestAggregate_NeverDistributesEvenly(t *testing.T) {
	st := setupTestStore(t)
	agg := New(st)
	now := time.Now()

	// All clicks land on a single day; no other day may receive any share
	for i := 0; i < 10; i++ {
		appendEvent(t, st, "spike", "Unknown", "Desktop", "Chrome", now)
	}

	report, err := agg.Aggregate(context.Background(), Global, 5)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	today := now.Format("2006-01-02")
	for date, count := range report.ClicksByDate {
		if date == today {
			if count != 10 {
				t.Errorf("ClicksByDate[today] = %d, want 10", count)
			}
		} else if count != 0 {
			t.Errorf("ClicksByDate[%s] = %d, want 0 (counts must come from real events)", date, count)
		}
	}
}

func TestAggregate_WindowEdgeStaysCalendarAligned(t *testing.T) {
	st := setupTestStore(t)
	agg := New(st)
	now := time.Now()

	const days = 7

	// The window covers the last 7 calendar dates. An event timestamped just
	// before midnight of the oldest date is outside it, even though it is
	// less than 7*24h old.
	windowStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(days - 1))
	appendEvent(t, st, "edge", "Unknown", "Desktop", "Chrome", windowStart.Add(-time.Second))
	appendEvent(t, st, "edge", "Unknown", "Desktop", "Chrome", windowStart)

	report, err := agg.Aggregate(context.Background(), Global, days)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if len(report.ClicksByDate) != days {
		t.Errorf("Expected exactly %d date keys, got %d: %v", days, len(report.ClicksByDate), report.ClicksByDate)
	}
	if report.TotalClicks != 1 {
		t.Errorf("TotalClicks = %d, want 1 (pre-window event must not count)", report.TotalClicks)
	}
	oldest := windowStart.Format("2006-01-02")
	if got := report.ClicksByDate[oldest]; got != 1 {
		t.Errorf("ClicksByDate[%s] = %d, want 1", oldest, got)
	}
}

func TestAggregate_OwnerScope(t *testing.T) {
	st := setupTestStore(t)
	agg := New(st)
	ctx := context.Background()
	now := time.Now()

	mine := model.LinkMapping{ID: "id-mine", ShortCode: "mine", TargetURL: "https://example.com", Owner: "alice", Status: model.StatusActive, CreatedAt: now, UpdatedAt: now}
	theirs := model.LinkMapping{ID: "id-theirs", ShortCode: "theirs", TargetURL: "https://example.com", Owner: "bob", Status: model.StatusActive, CreatedAt: now, UpdatedAt: now}
	for _, m := range []model.LinkMapping{mine, theirs} {
		if _, err := st.InsertIfAbsent(ctx, m); err != nil {
			t.Fatalf("InsertIfAbsent() error = %v", err)
		}
	}

	appendEvent(t, st, "mine", "Unknown", "Mobile", "Chrome", now)
	appendEvent(t, st, "theirs", "Unknown", "Desktop", "Firefox", now)

	report, err := agg.Aggregate(ctx, Scope{Owner: "alice"}, 7)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if report.TotalClicks != 1 {
		t.Errorf("TotalClicks for alice = %d, want 1", report.TotalClicks)
	}
	if got := report.ClicksByDevice["Desktop"]; got != 0 {
		t.Errorf("Alice's report counts bob's clicks: Desktop = %d", got)
	}
}

func TestAggregate_ToleratesDanglingEvents(t *testing.T) {
	st := setupTestStore(t)
	agg := New(st)
	ctx := context.Background()
	now := time.Now()

	m := model.LinkMapping{ID: "id-gone", ShortCode: "gone", TargetURL: "https://example.com", Status: model.StatusActive, CreatedAt: now, UpdatedAt: now}
	if _, err := st.InsertIfAbsent(ctx, m); err != nil {
		t.Fatalf("InsertIfAbsent() error = %v", err)
	}
	appendEvent(t, st, "gone", "Unknown", "Mobile", "Chrome", now)

	// Delete the mapping; the event keeps its weak reference
	if err := st.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	report, err := agg.Aggregate(ctx, Global, 7)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if report.TotalClicks != 1 {
		t.Errorf("TotalClicks = %d, want 1 (dangling events still count globally)", report.TotalClicks)
	}
}
