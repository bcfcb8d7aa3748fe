package analytics

import (
	"context"
	"time"

	"shortlink/model"
	"shortlink/store"
)

const dateFormat = "2006-01-02"

// Scope selects which click events an aggregation covers: a single owner's
// links, or every link when Owner is empty.
type Scope struct {
	Owner string
}

// Global is the all-links scope.
var Global = Scope{}

// Aggregator turns the click-event stream into time, country, device, and
// browser buckets on demand. It reads only the event log and never touches
// the redirect path; results are point-in-time, not materialized.
type Aggregator struct {
	store *store.Store
}

func New(s *store.Store) *Aggregator {
	return &Aggregator{store: s}
}

// Aggregate groups the scope's click events over the trailing windowDays.
// Buckets are built from actual events, never estimated: an empty window
// still yields every calendar date mapped to zero.
func (a *Aggregator) Aggregate(ctx context.Context, scope Scope, windowDays int) (*model.AggregateReport, error) {
	if windowDays <= 0 {
		windowDays = 30
	}

	now := time.Now()

	report := &model.AggregateReport{
		WindowDays:      windowDays,
		ClicksByDate:    make(map[string]int64, windowDays),
		ClicksByCountry: make(map[string]int64),
		ClicksByDevice:  make(map[string]int64),
		ClicksByBrowser: make(map[string]int64),
	}

	// Zero-fill the full window so dates without traffic still appear.
	for i := windowDays - 1; i >= 0; i-- {
		report.ClicksByDate[now.AddDate(0, 0, -i).Format(dateFormat)] = 0
	}

	codes, err := a.scopeCodes(ctx, scope)
	if err != nil {
		return nil, err
	}

	for _, code := range codes {
		events, err := a.store.Events(ctx, code)
		if err != nil {
			return nil, err
		}
		for _, ev := range events {
			// The zero-filled date keys define the window: an event counts
			// only when its calendar date is one of them, so the map never
			// grows a partial extra date at the window edge.
			day := ev.ClickedAt.Format(dateFormat)
			if _, inWindow := report.ClicksByDate[day]; !inWindow {
				continue
			}

			report.TotalClicks++
			report.ClicksByDate[day]++
			report.ClicksByCountry[label(ev.Country)]++
			report.ClicksByDevice[label(ev.Device)]++
			report.ClicksByBrowser[label(ev.Browser)]++
		}
	}

	return report, nil
}

// scopeCodes lists the short codes whose event logs fall inside the scope.
// The global scope walks the event log itself, so events of deleted mappings
// still count; owner scope uses the owner index.
func (a *Aggregator) scopeCodes(ctx context.Context, scope Scope) ([]string, error) {
	if scope.Owner == "" {
		return a.store.EventCodes(ctx)
	}
	return a.store.OwnerCodes(ctx, scope.Owner)
}

func label(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
