package model

// AggregateReport is a point-in-time aggregation of the click-event stream
// over a lookback window. ClicksByDate contains every calendar date in the
// window, including zero-count dates.
type AggregateReport struct {
	WindowDays      int              `json:"windowDays"`
	TotalClicks     int64            `json:"totalClicks"`
	ClicksByDate    map[string]int64 `json:"clicksByDate"`    // "2006-01-02" -> count
	ClicksByCountry map[string]int64 `json:"clicksByCountry"` // country label -> count
	ClicksByDevice  map[string]int64 `json:"clicksByDevice"`  // Mobile/Tablet/Desktop/Unknown -> count
	ClicksByBrowser map[string]int64 `json:"clicksByBrowser"` // Chrome/Firefox/... -> count
}
