package model

import "time"

// Visit carries the raw request metadata captured at resolution time.
// It is handed to the click recorder without blocking the redirect.
type Visit struct {
	MappingID string    // weak reference to LinkMapping.ID
	ShortCode string
	IP        string
	UserAgent string
	Referer   string
	At        time.Time
}

// ClickEvent is one recorded redirect occurrence with derived classification
// fields. Created once by the click recorder, immutable afterwards. The
// mapping reference is lookup-only: deleting a mapping leaves its historic
// events in place.
type ClickEvent struct {
	MappingID string    `json:"mappingID"`
	ShortCode string    `json:"shortCode"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
	Referer   string    `json:"referer"`
	Country   string    `json:"country"`
	City      string    `json:"city"`
	Device    string    `json:"device"`
	Browser   string    `json:"browser"`
	ClickedAt time.Time `json:"clickedAt"`
}
