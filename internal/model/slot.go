package model

// Slot is a generated, never persisted, bookable trial-class start time.
type Slot struct {
	ID           string   `json:"id"`
	StudioID     StudioID `json:"studioId"`
	StartAtLocal string   `json:"startAtLocal"` // RFC 3339 with the +03:00 offset
	StartAtISO   string   `json:"startAtISO"`   // same instant in UTC
}

// SlotList is the schedule endpoint payload.
type SlotList struct {
	Slots   []Slot   `json:"slots"`
	Notices []string `json:"notices"`
}
