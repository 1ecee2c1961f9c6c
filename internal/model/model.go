// Package model holds the entities shared by the store backends and the
// application services.
package model

import "time"

// ShowerStatus is the singleton occupancy record for the single shared
// shower. Both fields are set while occupied and both are nil while free;
// writers must always set or clear them together.
type ShowerStatus struct {
	CurrentUser *string    `json:"currentUser"`
	StartedAt   *time.Time `json:"startedAt"`
}

// Occupied reports whether someone currently holds the shower.
func (s ShowerStatus) Occupied() bool {
	return s.CurrentUser != nil && s.StartedAt != nil
}

// Free is the empty status pair written on every transition out of occupancy.
func Free() ShowerStatus {
	return ShowerStatus{}
}

// Occupy builds the status record for a fresh occupancy.
func Occupy(user string, startedAt time.Time) ShowerStatus {
	return ShowerStatus{CurrentUser: &user, StartedAt: &startedAt}
}

// Slot is a reservation of the shower for one user. Date is a calendar day
// in "2006-01-02" form and is ignored for recurring slots, which re-project
// onto the current day every time they are evaluated. StartTime is a wall
// clock "15:04" string with no zone; it is interpreted in the service's
// local zone, a simplification inherited from the product.
type Slot struct {
	ID              string `json:"id"`
	User            string `json:"user"`
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
	Recurring       bool   `json:"recurring,omitempty"`
	Completed       bool   `json:"completed,omitempty"`
}

// LogEntry is one completed shower. Entries are append-only and identical in
// shape across the operational and history streams.
type LogEntry struct {
	ID              string    `json:"id"`
	User            string    `json:"user"`
	StartedAt       time.Time `json:"startedAt"`
	EndedAt         time.Time `json:"endedAt"`
	DurationSeconds int       `json:"durationSeconds"`
}

// LogStream selects one of the two retention streams.
type LogStream string

const (
	// LogOperational is the short-retention log shown in the app (~24h).
	LogOperational LogStream = "operational"
	// LogHistory is the long-retention log feeding analytics (~30d).
	LogHistory LogStream = "history"
)

// PushSubscription is a registered notification endpoint for one user.
// Delivery details belong to the push gateway; the core only stores and
// prunes these records.
type PushSubscription struct {
	Key       string    `json:"key"`
	User      string    `json:"user"`
	Endpoint  string    `json:"endpoint"`
	UpdatedAt time.Time `json:"updatedAt"`
}
