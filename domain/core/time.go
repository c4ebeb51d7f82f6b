package core

import (
	"time"
)

// Timestamp is a wall-clock instant recorded on run manifests
type Timestamp time.Time

// Now returns the current timestamp
func Now() Timestamp {
	return Timestamp(time.Now())
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// String formats the timestamp as RFC3339
func (t Timestamp) String() string {
	return time.Time(t).Format(time.RFC3339)
}

// MarshalJSON encodes the timestamp as an RFC3339 string
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}
