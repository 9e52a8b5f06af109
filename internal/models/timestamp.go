package models

import (
	"sync/atomic"
	"time"
)

// DisplayLayout renders timestamps as "10/16/26 at 3:04 PM".
const DisplayLayout = "1/2/06 at 3:04 PM"

var displayLocation atomic.Pointer[time.Location]

func init() {
	displayLocation.Store(time.UTC)
}

// SetDisplayLocation changes the zone used by FormatTimestamp.
func SetDisplayLocation(loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	displayLocation.Store(loc)
}

// DisplayLocation returns the zone used by FormatTimestamp.
func DisplayLocation() *time.Location {
	return displayLocation.Load()
}

// FormatTimestamp renders t for API responses. The zero time renders empty.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(DisplayLocation()).Format(DisplayLayout)
}
