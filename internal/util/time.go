package util

import (
	"fmt"
	"sync"
	"time"
)

// DateLayout is the short layout used when rendering timestamps
const DateLayout = "02 Jan 15:04"

// Clock is the time source events and renderers depend on.
// Timestamps are integer seconds since the UNIX epoch, UTC based.
type Clock interface {
	NowAsTimestamp() int64
	ToTimestamp(date time.Time) int64
	FromTimestamp(timestamp int64) time.Time
	FormatDate(date time.Time) string
	FormatTimestampWithZone(timestamp int64, zone string) string
}

// TimeProvider is a timezone-aware Clock backed by the system time
type TimeProvider struct {
	location *time.Location
	now      func() time.Time
	mu       sync.RWMutex
}

var (
	globalTimeProvider *TimeProvider
	mu                 sync.Mutex
)

// NewTimeProvider returns a system clock displaying dates in timezone
func NewTimeProvider(timezone string) (*TimeProvider, error) {
	provider := &TimeProvider{now: time.Now}
	if err := provider.SetTimezone(timezone); err != nil {
		return nil, err
	}
	return provider, nil
}

// NewFixedClock returns a clock frozen at timestamp, displaying UTC dates
func NewFixedClock(timestamp int64) *TimeProvider {
	frozen := time.Unix(timestamp, 0).UTC()
	return &TimeProvider{
		location: time.UTC,
		now:      func() time.Time { return frozen },
	}
}

// SystemClock returns a UTC system clock
func SystemClock() *TimeProvider {
	return &TimeProvider{location: time.UTC, now: time.Now}
}

// InitializeTimeProvider initializes the global time provider with the specified timezone
func InitializeTimeProvider(timezone string) error {
	mu.Lock()
	defer mu.Unlock()

	provider, err := NewTimeProvider(timezone)
	if err != nil {
		return err
	}

	// Only set the global provider if successful
	globalTimeProvider = provider
	return nil
}

// GetTimeProvider returns the global time provider instance
// If not initialized, it defaults to UTC
func GetTimeProvider() *TimeProvider {
	mu.Lock()
	defer mu.Unlock()
	if globalTimeProvider == nil {
		globalTimeProvider = SystemClock()
	}
	return globalTimeProvider
}

// LoadLocation resolves a timezone name, "" and "Local" meaning the host zone
func LoadLocation(timezone string) (*time.Location, error) {
	switch timezone {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w\nValid examples: Local, UTC, America/New_York, Asia/Shanghai, Europe/London, Australia/Sydney", timezone, err)
	}
	return loc, nil
}

// SetTimezone updates the timezone for the time provider
func (tp *TimeProvider) SetTimezone(timezone string) error {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return err
	}

	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.location = loc
	return nil
}

// Location returns the display timezone
func (tp *TimeProvider) Location() *time.Location {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return tp.location
}

// Now returns the current time in the configured timezone
func (tp *TimeProvider) Now() time.Time {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return tp.current().In(tp.location)
}

func (tp *TimeProvider) current() time.Time {
	if tp.now == nil {
		return time.Now()
	}
	return tp.now()
}

// NowAsTimestamp returns the current UNIX timestamp
func (tp *TimeProvider) NowAsTimestamp() int64 {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return tp.current().Unix()
}

// ToTimestamp converts a date to a UNIX timestamp
func (tp *TimeProvider) ToTimestamp(date time.Time) int64 {
	return date.Unix()
}

// FromTimestamp converts a UNIX timestamp to a UTC date
func (tp *TimeProvider) FromTimestamp(timestamp int64) time.Time {
	return time.Unix(timestamp, 0).UTC()
}

// FormatDate renders date in the short display layout, in its own zone
func (tp *TimeProvider) FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}

// FormatTimestampWithZone renders timestamp in zone. An unknown zone falls
// back to the provider timezone.
func (tp *TimeProvider) FormatTimestampWithZone(timestamp int64, zone string) string {
	loc, err := LoadLocation(zone)
	if err != nil {
		LogDebugf("Unknown zone %q, using provider timezone: %v", zone, err)
		loc = tp.Location()
	}
	return tp.FromTimestamp(timestamp).In(loc).Format(DateLayout)
}

// In converts a time to the configured timezone
func (tp *TimeProvider) In(t time.Time) time.Time {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return t.In(tp.location)
}

// Format formats a time according to the layout in the configured timezone
func (tp *TimeProvider) Format(t time.Time, layout string) string {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return t.In(tp.location).Format(layout)
}
