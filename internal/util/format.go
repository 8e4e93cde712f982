package util

import (
	"fmt"
	"strings"
	"time"
)

type period struct {
	name    string
	seconds int64
	roundAt int64 // value of the next smaller period rounding this one up
}

var periods = []period{
	{"year", 60 * 60 * 24 * 365, 11},
	{"month", 60 * 60 * 24 * 30, 26},
	{"day", 60 * 60 * 24, 18},
	{"hour", 60 * 60, 46},
	{"minute", 60, 31},
	{"second", 1, 0},
}

func plural(value int64, name string) string {
	if value == 1 {
		return "1 " + name
	}
	return fmt.Sprintf("%d %ss", value, name)
}

// FormatDuration spells out every period of d, e.g. "1 hour, 2 minutes"
func FormatDuration(d time.Duration) string {
	seconds := int64(d.Seconds())
	var parts []string
	for _, p := range periods {
		if seconds > p.seconds {
			var value int64
			value, seconds = seconds/p.seconds, seconds%p.seconds
			parts = append(parts, plural(value, p.name))
		}
	}
	return strings.Join(parts, ", ")
}

// FormatDurationRounded renders seconds as a single rounded period, e.g. "4 hours"
func FormatDurationRounded(seconds int64) string {
	var value int64
	name := ""
	next := int64(999999)

	for _, p := range periods {
		if seconds > p.seconds {
			var current int64
			current, seconds = seconds/p.seconds, seconds%p.seconds
			if value == 0 && current < next {
				value, name, next = current, p.name, p.roundAt
				continue
			}
			if current >= next {
				value++
			}
			break
		}
		if value != 0 {
			break
		}
		// this period can still be the result if the next one rounds up
		name, next = p.name, p.roundAt
	}

	return plural(value, name)
}

// FormatSince renders the rounded distance between timestamp and now
func FormatSince(clock Clock, timestamp int64) string {
	return fmt.Sprintf("about %s ago", FormatDurationRounded(clock.NowAsTimestamp()-timestamp))
}
