// Package digest implements the daily digest pipeline: resolving the target
// date, fetching the day's data, enriching events with broadcasters, matching
// events against user alerts, and rendering the per-user email bodies.
package digest

import "time"

// civilDateFormat is the wire format for calendar dates.
const civilDateFormat = "2006-01-02"

// TargetDate resolves the calendar date a run covers. Runs before cutoffHour
// local time cover today; runs at or after it cover tomorrow, so the digest
// lands in inboxes ahead of the day it describes.
//
// The computation is done in civil time in loc. Adding a day via time.Date
// normalizes through the calendar, so the result stays correct across DST
// transitions where the local day is 23 or 25 hours long.
func TargetDate(now time.Time, loc *time.Location, cutoffHour int) string {
	local := now.In(loc)
	year, month, day := local.Date()
	if local.Hour() >= cutoffHour {
		day++
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc).Format(civilDateFormat)
}
