package query

import "time"

// TimeRange bounds a stored query to an absolute window in
// milliseconds since the epoch. Both ends default to zero, meaning
// unbounded. Live (current) fetches ignore the range server-side.
//
// The client does not validate ordering; a range with StartMs after
// EndMs is sent as-is and interpreted by the server.
type TimeRange struct {
	StartMs int64
	EndMs   int64
}

// MsFromTime converts a time to epoch milliseconds.
func MsFromTime(t time.Time) int64 {
	return t.UnixMilli()
}

// TimeFromMs converts epoch milliseconds back to a time.
func TimeFromMs(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// StartTime returns the decoded start of the window, or the zero time
// when the range is unset.
func (t *TimeRange) StartTime() time.Time {
	if t.StartMs == 0 {
		return time.Time{}
	}
	return TimeFromMs(t.StartMs)
}

// EndTime returns the decoded end of the window, or the zero time
// when the range is unset. Like StartTime, "unset" is keyed on
// StartMs: a range is either fully set or not set at all.
func (t *TimeRange) EndTime() time.Time {
	if t.StartMs == 0 {
		return time.Time{}
	}
	return TimeFromMs(t.EndMs)
}

// Custom sets an absolute window. An endMs of zero means "now",
// captured at call time.
func (t *TimeRange) Custom(startMs, endMs int64) *TimeRange {
	if endMs == 0 {
		endMs = MsFromTime(time.Now())
	}
	t.StartMs = startMs
	t.EndMs = endMs
	return t
}

// Last sets the window to the trailing duration ending now.
func (t *TimeRange) Last(d time.Duration) *TimeRange {
	now := time.Now()
	t.StartMs = MsFromTime(now.Add(-d))
	t.EndMs = MsFromTime(now)
	return t
}

// LastFiveMinutes sets the window to the trailing five minutes.
func (t *TimeRange) LastFiveMinutes() *TimeRange { return t.Last(5 * time.Minute) }

// LastFifteenMinutes sets the window to the trailing fifteen minutes.
func (t *TimeRange) LastFifteenMinutes() *TimeRange { return t.Last(15 * time.Minute) }

// LastThirtyMinutes sets the window to the trailing thirty minutes.
func (t *TimeRange) LastThirtyMinutes() *TimeRange { return t.Last(30 * time.Minute) }

// LastHour sets the window to the trailing hour.
func (t *TimeRange) LastHour() *TimeRange { return t.Last(time.Hour) }

// LastDay sets the window to the trailing 24 hours.
func (t *TimeRange) LastDay() *TimeRange { return t.Last(24 * time.Hour) }

// LastWeek sets the window to the trailing seven days.
func (t *TimeRange) LastWeek() *TimeRange { return t.Last(7 * 24 * time.Hour) }
