package quotation

import (
	"strings"
	"time"
)

// ScanTimeLayout is the wire format the legacy table stores scan
// timestamps in: MM/DD/YYYY hh:mm AM/PM.
const ScanTimeLayout = "01/02/2006 03:04 PM"

// DefaultTimeZone is the reference zone all scan timestamps are rendered
// and compared in.
const DefaultTimeZone = "America/Chicago"

// Clock provides the current time
type Clock interface {
	Now() time.Time
}

// systemClock provides the current wall-clock time
type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// ScanTime is a scan timestamp in the fixed wire format. It exists so the
// processor compares instants instead of raw column strings.
type ScanTime struct {
	t time.Time
}

// NewScanTime creates a ScanTime from an instant, truncated to the
// minute precision the wire format carries.
func NewScanTime(t time.Time, loc *time.Location) ScanTime {
	return ScanTime{t: t.In(loc).Truncate(time.Minute)}
}

// ParseScanTime parses a stored timestamp value. The second return value
// is false for empty or malformed input; legacy rows carry garbage in
// these columns and that is tolerated, not an error.
func ParseScanTime(raw string, loc *time.Location) (ScanTime, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ScanTime{}, false
	}
	t, err := time.ParseInLocation(ScanTimeLayout, trimmed, loc)
	if err != nil {
		return ScanTime{}, false
	}
	return ScanTime{t: t}, true
}

// Format renders the timestamp in the wire format.
func (st ScanTime) Format() string {
	return st.t.Format(ScanTimeLayout)
}

// ElapsedSeconds returns whole seconds between this timestamp and now,
// truncated toward zero.
func (st ScanTime) ElapsedSeconds(now time.Time) int {
	return int(now.Sub(st.t).Seconds())
}

// Time returns the underlying instant.
func (st ScanTime) Time() time.Time {
	return st.t
}
