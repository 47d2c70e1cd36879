package link

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date form accepted next to RFC 3339.
const DateLayout = "2006-01-02"

// ParseDate reads an RFC 3339 timestamp or a bare YYYY-MM-DD date.
// Bare dates are midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}
