package inventory

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ExpiryStatus classifies an expiry date relative to today
type ExpiryStatus string

const (
	// ExpiryNone means no usable date was supplied
	ExpiryNone ExpiryStatus = "none"
	// ExpiryExpired means the date is in the past
	ExpiryExpired ExpiryStatus = "expired"
	// ExpirySoon means the date falls within the soon threshold (today included)
	ExpirySoon ExpiryStatus = "soon"
	// ExpiryOK means the date is beyond the soon threshold
	ExpiryOK ExpiryStatus = "ok"
)

// ExpiryInfo is the result of classifying a date. Days is nil when the input
// was missing or unparseable.
type ExpiryInfo struct {
	Status ExpiryStatus
	Days   *int
	Label  string
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"02-01-2006",
}

// ParseDate parses a date in ISO form (YYYY-MM-DD, optionally with a time
// suffix) or DD/MM/YYYY / DD-MM-YYYY. The second return is false when the
// input does not parse as a real calendar date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDate converts any accepted date form to YYYY-MM-DD, returning nil
// for blank or unparseable input.
func NormalizeDate(s string) *string {
	t, ok := ParseDate(s)
	if !ok {
		return nil
	}
	v := t.Format("2006-01-02")
	return &v
}

// startOfDay truncates a time to local midnight
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysUntil returns the whole-day difference between two times, computed at
// day granularity: both sides are truncated to midnight before differencing,
// so time-of-day and DST shifts cannot skew the count.
func DaysUntil(today, date time.Time) int {
	diff := startOfDay(date).Sub(startOfDay(today))
	return int(math.Round(diff.Hours() / 24))
}

// Classify maps a date string to an expiry status using the configured
// thresholds. It is pure: the same input and today always yield the same
// result. Evaluation order: expired, today, soon window, ok.
func Classify(dateStr string, settings ExpirySettings, today time.Time) ExpiryInfo {
	if strings.TrimSpace(dateStr) == "" {
		return ExpiryInfo{Status: ExpiryNone, Label: "No date"}
	}
	date, ok := ParseDate(dateStr)
	if !ok {
		return ExpiryInfo{Status: ExpiryNone, Label: "Invalid date"}
	}

	d := DaysUntil(today, date)
	switch {
	case d < 0:
		return ExpiryInfo{Status: ExpiryExpired, Days: &d, Label: "Expired"}
	case d == 0:
		return ExpiryInfo{Status: ExpirySoon, Days: &d, Label: "Expires today"}
	case d <= settings.SoonThresholdDays:
		return ExpiryInfo{Status: ExpirySoon, Days: &d, Label: fmt.Sprintf("Expires in %s", pluralDays(d))}
	default:
		// Beyond okThresholdDays is still "ok", just far out.
		return ExpiryInfo{Status: ExpiryOK, Days: &d, Label: fmt.Sprintf("In %s", pluralDays(d))}
	}
}

func pluralDays(d int) string {
	if d == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", d)
}
