package market

import (
	"time"

	"github.com/scmhub/calendar"
)

// SessionMinutes is the length of a regular NYSE trading day (9:30-16:00 ET).
const SessionMinutes = 390

var (
	nyse   = calendar.XNYS()
	nyLoc  *time.Location
	etName = "America/New_York"
)

func init() {
	loc, err := time.LoadLocation(etName)
	if err != nil {
		loc = time.FixedZone("ET", -5*3600)
	}
	nyLoc = loc
}

// EasternTime converts t to the New York market timezone.
func EasternTime(t time.Time) time.Time {
	return t.In(nyLoc)
}

// SessionOpen returns 9:30 ET on the given calendar day. The day's own
// date components are used; a midnight-UTC date stays on its date.
func SessionOpen(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 9, 30, 0, 0, nyLoc)
}

// IsTradingDay reports whether the given date is an NYSE business day.
// Checked at noon ET so DST transitions cannot shift the date.
func IsTradingDay(day time.Time) bool {
	noon := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, nyLoc)
	return nyse.IsBusinessDay(noon)
}

// FormatMarketTime renders a timestamp the way the dashboards display it.
func FormatMarketTime(t time.Time) string {
	return EasternTime(t).Format("2006-01-02 15:04:05") + " ET"
}
