package marketstatus

import "time"

// Equity hours are defined in New York time. Containers without a tz
// database fall back to a fixed EST offset.
var newYork = func() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
}()

// IsTradingOpen reports whether US equity venues are open at the given
// instant: weekdays 09:30-16:00 New York time. Exchange holidays are not
// tracked.
func IsTradingOpen(now time.Time) bool {
	et := now.In(newYork)
	switch et.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	minutes := et.Hour()*60 + et.Minute()
	return minutes >= 9*60+30 && minutes < 16*60
}
