package calendarsync

import "time"

// ToUTC reads hour:minute as a wall-clock time on the calendar date of on in
// loc and returns the same instant's UTC hour and minute.
func ToUTC(hour, minute int, loc *time.Location, on time.Time) (int, int) {
	if loc == nil {
		return hour, minute
	}
	y, m, d := on.In(loc).Date()
	t := time.Date(y, m, d, hour, minute, 0, 0, loc).UTC()
	return t.Hour(), t.Minute()
}

// loadZone resolves an IANA zone name. UTC and empty names resolve to nil,
// meaning no conversion.
func loadZone(name string) (*time.Location, error) {
	if name == "" || name == "UTC" {
		return nil, nil
	}
	return time.LoadLocation(name)
}
