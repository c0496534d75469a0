package news

import (
	"sync"
	"time"
)

var (
	nycOnce sync.Once
	nycLoc  *time.Location
)

func newYork() *time.Location {
	nycOnce.Do(func() {
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			// No tzdata on this host. EST is close enough for session
			// classification to stay deterministic.
			loc = time.FixedZone("EST", -5*60*60)
		}
		nycLoc = loc
	})
	return nycLoc
}

// MarketHoursFor classifies a publication time against US equity trading
// sessions in America/New_York. Weekends are always extended.
func MarketHoursFor(t time.Time) MarketHours {
	local := t.In(newYork())
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return MarketHoursExtended
	}

	hour := local.Hour()
	switch {
	case hour >= 4 && hour < 9:
		return MarketHoursPre
	case hour >= 9 && hour < 16:
		return MarketHoursRegular
	case hour >= 16 && hour < 20:
		return MarketHoursAfter
	default:
		return MarketHoursExtended
	}
}
