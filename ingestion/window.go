package ingestion

import (
	"time"

	"github.com/poiesic/camvec/core"
)

// DefaultTimezone is the civil timezone the metadata API's window bounds
// are interpreted in.
const DefaultTimezone = "Asia/Bangkok"

// computeWindow derives the lookback window for a run firing at now.
// Both bounds are expressed in loc because the metadata API compares
// them against local civil timestamps.
func computeWindow(now time.Time, days int, loc *time.Location) core.Window {
	stop := now.In(loc)
	return core.Window{
		Start: stop.AddDate(0, 0, -days),
		Stop:  stop,
	}
}
