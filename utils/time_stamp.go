package utils

import (
	"fmt"
	"time"
)

// NowMilli returns wall-clock milliseconds since the Unix epoch, the unit
// every sensor feed is stamped in.
func NowMilli() int64 {
	return time.Now().UnixMilli()
}

// SessionName returns the export directory name for a session started at t:
//
//	<prefix>_YYYY-MM-DD_HH-MM-SS
func SessionName(prefix string, t time.Time) string {
	return fmt.Sprintf("%s_%s", prefix, t.Format("2006-01-02_15-04-05"))
}
