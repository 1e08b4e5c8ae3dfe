package util

import (
	"fmt"
	"time"
)

// FormatDuration renders d as HH:MM:SS.mmm, rounded to the millisecond
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Round(time.Millisecond).Milliseconds()
	hours := ms / 3_600_000
	minutes := ms / 60_000 % 60
	secs := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, ms%1000)
}
