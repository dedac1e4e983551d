package scheduler

import (
	"fmt"
	"time"
)

// CronAt formats the one-shot cron expression the scheduler jobs use
// ("<minute> <hour> <day-of-month> <month> *"), computed from the UTC
// fields of t.
func CronAt(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%d %d %d %d *", t.Minute(), t.Hour(), t.Day(), int(t.Month()))
}
