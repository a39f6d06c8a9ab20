// Package scheduler inspects the publish trigger. The daily run itself is
// started by the CI cron; this package only validates and previews it.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// NextRuns returns the next n activation times of expr after from.
// expr is a standard five-field cron expression, optionally prefixed
// with CRON_TZ=<zone>.
func NextRuns(expr string, from time.Time, n int) ([]time.Time, error) {
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}

	runs := make([]time.Time, 0, n)
	t := from
	for i := 0; i < n; i++ {
		t = sched.Next(t)
		if t.IsZero() {
			break
		}
		runs = append(runs, t)
	}
	return runs, nil
}
