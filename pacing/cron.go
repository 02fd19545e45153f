package pacing

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// CronPacer paces by a cron expression: Wait sleeps until the next
// scheduled event, computed by github.com/robfig/cron/v3's standard parser.
type CronPacer struct {
	schedule cron.Schedule
	last     time.Time
}

// NewCronPacer parses expr (standard five-field cron syntax) and returns a
// CronPacer, or an error if expr is malformed.
func NewCronPacer(expr string) (*CronPacer, error) {
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", expr, err)
	}
	return &CronPacer{schedule: sched, last: time.Now()}, nil
}

// Wait blocks until the next cron event after the last recorded reference
// time, or until ctx is cancelled.
func (p *CronPacer) Wait(ctx context.Context) error {
	next := p.schedule.Next(p.last)
	delay := time.Until(next)
	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.last = time.Now()
	return nil
}

// AsyncWait is Wait under the cooperative-scheduling name; see the Pacer
// doc comment in pacing.go.
func (p *CronPacer) AsyncWait(ctx context.Context) error { return p.Wait(ctx) }
