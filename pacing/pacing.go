// Package pacing implements WaitOneStep (spec.md §4.5): a pacing primitive
// that guarantees approximately-periodic execution without drift
// accumulation, parameterized by either a fixed period or a cron
// expression.
package pacing

import "context"

// Pacer is the common interface FixedPacer and CronPacer satisfy. Wait
// blocks the caller until the next pacing step, or until ctx is cancelled.
// AsyncWait is identical under this engine's cooperative model: "yielding
// to the scheduler" is expressed by returning control to the calling
// goroutine of the background executor, which is already how
// asyncruntime's single worker interleaves tasks at suspension points (see
// SPEC_FULL.md's AsyncRuntime section) — a separate non-blocking primitive
// would just be Wait under another name.
type Pacer interface {
	Wait(ctx context.Context) error
	AsyncWait(ctx context.Context) error
}
