// Package timex provides the timestamp helpers every record in the engine
// relies on: millisecond-since-epoch as the wire format, RFC3339 as the
// human-readable round-trip format.
package timex

import (
	"fmt"
	"time"

	"github.com/alephcore/engine/erralph"
)

// NowMillis returns the current time as milliseconds since the Unix epoch,
// the canonical value for a record's t field.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// ToString renders a millisecond timestamp as RFC3339 (UTC), the inverse of
// ParseToMillis to whole-second resolution: the sub-second part is dropped.
func ToString(millis int64) string {
	return time.UnixMilli(millis).UTC().Format(time.RFC3339)
}

// ParseToMillis parses an RFC3339 timestamp into milliseconds since the
// Unix epoch. Returns ErrInvalidDate, wrapped with the offending string, on
// a parse failure.
func ParseToMillis(s string) (int64, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w: %w", s, erralph.ErrInvalidDate, err)
	}
	return t.UnixMilli(), nil
}
