package connection

import (
	"context"
	"fmt"

	"github.com/alephcore/engine/erralph"
	"github.com/alephcore/engine/model"
	"github.com/alephcore/engine/record"
)

func asModel(m *model.Model) record.Model {
	if m == nil {
		return nil
	}
	return m
}

// SafeRead implements spec.md §4.7 safe_read: it ensures the backend is
// open (opening it on demand), reads key, and coerces the result into a
// RecordSet. On any failure it reports via on_error and returns (nil,
// false); "false" is the engine's absent/empty-result signal.
func (c *Connection) SafeRead(ctx context.Context, key string, args ReadArgs) (*record.RecordSet, bool) {
	if err := c.ensureOpen(ctx); err != nil {
		c.reportError(err, key, nil)
		return nil, false
	}

	raw, err := c.driver.Read(ctx, key, args)
	if err != nil {
		c.reportError(fmt.Errorf("read: %w", err), key, nil)
		return nil, false
	}
	if raw == nil {
		c.reportError(fmt.Errorf("%w: reading function returned None", erralph.ErrInvalidKey), key, nil)
		return nil, false
	}

	records, err := toRecordSlice(raw)
	if err != nil {
		c.reportError(fmt.Errorf("%w: %s", erralph.ErrInvalidRecord, err), key, nil)
		return nil, false
	}

	rs, err := record.New(asModel(c.modelFor(key)), records...)
	if err != nil {
		c.reportError(err, key, nil)
		return nil, false
	}
	return rs, true
}

// SafeWrite implements spec.md §4.7 safe_write: it normalizes and validates
// input against the key's bound Model (if any), applies report-by-exception
// suppression if configured, ensures the backend is open, and dispatches
// either directly to the driver or through StoreAndForward. Validation
// failures abort the write (no buffering of invalid data); all other
// failures are reported too. Under StoreAndForward, a failed driver write
// leaves the data buffered for later replay; a report-by-exception or open
// failure returns before anything is buffered. An empty input (or one reduced to empty by
// report-by-exception suppression) is a no-op: it never opens the
// backend and never reaches the driver or the buffer.
func (c *Connection) SafeWrite(ctx context.Context, key string, records []record.Record) error {
	rs, err := record.New(asModel(c.modelFor(key)), records...)
	if err != nil {
		werr := fmt.Errorf("%w", err)
		c.reportError(werr, key, records)
		return werr
	}

	data := rs.Records()

	if c.rbe != nil {
		data, err = c.rbe.Next(ctx, key, data)
		if err != nil {
			c.reportError(fmt.Errorf("report-by-exception: %w", err), key, records)
			return err
		}
		if len(data) == 0 {
			return nil
		}
	}

	if len(data) == 0 {
		return nil
	}

	if err := c.ensureOpen(ctx); err != nil {
		c.reportError(err, key, records)
		return err
	}

	if c.saf != nil {
		if err := c.saf.AddAndFlush(ctx, key, data, func(ctx context.Context, key string, recs []record.Record) error {
			return c.driver.Write(ctx, key, recs)
		}); err != nil {
			c.reportError(err, key, records)
			return err
		}
		return nil
	}

	if err := c.driver.Write(ctx, key, data); err != nil {
		werr := fmt.Errorf("write: %w", err)
		c.reportError(werr, key, records)
		return werr
	}
	return nil
}

// ensureOpen opens the driver if it is not already open.
func (c *Connection) ensureOpen(ctx context.Context) error {
	if c.driver.IsOpen() {
		return nil
	}
	if err := c.driver.Open(ctx); err != nil {
		return fmt.Errorf("open: %w", err)
	}
	return nil
}

func (c *Connection) reportError(err error, key string, args any) {
	e := erralph.New(err, c.name, key)
	if args != nil {
		e = e.WithArgs(map[string]any{"args": args})
	}
	c.log.Debug(e.Message())
	c.callbacks.fireError(e)
}

// toRecordSlice coerces a Driver.Read result (a record.Record or a
// []record.Record) into a slice.
func toRecordSlice(raw any) ([]record.Record, error) {
	switch v := raw.(type) {
	case record.Record:
		return []record.Record{v}, nil
	case []record.Record:
		return v, nil
	case map[string]any:
		return []record.Record{record.Record(v)}, nil
	case []map[string]any:
		out := make([]record.Record, len(v))
		for i, m := range v {
			out[i] = record.Record(m)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected read result type %T", raw)
	}
}
