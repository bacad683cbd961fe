package batch

import (
	"context"
	"time"
)

// ExecuteReader is the Batch Executor (C5, spec §4.5): the five-step
// algorithm that turns a validated Batch into a live ResultReader.
//
//  1. apply b.TimeoutSeconds to ctx, if set
//  2. validate (spec §4.7's pre-execute guard chain)
//  3. bind every command back to b
//  4. select a PayloadCreator by the (SupportsComMulti, all-prepared)
//     truth table
//  5. delegate to Connection.Session.OpenReader
//
// A registered cancellation (spec §4.4) is armed for the duration of this
// call only; it is released before ExecuteReader returns, regardless of
// outcome.
func (b *Batch) ExecuteReader(ctx context.Context, mode IOMode) (ResultReader, error) {
	ctx, cancelTimeout := applyTimeout(ctx, b.TimeoutSeconds)
	defer cancelTimeout()

	if err := validateForExecute(b); err != nil {
		return nil, err
	}
	if err := b.bindCommands(); err != nil {
		return nil, err
	}

	conn := b.Connection
	guard := conn.cancelReg.register(ctx, b, conn)
	defer guard.Release()

	creator := selectCreator(conn.session.SupportsComMulti(), b.allPrepared())
	cursor := newCursor(b.Commands)

	procCache := conn.procCache()

	reader, err := conn.session.OpenReader(ctx, cursor, creator, procCache, effectiveBehavior(b.Commands), mode)
	if err != nil {
		if _, batched := creator.(BatchedCreator); batched && IsKind(err, KindUnsupported) {
			conn.poison()
		}
		return nil, WrapError(err, KindProtocol, "failed to open result reader")
	}
	conn.markReaderOpen(true)
	return &ownedReader{ResultReader: reader, conn: conn}, nil
}

// ExecuteNonQuery runs b to completion, discarding all row data, and
// returns the sum of every result set's affected-row count.
func (b *Batch) ExecuteNonQuery(ctx context.Context, mode IOMode) (int64, error) {
	reader, err := b.ExecuteReader(ctx, mode)
	if err != nil {
		return 0, err
	}
	defer reader.Close()
	return drainAffectedRows(ctx, reader)
}

// ExecuteScalar runs b to completion and returns column 0 of the first
// row of the first result set, if any (Open Question (b), spec §9):
// hasValue is false only when the first result set returned no rows.
func (b *Batch) ExecuteScalar(ctx context.Context, mode IOMode) (value any, hasValue bool, err error) {
	reader, err := b.ExecuteReader(ctx, mode)
	if err != nil {
		return nil, false, err
	}
	defer reader.Close()
	return captureScalar(ctx, reader)
}

// selectCreator implements spec §4.2/§4.5 step 4's truth table: Batched
// wins whenever the session supports COM_MULTI, regardless of
// preparation state.
func selectCreator(supportsComMulti, allPrepared bool) PayloadCreator {
	switch {
	case supportsComMulti:
		return BatchedCreator{}
	case !allPrepared:
		return ConcatenatedCreator{}
	default:
		return SingleCreator{}
	}
}

// effectiveBehavior ORs every command's Behavior together, for Session
// implementations that need to know the aggregate request up front.
func effectiveBehavior(commands []*BatchCommand) Behavior {
	var b Behavior
	for _, cmd := range commands {
		b |= cmd.Behavior
	}
	return b
}

// applyTimeout derives a child context bounded by seconds if seconds > 0,
// else returns ctx unchanged with a no-op cancel.
func applyTimeout(ctx context.Context, seconds int) (context.Context, context.CancelFunc) {
	if seconds <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
}

// ownedReader wraps a Session-produced ResultReader so Close also clears
// the owning Connection's open-reader flag (spec §4.7's pre-prepare
// guard consults it).
type ownedReader struct {
	ResultReader
	conn *Connection
}

func (r *ownedReader) Close() error {
	r.conn.markReaderOpen(false)
	return r.ResultReader.Close()
}
