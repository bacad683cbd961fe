package session

import (
	"context"

	"github.com/fedesasso/mysqlbatch/batch"
	"github.com/fedesasso/mysqlbatch/protocol"
)

// resultReader is ReferenceSession's batch.ResultReader implementation:
// it speaks the classic (pre-CLIENT_DEPRECATE_EOF) MySQL result-set wire
// format, reading one packet at a time so a suspension point exists at
// every row and every result-set boundary (spec §4.6/§5).
type resultReader struct {
	session   *ReferenceSession
	cursor    *batch.Cursor
	creator   batch.PayloadCreator
	procCache batch.CachedProcedureMap

	awaitingHeader bool
	moreResults    bool

	resultSetOpen bool
	columns       int
	affected      int64

	row      []any
	rowValid bool

	closed bool
}

var _ batch.ResultReader = (*resultReader)(nil)

// sendNextPayload hands the cursor to the creator for one more call and
// transmits whatever it wrote. Called once up front by OpenReader, and
// again by NextResult whenever a per-command creator (SingleCreator) has
// more commands left after the current result set closed with no
// SERVER_MORE_RESULTS_EXISTS flag.
func (r *resultReader) sendNextPayload(ctx context.Context) error {
	w := protocol.NewWriter()
	ok, err := r.creator.WriteQuery(r.cursor, r.procCache, w)
	if err != nil {
		return err
	}
	if !ok {
		return batch.NewError(batch.KindProtocol, "payload creator produced no command for a non-empty cursor")
	}
	r.session.conn.resetSequence()
	if err := r.session.conn.writePayload(ctx, w.Bytes()); err != nil {
		return batch.WrapError(err, batch.KindIo, "transmitting batch payload")
	}
	r.awaitingHeader = true
	return nil
}

// NextResult implements batch.ResultReader.
func (r *resultReader) NextResult(ctx context.Context) (bool, error) {
	if r.closed {
		return false, batch.NewError(batch.KindObjectDisposed, "result reader is closed")
	}
	if r.resultSetOpen {
		if err := r.drainRows(ctx); err != nil {
			return false, err
		}
	}
	if !r.awaitingHeader {
		switch {
		case r.moreResults:
			// the server already queued the next result set in the same
			// response stream; nothing to send.
		case !r.cursor.Done():
			if err := r.sendNextPayload(ctx); err != nil {
				return false, err
			}
		default:
			return false, nil
		}
	}
	return r.readHeader(ctx)
}

// readHeader reads and classifies the next response packet: an OK
// packet (non-row-returning result), an ERR packet (propagated as
// error), or a result-set header (lenenc column count followed by that
// many column-definition packets and a terminating EOF).
func (r *resultReader) readHeader(ctx context.Context) (bool, error) {
	r.awaitingHeader = false
	p, err := r.session.conn.readPacket(ctx)
	if err != nil {
		return false, batch.WrapError(err, batch.KindIo, "reading result header")
	}
	if len(p) == 0 {
		return false, batch.NewError(batch.KindProtocol, "empty result header packet")
	}
	switch p[0] {
	case 0xff:
		return false, parseErrPacket(p)
	case 0x00:
		affected, status, n := parseOKPacket(p)
		_ = n
		r.resultSetOpen = false
		r.columns = 0
		r.affected = affected
		r.moreResults = status&protocol.ServerMoreResultsExists != 0
		return true, nil
	default:
		count, _, err := readLengthEncodedInt(p, 0)
		if err != nil {
			return false, batch.WrapError(err, batch.KindProtocol, "reading result-set column count")
		}
		for i := uint64(0); i < count; i++ {
			if _, err := r.session.conn.readPacket(ctx); err != nil {
				return false, batch.WrapError(err, batch.KindIo, "reading column definition")
			}
		}
		if _, err := r.session.conn.readPacket(ctx); err != nil {
			return false, batch.WrapError(err, batch.KindIo, "reading column definition terminator")
		}
		r.resultSetOpen = true
		r.columns = int(count)
		r.affected = 0
		r.rowValid = false
		return true, nil
	}
}

// NextRow implements batch.ResultReader.
func (r *resultReader) NextRow(ctx context.Context) (bool, error) {
	if r.closed {
		return false, batch.NewError(batch.KindObjectDisposed, "result reader is closed")
	}
	if !r.resultSetOpen {
		return false, nil
	}
	p, err := r.session.conn.readPacket(ctx)
	if err != nil {
		return false, batch.WrapError(err, batch.KindIo, "reading result row")
	}
	if isEOFPacket(p) {
		r.resultSetOpen = false
		r.rowValid = false
		_, status := parseEOFPacket(p)
		r.moreResults = status&protocol.ServerMoreResultsExists != 0
		return false, nil
	}
	row, err := parseTextRow(p, r.columns)
	if err != nil {
		return false, batch.WrapError(err, batch.KindProtocol, "parsing result row")
	}
	r.row = row
	r.rowValid = true
	return true, nil
}

// drainRows exhausts the current result set's remaining rows without
// exposing them, for NextResult's "inner before outer" contract (spec
// §4.6): advancing past unconsumed rows discards them silently.
func (r *resultReader) drainRows(ctx context.Context) error {
	for r.resultSetOpen {
		if _, err := r.NextRow(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ColumnCount implements batch.ResultReader.
func (r *resultReader) ColumnCount() int {
	return r.columns
}

// ColumnValue implements batch.ResultReader.
func (r *resultReader) ColumnValue(idx int) (any, error) {
	if !r.rowValid || idx < 0 || idx >= len(r.row) {
		return nil, batch.NewError(batch.KindInvalidOperation, "no current row value at that column index")
	}
	return r.row[idx], nil
}

// AffectedRows implements batch.ResultReader.
func (r *resultReader) AffectedRows() int64 {
	return r.affected
}

// Close implements batch.ResultReader. Idempotent.
func (r *resultReader) Close() error {
	r.closed = true
	return nil
}
