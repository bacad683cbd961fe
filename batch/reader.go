package batch

import "context"

// ResultReader is the Result Reader Driver's external shape (C6, spec
// §4.6): two nested lazy sequences — NextResult advances through outer
// result sets, NextRow advances through the current result set's rows.
// Advancing NextResult while rows remain unconsumed in the current result
// set implicitly discards them (the inner sequence must be exhausted, or
// explicitly abandoned, before the outer one advances further — spec
// §4.6's "inner before outer" invariant is the caller's contract, not an
// error condition a conforming reader rejects).
//
// Close releases whatever server-side/transport resources the reader
// holds and is safe to call more than once; every exit path (normal
// exhaustion, error, cancellation) must reach it exactly once, which is
// why every Executor entry point that opens a ResultReader defers Close
// immediately.
type ResultReader interface {
	// NextResult advances to the next result set, reporting false once
	// none remain. It must be called once, successfully, before the first
	// NextRow/ColumnValue call on a freshly opened reader.
	NextResult(ctx context.Context) (bool, error)

	// NextRow advances to the next row of the current result set,
	// reporting false once the result set is exhausted.
	NextRow(ctx context.Context) (bool, error)

	// ColumnCount reports the current result set's column count. Valid
	// only after a successful NextResult.
	ColumnCount() int

	// ColumnValue returns the value of column idx in the current row.
	ColumnValue(idx int) (any, error)

	// AffectedRows reports the current result set's affected-row count,
	// for result sets that are not row-returning (INSERT/UPDATE/DELETE).
	AffectedRows() int64

	// Close releases the reader. Idempotent.
	Close() error
}

// drainAffectedRows exhausts every result set of r, summing
// AffectedRows across each, for ExecuteNonQuery (spec §4.5).
func drainAffectedRows(ctx context.Context, r ResultReader) (int64, error) {
	var total int64
	for {
		more, err := r.NextResult(ctx)
		if err != nil {
			return total, err
		}
		if !more {
			return total, nil
		}
		for {
			hasRow, err := r.NextRow(ctx)
			if err != nil {
				return total, err
			}
			if !hasRow {
				break
			}
		}
		total += r.AffectedRows()
	}
}

// captureScalar captures column 0 of the first row of the first result
// set exactly once, then drains every remaining row and result set, for
// ExecuteScalar (spec §4.5, Open Question (b)). hasValue is false only
// when the first result set had no rows at all; a SQL NULL in that first
// column is reported as (nil, true).
func captureScalar(ctx context.Context, r ResultReader) (value any, hasValue bool, err error) {
	more, err := r.NextResult(ctx)
	if err != nil {
		return nil, false, err
	}
	if more {
		hasRow, err := r.NextRow(ctx)
		if err != nil {
			return nil, false, err
		}
		if hasRow {
			v, err := r.ColumnValue(0)
			if err != nil {
				return nil, false, err
			}
			value, hasValue = v, true
		}
		for {
			hasRow, err := r.NextRow(ctx)
			if err != nil {
				return value, hasValue, err
			}
			if !hasRow {
				break
			}
		}
	}
	for {
		more, err := r.NextResult(ctx)
		if err != nil {
			return value, hasValue, err
		}
		if !more {
			break
		}
		for {
			hasRow, err := r.NextRow(ctx)
			if err != nil {
				return value, hasValue, err
			}
			if !hasRow {
				break
			}
		}
	}
	return value, hasValue, nil
}
