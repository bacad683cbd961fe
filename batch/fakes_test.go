package batch

import (
	"context"
	"sync"
)

// fakeSession is a minimal in-memory Session used by this package's own
// tests — no real wire I/O, just enough bookkeeping to exercise the
// Executor, Prepared-Statement Coordinator, and Cancellation Registry in
// isolation.
type fakeSession struct {
	mu           sync.Mutex
	comMulti     bool
	prepared     map[string]PreparedHandle
	prepareCalls int
	transmitted  [][]byte

	openReaderFunc func(ctx context.Context, cursor *Cursor, creator PayloadCreator, procCache CachedProcedureMap, behavior Behavior, mode IOMode) (ResultReader, error)
}

func newFakeSession() *fakeSession {
	return &fakeSession{prepared: make(map[string]PreparedHandle)}
}

func (s *fakeSession) SupportsComMulti() bool { return s.comMulti }

func (s *fakeSession) TryGetPrepared(text string) (PreparedHandle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.prepared[text]
	return h, ok
}

func (s *fakeSession) Prepare(ctx context.Context, text string, mode IOMode) (PreparedHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prepareCalls++
	if h, ok := s.prepared[text]; ok {
		return h, nil
	}
	h := PreparedHandle{StatementID: uint32(len(s.prepared) + 1), ParamCount: 0, ColumnCount: 0}
	s.prepared[text] = h
	return h, nil
}

func (s *fakeSession) Transmit(ctx context.Context, payload []byte, mode IOMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transmitted = append(s.transmitted, payload)
	return nil
}

func (s *fakeSession) OpenReader(ctx context.Context, cursor *Cursor, creator PayloadCreator, procCache CachedProcedureMap, behavior Behavior, mode IOMode) (ResultReader, error) {
	if s.openReaderFunc != nil {
		return s.openReaderFunc(ctx, cursor, creator, procCache, behavior, mode)
	}
	return newFakeReader([][]any{{int64(1)}}), nil
}

// fakeReader is a canned ResultReader: a fixed sequence of result sets,
// each either row-returning (rows non-nil) or an affected-rows-only OK
// result.
type fakeReader struct {
	resultSets    [][][]any
	affectedRows  []int64
	resultIdx     int
	rowIdx        int
	closed        bool
	nextResultErr error
}

func newFakeReader(firstResultRows [][]any) *fakeReader {
	return &fakeReader{resultSets: [][][]any{firstResultRows}, affectedRows: []int64{0}, resultIdx: -1}
}

func newFakeReaderMultiResult(resultSets [][][]any, affected []int64) *fakeReader {
	return &fakeReader{resultSets: resultSets, affectedRows: affected, resultIdx: -1}
}

func (r *fakeReader) NextResult(ctx context.Context) (bool, error) {
	if r.nextResultErr != nil {
		return false, r.nextResultErr
	}
	r.resultIdx++
	r.rowIdx = 0
	if r.resultIdx >= len(r.resultSets) {
		return false, nil
	}
	return true, nil
}

func (r *fakeReader) NextRow(ctx context.Context) (bool, error) {
	if r.resultIdx < 0 || r.resultIdx >= len(r.resultSets) {
		return false, nil
	}
	rows := r.resultSets[r.resultIdx]
	if r.rowIdx >= len(rows) {
		return false, nil
	}
	r.rowIdx++
	return true, nil
}

func (r *fakeReader) ColumnCount() int {
	if r.resultIdx < 0 || r.resultIdx >= len(r.resultSets) || len(r.resultSets[r.resultIdx]) == 0 {
		return 0
	}
	return len(r.resultSets[r.resultIdx][0])
}

func (r *fakeReader) ColumnValue(idx int) (any, error) {
	row := r.resultSets[r.resultIdx][r.rowIdx-1]
	return row[idx], nil
}

func (r *fakeReader) AffectedRows() int64 {
	if r.resultIdx < 0 || r.resultIdx >= len(r.affectedRows) {
		return 0
	}
	return r.affectedRows[r.resultIdx]
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

var _ Session = (*fakeSession)(nil)
var _ ResultReader = (*fakeReader)(nil)
var _ CancelSink = (*Connection)(nil)
