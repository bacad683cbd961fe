package batch

import "context"

// IOMode selects between inline synchronous execution and suspension at
// every packet boundary (spec §5). Both modes drive the exact same code
// path in this core; in Go idiom "synchronous" simply means a context
// that is never cancelled and I/O calls that block.
type IOMode uint8

const (
	IOAsynchronous IOMode = iota
	IOSynchronous
)

// PreparedHandle identifies a server-side prepared statement, returned by
// Session.Prepare and consulted by Session.TryGetPrepared.
type PreparedHandle struct {
	StatementID uint32
	ParamCount  int
	ColumnCount int
}

// Session is the external collaborator this core depends on (spec §3/§6):
// an already-authenticated connection able to transmit framed command
// payloads, read framed response packets, and maintain a prepared-
// statement registry. Concrete transports (TCP/TLS/pipe, auth handshake)
// are out of scope for this core (spec §1) and live behind this
// interface; package session ships one reference implementation.
type Session interface {
	// SupportsComMulti reports whether the server accepts MariaDB's
	// COM_MULTI batched-command frame.
	SupportsComMulti() bool

	// TryGetPrepared returns the cached handle for an exact command
	// text, if the registry already holds one.
	TryGetPrepared(text string) (PreparedHandle, bool)

	// Prepare registers text with the server if not already prepared,
	// idempotent by exact text (spec §4.3). It must serialize internally
	// with any other in-flight Prepare call on the same Session.
	Prepare(ctx context.Context, text string, mode IOMode) (PreparedHandle, error)

	// Transmit sends one fully-framed command payload.
	Transmit(ctx context.Context, payload []byte, mode IOMode) error

	// OpenReader transmits the command payload written by creator against
	// cursor and returns a streaming multi-result-set reader.
	OpenReader(ctx context.Context, cursor *Cursor, creator PayloadCreator, procCache CachedProcedureMap, behavior Behavior, mode IOMode) (ResultReader, error)
}

// CancelSink is the Connection-side cancel delivery mechanism a Batch's
// cancellation registration calls into (spec §4.4: "delegates to the
// Connection's cancel path with the batch as argument"). Concrete
// delivery (a sideband kill connection, protocol-level interrupt) is out
// of scope for this core.
type CancelSink interface {
	CancelBatch(b *Batch)
}
