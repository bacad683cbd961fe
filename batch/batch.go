package batch

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// commandIDSeq is the process-wide monotonic source for Batch.CommandID,
// which identifies a Batch to callers — it carries no protocol meaning.
var commandIDSeq int64

// Batch is one ordered, atomically-executed group of BatchCommands (spec
// §3): the unit ExecuteReader/ExecuteNonQuery/ExecuteScalar operate on.
// A Batch is single-use: once Dispose has run, every Execute* method
// returns KindObjectDisposed.
type Batch struct {
	mu sync.Mutex

	Commands    []*BatchCommand
	Connection  *Connection
	Transaction *Transaction

	// TimeoutSeconds bounds a single ExecuteReader call; 0 means no
	// timeout. Reset at the start of every Execute* call (spec §4.5 step
	// 1).
	TimeoutSeconds int

	CommandID int64
	TraceID   uuid.UUID

	disposed bool

	cancelAttempts int64
}

// NewBatch returns a Batch over commands, bound to no Connection yet.
// Callers set Connection (and optionally Transaction) before executing.
func NewBatch(commands []*BatchCommand) *Batch {
	return &Batch{
		Commands:  commands,
		CommandID: atomic.AddInt64(&commandIDSeq, 1),
		TraceID:   newTraceID(),
	}
}

// Dispose marks b as no longer usable. Idempotent.
func (b *Batch) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disposed = true
}

// disposedState reports whether Dispose has run.
func (b *Batch) disposedState() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disposed
}

// CancelAttemptCount returns how many times this batch's cancellation
// source has fired and reached the Connection's CancelSink.
func (b *Batch) CancelAttemptCount() int64 {
	return atomic.LoadInt64(&b.cancelAttempts)
}

func (b *Batch) recordCancelAttempt() {
	atomic.AddInt64(&b.cancelAttempts, 1)
}

// bindCommands sets each command's owner back-reference to b (spec §4.5
// step 3: "Bind each BatchCommand back to this Batch"). A command already
// bound to a different Batch is rejected — commands are not shareable.
func (b *Batch) bindCommands() error {
	for _, cmd := range b.Commands {
		if cmd.owner != nil && cmd.owner != b {
			return NewError(KindInvalidOperation, "a BatchCommand cannot belong to more than one Batch")
		}
		cmd.owner = b
	}
	return nil
}

// allPrepared reports whether every command in b currently has a
// resolved prepared-statement handle, the second half of the creator
// selection truth table (spec §4.2/§4.5 step 4).
func (b *Batch) allPrepared() bool {
	if len(b.Commands) == 0 {
		return false
	}
	for _, cmd := range b.Commands {
		if !cmd.IsPrepared() {
			return false
		}
	}
	return true
}
