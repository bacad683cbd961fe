package batch

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// cancelRegistry is the Cancellation Registry (C4, spec §4.4): it lets a
// Batch register interest in a context's cancellation for the duration of
// one suspension point, routing a firing into the owning Connection's
// CancelSink, and guarantees the registration is torn down exactly once
// whether it fires or the guarded region simply completes first.
//
// Grounded on context.AfterFunc (Go 1.21+), which is itself the stdlib's
// answer to the scope_guard-on-register pattern spec §4.4 describes —
// registering a callback and returning a stop function that both
// unregisters it and reports whether it had already fired.
type cancelRegistry struct {
	mu    sync.Mutex
	count int64
}

// register arms ctx's cancellation for the lifetime of the returned
// guard's Release call. If ctx cannot be cancelled (context.Background,
// or already nil) register returns a no-op guard, matching spec §4.4's
// "no cancellation source, no registration" case.
func (r *cancelRegistry) register(ctx context.Context, b *Batch, sink CancelSink) cancelGuard {
	if ctx == nil || ctx.Done() == nil || sink == nil {
		return cancelGuard{}
	}
	stop := context.AfterFunc(ctx, func() {
		sink.CancelBatch(b)
		r.mu.Lock()
		r.count++
		r.mu.Unlock()
	})
	return cancelGuard{stop: stop}
}

// attemptCount returns the number of times a registered cancellation has
// actually fired and reached the sink. It is the registry's own count;
// Batch.CancelAttemptCount is counted separately, by the sink's
// CancelBatch.
func (r *cancelRegistry) attemptCount() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// cancelGuard is the scope guard returned by cancelRegistry.register: a
// deferred Release unregisters the callback if it has not already fired.
// Its zero value is a valid no-op guard.
type cancelGuard struct {
	stop func() bool
}

// Release unregisters the guarded callback. Safe to call on a zero-value
// guard and safe to call more than once.
func (g cancelGuard) Release() {
	if g.stop != nil {
		g.stop()
	}
}

// newTraceID returns a fresh correlation id for a Batch, exposed as
// Batch.TraceID; nothing in this module logs it.
func newTraceID() uuid.UUID {
	return uuid.New()
}
