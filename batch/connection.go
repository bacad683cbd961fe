package batch

import "sync"

// ConnectionState mirrors the lifecycle spec §4.7's validation guards
// inspect: a Connection accepts ExecuteReader calls while Open or
// Connecting, and only accepts prepare calls while strictly Open.
type ConnectionState uint8

const (
	ConnectionClosed ConnectionState = iota
	ConnectionConnecting
	ConnectionOpen
	ConnectionBroken
)

// Transaction is the minimal handle a Batch may be associated with: just
// enough identity for the validation guard in spec §4.7 ("a Batch's
// Transaction, if any, must match its Connection's current transaction
// unless IgnoreCommandTransaction is set") to compare by reference.
type Transaction struct {
	id uint64
}

// Connection is the non-owning collaborator a Batch executes against: it
// holds the Session used for wire I/O, lifecycle state, the behavior
// flags spec §4.7 consults, and the currently-open Transaction if any.
// One Connection is shared by every Batch created against it. mu guards
// only the Connection's own fields; it is not held across an
// ExecuteReader call, so exclusive use of the Connection is not enforced
// here.
type Connection struct {
	mu sync.Mutex

	session Session
	state   ConnectionState

	IgnoreCommandTransaction bool
	IgnorePrepare            bool
	AsyncIOBehavior          IOMode

	CurrentTransaction *Transaction

	// Procedures is the session-scoped stored-procedure descriptor cache
	// (spec §3's CachedProcedureMap), supplied read-only to every
	// PayloadCreator this Connection's batches execute through.
	Procedures CachedProcedureMap

	// poisoned is set once a COM_MULTI payload reports mid-transmission
	// unsupported (spec §9, Open Question (a)): every subsequent execution
	// on this Connection fails fast with KindProtocol rather than retrying a
	// framing the server has already rejected partway through. poison also
	// moves the state to Broken, so a later prepare fails the strict-Open
	// guard with KindInvalidOperation.
	poisoned bool

	// hasOpenReader tracks whether a ResultReader produced by this
	// Connection is still live, for the stricter pre-prepare guard in
	// spec §4.7 ("no open reader").
	hasOpenReader bool

	cancelReg cancelRegistry
}

// NewConnection returns a Connection in the Open state, wrapping session.
func NewConnection(session Session) *Connection {
	return &Connection{session: session, state: ConnectionOpen}
}

// State returns the Connection's current lifecycle state.
func (c *Connection) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetState transitions the Connection to state, for use by the owning
// transport layer (reference Session implementation) as it connects,
// breaks, or closes.
func (c *Connection) SetState(state ConnectionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
}

// Poisoned reports whether this Connection has seen a COM_MULTI
// mid-transmission unsupported failure and must refuse further calls.
func (c *Connection) Poisoned() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.poisoned
}

func (c *Connection) poison() {
	c.mu.Lock()
	c.poisoned = true
	c.state = ConnectionBroken
	c.mu.Unlock()
}

func (c *Connection) markReaderOpen(open bool) {
	c.mu.Lock()
	c.hasOpenReader = open
	c.mu.Unlock()
}

func (c *Connection) readerOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasOpenReader
}

// procCache returns the procedure descriptor cache to hand to a
// PayloadCreator, initializing it lazily so a zero-value Connection
// never hands out a nil map.
func (c *Connection) procCache() CachedProcedureMap {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Procedures == nil {
		c.Procedures = make(CachedProcedureMap)
	}
	return c.Procedures
}

// CancelBatch implements CancelSink: the delivery mechanism the
// Cancellation Registry calls into once a Batch's context is cancelled.
// This reference implementation poisons nothing — it simply counts the
// attempt and relies on the Session's own context-aware I/O to unblock;
// a transport that needs a sideband kill (spec §4.4's "out of scope
// concrete delivery" note) overrides this by wrapping Connection.
func (c *Connection) CancelBatch(b *Batch) {
	if b != nil {
		b.recordCancelAttempt()
	}
}
