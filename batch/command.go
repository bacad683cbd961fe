package batch

import (
	"strings"

	"github.com/fedesasso/mysqlbatch/protocol"
)

// CommandKind distinguishes the logical kind of a BatchCommand. This core
// only supports text commands (spec §3); the type exists so a future
// addition (stored procedure call, prepared-handle reuse) has a home
// without changing BatchCommand's shape.
type CommandKind uint8

const (
	CommandKindText CommandKind = iota
)

// Behavior is a per-command behavior mask, mirroring ADO.NET's
// CommandBehavior flags. Only CloseConnection is inspected by this core
// (spec §4.7/§7: requesting it is Unsupported).
type Behavior uint32

const (
	BehaviorDefault        Behavior = 0
	BehaviorCloseConnection Behavior = 1 << 0
)

// Param is a single bound parameter. Re-exported from protocol so callers
// building a BatchCommand don't need to import both packages for one
// type.
type Param = protocol.Param

// BatchCommand is one logical SQL command within a Batch (spec §3). A
// BatchCommand must not be shared between batches: Batch.bindCommands
// sets its back-reference at execution time.
type BatchCommand struct {
	Text       string
	Kind       CommandKind
	Parameters []Param
	Behavior   Behavior

	// set by Batch.bindCommands immediately before execution (spec §4.5
	// step 3: "Bind each BatchCommand back to this Batch").
	owner *Batch

	// prepared is set once the Prepared-Statement Coordinator has
	// resolved a server-side handle for Text (nil until then).
	prepared *PreparedHandle
}

// IsPrepared reports whether this command currently has a resolved
// server-side prepared-statement handle.
func (c *BatchCommand) IsPrepared() bool {
	return c.prepared != nil
}

// PreparedHandle returns the command's resolved server-side handle, if
// any.
func (c *BatchCommand) PreparedHandle() (PreparedHandle, bool) {
	if c.prepared == nil {
		return PreparedHandle{}, false
	}
	return *c.prepared, true
}

// valid reports whether c satisfies the per-command invariant from spec
// §3/§4.7: non-null (checked by the caller iterating a slice), non-empty,
// non-whitespace text.
func (c *BatchCommand) valid() bool {
	if c == nil {
		return false
	}
	return strings.TrimSpace(c.Text) != ""
}

// ProcedureDescriptor describes a cached stored procedure's parameter
// shape, as looked up from a CachedProcedureMap. This core's commands are
// text-only (spec §3), so no creator consults the CachedProcedureMap it
// is handed, nor any ProcedureDescriptor in it — the type is kept so a
// stored-procedure command kind can be added without changing the
// CachedProcedureMap contract.
type ProcedureDescriptor struct {
	Name       string
	ParamNames []string
}

// CachedProcedureMap is a read-only, session-supplied mapping from
// fully-qualified procedure name to its cached parameter descriptor (spec
// §3). A stored nil value is a tombstone: "looked up, does not exist",
// distinct from a name never looked up at all.
type CachedProcedureMap map[string]*ProcedureDescriptor

// Lookup reports (descriptor, looked-up-before, exists). looked-up-before
// is false when name has never been stored in the map at all.
func (m CachedProcedureMap) Lookup(name string) (desc *ProcedureDescriptor, known bool, exists bool) {
	desc, known = m[name]
	return desc, known, known && desc != nil
}
