package batch

// validateForExecute runs the ordered pre-execute guard chain from spec
// §4.7, stopping at the first violation: disposed, connection presence,
// poisoned, connection state (Open or Connecting both pass), transaction
// match, non-empty command list, then each command's own shape.
func validateForExecute(b *Batch) error {
	if b.disposedState() {
		return NewError(KindObjectDisposed, "batch has been disposed")
	}
	if b.Connection == nil {
		return NewError(KindInvalidOperation, "batch has no connection")
	}
	if b.Connection.Poisoned() {
		return NewError(KindProtocol, "connection is poisoned by a prior failed COM_MULTI transmission")
	}
	switch b.Connection.State() {
	case ConnectionOpen, ConnectionConnecting:
	default:
		return NewError(KindInvalidOperation, "connection is not open")
	}
	if !b.Connection.IgnoreCommandTransaction {
		if b.Transaction != b.Connection.CurrentTransaction {
			return NewError(KindInvalidOperation, "batch's transaction does not match the connection's current transaction")
		}
	}
	if len(b.Commands) == 0 {
		return NewError(KindInvalidOperation, "batch has no commands")
	}
	for _, cmd := range b.Commands {
		if cmd == nil {
			return NewError(KindInvalidOperation, "batch contains a nil command")
		}
		if !cmd.valid() {
			return NewError(KindInvalidOperation, "batch contains a command with empty text")
		}
		if cmd.Behavior&BehaviorCloseConnection != 0 {
			return NewError(KindUnsupported, "CommandBehavior.CloseConnection is not supported")
		}
	}
	return nil
}

// validateForPrepare runs the stricter pre-prepare guard variant (spec
// §4.7): the same chain as validateForExecute, except that the connection
// must be strictly Open (Connecting is rejected here, unlike
// validateForExecute) and must have no currently open reader. The caller
// runs this check even when Connection.IgnorePrepare is set.
func validateForPrepare(b *Batch) error {
	if b.disposedState() {
		return NewError(KindObjectDisposed, "batch has been disposed")
	}
	if b.Connection == nil {
		return NewError(KindInvalidOperation, "batch has no connection")
	}
	if b.Connection.State() != ConnectionOpen {
		return NewError(KindInvalidOperation, "connection is not open")
	}
	if b.Connection.readerOpen() {
		return NewError(KindInvalidOperation, "connection has an open result reader")
	}
	if !b.Connection.IgnoreCommandTransaction && b.Transaction != b.Connection.CurrentTransaction {
		return NewError(KindInvalidOperation, "batch's transaction does not match the connection's current transaction")
	}
	if len(b.Commands) == 0 {
		return NewError(KindInvalidOperation, "batch has no commands")
	}
	for _, cmd := range b.Commands {
		if !cmd.valid() {
			return NewError(KindInvalidOperation, "batch contains a nil command or a command with empty text")
		}
		if cmd.Behavior&BehaviorCloseConnection != 0 {
			return NewError(KindUnsupported, "CommandBehavior.CloseConnection is not supported")
		}
	}
	return nil
}
