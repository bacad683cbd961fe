package batch

import "context"

// prepareBatch is the Prepared-Statement Coordinator (C3, spec §4.3): it
// resolves a server-side handle for every command in b, serialized in
// batch order, idempotent by exact command text (a command whose text
// was already prepared earlier in the same batch — or in an earlier
// batch on the same Session — reuses the cached handle rather than
// re-preparing).
//
// When b.Connection.IgnorePrepare is set, prepareBatch still runs the
// stricter validation guard (spec §4.7's "validated but skipped" case)
// but performs no Session calls and leaves every command unprepared, so
// the Executor's creator-selection truth table falls through to the
// text-command path.
func prepareBatch(ctx context.Context, b *Batch, mode IOMode) error {
	if err := validateForPrepare(b); err != nil {
		return err
	}
	if b.Connection.IgnorePrepare {
		return nil
	}
	session := b.Connection.session
	for _, cmd := range b.Commands {
		if cmd.Kind != CommandKindText {
			return NewError(KindUnsupported, "only text commands can be prepared")
		}
		if handle, ok := session.TryGetPrepared(cmd.Text); ok {
			cmd.prepared = &handle
			continue
		}
		handle, err := session.Prepare(ctx, cmd.Text, mode)
		if err != nil {
			return WrapError(err, KindProtocol, "failed to prepare command")
		}
		cmd.prepared = &handle
	}
	return nil
}
