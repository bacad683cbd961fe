package batch

import "github.com/fedesasso/mysqlbatch/protocol"

// ConcatenatedCreator joins every remaining text command into a single
// COM_QUERY payload, separated by semicolons, with no trailing separator
// (spec §4.2, the "all non-prepared" branch of the truth table). It
// consumes the entire cursor on one WriteQuery call.
//
// A command with a resolved prepared handle cannot appear here: the
// Executor only selects ConcatenatedCreator when no command in the batch
// is prepared (spec §4.5 step 4), so encountering one is a programmer
// error in this core, not a runtime condition callers can trigger.
type ConcatenatedCreator struct{}

// WriteQuery implements PayloadCreator.
func (ConcatenatedCreator) WriteQuery(cursor *Cursor, procCache CachedProcedureMap, w *protocol.Writer) (bool, error) {
	if cursor.Done() {
		return false, nil
	}
	if err := w.WriteByte(byte(protocol.ComQuery)); err != nil {
		return false, err
	}
	first := true
	for {
		cmd := cursor.Current()
		if cmd == nil {
			break
		}
		if cmd.IsPrepared() {
			return false, NewError(KindProtocol, "concatenated payload cannot contain a prepared command")
		}
		if !first {
			if err := w.WriteByte(';'); err != nil {
				return false, err
			}
		}
		first = false
		text := cmd.Text
		if len(cmd.Parameters) > 0 {
			inlined, err := inlineParams(cmd.Text, cmd.Parameters)
			if err != nil {
				return false, err
			}
			text = inlined
		}
		b, err := protocol.EncodeUTF8(text)
		if err != nil {
			return false, err
		}
		if err := w.Write(b); err != nil {
			return false, err
		}
		cursor.Advance()
	}
	return true, nil
}
