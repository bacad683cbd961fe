package batch

import "github.com/fedesasso/mysqlbatch/protocol"

// PayloadCreator is the polymorphic capability spec §4.2 describes: a
// closed set of three variants (Single, Concatenated, Batched) selected
// by the Executor, each able to turn some prefix of the cursor's
// remaining commands into bytes written to w.
//
// WriteQuery returns true iff it emitted at least one transmittable
// command on this call (invariant 1, spec §8); it returns false only when
// the cursor was already exhausted. A payload creator never mutates
// procCache; it is supplied read-only.
type PayloadCreator interface {
	WriteQuery(cursor *Cursor, procCache CachedProcedureMap, w *protocol.Writer) (bool, error)
}

// SingleCreator writes one protocol command per call for the command at
// the cursor's current index, handling both plain text (COM_QUERY) and
// prepared (COM_STMT_EXECUTE) forms, and advances the cursor. It is also
// the building block the Batched (COM_MULTI) creator delegates to for
// each sub-command.
type SingleCreator struct{}

// WriteQuery implements PayloadCreator.
func (SingleCreator) WriteQuery(cursor *Cursor, procCache CachedProcedureMap, w *protocol.Writer) (bool, error) {
	cmd := cursor.Current()
	if cmd == nil {
		return false, nil
	}
	if err := writeSingleCommand(cmd, w); err != nil {
		return false, err
	}
	cursor.Advance()
	return true, nil
}

// writeSingleCommand writes cmd's opcode and body: COM_STMT_EXECUTE if
// the command has a resolved prepared handle, else COM_QUERY.
func writeSingleCommand(cmd *BatchCommand, w *protocol.Writer) error {
	if handle, ok := cmd.PreparedHandle(); ok {
		return writeStmtExecute(handle, cmd.Parameters, w)
	}
	return writeComQuery(cmd.Text, cmd.Parameters, w)
}

// writeComQuery writes a COM_QUERY command: opcode 0x03 followed by the
// UTF-8 SQL text (spec §6). Parameters, if any, are substituted inline
// into the text here, via inlineParams, before it is encoded.
func writeComQuery(sql string, params []protocol.Param, w *protocol.Writer) error {
	if err := w.WriteByte(byte(protocol.ComQuery)); err != nil {
		return err
	}
	text := sql
	if len(params) > 0 {
		inlined, err := inlineParams(sql, params)
		if err != nil {
			return err
		}
		text = inlined
	}
	b, err := protocol.EncodeUTF8(text)
	if err != nil {
		return err
	}
	return w.Write(b)
}

// writeStmtExecute writes a COM_STMT_EXECUTE command for a resolved
// prepared handle and its bound parameters, following
// mysql/protocol/packet.go's ComStmtExecutePacket.Marshal layout in the
// teacher repo: opcode, 4-byte statement id, 1-byte flags (cursor type,
// always CURSOR_TYPE_NO_CURSOR = 0 here), 4-byte iteration count (always
// 1), then the bound-parameter block.
func writeStmtExecute(handle PreparedHandle, params []protocol.Param, w *protocol.Writer) error {
	if err := w.WriteByte(byte(protocol.ComStmtExecute)); err != nil {
		return err
	}
	idBuf := make([]byte, 4)
	putUint32LE(idBuf, handle.StatementID)
	if err := w.Write(idBuf); err != nil {
		return err
	}
	if err := w.WriteByte(0x00); err != nil { // CURSOR_TYPE_NO_CURSOR
		return err
	}
	iterBuf := make([]byte, 4)
	putUint32LE(iterBuf, 1)
	if err := w.Write(iterBuf); err != nil {
		return err
	}
	if len(params) == 0 {
		return nil
	}
	return protocol.WriteBoundParams(w, params)
}

func putUint32LE(buf []byte, v uint32) {
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
}
