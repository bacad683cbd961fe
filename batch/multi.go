package batch

import "github.com/fedesasso/mysqlbatch/protocol"

// BatchedCreator frames every remaining command as a MariaDB COM_MULTI
// payload (spec §4.2, the "supports COM_MULTI" branch, chosen whatever
// the preparation state): opcode 0x1e, then for each command a 9-byte
// sub-command header (marker 0xfe + 8-byte little-endian sub-command
// length) followed by that command's own single-command bytes, produced
// by delegating to SingleCreator. Each header is reserved in place and
// its length patched once the sub-command body has been written.
type BatchedCreator struct{}

// WriteQuery implements PayloadCreator.
func (BatchedCreator) WriteQuery(cursor *Cursor, procCache CachedProcedureMap, w *protocol.Writer) (bool, error) {
	if cursor.Done() {
		return false, nil
	}
	if err := w.WriteByte(byte(protocol.ComMulti)); err != nil {
		return false, err
	}
	single := SingleCreator{}
	wrote := false
	for !cursor.Done() {
		headerPos, err := w.ReserveComMultiHeader()
		if err != nil {
			return false, err
		}
		ok, err := single.WriteQuery(cursor, procCache, w)
		if err != nil {
			return false, err
		}
		if !ok {
			w.TrimTrailingComMultiHeader()
			break
		}
		w.PatchComMultiHeader(headerPos)
		wrote = true
	}
	return wrote, nil
}
