package session

import "fmt"

// readLengthEncodedInt decodes a MySQL length-encoded integer from p
// starting at offset, returning the value and the offset just past it.
func readLengthEncodedInt(p []byte, offset int) (uint64, int, error) {
	if offset >= len(p) {
		return 0, offset, fmt.Errorf("session: truncated length-encoded integer")
	}
	first := p[offset]
	switch {
	case first < 0xfb:
		return uint64(first), offset + 1, nil
	case first == 0xfb:
		return 0, offset + 1, nil // NULL marker; caller checks context
	case first == 0xfc:
		if offset+3 > len(p) {
			return 0, offset, fmt.Errorf("session: truncated 2-byte length-encoded integer")
		}
		return uint64(p[offset+1]) | uint64(p[offset+2])<<8, offset + 3, nil
	case first == 0xfd:
		if offset+4 > len(p) {
			return 0, offset, fmt.Errorf("session: truncated 3-byte length-encoded integer")
		}
		return uint64(p[offset+1]) | uint64(p[offset+2])<<8 | uint64(p[offset+3])<<16, offset + 4, nil
	case first == 0xfe:
		if offset+9 > len(p) {
			return 0, offset, fmt.Errorf("session: truncated 8-byte length-encoded integer")
		}
		var v uint64
		for i := 0; i < 8; i++ {
			v |= uint64(p[offset+1+i]) << (8 * i)
		}
		return v, offset + 9, nil
	default:
		return 0, offset, fmt.Errorf("session: invalid length-encoded integer marker 0x%02x", first)
	}
}

// readLengthEncodedValue reads one column's text-protocol value: either
// NULL (marker 0xfb) or a length-encoded byte string.
func readLengthEncodedValue(p []byte, offset int) (value any, next int, err error) {
	if offset >= len(p) {
		return nil, offset, fmt.Errorf("session: truncated row value")
	}
	if p[offset] == 0xfb {
		return nil, offset + 1, nil
	}
	n, next, err := readLengthEncodedInt(p, offset)
	if err != nil {
		return nil, offset, err
	}
	if next+int(n) > len(p) {
		return nil, offset, fmt.Errorf("session: truncated row value data")
	}
	return string(p[next : next+int(n)]), next + int(n), nil
}

// parseTextRow decodes one text-protocol row packet into columnCount
// values, each a string or nil (SQL NULL).
func parseTextRow(p []byte, columnCount int) ([]any, error) {
	row := make([]any, columnCount)
	offset := 0
	for i := 0; i < columnCount; i++ {
		v, next, err := readLengthEncodedValue(p, offset)
		if err != nil {
			return nil, err
		}
		row[i] = v
		offset = next
	}
	return row, nil
}

// isEOFPacket reports whether p is an EOF/terminator packet in the
// classic (pre-CLIENT_DEPRECATE_EOF) protocol: marker 0xfe and a total
// length under 9 bytes, the standard heuristic every MySQL client uses to
// distinguish it from a length-encoded row value that happens to start
// with 0xfe.
func isEOFPacket(p []byte) bool {
	return len(p) > 0 && p[0] == 0xfe && len(p) < 9
}

// parseEOFPacket extracts the warning count and status flags from an EOF
// packet.
func parseEOFPacket(p []byte) (warnings uint16, status uint16) {
	if len(p) < 5 {
		return 0, 0
	}
	warnings = le16(p[1:3])
	status = le16(p[3:5])
	return warnings, status
}

// parseOKPacket extracts affected rows and status flags from an OK
// packet (p[0] == 0x00).
func parseOKPacket(p []byte) (affectedRows int64, status uint16, next int) {
	offset := 1
	affected, offset, err := readLengthEncodedInt(p, offset)
	if err != nil {
		return 0, 0, offset
	}
	_, offset, err = readLengthEncodedInt(p, offset) // last insert id, unused
	if err != nil {
		return int64(affected), 0, offset
	}
	if offset+2 > len(p) {
		return int64(affected), 0, offset
	}
	status = le16(p[offset : offset+2])
	offset += 2
	return int64(affected), status, offset
}
