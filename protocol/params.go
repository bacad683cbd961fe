package protocol

import (
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/text/encoding/unicode"
)

// utf8Encoder transcodes Go strings to UTF-8 bytes defensively, matching
// the teacher's charset-aware string handling (pkg/utils/collation.go)
// generalized from comparison to wire encoding: a string built from a
// non-UTF-8 decoder upstream is normalized here rather than producing a
// malformed COM_QUERY body.
var utf8Encoder = unicode.UTF8.NewEncoder()

// EncodeUTF8 returns s transcoded to UTF-8 bytes. Go strings are UTF-8 by
// convention but not by guarantee; this makes the guarantee explicit at
// the wire boundary.
func EncodeUTF8(s string) ([]byte, error) {
	out, err := utf8Encoder.Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("protocol: transcoding parameter text to utf-8: %w", err)
	}
	return out, nil
}

// Param is one bound parameter for a prepared-statement execution.
type Param struct {
	Name string
	Type uint8 // one of the Type* constants; TypeUnknown to infer from Value
	Value any
}

// WriteLengthEncodedInt appends n in MySQL length-encoded-integer form.
func WriteLengthEncodedInt(w *Writer, n uint64) error {
	switch {
	case n < 251:
		return w.WriteByte(byte(n))
	case n < 1<<16:
		buf := make([]byte, 3)
		buf[0] = 0xfc
		binary.LittleEndian.PutUint16(buf[1:], uint16(n))
		return w.Write(buf)
	case n < 1<<24:
		buf := make([]byte, 4)
		buf[0] = 0xfd
		buf[1] = byte(n)
		buf[2] = byte(n >> 8)
		buf[3] = byte(n >> 16)
		return w.Write(buf)
	default:
		buf := make([]byte, 9)
		buf[0] = 0xfe
		binary.LittleEndian.PutUint64(buf[1:], n)
		return w.Write(buf)
	}
}

// WriteLengthEncodedString appends s as a length-encoded string: a
// length-encoded integer byte count followed by the raw (UTF-8
// transcoded) bytes.
func WriteLengthEncodedString(w *Writer, s string) error {
	b, err := EncodeUTF8(s)
	if err != nil {
		return err
	}
	if err := WriteLengthEncodedInt(w, uint64(len(b))); err != nil {
		return err
	}
	return w.Write(b)
}

// WriteLengthEncodedBytes appends b as a length-encoded byte string (used
// for BLOB-typed parameters, which are not transcoded).
func WriteLengthEncodedBytes(w *Writer, b []byte) error {
	if err := WriteLengthEncodedInt(w, uint64(len(b))); err != nil {
		return err
	}
	return w.Write(b)
}

// nullBitmapSize returns the byte length of a COM_STMT_EXECUTE null bitmap
// for paramCount parameters. Per the binary protocol, the bitmap reserves
// its first 2 bits (relative to COM_STMT_EXECUTE's layout) before the
// first parameter's flag, so paramCount parameters need
// ceil((paramCount+2)/8) bytes.
func nullBitmapSize(paramCount int) int {
	return (paramCount + 2 + 7) / 8
}

// WriteBoundParams appends the NULL-bitmap, new-params-bind-flag, type
// table, and packed values for params, following COM_STMT_EXECUTE's
// binary parameter encoding. Grounded on
// mysql/protocol/packet.go:ComStmtExecutePacket.Marshal in the teacher
// repo, generalized from that struct's ad hoc []any values to this
// module's typed Param.
func WriteBoundParams(w *Writer, params []Param) error {
	bitmapLen := nullBitmapSize(len(params))
	bitmap := make([]byte, bitmapLen)
	for i, p := range params {
		if isNullValue(p.Value) {
			bitPos := i + 2
			bitmap[bitPos/8] |= 1 << uint(bitPos%8)
		}
	}
	if err := w.Write(bitmap); err != nil {
		return err
	}

	// new_params_bind_flag: always 1 here; this core always resends type
	// information, since a Batch never reuses a server-side bound
	// parameter set across executions.
	if err := w.WriteByte(1); err != nil {
		return err
	}

	resolved := make([]uint8, len(params))
	for i, p := range params {
		t := p.Type
		if t == TypeUnknown || t == 0 && p.Value != nil {
			t = inferParamType(p.Value)
		}
		resolved[i] = t
		if err := w.WriteByte(t); err != nil {
			return err
		}
		if err := w.WriteByte(0); err != nil { // parameter flag (unsigned bit), unused here
			return err
		}
	}

	for i, p := range params {
		if isNullValue(p.Value) {
			continue
		}
		if err := writeParamValue(w, resolved[i], p.Value); err != nil {
			return fmt.Errorf("protocol: encoding parameter %q: %w", p.Name, err)
		}
	}
	return nil
}

func isNullValue(v any) bool {
	return v == nil
}

func inferParamType(v any) uint8 {
	switch v.(type) {
	case int8, uint8:
		return TypeTiny
	case int16, uint16:
		return TypeShort
	case int32, uint32:
		return TypeLong
	case int, int64, uint, uint64:
		return TypeLongLong
	case float32:
		return TypeFloat
	case float64:
		return TypeDouble
	case []byte:
		return TypeBlob
	default:
		return TypeVarString
	}
}

func writeParamValue(w *Writer, typ uint8, value any) error {
	switch typ {
	case TypeTiny:
		return w.WriteByte(byte(toInt64(value)))
	case TypeShort:
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, uint16(toInt64(value)))
		return w.Write(buf)
	case TypeLong:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(toInt64(value)))
		return w.Write(buf)
	case TypeLongLong:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, uint64(toInt64(value)))
		return w.Write(buf)
	case TypeFloat:
		f, ok := value.(float32)
		if !ok {
			f = float32(toFloat64(value))
		}
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
		return w.Write(buf)
	case TypeDouble:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, math.Float64bits(toFloat64(value)))
		return w.Write(buf)
	case TypeBlob:
		b, ok := value.([]byte)
		if !ok {
			return fmt.Errorf("value of type %T is not []byte for blob parameter", value)
		}
		return WriteLengthEncodedBytes(w, b)
	case TypeVarchar, TypeVarString, TypeString, TypeNewDecimal:
		s, ok := value.(string)
		if !ok {
			s = fmt.Sprintf("%v", value)
		}
		return WriteLengthEncodedString(w, s)
	default:
		s := fmt.Sprintf("%v", value)
		return WriteLengthEncodedString(w, s)
	}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}
