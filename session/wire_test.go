package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLengthEncodedIntTinyAndMarkers(t *testing.T) {
	n, next, err := readLengthEncodedInt([]byte{42}, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), n)
	assert.Equal(t, 1, next)

	n, next, err = readLengthEncodedInt([]byte{0xfc, 0x01, 0x02}, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0201), n)
	assert.Equal(t, 3, next)
}

func TestReadLengthEncodedValueNull(t *testing.T) {
	v, next, err := readLengthEncodedValue([]byte{0xfb}, 0)
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, 1, next)
}

func TestReadLengthEncodedValueString(t *testing.T) {
	p := append([]byte{5}, []byte("hello")...)
	v, next, err := readLengthEncodedValue(p, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
	assert.Equal(t, 6, next)
}

func TestParseTextRowMixedNullAndValues(t *testing.T) {
	p := append([]byte{0xfb}, append([]byte{3}, []byte("abc")...)...)
	row, err := parseTextRow(p, 2)
	require.NoError(t, err)
	assert.Nil(t, row[0])
	assert.Equal(t, "abc", row[1])
}

func TestIsEOFPacket(t *testing.T) {
	assert.True(t, isEOFPacket([]byte{0xfe, 0, 0, 2, 0}))
	assert.False(t, isEOFPacket([]byte{0xfe, 1, 2, 3, 4, 5, 6, 7, 8, 9}))
	assert.False(t, isEOFPacket([]byte{0x01}))
}

func TestParseOKPacket(t *testing.T) {
	// affected_rows=3 (lenenc tiny), last_insert_id=0 (lenenc tiny), status=0x0002
	p := []byte{0x00, 3, 0, 0x02, 0x00}
	affected, status, _ := parseOKPacket(p)
	assert.Equal(t, int64(3), affected)
	assert.Equal(t, uint16(0x0002), status)
}

func TestParseErrPacketStripsSQLState(t *testing.T) {
	p := append([]byte{0xff, 0x27, 0x04}, []byte("#42000Unknown column 'x'")...)
	err := parseErrPacket(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown column")
}
