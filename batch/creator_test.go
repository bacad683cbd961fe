package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedesasso/mysqlbatch/protocol"
)

func TestSingleCreatorWritesOneComQueryPerCall(t *testing.T) {
	cursor := newCursor([]*BatchCommand{{Text: "select 1"}, {Text: "select 2"}})
	creator := SingleCreator{}

	w := protocol.NewWriter()
	ok, err := creator.WriteQuery(cursor, nil, w)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, byte(protocol.ComQuery), w.Bytes()[0])
	assert.Equal(t, "select 1", string(w.Bytes()[1:]))
	assert.Equal(t, 1, cursor.index)

	w2 := protocol.NewWriter()
	ok, err = creator.WriteQuery(cursor, nil, w2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "select 2", string(w2.Bytes()[1:]))

	w3 := protocol.NewWriter()
	ok, err = creator.WriteQuery(cursor, nil, w3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSingleCreatorUsesStmtExecuteWhenPrepared(t *testing.T) {
	cmd := &BatchCommand{Text: "select ?"}
	handle := PreparedHandle{StatementID: 9}
	cmd.prepared = &handle
	cursor := newCursor([]*BatchCommand{cmd})

	w := protocol.NewWriter()
	ok, err := SingleCreator{}.WriteQuery(cursor, nil, w)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, byte(protocol.ComStmtExecute), w.Bytes()[0])
}

func TestConcatenatedCreatorJoinsWithSemicolonsNoTrailing(t *testing.T) {
	cursor := newCursor([]*BatchCommand{{Text: "select 1"}, {Text: "select 2"}, {Text: "select 3"}})
	w := protocol.NewWriter()

	ok, err := ConcatenatedCreator{}.WriteQuery(cursor, nil, w)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, cursor.Done())
	assert.Equal(t, "select 1;select 2;select 3", string(w.Bytes()[1:]))
}

func TestConcatenatedCreatorRejectsPreparedCommand(t *testing.T) {
	cmd := &BatchCommand{Text: "select 1"}
	handle := PreparedHandle{StatementID: 1}
	cmd.prepared = &handle
	cursor := newCursor([]*BatchCommand{cmd})

	_, err := ConcatenatedCreator{}.WriteQuery(cursor, nil, protocol.NewWriter())
	assert.True(t, IsKind(err, KindProtocol))
}

func TestBatchedCreatorFramesEachCommandWithComMultiHeader(t *testing.T) {
	cursor := newCursor([]*BatchCommand{{Text: "select 1"}, {Text: "select 2"}})
	w := protocol.NewWriter()

	ok, err := BatchedCreator{}.WriteQuery(cursor, nil, w)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, cursor.Done())

	b := w.Bytes()
	assert.Equal(t, byte(protocol.ComMulti), b[0])
	assert.Equal(t, byte(0xfe), b[1]) // first sub-header marker
}

func TestBatchedCreatorOnEmptyCursor(t *testing.T) {
	cursor := newCursor(nil)
	ok, err := BatchedCreator{}.WriteQuery(cursor, nil, protocol.NewWriter())
	require.NoError(t, err)
	assert.False(t, ok)
}
