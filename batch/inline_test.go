package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedesasso/mysqlbatch/protocol"
)

func TestInlineParamsSubstitutesInOrder(t *testing.T) {
	out, err := inlineParams("select * from t where a=? and b=?", []protocol.Param{
		{Value: int64(5)},
		{Value: "o'brien"},
	})
	require.NoError(t, err)
	assert.Equal(t, `select * from t where a=5 and b='o''brien'`, out)
}

func TestInlineParamsNullLiteral(t *testing.T) {
	out, err := inlineParams("insert into t values (?)", []protocol.Param{{Value: nil}})
	require.NoError(t, err)
	assert.Equal(t, "insert into t values (NULL)", out)
}

func TestInlineParamsBackslashEscaping(t *testing.T) {
	out, err := inlineParams(`select ?`, []protocol.Param{{Value: `a\b`}})
	require.NoError(t, err)
	assert.Equal(t, `select 'a\\b'`, out)

	noEscape, err := inlineParamsNoBackslashEscapes(`select ?`, []protocol.Param{{Value: `a\b`}})
	require.NoError(t, err)
	assert.Equal(t, `select 'a\b'`, noEscape)
}

func TestInlineParamsMismatchedCount(t *testing.T) {
	_, err := inlineParams("select ?", nil)
	assert.Error(t, err)

	_, err = inlineParams("select 1", []protocol.Param{{Value: 1}})
	assert.Error(t, err)
}
