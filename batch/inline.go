package batch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fedesasso/mysqlbatch/protocol"
)

// inlineParams substitutes each "?" placeholder in sql, in order, with a
// server-safe literal built from params. It is used by the text-command
// path (plain COM_QUERY, with or without COM_MULTI framing) when a
// command carries parameters but has no resolved prepared handle — the
// binary COM_STMT_EXECUTE path (writeStmtExecute) never calls this.
//
// String values are quoted and backslash-escaped, matching standard
// MySQL string-literal escaping; callers running against a connection in
// NO_BACKSLASH_ESCAPES mode should pre-escape quotes only, via
// inlineParamsNoBackslashEscapes.
func inlineParams(sql string, params []protocol.Param) (string, error) {
	return inline(sql, params, true)
}

// inlineParamsNoBackslashEscapes is inlineParams for a connection whose
// server status reports SERVER_STATUS_NO_BACKSLASH_ESCAPES (spec's data
// model expansion on collation-aware inline substitution).
func inlineParamsNoBackslashEscapes(sql string, params []protocol.Param) (string, error) {
	return inline(sql, params, false)
}

func inline(sql string, params []protocol.Param, backslashEscapes bool) (string, error) {
	var out strings.Builder
	paramIdx := 0
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		if c != '?' {
			out.WriteByte(c)
			continue
		}
		if paramIdx >= len(params) {
			return "", fmt.Errorf("batch: more parameter placeholders than bound parameters")
		}
		lit, err := literalFor(params[paramIdx].Value, backslashEscapes)
		if err != nil {
			return "", err
		}
		out.WriteString(lit)
		paramIdx++
	}
	if paramIdx != len(params) {
		return "", fmt.Errorf("batch: %d bound parameters but only %d placeholders in command text", len(params), paramIdx)
	}
	return out.String(), nil
}

func literalFor(value any, backslashEscapes bool) (string, error) {
	if value == nil {
		return "NULL", nil
	}
	switch v := value.(type) {
	case string:
		b, err := protocol.EncodeUTF8(v)
		if err != nil {
			return "", err
		}
		return quoteString(string(b), backslashEscapes), nil
	case []byte:
		return quoteString(string(v), backslashEscapes), nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	default:
		b, err := protocol.EncodeUTF8(fmt.Sprintf("%v", v))
		if err != nil {
			return "", err
		}
		return quoteString(string(b), backslashEscapes), nil
	}
}

func quoteString(s string, backslashEscapes bool) string {
	var b strings.Builder
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'':
			b.WriteString("''")
		case c == '\\' && backslashEscapes:
			b.WriteString(`\\`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
