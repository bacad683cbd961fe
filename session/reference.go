package session

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/fedesasso/mysqlbatch/batch"
	"github.com/fedesasso/mysqlbatch/internal/logging"
	"github.com/fedesasso/mysqlbatch/protocol"
)

// ReferenceSession is the one concrete batch.Session this module ships:
// a single already-authenticated MySQL/MariaDB net.Conn, a prepared-
// statement handle cache keyed by exact command text, and COM_MULTI
// capability learned once at construction time (spec §6's external
// interface).
type ReferenceSession struct {
	id     uuid.UUID
	conn   *packetConn
	logger logging.Logger

	comMulti bool

	mu       sync.Mutex
	prepared map[string]batch.PreparedHandle
}

// NewReferenceSession wraps conn. comMulti reports whether the server
// this connection targets has advertised MariaDB's COM_MULTI support
// (this module does not itself parse the initial handshake's capability
// flags — spec §1's Non-goals exclude the handshake — so the caller
// supplies the answer from whatever handshake layer it uses).
func NewReferenceSession(conn net.Conn, comMulti bool, logger logging.Logger) *ReferenceSession {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &ReferenceSession{
		id:       uuid.New(),
		conn:     newPacketConn(conn),
		logger:   logger,
		comMulti: comMulti,
		prepared: make(map[string]batch.PreparedHandle),
	}
}

// SupportsComMulti implements batch.Session.
func (s *ReferenceSession) SupportsComMulti() bool {
	return s.comMulti
}

// TryGetPrepared implements batch.Session.
func (s *ReferenceSession) TryGetPrepared(text string) (batch.PreparedHandle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.prepared[text]
	return h, ok
}

// Prepare implements batch.Session: idempotent by exact text, serialized
// by s.mu so two concurrent Prepare calls for the same connection never
// interleave their COM_STMT_PREPARE request and response.
func (s *ReferenceSession) Prepare(ctx context.Context, text string, mode batch.IOMode) (batch.PreparedHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.prepared[text]; ok {
		return h, nil
	}

	s.conn.resetSequence()
	w := protocol.NewWriter()
	if err := w.WriteByte(byte(protocol.ComStmtPrepare)); err != nil {
		return batch.PreparedHandle{}, err
	}
	b, err := protocol.EncodeUTF8(text)
	if err != nil {
		return batch.PreparedHandle{}, err
	}
	if err := w.Write(b); err != nil {
		return batch.PreparedHandle{}, err
	}
	if err := s.conn.writePayload(ctx, w.Bytes()); err != nil {
		return batch.PreparedHandle{}, batch.WrapError(err, batch.KindIo, "writing COM_STMT_PREPARE")
	}

	resp, err := s.conn.readPacket(ctx)
	if err != nil {
		return batch.PreparedHandle{}, batch.WrapError(err, batch.KindIo, "reading COM_STMT_PREPARE response")
	}
	if len(resp) == 0 {
		return batch.PreparedHandle{}, batch.NewError(batch.KindProtocol, "empty COM_STMT_PREPARE response")
	}
	if resp[0] == 0xff {
		return batch.PreparedHandle{}, parseErrPacket(resp)
	}
	if resp[0] != 0x00 || len(resp) < 12 {
		return batch.PreparedHandle{}, batch.NewError(batch.KindProtocol, "malformed COM_STMT_PREPARE_OK packet")
	}
	statementID := le32(resp[1:5])
	numColumns := int(le16(resp[5:7]))
	numParams := int(le16(resp[7:9]))

	if numParams > 0 {
		if err := s.skipDefinitionBlock(ctx, numParams); err != nil {
			return batch.PreparedHandle{}, err
		}
	}
	if numColumns > 0 {
		if err := s.skipDefinitionBlock(ctx, numColumns); err != nil {
			return batch.PreparedHandle{}, err
		}
	}

	handle := batch.PreparedHandle{StatementID: statementID, ParamCount: numParams, ColumnCount: numColumns}
	s.prepared[text] = handle
	return handle, nil
}

// skipDefinitionBlock reads count column-definition packets followed by
// the closing EOF packet (pre-CLIENT_DEPRECATE_EOF framing, which this
// reference implementation assumes throughout).
func (s *ReferenceSession) skipDefinitionBlock(ctx context.Context, count int) error {
	for i := 0; i < count; i++ {
		if _, err := s.conn.readPacket(ctx); err != nil {
			return batch.WrapError(err, batch.KindIo, "reading definition packet")
		}
	}
	if _, err := s.conn.readPacket(ctx); err != nil {
		return batch.WrapError(err, batch.KindIo, "reading definition block terminator")
	}
	return nil
}

// Transmit implements batch.Session: sends one already-fully-framed
// command payload with a fresh sequence id.
func (s *ReferenceSession) Transmit(ctx context.Context, payload []byte, mode batch.IOMode) error {
	s.conn.resetSequence()
	if err := s.conn.writePayload(ctx, payload); err != nil {
		return batch.WrapError(err, batch.KindIo, "transmitting command payload")
	}
	return nil
}

// OpenReader implements batch.Session. It drives cursor through creator
// one payload at a time: OpenReader sends the first payload, and the
// returned reader's NextResult sends each later one once the previous
// response is exhausted. SingleCreator consumes one command per
// WriteQuery call, so each command is sent and answered in turn;
// ConcatenatedCreator and BatchedCreator each consume the entire cursor
// on their first call, so no later payload is sent — the same code
// handles all three creators without special-casing which one it was
// given.
func (s *ReferenceSession) OpenReader(ctx context.Context, cursor *batch.Cursor, creator batch.PayloadCreator, procCache batch.CachedProcedureMap, behavior batch.Behavior, mode batch.IOMode) (batch.ResultReader, error) {
	r := &resultReader{session: s, cursor: cursor, creator: creator, procCache: procCache}
	if err := r.sendNextPayload(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// mysqlError is a server ERR packet, preserved as the Cause of the
// *batch.Error wrapping it so callers can recover the original code.
type mysqlError struct {
	Code    uint16
	Message string
}

func (e *mysqlError) Error() string {
	return fmt.Sprintf("mysql error %d: %s", e.Code, e.Message)
}

func parseErrPacket(p []byte) error {
	if len(p) < 3 {
		return batch.NewError(batch.KindProtocol, "malformed ERR packet")
	}
	code := le16(p[1:3])
	msg := string(p[3:])
	// a SQL-state marker ('#' + 5 chars) may follow the code; strip it if
	// present so Message is the human text only.
	if len(msg) > 6 && msg[0] == '#' {
		msg = msg[6:]
	}
	kind := batch.KindProtocol
	if isUnsupportedCommandError(code) {
		kind = batch.KindUnsupported
	}
	return batch.WrapError(&mysqlError{Code: code, Message: msg}, kind, "server returned an error")
}

// isUnsupportedCommandError reports whether code is the server's
// "unknown command" error (ER_UNKNOWN_COM_ERROR = 1047), the signal spec
// §9's Open Question (a) uses to detect a server that rejected COM_MULTI.
func isUnsupportedCommandError(code uint16) bool {
	return code == 1047
}
