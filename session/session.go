// Package session provides a reference implementation of the
// batch.Session collaborator: a net.Conn-backed MySQL/MariaDB connection
// that frames outgoing command payloads and parses incoming response
// packets. Concrete authentication handshakes and TLS negotiation are out
// of this module's scope (spec §1's Non-goals) — callers hand this
// package an already-authenticated net.Conn.
package session

import (
	"context"
	"io"
	"net"
	"sync"
)

// maxPayloadChunk is the threshold at which a packet's payload must be
// split across multiple physical packets (spec §6's wire framing,
// grounded on the teacher's io/packet_split.go: a payload of exactly
// 0xffffff bytes is always followed by a zero-length terminator packet so
// the reader can distinguish "exactly at the boundary" from "more to
// come").
const maxPayloadChunk = 0xffffff

// packetConn implements the 3-byte-length + 1-byte-sequence packet
// framing MySQL's wire protocol uses for every command and response,
// grounded on the teacher's io/io.go (readPacket/WritePacket) and
// io/packet_split.go chunking logic.
type packetConn struct {
	conn net.Conn

	mu       sync.Mutex
	writeSeq uint8
	readSeq  uint8
}

func newPacketConn(conn net.Conn) *packetConn {
	return &packetConn{conn: conn}
}

// resetSequence restarts the sequence-id counter, which MySQL requires at
// the start of every new command (spec §6).
func (c *packetConn) resetSequence() {
	c.mu.Lock()
	c.writeSeq = 0
	c.readSeq = 0
	c.mu.Unlock()
}

// writePayload frames payload into one or more physical packets and
// writes them, honoring ctx cancellation between chunks.
func (c *packetConn) writePayload(ctx context.Context, payload []byte) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk := payload
		more := false
		if len(chunk) >= maxPayloadChunk {
			chunk = payload[:maxPayloadChunk]
			more = true
		}
		header := make([]byte, 4)
		header[0] = byte(len(chunk))
		header[1] = byte(len(chunk) >> 8)
		header[2] = byte(len(chunk) >> 16)

		c.mu.Lock()
		header[3] = c.writeSeq
		c.writeSeq++
		c.mu.Unlock()

		if _, err := c.conn.Write(header); err != nil {
			return err
		}
		if len(chunk) > 0 {
			if _, err := c.conn.Write(chunk); err != nil {
				return err
			}
		}
		if !more {
			return nil
		}
		payload = payload[maxPayloadChunk:]
		if len(payload) == 0 {
			// exact multiple of the chunk size: a trailing zero-length
			// packet signals "no more" per the protocol's convention.
			return c.writePayload(ctx, nil)
		}
	}
}

// readPacket reads one logical packet, reassembling any chunked payload
// that spans multiple physical 0xffffff-byte packets.
func (c *packetConn) readPacket(ctx context.Context) ([]byte, error) {
	var full []byte
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		header := make([]byte, 4)
		if _, err := io.ReadFull(c.conn, header); err != nil {
			return nil, err
		}
		length := int(header[0]) | int(header[1])<<8 | int(header[2])<<16
		seq := header[3]

		c.mu.Lock()
		c.readSeq = seq + 1
		c.mu.Unlock()

		if length == 0 {
			return full, nil
		}
		payload := make([]byte, length)
		if _, err := io.ReadFull(c.conn, payload); err != nil {
			return nil, err
		}
		full = append(full, payload...)
		if length < maxPayloadChunk {
			return full, nil
		}
	}
}

func (c *packetConn) close() error {
	return c.conn.Close()
}
