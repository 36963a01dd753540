package protocol

import (
	"context"
	"net"
	"time"
)

// Conn carries frames over a net.Conn. Every Receive and Send is bounded by
// the connection timeout when it is positive.
type Conn struct {
	net.Conn
	timeout time.Duration
}

// NewConn wraps conn.
func NewConn(conn net.Conn, timeout time.Duration) *Conn {
	return &Conn{Conn: conn, timeout: timeout}
}

// Dial opens a tcp connection to address.
func Dial(ctx context.Context, address string, timeout time.Duration) (*Conn, error) {
	var dialer = net.Dialer{Timeout: timeout}
	c, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}
	return NewConn(c, timeout), nil
}

// Receive waits for one frame and decodes it.
func (conn *Conn) Receive() (Message, error) {
	if conn.timeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(conn.timeout)); err != nil {
			return Message{}, err
		}
	}
	return Decode(conn.Conn)
}

// Send encodes msg and writes the whole frame.
func (conn *Conn) Send(msg Message) error {
	data, err := Encode(msg)
	if err != nil {
		return err
	}
	if conn.timeout > 0 {
		if err = conn.SetWriteDeadline(time.Now().Add(conn.timeout)); err != nil {
			return err
		}
	}

	written := 0
	for written < len(data) {
		wrote, err := conn.Write(data[written:])
		if err != nil {
			return err
		}
		written = written + wrote
	}

	return nil
}
