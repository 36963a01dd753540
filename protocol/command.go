package protocol

import (
	"encoding/binary"
	"strconv"
)

// Command defines the frame tag.
type Command uint32

const (
	SUBMIT_REVERSE       Command = iota // client
	SUBMIT_TRANSPOSITION                // client
	SUBMIT_ACK                          // server
	QUERY_STATUS                        // client
	STATUS_REPLY                        // server
	QUERY_RESULT                        // client
	RESULT_REPLY                        // server
)

// Bytes returns the 4 byte big-endian tag.
func (c Command) Bytes() []byte {
	var buf = make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(c))
	return buf
}

// Valid reports whether c is a known variant.
func (c Command) Valid() bool {
	return c <= RESULT_REPLY
}

// IsRequest reports whether c is sent by clients.
func (c Command) IsRequest() bool {
	switch c {
	case SUBMIT_REVERSE, SUBMIT_TRANSPOSITION, QUERY_STATUS, QUERY_RESULT:
		return true
	}
	return false
}

func (c Command) String() string {
	switch c {
	case SUBMIT_REVERSE:
		return "SUBMIT_REVERSE"
	case SUBMIT_TRANSPOSITION:
		return "SUBMIT_TRANSPOSITION"
	case SUBMIT_ACK:
		return "SUBMIT_ACK"
	case QUERY_STATUS:
		return "QUERY_STATUS"
	case STATUS_REPLY:
		return "STATUS_REPLY"
	case QUERY_RESULT:
		return "QUERY_RESULT"
	case RESULT_REPLY:
		return "RESULT_REPLY"
	}
	return "UNKNOWN(" + strconv.FormatUint(uint64(c), 10) + ")"
}
