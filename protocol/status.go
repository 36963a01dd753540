package protocol

import (
	"encoding/binary"
	"strconv"
)

// Status defines the task status code carried by replies.
type Status uint32

const (
	QUEUED Status = iota
	IN_PROGRESS
	COMPLETED
	// NOT_FOUND is reply only, it never describes a stored task.
	NOT_FOUND
)

// Bytes returns the 4 byte big-endian status code.
func (s Status) Bytes() []byte {
	var buf = make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(s))
	return buf
}

// Valid reports whether s is a known status code.
func (s Status) Valid() bool {
	return s <= NOT_FOUND
}

func (s Status) String() string {
	switch s {
	case QUEUED:
		return "QUEUED"
	case IN_PROGRESS:
		return "IN_PROGRESS"
	case COMPLETED:
		return "COMPLETED"
	case NOT_FOUND:
		return "NOT_FOUND"
	}
	return "UNKNOWN(" + strconv.FormatUint(uint64(s), 10) + ")"
}
