package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"
)

// Encode packs msg into one frame. It fails only when a text field is longer
// than MaxTextLength. Encoding a Message with an unknown command or status is
// a programming error and panics.
func Encode(msg Message) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	buf.Write(msg.Command.Bytes())
	switch msg.Command {
	case SUBMIT_REVERSE, SUBMIT_TRANSPOSITION:
		if err := writeText(buf, msg.Text); err != nil {
			return nil, err
		}
	case SUBMIT_ACK, QUERY_STATUS, QUERY_RESULT:
		buf.Write(uint32Bytes(msg.TaskID))
	case STATUS_REPLY:
		buf.Write(mustStatus(msg.Status).Bytes())
	case RESULT_REPLY:
		buf.Write(mustStatus(msg.Status).Bytes())
		if err := writeText(buf, msg.Text); err != nil {
			return nil, err
		}
	default:
		panic("protocol: encode unknown command " + msg.Command.String())
	}
	return buf.Bytes(), nil
}

// Decode reads exactly one frame from r.
func Decode(r io.Reader) (msg Message, err error) {
	var tag uint32
	if tag, err = readUint32(r); err != nil {
		return
	}
	msg.Command = Command(tag)
	switch msg.Command {
	case SUBMIT_REVERSE, SUBMIT_TRANSPOSITION:
		msg.Text, err = readText(r)
	case SUBMIT_ACK, QUERY_STATUS, QUERY_RESULT:
		msg.TaskID, err = readUint32(r)
	case STATUS_REPLY:
		msg.Status, err = readStatus(r)
	case RESULT_REPLY:
		if msg.Status, err = readStatus(r); err == nil {
			msg.Text, err = readText(r)
		}
	default:
		err = fmt.Errorf("%w %d", ErrUnknownCommand, tag)
	}
	if err != nil {
		return Message{}, err
	}
	return
}

func mustStatus(s Status) Status {
	if !s.Valid() {
		panic("protocol: encode unknown status " + s.String())
	}
	return s
}

func uint32Bytes(v uint32) []byte {
	var buf = make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	return buf
}

func writeText(buf *bytes.Buffer, text string) error {
	if len(text) > MaxTextLength {
		return fmt.Errorf("%w: got %d", ErrTextTooLong, len(text))
	}
	buf.Write(uint32Bytes(uint32(len(text))))
	buf.WriteString(text)
	return nil
}

// readFull accumulates reads until buf is filled. A read that returns no
// bytes and no error is treated as a closed stream.
func readFull(r io.Reader, buf []byte) error {
	nRead := 0
	for nRead < len(buf) {
		n, err := r.Read(buf[nRead:])
		nRead = nRead + n
		if nRead == len(buf) {
			break
		}
		if err == io.EOF || (err == nil && n == 0) {
			return ErrClosed
		}
		if err != nil {
			return fmt.Errorf("protocol: read: %w", err)
		}
	}
	return nil
}

func readUint32(r io.Reader) (uint32, error) {
	var buf = make([]byte, 4)
	if err := readFull(r, buf); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf), nil
}

func readStatus(r io.Reader) (Status, error) {
	v, err := readUint32(r)
	if err != nil {
		return 0, err
	}
	status := Status(v)
	if !status.Valid() {
		return 0, fmt.Errorf("%w %d", ErrUnknownStatus, v)
	}
	return status, nil
}

func readText(r io.Reader) (string, error) {
	length, err := readUint32(r)
	if err != nil {
		return "", err
	}
	if length > MaxTextLength {
		return "", fmt.Errorf("%w: got %d", ErrTextTooLong, length)
	}
	var data = make([]byte, length)
	if err = readFull(r, data); err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", ErrInvalidText
	}
	return string(data), nil
}
