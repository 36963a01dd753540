package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func pack(values ...interface{}) []byte {
	buf := bytes.NewBuffer(nil)
	for _, v := range values {
		switch x := v.(type) {
		case uint32:
			binary.Write(buf, binary.BigEndian, x)
		case string:
			buf.WriteString(x)
		}
	}
	return buf.Bytes()
}

func text(s string) []interface{} {
	return []interface{}{uint32(len(s)), s}
}

var frames = []struct {
	name string
	data []byte
	msg  Message
}{
	{"submit reverse", pack(append([]interface{}{uint32(0)}, text("test")...)...),
		NewSubmit(SUBMIT_REVERSE, "test")},
	{"submit transposition", pack(append([]interface{}{uint32(1)}, text("test")...)...),
		NewSubmit(SUBMIT_TRANSPOSITION, "test")},
	{"submit empty", pack(uint32(0), uint32(0)),
		NewSubmit(SUBMIT_REVERSE, "")},
	{"submit ack", pack(uint32(2), uint32(1)),
		NewSubmitAck(1)},
	{"query status", pack(uint32(3), uint32(2)),
		NewQueryStatus(2)},
	{"status reply", pack(uint32(4), uint32(1)),
		NewStatusReply(IN_PROGRESS)},
	{"status not found", pack(uint32(4), uint32(3)),
		NewStatusReply(NOT_FOUND)},
	{"query result", pack(uint32(5), uint32(3)),
		NewQueryResult(3)},
	{"result reply", pack(append([]interface{}{uint32(6), uint32(2)}, text("tset")...)...),
		NewResultReply(COMPLETED, "tset")},
	{"result reply multibyte", pack(append([]interface{}{uint32(6), uint32(2)}, text("привет")...)...),
		NewResultReply(COMPLETED, "привет")},
	{"result not found", pack(uint32(6), uint32(3), uint32(0)),
		NewResultReply(NOT_FOUND, "")},
	{"max id", pack(uint32(2), uint32(0xffffffff)),
		NewSubmitAck(0xffffffff)},
}

func TestDecode(t *testing.T) {
	for _, f := range frames {
		t.Run(f.name, func(t *testing.T) {
			msg, err := Decode(bytes.NewReader(f.data))
			require.NoError(t, err)
			require.Equal(t, f.msg, msg)
		})
	}
}

func TestEncode(t *testing.T) {
	for _, f := range frames {
		t.Run(f.name, func(t *testing.T) {
			data, err := Encode(f.msg)
			require.NoError(t, err)
			require.Equal(t, f.data, data)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, f := range frames {
		data, err := Encode(f.msg)
		require.NoError(t, err)
		msg, err := Decode(bytes.NewReader(data))
		require.NoError(t, err)
		require.Equal(t, f.msg, msg, f.name)

		again, err := Encode(msg)
		require.NoError(t, err)
		require.Equal(t, f.data, again, f.name)
	}
}

func TestDecodeConsumesOneFrame(t *testing.T) {
	var data = append(pack(uint32(3), uint32(7)), pack(uint32(5), uint32(8))...)
	r := bytes.NewReader(data)

	msg, err := Decode(r)
	require.NoError(t, err)
	require.Equal(t, NewQueryStatus(7), msg)

	msg, err = Decode(r)
	require.NoError(t, err)
	require.Equal(t, NewQueryResult(8), msg)

	_, err = Decode(r)
	require.ErrorIs(t, err, ErrClosed)
}

// trickleReader hands out at most one byte per Read.
type trickleReader struct {
	data []byte
}

func (r *trickleReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = r.data[0]
	r.data = r.data[1:]
	return 1, nil
}

func TestDecodeShortReads(t *testing.T) {
	for _, f := range frames {
		msg, err := Decode(&trickleReader{data: f.data})
		require.NoError(t, err, f.name)
		require.Equal(t, f.msg, msg, f.name)
	}
}

// stallReader returns its data, then zero bytes without an error.
type stallReader struct {
	data []byte
}

func (r *stallReader) Read(p []byte) (int, error) {
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestDecodeZeroRead(t *testing.T) {
	_, err := Decode(&stallReader{data: pack(uint32(0), uint32(4), "te")})
	require.ErrorIs(t, err, ErrClosed)
	require.True(t, IsProtocolError(err))
}

func TestDecodeLengthBound(t *testing.T) {
	var long = string(bytes.Repeat([]byte("a"), 300))

	// the declared length alone is enough to reject the frame
	for _, data := range [][]byte{
		pack(uint32(0), uint32(257)),
		pack(uint32(1), uint32(257), long),
		pack(uint32(0), uint32(0xffffffff)),
		pack(uint32(6), uint32(2), uint32(257), long),
	} {
		_, err := Decode(bytes.NewReader(data))
		require.ErrorIs(t, err, ErrTextTooLong)
		require.True(t, IsProtocolError(err))
	}

	var max = string(bytes.Repeat([]byte("a"), MaxTextLength))
	msg, err := Decode(bytes.NewReader(pack(uint32(0), uint32(MaxTextLength), max)))
	require.NoError(t, err)
	require.Equal(t, max, msg.Text)
}

func TestDecodeErrors(t *testing.T) {
	var cases = []struct {
		name string
		data []byte
		err  error
	}{
		{"empty", nil, ErrClosed},
		{"short tag", []byte{0, 0}, ErrClosed},
		{"unknown command", pack(uint32(7), uint32(1)), ErrUnknownCommand},
		{"unknown command large", pack(uint32(0xffffffff)), ErrUnknownCommand},
		{"missing length", pack(uint32(0)), ErrClosed},
		{"truncated text", pack(uint32(0), uint32(4), "te"), ErrClosed},
		{"missing id", pack(uint32(3), "\x00\x01"), ErrClosed},
		{"unknown status", pack(uint32(4), uint32(4)), ErrUnknownStatus},
		{"result unknown status", pack(uint32(6), uint32(9), uint32(0)), ErrUnknownStatus},
		{"result missing text", pack(uint32(6), uint32(2), uint32(3)), ErrClosed},
		{"invalid utf8", pack(uint32(0), uint32(2), "\xff\xfe"), ErrInvalidText},
		{"truncated multibyte", pack(append([]interface{}{uint32(1)}, text("\xd0")...)...), ErrInvalidText},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(c.data))
			require.ErrorIs(t, err, c.err)
			require.True(t, IsProtocolError(err))
		})
	}
}

type failReader struct{}

var errBroken = errors.New("broken pipe")

func (failReader) Read([]byte) (int, error) { return 0, errBroken }

func TestDecodeTransportError(t *testing.T) {
	_, err := Decode(failReader{})
	require.ErrorIs(t, err, errBroken)
	require.False(t, IsProtocolError(err))
}

func TestEncodeTextTooLong(t *testing.T) {
	var long = string(bytes.Repeat([]byte("я"), 129))
	_, err := Encode(NewSubmit(SUBMIT_REVERSE, long))
	require.ErrorIs(t, err, ErrTextTooLong)

	_, err = Encode(NewResultReply(COMPLETED, long))
	require.ErrorIs(t, err, ErrTextTooLong)
}

func TestEncodeUnknownCommandPanics(t *testing.T) {
	require.Panics(t, func() {
		Encode(Message{Command: Command(42)})
	})
	require.Panics(t, func() {
		Encode(NewStatusReply(Status(9)))
	})
}

func TestCommandString(t *testing.T) {
	require.Equal(t, "SUBMIT_REVERSE", SUBMIT_REVERSE.String())
	require.Equal(t, "RESULT_REPLY", RESULT_REPLY.String())
	require.Equal(t, "UNKNOWN(9)", Command(9).String())
	require.True(t, QUERY_RESULT.IsRequest())
	require.False(t, SUBMIT_ACK.IsRequest())
	require.Equal(t, "NOT_FOUND", NOT_FOUND.String())
}
