package protocol

import (
	"errors"
	"fmt"
)

// ErrProtocol is the root of every malformed frame error.
var ErrProtocol = errors.New("protocol error")

var (
	ErrUnknownCommand  = fmt.Errorf("%w: unknown command", ErrProtocol)
	ErrUnknownStatus   = fmt.Errorf("%w: unknown status", ErrProtocol)
	ErrTextTooLong     = fmt.Errorf("%w: text exceeds %d bytes", ErrProtocol, MaxTextLength)
	ErrInvalidText     = fmt.Errorf("%w: text is not valid utf-8", ErrProtocol)
	ErrClosed          = fmt.Errorf("%w: stream closed mid-frame", ErrProtocol)
	ErrUnexpectedReply = fmt.Errorf("%w: unexpected reply", ErrProtocol)
	ErrNotRequest      = fmt.Errorf("%w: not a request", ErrProtocol)
)

// IsProtocolError reports whether err comes from a malformed frame.
func IsProtocolError(err error) bool {
	return errors.Is(err, ErrProtocol)
}
