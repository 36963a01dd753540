// Package client talks to an alena server. Every call opens a connection of
// its own and sends exactly one request.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/zzzzlzzzz/alena/driver"
	"github.com/zzzzlzzzz/alena/protocol"
)

const (
	DEFAULT_TIMEOUT  = 3 * time.Second
	DEFAULT_INTERVAL = time.Second
)

var (
	ErrNotFound    = errors.New("client: task not found")
	ErrUnknownType = errors.New("client: unknown task type")
)

type Client struct {
	addr     string
	timeout  time.Duration
	interval time.Duration
	log      *zap.Logger
}

// New returns a client of the server at addr, eg: 127.0.0.1:5000. Zero
// timeout and interval fall back to the defaults.
func New(addr string, timeout, interval time.Duration, log *zap.Logger) *Client {
	c := new(Client)
	c.addr = addr
	c.timeout = timeout
	if c.timeout <= 0 {
		c.timeout = DEFAULT_TIMEOUT
	}
	c.interval = interval
	if c.interval <= 0 {
		c.interval = DEFAULT_INTERVAL
	}
	c.log = log.With(zap.String("component", "client"), zap.String("addr", addr))
	return c
}

func (c *Client) request(ctx context.Context, req protocol.Message, expect protocol.Command) (reply protocol.Message, err error) {
	var conn *protocol.Conn
	if conn, err = protocol.Dial(ctx, c.addr, c.timeout); err != nil {
		return reply, fmt.Errorf("dial %s: %w", c.addr, err)
	}
	defer conn.Close()

	if err = conn.Send(req); err != nil {
		return reply, fmt.Errorf("send %s: %w", req.Command, err)
	}
	if reply, err = conn.Receive(); err != nil {
		return reply, fmt.Errorf("receive %s: %w", expect, err)
	}
	if reply.Command != expect {
		return protocol.Message{}, fmt.Errorf("%w %s, except %s", protocol.ErrUnexpectedReply, reply.Command, expect)
	}
	return reply, nil
}

// Submit queues text as a task of type t and returns its id without waiting
// for the task to run.
func (c *Client) Submit(ctx context.Context, t driver.TaskType, text string) (uint32, error) {
	var cmd protocol.Command
	switch t {
	case driver.TYPE_REVERSE:
		cmd = protocol.SUBMIT_REVERSE
	case driver.TYPE_TRANSPOSITION:
		cmd = protocol.SUBMIT_TRANSPOSITION
	default:
		return 0, fmt.Errorf("%w %s", ErrUnknownType, t)
	}
	if len(text) > protocol.MaxTextLength {
		return 0, protocol.ErrTextTooLong
	}
	if !utf8.ValidString(text) {
		return 0, protocol.ErrInvalidText
	}

	reply, err := c.request(ctx, protocol.NewSubmit(cmd, text), protocol.SUBMIT_ACK)
	if err != nil {
		return 0, err
	}
	c.log.Debug("submitted", zap.Uint32("task_id", reply.TaskID), zap.Stringer("type", t))
	return reply.TaskID, nil
}

// Status returns the status of task id, protocol.NOT_FOUND for an unknown id.
func (c *Client) Status(ctx context.Context, id uint32) (protocol.Status, error) {
	reply, err := c.request(ctx, protocol.NewQueryStatus(id), protocol.STATUS_REPLY)
	if err != nil {
		return protocol.NOT_FOUND, err
	}
	return reply.Status, nil
}

// Result returns the output of task id. ok is false until the task has
// completed.
func (c *Client) Result(ctx context.Context, id uint32) (output string, ok bool, err error) {
	var reply protocol.Message
	if reply, err = c.request(ctx, protocol.NewQueryResult(id), protocol.RESULT_REPLY); err != nil {
		return
	}
	if reply.Status != protocol.COMPLETED {
		return
	}
	return reply.Text, true, nil
}

// Wait polls the status of task id every interval until it completes, then
// returns its output. onStatus, when not nil, sees every status observed.
// An unknown id returns ErrNotFound. Wait never gives up on its own: it
// stops on a connection error or when ctx is done.
func (c *Client) Wait(ctx context.Context, id uint32, onStatus func(protocol.Status)) (string, error) {
	for {
		status, err := c.Status(ctx, id)
		if err != nil {
			return "", err
		}
		if onStatus != nil {
			onStatus(status)
		}

		switch status {
		case protocol.NOT_FOUND:
			return "", fmt.Errorf("%w: %d", ErrNotFound, id)
		case protocol.COMPLETED:
			output, ok, err := c.Result(ctx, id)
			if err != nil {
				return "", err
			}
			if !ok {
				return "", fmt.Errorf("%w: %d", ErrNotFound, id)
			}
			return output, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.interval):
		}
	}
}

// SubmitWait submits text and waits for its output.
func (c *Client) SubmitWait(ctx context.Context, t driver.TaskType, text string,
	onStatus func(protocol.Status)) (uint32, string, error) {
	id, err := c.Submit(ctx, t, text)
	if err != nil {
		return 0, "", err
	}
	output, err := c.Wait(ctx, id, onStatus)
	return id, output, err
}
