package client_test

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zzzzlzzzz/alena"
	"github.com/zzzzlzzzz/alena/client"
	"github.com/zzzzlzzzz/alena/driver"
	"github.com/zzzzlzzzz/alena/jobs"
	"github.com/zzzzlzzzz/alena/protocol"
	"github.com/zzzzlzzzz/alena/queue"
	"github.com/zzzzlzzzz/alena/stat"
)

func startServer(t *testing.T, registry jobs.Registry) string {
	t.Helper()
	s := alena.NewServer(driver.NewMemStoreDriver(), queue.New(), registry,
		stat.NewStats(), alena.Options{Timeout: time.Second}, zap.NewNop())
	listen, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, listen)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return listen.Addr().String()
}

func newClient(addr string) *client.Client {
	return client.New(addr, time.Second, 10*time.Millisecond, zap.NewNop())
}

func TestSubmitWait(t *testing.T) {
	registry := jobs.NewDelayedRegistry(50*time.Millisecond, 50*time.Millisecond)
	c := newClient(startServer(t, registry))

	tests := []struct {
		t        driver.TaskType
		input    string
		expected string
	}{
		{driver.TYPE_REVERSE, "test", "tset"},
		{driver.TYPE_TRANSPOSITION, "abcdef", "badcfe"},
		{driver.TYPE_TRANSPOSITION, "qwert", "wqret"},
		{driver.TYPE_REVERSE, "привет", "тевирп"},
	}
	for i, tt := range tests {
		var seen []protocol.Status
		id, output, err := c.SubmitWait(context.Background(), tt.t, tt.input, func(s protocol.Status) {
			seen = append(seen, s)
		})
		require.NoError(t, err)
		require.Equal(t, uint32(i), id)
		require.Equal(t, tt.expected, output)

		require.NotEmpty(t, seen)
		require.Equal(t, protocol.COMPLETED, seen[len(seen)-1])
		for j := 1; j < len(seen); j++ {
			require.GreaterOrEqual(t, uint32(seen[j]), uint32(seen[j-1]))
		}
	}
}

func TestSubmitThenResult(t *testing.T) {
	c := newClient(startServer(t, jobs.NewRegistry()))
	ctx := context.Background()

	id, err := c.Submit(ctx, driver.TYPE_REVERSE, "reversed")
	require.NoError(t, err)

	output, err := c.Wait(ctx, id, nil)
	require.NoError(t, err)
	require.Equal(t, "desrever", output)

	output, ok, err := c.Result(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "desrever", output)
}

func TestNotFound(t *testing.T) {
	c := newClient(startServer(t, jobs.NewRegistry()))
	ctx := context.Background()

	status, err := c.Status(ctx, 9999)
	require.NoError(t, err)
	require.Equal(t, protocol.NOT_FOUND, status)

	_, ok, err := c.Result(ctx, 9999)
	require.NoError(t, err)
	require.False(t, ok)

	var seen []protocol.Status
	_, err = c.Wait(ctx, 9999, func(s protocol.Status) {
		seen = append(seen, s)
	})
	require.ErrorIs(t, err, client.ErrNotFound)
	require.Equal(t, []protocol.Status{protocol.NOT_FOUND}, seen)
}

func TestWaitContext(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	registry := jobs.Registry{Reverse: func(input string) string {
		<-gate
		return input
	}}
	c := newClient(startServer(t, registry))

	id, err := c.Submit(context.Background(), driver.TYPE_REVERSE, "test")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = c.Wait(ctx, id, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSubmitLocalErrors(t *testing.T) {
	// nothing listens here, the checks fail before dialing
	c := newClient("127.0.0.1:1")
	ctx := context.Background()

	_, err := c.Submit(ctx, driver.TYPE_REVERSE, strings.Repeat("a", protocol.MaxTextLength+1))
	require.ErrorIs(t, err, protocol.ErrTextTooLong)

	_, err = c.Submit(ctx, driver.TYPE_REVERSE, "\xff")
	require.ErrorIs(t, err, protocol.ErrInvalidText)

	_, err = c.Submit(ctx, driver.TaskType(9), "test")
	require.ErrorIs(t, err, client.ErrUnknownType)
}

func TestMaxLengthAccepted(t *testing.T) {
	c := newClient(startServer(t, jobs.NewRegistry()))
	text := strings.Repeat("ab", protocol.MaxTextLength/2)

	_, output, err := c.SubmitWait(context.Background(), driver.TYPE_TRANSPOSITION, text, nil)
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("ba", protocol.MaxTextLength/2), output)
}

func TestUnexpectedReply(t *testing.T) {
	listen, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listen.Close()
	go func() {
		for {
			conn, err := listen.Accept()
			if err != nil {
				return
			}
			c := protocol.NewConn(conn, time.Second)
			if _, err = c.Receive(); err == nil {
				c.Send(protocol.NewSubmitAck(7))
			}
			c.Close()
		}
	}()

	c := newClient(listen.Addr().String())
	_, err = c.Status(context.Background(), 0)
	require.ErrorIs(t, err, protocol.ErrUnexpectedReply)

	_, err = c.Wait(context.Background(), 0, nil)
	require.ErrorIs(t, err, protocol.ErrUnexpectedReply)
}

func TestConnectionError(t *testing.T) {
	listen, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listen.Addr().String()
	listen.Close()

	c := newClient(addr)
	_, err = c.Status(context.Background(), 0)
	require.Error(t, err)
	require.False(t, protocol.IsProtocolError(err))

	_, err = c.Wait(context.Background(), 0, nil)
	require.Error(t, err)
}
