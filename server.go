// Package alena runs the task server: connection handlers accept jobs and
// answer queries, workers execute them in submission order.
package alena

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zzzzlzzzz/alena/driver"
	"github.com/zzzzlzzzz/alena/jobs"
	"github.com/zzzzlzzzz/alena/protocol"
	"github.com/zzzzlzzzz/alena/queue"
	"github.com/zzzzlzzzz/alena/stat"
)

// Options tune a Server. Zero values fall back to the defaults.
type Options struct {
	// Timeout bounds every read and write on a connection.
	Timeout time.Duration
	// Workers is the size of the worker pool. With more than one worker
	// tasks still start in submission order but may complete in any order.
	Workers int
	// HTTP is the listen address of the inspection API, empty to disable.
	HTTP string
}

const DEFAULT_TIMEOUT = 3 * time.Second

type Server struct {
	store   driver.StoreDriver
	queue   *queue.Queue
	jobs    jobs.Registry
	stats   *stat.Stats
	timeout time.Duration
	workers int
	http    string
	base    *zap.Logger
	log     *zap.Logger
}

func NewServer(store driver.StoreDriver, q *queue.Queue, registry jobs.Registry,
	stats *stat.Stats, opts Options, log *zap.Logger) *Server {
	s := new(Server)
	s.store = store
	s.queue = q
	s.jobs = registry
	s.stats = stats
	s.timeout = opts.Timeout
	if s.timeout <= 0 {
		s.timeout = DEFAULT_TIMEOUT
	}
	s.workers = opts.Workers
	if s.workers < 1 {
		s.workers = 1
	}
	s.http = opts.HTTP
	s.base = log
	s.log = log.With(zap.String("component", "server"))
	return s
}

// ListenAndServe listens on the tcp address addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listen, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is done or accepting fails.
// It returns once every goroutine it started has stopped.
func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		return listen.Close()
	})

	for i := 0; i < s.workers; i++ {
		w := NewWorker(i, s.store, s.queue, s.jobs, s.stats, s.base)
		g.Go(func() error {
			return w.Run(ctx)
		})
	}

	if s.http != "" {
		srv := &http.Server{
			Addr:     s.http,
			Handler:  s.HTTPHandler(),
			ErrorLog: zap.NewStdLog(s.base.With(zap.String("component", "http"))),
		}
		g.Go(func() error {
			s.log.Info("http api started", zap.String("addr", s.http))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdown, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()
			return srv.Shutdown(shutdown)
		})
	}

	s.log.Info("alena started", zap.String("addr", listen.Addr().String()),
		zap.Int("workers", s.workers))
	g.Go(func() error {
		var delay time.Duration
		for {
			conn, err := listen.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				if errors.Is(err, net.ErrClosed) {
					return err
				}
				delay = acceptBackoff(delay)
				s.log.Warn("accept", zap.Error(err), zap.Duration("retry", delay))
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(delay):
				}
				continue
			}
			delay = 0
			g.Go(func() error {
				s.handleConnection(conn)
				return nil
			})
		}
	})

	return g.Wait()
}

const (
	MIN_ACCEPT_DELAY = 5 * time.Millisecond
	MAX_ACCEPT_DELAY = time.Second
)

// acceptBackoff doubles the previous delay between failed accepts.
func acceptBackoff(delay time.Duration) time.Duration {
	if delay == 0 {
		return MIN_ACCEPT_DELAY
	}
	delay = delay * 2
	if delay > MAX_ACCEPT_DELAY {
		delay = MAX_ACCEPT_DELAY
	}
	return delay
}

func (s *Server) handleConnection(conn net.Conn) {
	c := protocol.NewConn(conn, s.timeout)
	log := s.log.With(zap.String("remote", conn.RemoteAddr().String()))
	defer c.Close()
	defer func() {
		if x := recover(); x != nil {
			log.Error("connection panic", zap.Any("panic", x))
		}
	}()

	req, err := c.Receive()
	if err != nil {
		log.Warn("receive request", zap.Error(err))
		return
	}
	reply, err := s.handle(req)
	if err != nil {
		log.Warn("handle request", zap.Stringer("command", req.Command), zap.Error(err))
		return
	}
	if err = c.Send(reply); err != nil {
		log.Warn("send reply", zap.Stringer("command", reply.Command), zap.Error(err))
	}
}

// handle applies one request and returns its reply. An error means the
// connection must be closed without a reply.
func (s *Server) handle(req protocol.Message) (protocol.Message, error) {
	switch req.Command {
	case protocol.SUBMIT_REVERSE:
		return s.submit(driver.TYPE_REVERSE, req.Text)
	case protocol.SUBMIT_TRANSPOSITION:
		return s.submit(driver.TYPE_TRANSPOSITION, req.Text)
	case protocol.QUERY_STATUS:
		return s.status(req.TaskID)
	case protocol.QUERY_RESULT:
		return s.result(req.TaskID)
	}
	return protocol.Message{}, fmt.Errorf("%w %s", protocol.ErrNotRequest, req.Command)
}

func (s *Server) submit(t driver.TaskType, input string) (protocol.Message, error) {
	s.log.Info("POST_TASK", zap.Stringer("type", t), zap.String("data", input))
	id, err := s.store.Allocate(t, input)
	if err != nil {
		return protocol.Message{}, err
	}
	s.stats.Get(t.String()).Submitted()
	s.queue.Push(id)
	return protocol.NewSubmitAck(id), nil
}

func (s *Server) status(id uint32) (protocol.Message, error) {
	s.log.Info("GET_STATUS", zap.Uint32("task_id", id))
	task, ok, err := s.store.Get(id)
	if err != nil {
		return protocol.Message{}, err
	}
	if !ok {
		return protocol.NewStatusReply(protocol.NOT_FOUND), nil
	}
	return protocol.NewStatusReply(wireStatus(task.Status)), nil
}

func (s *Server) result(id uint32) (protocol.Message, error) {
	s.log.Info("GET_RESULT", zap.Uint32("task_id", id))
	task, ok, err := s.store.Get(id)
	if err != nil {
		return protocol.Message{}, err
	}
	if !ok || task.Status != driver.STATUS_COMPLETED {
		return protocol.NewResultReply(protocol.NOT_FOUND, ""), nil
	}
	return protocol.NewResultReply(protocol.COMPLETED, task.Output), nil
}

func wireStatus(status driver.Status) protocol.Status {
	switch status {
	case driver.STATUS_QUEUED:
		return protocol.QUEUED
	case driver.STATUS_IN_PROGRESS:
		return protocol.IN_PROGRESS
	case driver.STATUS_COMPLETED:
		return protocol.COMPLETED
	}
	return protocol.NOT_FOUND
}
