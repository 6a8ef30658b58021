package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Handler answers one decoded Request. The daemon's implementation is
// Service.Handle (handlers.go); Server only owns transport and
// admission control.
type Handler func(ctx context.Context, req Request) Response

// Server listens on a unix socket and dispatches each connection's
// single JSON request to Handler, bounded by MaxInFlight concurrent
// executions plus a fixed-depth wait queue. Requests beyond
// MaxInFlight+QueueDepth are rejected immediately with CodeOverloaded
// rather than left to pile up.
type Server struct {
	socketPath string
	handler    Handler
	log        *zap.SugaredLogger

	maxInFlight int64
	queueDepth  int64
	sem         *semaphore.Weighted
	admitted    atomic.Int64 // in-flight + queued, bounded by maxInFlight+queueDepth

	requestTimeout time.Duration

	listener net.Listener
}

// Config bounds Server's admission control.
type Config struct {
	SocketPath     string
	MaxInFlight    int           // N_rpc, default 8
	QueueDepth     int           // Q_rpc, default 64
	RequestTimeout time.Duration // per-request handler deadline, default 30s
}

// New builds a Server around handler. It does not start listening;
// call Start for that.
func New(cfg Config, handler Handler, log *zap.SugaredLogger) *Server {
	maxInFlight := cfg.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = 8
	}
	queueDepth := cfg.QueueDepth
	if queueDepth <= 0 {
		queueDepth = 64
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Server{
		socketPath:     cfg.SocketPath,
		handler:        handler,
		log:            log,
		maxInFlight:    int64(maxInFlight),
		queueDepth:     int64(queueDepth),
		sem:            semaphore.NewWeighted(int64(maxInFlight)),
		requestTimeout: timeout,
	}
}

// Start removes any stale socket file, binds the unix listener, and
// serves connections until ctx is cancelled. It blocks until the
// listener is closed.
func (s *Server) Start(ctx context.Context) error {
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("rpc: remove stale socket: %w", err)
	}

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("rpc: listen on %s: %w", s.socketPath, err)
	}
	if err := os.Chmod(s.socketPath, 0o660); err != nil {
		ln.Close()
		return fmt.Errorf("rpc: chmod socket: %w", err)
	}
	s.listener = ln

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	if s.log != nil {
		s.log.Infow("rpc: listening", "socket", s.socketPath, "max_in_flight", s.maxInFlight, "queue_depth", s.queueDepth)
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if s.log != nil {
				s.log.Warnw("rpc: accept failed", "error", err)
			}
			continue
		}
		go s.serveConn(ctx, conn)
	}
}

// Close stops the listener, removing the socket file.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	err := s.listener.Close()
	_ = os.Remove(s.socketPath)
	return err
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	line, err := reader.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return
	}

	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.writeResponse(conn, errorResponse("", CodeInvalidRequest, fmt.Errorf("malformed request: %w", err)))
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if err := structValidator.Struct(req); err != nil {
		s.writeResponse(conn, errorResponse(req.ID, CodeInvalidRequest, err))
		return
	}

	resp := s.dispatch(ctx, req)
	s.writeResponse(conn, resp)
}

// dispatch applies admission control before invoking the handler: a
// request is rejected outright once admitted (in-flight + queued)
// would exceed MaxInFlight+QueueDepth, and otherwise blocks on the
// semaphore for at most RequestTimeout while queued.
func (s *Server) dispatch(ctx context.Context, req Request) Response {
	if s.admitted.Add(1) > s.maxInFlight+s.queueDepth {
		s.admitted.Add(-1)
		if s.log != nil {
			s.log.Warnw("rpc: overloaded, rejecting request", "method", req.Method, "id", req.ID)
		}
		return errorResponse(req.ID, CodeOverloaded, fmt.Errorf("server busy: %d requests already in flight or queued", s.maxInFlight+s.queueDepth))
	}
	defer s.admitted.Add(-1)

	waitCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	if err := s.sem.Acquire(waitCtx, 1); err != nil {
		return errorResponse(req.ID, CodeOverloaded, fmt.Errorf("timed out waiting for a free worker: %w", err))
	}
	defer s.sem.Release(1)

	runCtx, runCancel := context.WithTimeout(ctx, s.requestTimeout)
	defer runCancel()

	start := time.Now()
	resp := s.handler(runCtx, req)
	resp.ID = req.ID
	if s.log != nil {
		s.log.Infow("rpc: handled request", "method", req.Method, "id", req.ID, "success", resp.Success, "duration_ms", time.Since(start).Milliseconds())
	}
	return resp
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		if s.log != nil {
			s.log.Errorw("rpc: marshal response failed", "error", err)
		}
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil && s.log != nil {
		s.log.Warnw("rpc: write response failed", "error", err)
	}
}
