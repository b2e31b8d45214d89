// Package command serves the plain-text command side channel. One command
// per line: STATUS reports the node counters without mutating anything,
// RESET atomically clears baseline, wildlife counter and emergency flag,
// EMERGENCY forces the emergency controller. Unknown input is ignored.
package command

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/tphakala/ecosentinel-go/internal/emergency"
	"github.com/tphakala/ecosentinel-go/internal/errors"
	"github.com/tphakala/ecosentinel-go/internal/logging"
	"github.com/tphakala/ecosentinel-go/internal/nodestate"
	"github.com/tphakala/ecosentinel-go/internal/observability"
)

// Recognized commands.
const (
	CmdStatus    = "STATUS"
	CmdReset     = "RESET"
	CmdEmergency = "EMERGENCY"
)

const (
	readTimeout = 60 * time.Second
	maxLineLen  = 256
)

// Server accepts text connections and applies commands to the node state.
type Server struct {
	addr    string
	state   *nodestate.State
	ctrl    *emergency.Controller
	metrics *observability.CommandMetrics
	log     *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	closed   bool
	wg       sync.WaitGroup
}

// NewServer creates a command server for the given listen address.
func NewServer(addr string, state *nodestate.State, ctrl *emergency.Controller, metrics *observability.CommandMetrics) *Server {
	log := logging.ForService("command")
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		addr:    addr,
		state:   state,
		ctrl:    ctrl,
		metrics: metrics,
		log:     log,
	}
}

// Start binds the listener and serves connections until Shutdown.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.New(err).
			Component("command").
			Category(errors.CategoryCommand).
			Context("addr", s.addr).
			Build()
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.log.Info("command channel listening", "addr", listener.Addr().String())

	s.wg.Add(1)
	go s.acceptLoop(listener)
	return nil
}

// Addr returns the bound listen address, useful when the configured port
// was 0.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown closes the listener and waits for the handlers to drain, up to
// the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		_ = listener.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) acceptLoop(listener net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := listener.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return
			}
			s.log.Warn("accept failed", "error", err)
			continue
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer func() { _ = conn.Close() }()

	reader := bufio.NewReaderSize(conn, maxLineLen)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		raw, err := reader.ReadSlice('\n')
		if err == bufio.ErrBufferFull {
			// an over-long line is just another unknown command: discard the
			// rest of it and keep the connection alive
			s.metrics.RecordCommand("unknown")
			s.log.Debug("ignoring over-long command line")
			for err == bufio.ErrBufferFull {
				_, err = reader.ReadSlice('\n')
			}
			if err != nil {
				return
			}
			continue
		}
		if err != nil {
			return
		}
		line := strings.ToUpper(strings.TrimSpace(string(raw)))
		if line == "" {
			continue
		}
		if reply := s.dispatch(line); reply != "" {
			if _, err := fmt.Fprintln(conn, reply); err != nil {
				return
			}
		}
	}
}

// dispatch applies one command and returns the reply line. Unknown commands
// return no reply and leave the node untouched.
func (s *Server) dispatch(line string) string {
	switch line {
	case CmdStatus:
		s.metrics.RecordCommand(CmdStatus)
		snap := s.state.Snapshot()
		return fmt.Sprintf("STATUS baseline=%.2f wildlife=%d emergency=%t uptime=%s",
			snap.BaselineNoise, snap.WildlifeDetections, snap.EmergencyMode,
			snap.Uptime.Round(time.Second))
	case CmdReset:
		s.metrics.RecordCommand(CmdReset)
		s.ctrl.Reset()
		return "OK"
	case CmdEmergency:
		s.metrics.RecordCommand(CmdEmergency)
		s.ctrl.Trigger("command")
		return "OK"
	default:
		s.metrics.RecordCommand("unknown")
		s.log.Debug("ignoring unknown command", "command", line)
		return ""
	}
}
