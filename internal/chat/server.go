package chat

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/andy6609/framechat/internal/frame"
)

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

type Server struct {
	opts     Options
	logger   *slog.Logger
	reg      *Registry
	listener net.Listener
	wg       sync.WaitGroup
}

func NewServer(opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	opts.setDefaults()
	return &Server{
		opts:   opts,
		logger: logger,
		reg:    NewRegistry(128, opts, logger),
	}
}

// Start binds the listener and launches the registry and accept loops.
// A bind or listen failure is returned as is; nothing is started then.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	s.listener = ln

	go s.reg.Run()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.acceptLoop(ln)
	}()

	s.logger.Info("server started",
		"addr", ln.Addr().String(),
		"command_char", string(s.opts.CommandChar),
		"max_clients", s.opts.MaxClients)
	return nil
}

// Addr returns the bound listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes the listener and every tracked connection.
func (s *Server) Stop() {
	if s.listener == nil {
		return
	}
	s.logger.Info("shutting down")

	_ = s.listener.Close()

	s.reg.Stop()
	s.reg.Wait()
	s.wg.Wait()

	s.logger.Info("shutdown complete")
}

func (s *Server) acceptLoop(ln net.Listener) {
	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			if delay == 0 {
				delay = minAcceptDelay
			} else {
				delay = min(2*delay, maxAcceptDelay)
			}
			s.logger.Warn("accept failed", "error", err, "retry_in", delay)
			time.Sleep(delay)
			continue
		}
		delay = 0

		c := &Client{
			ID:   uuid.NewString(),
			Conn: conn,
			Addr: conn.RemoteAddr().String(),
			Out:  make(chan []byte, s.opts.OutboundQueue),
		}
		StartOutboundWriter(conn, c.Out, s.opts.WriteTimeout)

		if err := s.reg.Connect(c); err != nil {
			if errors.Is(err, ErrStopped) {
				// The writer closes the socket once Out is closed.
				close(c.Out)
				return
			}
			// Rejected at capacity: the writer closes the socket.
			continue
		}

		go HandleSession(c, frame.NewAssembler(s.opts.BufferSize), s.reg)
	}
}
