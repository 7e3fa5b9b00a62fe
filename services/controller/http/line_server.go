package http

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"
)

// LineServer speaks the minimal one-request-line protocol used by embedded
// dashboards: read the request line, answer, close. Connections are served one at a time.
type LineServer struct {
	addr      string
	responder *Responder
	timeout   time.Duration
	logger    *slog.Logger
}

// NewLineServer builds a LineServer listening on addr.
func NewLineServer(addr string, responder *Responder, logger *slog.Logger) *LineServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LineServer{addr: addr, responder: responder, timeout: 5 * time.Second, logger: logger}
}

// Run accepts connections until ctx is cancelled.
func (l *LineServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", l.addr, err)
	}
	l.logger.Info("line protocol listening", "addr", ln.Addr().String())

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		l.Serve(ctx, conn)
	}
}

// Serve answers a single exchange on conn and closes it.
func (l *LineServer) Serve(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()
	l.logger.Debug("client connected", "remote", remote)

	if l.timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(l.timeout))
	}

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		l.logger.Debug("no request line received", "remote", remote, "err", err)
	}

	resp := l.responder.Handle(ctx, strings.TrimRight(line, "\r\n"))
	if _, err := resp.WriteTo(conn); err != nil {
		l.logger.Warn("write response failed", "remote", remote, "err", err)
		return
	}
	l.logger.Debug("client disconnected", "remote", remote)
}
