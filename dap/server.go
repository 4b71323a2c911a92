// Copyright © 2018 The ELPS authors

// Package dap implements a Debug Adapter Protocol server which runs rasp
// programs for editors.  Sessions are run-only: a launched program executes
// to completion while its output is streamed to the client as output events.
//
// The server supports two transport modes:
//   - TCP: the server listens on a TCP port and accepts a single client
//     connection.
//   - Stdio: the server reads from stdin and writes to stdout, as expected by
//     editors launching a debug adapter as a child process.
package dap

import (
	"bufio"
	"io"
	"net"
	"sync"

	"github.com/google/go-dap"
	"github.com/iBelieve/rasp/lisp"
	"github.com/sirupsen/logrus"
)

// Server is a DAP protocol server for one client session.
type Server struct {
	log    logrus.FieldLogger
	config []lisp.Config

	mu     sync.Mutex
	seq    int
	writer io.Writer
	reader *bufio.Reader

	// done is closed when the server should stop processing messages.
	done chan struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for session events.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Server) { s.log = log }
}

// WithEnvConfig adds configuration applied to the root environment of each
// launched program, after the reader and output writers are installed.
func WithEnvConfig(config ...lisp.Config) Option {
	return func(s *Server) { s.config = append(s.config, config...) }
}

// New creates a new DAP server.
func New(opts ...Option) *Server {
	s := &Server{
		done: make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		s.log = logger
	}
	return s
}

// ServeConn serves DAP messages on a single connection. It blocks until
// the connection is closed or a disconnect request is received.
func (s *Server) ServeConn(conn io.ReadWriteCloser) error {
	defer conn.Close() //nolint:errcheck // best-effort cleanup
	return s.serve(conn, conn)
}

// ServeTCP listens on the given address and serves a single DAP client.
// It blocks until the client disconnects.
func (s *Server) ServeTCP(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer ln.Close() //nolint:errcheck // best-effort cleanup
	s.log.WithField("addr", ln.Addr().String()).Info("dap listening")
	conn, err := ln.Accept()
	if err != nil {
		return err
	}
	return s.ServeConn(conn)
}

// ServeStdio serves DAP messages on the given reader and writer,
// typically os.Stdin and os.Stdout.
func (s *Server) ServeStdio(r io.Reader, w io.Writer) error {
	return s.serve(r, w)
}

func (s *Server) serve(r io.Reader, w io.Writer) error {
	s.mu.Lock()
	s.writer = w
	s.reader = bufio.NewReader(r)
	s.mu.Unlock()

	h := newHandler(s)

	for {
		select {
		case <-s.done:
			return nil
		default:
		}

		msg, err := dap.ReadProtocolMessage(s.reader)
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
				if err == io.EOF {
					return nil
				}
				return err
			}
		}

		h.handle(msg)
	}
}

// send writes a DAP protocol message to the client.
// The caller is responsible for setting the Seq field before calling send
// (via the newResponse/newEvent helpers which call nextSeq).
func (s *Server) send(msg dap.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dap.WriteProtocolMessage(s.writer, msg)
}

// nextSeq returns the next sequence number for outgoing messages.
func (s *Server) nextSeq() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// close signals the server to stop processing messages.
func (s *Server) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}
