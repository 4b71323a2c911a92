// Copyright © 2018 The ELPS authors

package dap

import (
	"encoding/json"
	"sync"

	"github.com/google/go-dap"
	"github.com/iBelieve/rasp/diagnostic"
	"github.com/iBelieve/rasp/lisp"
	"github.com/iBelieve/rasp/parser"
	"github.com/sirupsen/logrus"
)

const mainThreadID = 1

// launchArguments are the rasp specific arguments of a launch request.
type launchArguments struct {
	Program string `json:"program"`
	NoDebug bool   `json:"noDebug"`
}

// handler dispatches incoming DAP messages to the appropriate method.
type handler struct {
	server *Server
	log    logrus.FieldLogger

	mu         sync.Mutex
	program    string
	configured bool
	running    bool
}

func newHandler(s *Server) *handler {
	return &handler{
		server: s,
		log:    s.log,
	}
}

// send sends a DAP message and logs any write error.
func (h *handler) send(msg dap.Message) {
	if err := h.server.send(msg); err != nil {
		h.log.WithError(err).Warn("dap send failed")
	}
}

func (h *handler) handle(msg dap.Message) {
	switch req := msg.(type) {
	case *dap.InitializeRequest:
		h.onInitialize(req)
	case *dap.LaunchRequest:
		h.onLaunch(req)
	case *dap.ConfigurationDoneRequest:
		h.onConfigurationDone(req)
	case *dap.ThreadsRequest:
		h.onThreads(req)
	case *dap.DisconnectRequest:
		h.onDisconnect(req)
	case dap.RequestMessage:
		r := req.GetRequest()
		h.log.WithField("command", r.Command).Debug("unsupported dap request")
		h.sendError(r.Seq, r.Command, "unsupported request: "+r.Command)
	default:
		h.log.Debugf("dap: unhandled message type: %T", msg)
	}
}

func (h *handler) onInitialize(req *dap.InitializeRequest) {
	resp := &dap.InitializeResponse{}
	resp.Response = h.newResponse(req.Seq, req.Command)
	resp.Body = dap.Capabilities{
		SupportsConfigurationDoneRequest: true,
		SupportTerminateDebuggee:         true,
	}
	h.send(resp)

	// Send initialized event to tell the client it can send configuration.
	h.send(&dap.InitializedEvent{
		Event: h.newEvent("initialized"),
	})
}

func (h *handler) onLaunch(req *dap.LaunchRequest) {
	var args launchArguments
	if err := json.Unmarshal(req.Arguments, &args); err != nil {
		h.sendError(req.Seq, req.Command, "invalid launch arguments: "+err.Error())
		return
	}
	if args.Program == "" {
		h.sendError(req.Seq, req.Command, "launch requires a program")
		return
	}
	h.mu.Lock()
	h.program = args.Program
	h.mu.Unlock()

	resp := &dap.LaunchResponse{}
	resp.Response = h.newResponse(req.Seq, req.Command)
	h.send(resp)
	h.maybeStart()
}

func (h *handler) onConfigurationDone(req *dap.ConfigurationDoneRequest) {
	resp := &dap.ConfigurationDoneResponse{}
	resp.Response = h.newResponse(req.Seq, req.Command)
	h.send(resp)

	h.mu.Lock()
	h.configured = true
	h.mu.Unlock()
	h.maybeStart()
}

// maybeStart runs the program once it has been launched and the client has
// finished configuration.
func (h *handler) maybeStart() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running || !h.configured || h.program == "" {
		return
	}
	h.running = true
	go h.run(h.program)
}

func (h *handler) run(program string) {
	log := h.log.WithField("program", program)
	log.Info("program started")
	stdout := &outputWriter{h: h, category: "stdout"}
	stderr := &outputWriter{h: h, category: "stderr"}
	config := []lisp.Config{
		lisp.WithReader(parser.NewReader()),
		lisp.WithStdout(stdout),
		lisp.WithStderr(stderr),
	}
	config = append(config, h.server.config...)
	env, lerr := lisp.NewRootEnv(config...)
	if lerr.Type != lisp.LError {
		lerr = env.LoadFile(program)
	}
	exitCode := 0
	if lerr.Type == lisp.LError {
		exitCode = 1
		diag := diagnostic.FromError(lerr)
		r := &diagnostic.Renderer{Color: diagnostic.ColorNever}
		_ = r.Render(stderr, diag)
		log.WithField("condition", lerr.Str).Info("program failed")
	} else {
		log.Info("program exited")
	}

	exited := &dap.ExitedEvent{Event: h.newEvent("exited")}
	exited.Body.ExitCode = exitCode
	h.send(exited)
	h.send(&dap.TerminatedEvent{Event: h.newEvent("terminated")})
}

func (h *handler) onThreads(req *dap.ThreadsRequest) {
	resp := &dap.ThreadsResponse{}
	resp.Response = h.newResponse(req.Seq, req.Command)
	resp.Body.Threads = []dap.Thread{
		{Id: mainThreadID, Name: "main"},
	}
	h.send(resp)
}

func (h *handler) onDisconnect(req *dap.DisconnectRequest) {
	resp := &dap.DisconnectResponse{}
	resp.Response = h.newResponse(req.Seq, req.Command)
	h.send(resp)
	h.server.close()
}

func (h *handler) sendError(reqSeq int, command, msg string) {
	resp := &dap.ErrorResponse{}
	resp.Response = h.newResponse(reqSeq, command)
	resp.Success = false
	resp.Message = msg
	resp.Body.Error = &dap.ErrorMessage{Id: 1, Format: msg}
	h.send(resp)
}

// --- helpers ---

func (h *handler) newResponse(reqSeq int, command string) dap.Response {
	return dap.Response{
		ProtocolMessage: dap.ProtocolMessage{Seq: h.server.nextSeq(), Type: "response"},
		RequestSeq:      reqSeq,
		Success:         true,
		Command:         command,
	}
}

func (h *handler) newEvent(event string) dap.Event {
	return dap.Event{
		ProtocolMessage: dap.ProtocolMessage{Seq: h.server.nextSeq(), Type: "event"},
		Event:           event,
	}
}

// outputWriter forwards program output to the client as output events.
type outputWriter struct {
	h        *handler
	category string
}

func (w *outputWriter) Write(b []byte) (int, error) {
	evt := &dap.OutputEvent{Event: w.h.newEvent("output")}
	evt.Body.Category = w.category
	evt.Body.Output = string(b)
	if err := w.h.server.send(evt); err != nil {
		return 0, err
	}
	return len(b), nil
}
