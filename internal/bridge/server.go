package bridge

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"sync"
)

// Server is the agent side of the control channel. It accepts at most one
// controller at a time; additional connections are refused at accept time.
// Losing the controller is a normal event: the server keeps listening and
// the agent's BLE state is untouched.
type Server struct {
	ln       net.Listener
	version  string
	log      *slog.Logger
	commands chan Command

	mu      sync.Mutex
	client  net.Conn
	writeMu sync.Mutex
}

// Listen binds the control port on all interfaces and starts accepting.
func Listen(port int, version string, log *slog.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("listen on control port %d: %w", port, err)
	}

	s := &Server{
		ln:       ln,
		version:  version,
		log:      log,
		commands: make(chan Command, 16),
	}
	go s.acceptLoop()
	log.Info("control channel listening", "port", port)
	return s, nil
}

// Commands returns the inbound command stream from the controller.
func (s *Server) Commands() <-chan Command {
	return s.commands
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}

		s.mu.Lock()
		if s.client != nil {
			s.mu.Unlock()
			s.log.Warn("refusing controller connection, already have one",
				"remote", conn.RemoteAddr())
			conn.Close()
			continue
		}
		s.client = conn
		s.mu.Unlock()

		s.log.Info("controller connected", "remote", conn.RemoteAddr())
		s.Send(Event{Event: EventReady, Version: s.version})
		go s.readLoop(conn)
	}
}

func (s *Server) readLoop(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), 64*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var cmd Command
		if err := json.Unmarshal(line, &cmd); err != nil {
			s.log.Warn("dropping malformed command line", "err", err)
			continue
		}
		s.commands <- cmd
	}

	s.mu.Lock()
	if s.client == conn {
		s.client = nil
	}
	s.mu.Unlock()
	conn.Close()
	s.log.Info("controller disconnected")
}

// Send writes an event to the controller, flushing immediately. Events are
// silently dropped when no controller is attached.
func (s *Server) Send(ev Event) {
	s.mu.Lock()
	conn := s.client
	s.mu.Unlock()
	if conn == nil {
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		s.log.Error("marshal event", "err", err)
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := conn.Write(append(data, '\n')); err != nil {
		s.log.Warn("write event", "err", err)
	}
}

// Close stops accepting and drops any attached controller.
func (s *Server) Close() {
	s.ln.Close()
	s.mu.Lock()
	if s.client != nil {
		s.client.Close()
		s.client = nil
	}
	s.mu.Unlock()
}

// Port returns the bound control port.
func (s *Server) Port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}
