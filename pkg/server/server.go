package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/0xmhha/livereload/pkg/logger"
)

// Server is a LiveReload sink. It implements registry.Sink.
type Server struct {
	config   Config
	logger   logger.Logger
	upgrader websocket.Upgrader

	mu         sync.Mutex
	listening  bool
	closed     bool
	port       int
	httpServer *http.Server
	clients    map[*client]struct{}
}

// client is one connected browser.
type client struct {
	conn *websocket.Conn
	send chan message

	mu     sync.Mutex
	closed bool
}

// New creates a server that is not yet listening.
func New(cfg Config, log logger.Logger) *Server {
	if cfg.ServerName == "" {
		cfg.ServerName = "livereload"
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 64
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	return &Server{
		config: cfg,
		logger: log,
		upgrader: websocket.Upgrader{
			// Pages on any origin may subscribe to reloads.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Listen implements registry.Sink.Listen. Port 0 lets the OS pick a port;
// Port reports the result.
func (s *Server) Listen(ctx context.Context, port int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.listening {
		s.mu.Unlock()
		return ErrAlreadyListening
	}
	s.listening = true
	s.mu.Unlock()

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort(s.config.Host, strconv.Itoa(port)))
	if err != nil {
		s.mu.Lock()
		s.listening = false
		s.mu.Unlock()
		return classifyBindError(port, err)
	}

	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		port = addr.Port
	}

	httpServer := &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.port = port
	s.httpServer = httpServer
	s.mu.Unlock()

	go func() {
		if serveErr := httpServer.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.logger.Error("live reload server stopped", "error", serveErr, "port", port)
		}
	}()

	return nil
}

// classifyBindError wraps a listen error into a BindError.
func classifyBindError(port int, err error) error {
	code := ""
	if errors.Is(err, syscall.EADDRINUSE) {
		code = codeAddrInUse
	}
	return &BindError{Port: port, Code: code, Err: err}
}

// Port returns the bound port, or 0 before Listen succeeded.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// Clients returns the number of connected browsers.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// NotifyClients implements registry.Sink.NotifyClients. Every connected
// browser receives one reload command per path.
func (s *Server) NotifyClients(paths []string) {
	if len(paths) == 0 {
		return
	}

	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	s.logger.Info("reloading", "files", paths, "clients", len(clients))

	for _, c := range clients {
		for _, p := range paths {
			msg := message{
				Command: "reload",
				Path:    p,
				LiveCSS: true,
				LiveImg: true,
			}
			if !c.enqueue(msg) {
				s.logger.Warn("client send buffer full, dropping reload",
					"path", p)
			}
		}
	}
}

// Close implements registry.Sink.Close.
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	httpServer := s.httpServer
	clients := s.clients
	s.clients = make(map[*client]struct{})
	s.mu.Unlock()

	for c := range clients {
		c.close()
	}

	if httpServer == nil {
		return nil
	}
	return httpServer.Shutdown(ctx)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleStatus)
	mux.HandleFunc("/livereload", s.handleWebsocket)
	mux.HandleFunc("/livereload.js", s.handleScript)
	mux.HandleFunc("/changed", s.handleChanged)
	return mux
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, Status{
		Server:  s.config.ServerName,
		Port:    s.Port(),
		Clients: s.Clients(),
	})
}

func (s *Server) handleScript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte(clientScript))
}

func (s *Server) handleChanged(w http.ResponseWriter, r *http.Request) {
	var files []string

	switch r.Method {
	case http.MethodGet:
		for _, f := range strings.Split(r.URL.Query().Get("files"), ",") {
			if f = strings.TrimSpace(f); f != "" {
				files = append(files, f)
			}
		}
	case http.MethodPost:
		var body struct {
			Files []string `json:"files"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		files = body.Files
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.NotifyClients(files)
	writeJSON(w, http.StatusOK, map[string][]string{"files": files})
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan message, s.config.SendBuffer),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	s.logger.Debug("client connected", "remote", r.RemoteAddr)

	go s.writeLoop(c)
	s.readLoop(c)
}

// readLoop handles commands from the browser until the connection closes.
func (s *Server) readLoop(c *client) {
	defer s.removeClient(c)

	for {
		var msg message
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Command {
		case "hello":
			c.enqueue(message{
				Command:    "hello",
				Protocols:  []string{protocolOfficial7},
				ServerName: s.config.ServerName,
			})
		case "info":
			s.logger.Debug("client info", "url", msg.URL)
		}
	}
}

// writeLoop serializes writes to the connection.
func (s *Server) writeLoop(c *client) {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		if err := c.conn.WriteJSON(msg); err != nil {
			s.logger.Debug("client write failed", "error", err)
			c.close()
			return
		}
	}
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	c.close()
}

// enqueue queues msg. It returns false if the client is closed or its
// buffer is full.
func (c *client) enqueue(msg message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
