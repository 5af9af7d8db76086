package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server upgrades HTTP connections and hands them to a Hub.
type Server struct {
	hub    *Hub
	logger *zap.Logger
}

// NewServer creates a Server with its own running Hub.
func NewServer(logger *zap.Logger) *Server {
	hub := NewHub(logger)
	go hub.Run()

	return &Server{hub: hub, logger: logger}
}

// ServeHTTP upgrades the connection and starts its read/write pumps.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	client := NewClient(s.hub, conn, s.logger)
	s.hub.register <- client

	go client.WritePump()
	go client.ReadPump()

	s.logger.Info("new websocket connection", zap.String("remote_addr", r.RemoteAddr))
}

// Hub returns the underlying Hub so the owning server can forward events.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Stop closes every client connection.
func (s *Server) Stop() {
	s.hub.Stop()
}
