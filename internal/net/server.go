package net

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"SyncBoard/internal/export"
	"SyncBoard/internal/state"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 << 10
)

// Server exposes the router over websockets plus a few plain HTTP routes.
type Server struct {
	router   *Router
	store    *state.SessionStore
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewServer(router *Router, store *state.SessionStore, logger *zap.Logger) *Server {
	return &Server{
		router: router,
		store:  store,
		logger: logger.Named("server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Participants are not authenticated; any page may connect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler routes /ws, /board.pdf, /healthz and /metrics.
func (s *Server) Handler() http.Handler {
	m := mux.NewRouter()
	m.HandleFunc("/ws", s.handleConn).Methods(http.MethodGet)
	m.HandleFunc("/board.pdf", s.handleExport).Methods(http.MethodGet)
	m.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	m.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return m
}

// Health is the body of GET /healthz.
type Health struct {
	Active       int           `json:"active"`
	Participants []Participant `json:"participants"`
	Commands     int           `json:"commands"`
	Epoch        uint64        `json:"epoch"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	participants := s.router.conns.Participants()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Health{
		Active:       len(participants),
		Participants: participants,
		Commands:     s.store.Len(),
		Epoch:        s.store.Epoch(),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/pdf")
	if err := export.WritePDF(w, s.store.Snapshot()); err != nil {
		s.logger.Warn("export failed", zap.Error(err))
	}
}

func (s *Server) handleConn(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}
	peer := s.router.Join()
	logger := s.logger.With(zap.String("peer", peer.ID), zap.String("remote", r.RemoteAddr))

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writePump(conn, peer, logger)
	}()

	s.readPump(conn, peer, logger)
	s.router.Leave(peer.ID)
	<-done
	conn.Close()
}

// readPump feeds inbound frames to the router until the connection fails.
// Undecodable frames are dropped; they never end the connection.
func (s *Server) readPump(conn *websocket.Conn, peer *Peer, logger *zap.Logger) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, buf, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Info("connection lost", zap.Error(err))
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(buf, &msg); err != nil {
			logger.Debug("undecodable frame", zap.Error(err))
			continue
		}
		switch msg.Type {
		case KindDraw:
			_, _ = s.router.SubmitPayload(peer.ID, msg.Data, msg.Epoch)
		case KindClear:
			s.router.SubmitClear(peer.ID)
		default:
			logger.Debug("unexpected message kind", zap.Stringer("kind", msg.Type))
		}
	}
}

// writePump drains the peer's queue onto the socket and keeps it alive.
func (s *Server) writePump(conn *websocket.Conn, peer *Peer, logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	// Unblocks readPump when the peer is closed from our side.
	defer conn.Close()
	for {
		select {
		case msg := <-peer.Outbox():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				logger.Debug("write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-peer.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}
