package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"wavespace/internal/quiz"
	"wavespace/internal/session"
)

const (
	wsWriteWait      = 5 * time.Second
	broadcastTimeout = 5 * time.Second
)

type wsRole string

const (
	rolePlayer wsRole = "player"
	roleDriver wsRole = "driver"
	roleHost   wsRole = "host"
)

type wsClient struct {
	conn *websocket.Conn
	role wsRole
	mu   sync.Mutex
}

func (c *wsClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

type wsHub struct {
	mu     sync.Mutex
	groups map[string]map[*wsClient]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{groups: make(map[string]map[*wsClient]struct{})}
}

func (h *wsHub) Add(quizID string, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[quizID]
	if group == nil {
		group = make(map[*wsClient]struct{})
		h.groups[quizID] = group
	}
	group[client] = struct{}{}
}

func (h *wsHub) Remove(quizID string, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[quizID]
	if group == nil {
		return
	}
	delete(group, client)
	_ = client.conn.Close()
	if len(group) == 0 {
		delete(h.groups, quizID)
	}
}

func (h *wsHub) Clients(quizID string) []*wsClient {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[quizID]
	clients := make([]*wsClient, 0, len(group))
	for client := range group {
		clients = append(clients, client)
	}
	return clients
}

func (h *wsHub) QuizIDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.groups))
	for id := range h.groups {
		ids = append(ids, id)
	}
	return ids
}

// CloseQuiz sends final to every client of the quiz and disconnects them.
func (h *wsHub) CloseQuiz(quizID string, final []byte) {
	h.mu.Lock()
	group := h.groups[quizID]
	delete(h.groups, quizID)
	h.mu.Unlock()
	for client := range group {
		if final != nil {
			_ = client.write(final)
		}
		_ = client.conn.Close()
	}
}

func (h *wsHub) CloseAll() {
	for _, id := range h.QuizIDs() {
		h.CloseQuiz(id, nil)
	}
}

func envelope(kind string, data any) ([]byte, error) {
	return json.Marshal(map[string]any{"type": kind, "data": data})
}

func htmlMessage(target, html string) ([]byte, error) {
	return json.Marshal(map[string]any{
		"type":   "html",
		"target": target,
		"swap":   "inner",
		"html":   html,
	})
}

var deletedFrame = []byte(`{"type":"deleted"}`)

// frames renders each role's messages for one snapshot.
func frames(snap session.Snapshot) (map[wsRole][][]byte, error) {
	public, err := envelope("snapshot", buildSnapshot(snap, false))
	if err != nil {
		return nil, err
	}
	host, err := envelope("snapshot", buildSnapshot(snap, true))
	if err != nil {
		return nil, err
	}
	html, err := renderDriverStatusHTML(snap)
	if err != nil {
		return nil, err
	}
	status, err := htmlMessage("#status", html)
	if err != nil {
		return nil, err
	}
	return map[wsRole][][]byte{
		rolePlayer: {public},
		roleDriver: {public, status},
		roleHost:   {host},
	}, nil
}

// pushSnapshot reads the current state once and sends it to clients.
func (s *Server) pushSnapshot(quizID string, clients []*wsClient) {
	if len(clients) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), broadcastTimeout)
	defer cancel()
	snap, err := s.svc.Snapshot(ctx, quizID)
	if errors.Is(err, quiz.ErrQuizNotFound) {
		s.hub.CloseQuiz(quizID, deletedFrame)
		return
	}
	if err != nil {
		s.metrics.ObserveBroadcast("error")
		s.log.Warn("snapshot for broadcast failed", zap.String("quiz_id", quizID), zap.Error(err))
		return
	}
	byRole, err := frames(snap)
	if err != nil {
		s.metrics.ObserveBroadcast("error")
		s.log.Error("render broadcast failed", zap.String("quiz_id", quizID), zap.Error(err))
		return
	}
	for _, client := range clients {
		for _, data := range byRole[client.role] {
			if err := client.write(data); err != nil {
				s.hub.Remove(quizID, client)
				break
			}
		}
	}
	s.metrics.ObserveBroadcast("sent")
}

func (s *Server) handleWebsocket(c *gin.Context) {
	quizID := c.Param("id")
	role := wsRole(c.DefaultQuery("role", string(rolePlayer)))
	switch role {
	case rolePlayer, roleDriver:
	case roleHost:
		if !s.adminAuthorized(c) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_role"})
		return
	}
	if _, err := s.svc.Quiz(c.Request.Context(), quizID); err != nil {
		s.respondError(c, err)
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	s.log.Debug("ws connected", zap.String("quiz_id", quizID), zap.String("role", string(role)), zap.String("remote", c.ClientIP()))
	client := &wsClient{conn: conn, role: role}
	s.hub.Add(quizID, client)
	s.pushSnapshot(quizID, []*wsClient{client})
	go s.readWS(quizID, client)
}

// readWS drains the connection until it closes. Clients never send commands
// over the socket.
func (s *Server) readWS(quizID string, client *wsClient) {
	defer s.hub.Remove(quizID, client)
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			s.log.Debug("ws disconnected", zap.String("quiz_id", quizID), zap.Error(err))
			return
		}
	}
}
