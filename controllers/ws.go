package controllers

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AryanSahu2805/Enterprise-Chatboard/chat"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The widget is embedded on customer sites, so any origin may connect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
	wsMaxMessage = 4096
)

type wsInbound struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type wsOutbound struct {
	Type       string   `json:"type"`
	SessionID  string   `json:"session_id,omitempty"`
	Message    string   `json:"message,omitempty"`
	Intent     *string  `json:"intent,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Escalated  bool     `json:"escalated,omitempty"`
}

// WSController serves the realtime chat widget transport.
type WSController struct {
	engine *chat.Engine
}

func NewWSController(engine *chat.Engine) *WSController {
	return &WSController{engine: engine}
}

// wsSession serializes writes; the ping loop and the reply path share
// one connection.
type wsSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *wsSession) writeJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return s.conn.WriteJSON(v)
}

func (s *wsSession) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return s.conn.WriteMessage(websocket.PingMessage, nil)
}

// Chat upgrades the connection and runs the message loop: each customer
// message gets a typing indicator followed by the bot reply.
func (c *WSController) Chat(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// The request context is bounded by the HTTP timeout middleware and
	// would expire while the socket is still open.
	connCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess := &wsSession{conn: conn}
	conn.SetReadLimit(wsMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go pingLoop(sess, done)

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Read error: %v", err)
			}
			return
		}

		if err := sess.writeJSON(wsOutbound{Type: "typing", SessionID: in.SessionID}); err != nil {
			return
		}

		reply, err := c.engine.Handle(connCtx, in.SessionID, in.Message)
		if err != nil {
			msg := "Something went wrong. Please try again."
			if err == chat.ErrEmptyMessage || err == chat.ErrMissingSessionID {
				msg = err.Error()
			} else {
				log.Printf("[WS] Chat processing error: %v", err)
			}
			if werr := sess.writeJSON(wsOutbound{Type: "error", SessionID: in.SessionID, Message: msg}); werr != nil {
				return
			}
			continue
		}

		out := wsOutbound{
			Type:       "message",
			SessionID:  reply.SessionID,
			Message:    reply.Content,
			Intent:     reply.Intent,
			Confidence: reply.Confidence,
			Escalated:  reply.IsEscalated,
		}
		if err := sess.writeJSON(out); err != nil {
			return
		}
	}
}

func pingLoop(sess *wsSession, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := sess.ping(); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
