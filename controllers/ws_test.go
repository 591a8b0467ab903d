package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AryanSahu2805/Enterprise-Chatboard/chat"
	"github.com/AryanSahu2805/Enterprise-Chatboard/middleware"
	"github.com/AryanSahu2805/Enterprise-Chatboard/store"
)

// newWSServer serves the socket endpoint behind the same middleware chain
// main.go installs, so the upgrade has to succeed through every response
// wrapper in between.
func newWSServer(t *testing.T) *httptest.Server {
	t.Helper()
	st := store.NewMemoryStore()
	scorer := chat.NewScorer(chat.DefaultRules(), 1)
	engine := chat.NewEngine(st, scorer, nil, chat.DefaultConfig())
	ctl := NewWSController(engine)

	handler := middleware.RequestLogMiddleware(
		middleware.SecurityHeadersMiddleware(
			middleware.RequestIDMiddleware(
				middleware.MaxBodyMiddleware(
					middleware.TimeoutMiddleware(
						middleware.RecoveryMiddleware(
							middleware.MetricsMiddleware(
								middleware.SuspiciousActivityMiddleware(http.HandlerFunc(ctl.Chat)),
							),
						),
					),
				),
			),
		),
	)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("dial failed (status %d): %v", status, err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("handshake status = %d, want %d", resp.StatusCode, http.StatusSwitchingProtocols)
	}
	t.Cleanup(func() { conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestChat_UpgradeThroughMiddlewareChain(t *testing.T) {
	srv := newWSServer(t)
	dialWS(t, srv)
}

func TestChat_TypingIndicatorThenReply(t *testing.T) {
	srv := newWSServer(t)
	conn := dialWS(t, srv)

	in := wsInbound{SessionID: "sess-ws-1", Message: "hello"}
	if err := conn.WriteJSON(in); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	var typing wsOutbound
	if err := conn.ReadJSON(&typing); err != nil {
		t.Fatalf("read typing frame: %v", err)
	}
	if typing.Type != "typing" || typing.SessionID != "sess-ws-1" {
		t.Fatalf("first frame = %+v, want typing for sess-ws-1", typing)
	}

	var reply wsOutbound
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read reply frame: %v", err)
	}
	if reply.Type != "message" {
		t.Fatalf("second frame type = %q, want message", reply.Type)
	}
	if reply.SessionID != "sess-ws-1" {
		t.Fatalf("reply session = %q, want sess-ws-1", reply.SessionID)
	}
	if reply.Message == "" {
		t.Fatal("reply message is empty")
	}
	if reply.Intent == nil || *reply.Intent != "greeting" {
		t.Fatalf("reply intent = %v, want greeting", reply.Intent)
	}
	if reply.Escalated {
		t.Fatal("greeting should not escalate")
	}
}

func TestChat_InvalidInputKeepsConnectionOpen(t *testing.T) {
	srv := newWSServer(t)
	conn := dialWS(t, srv)

	if err := conn.WriteJSON(wsInbound{SessionID: "sess-ws-2", Message: "   "}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	var errFrame wsOutbound
	if err := conn.ReadJSON(&errFrame); err != nil {
		t.Fatalf("read error frame: %v", err)
	}
	if errFrame.Type != "error" {
		t.Fatalf("frame type = %q, want error", errFrame.Type)
	}

	// The connection survives a bad message.
	if err := conn.WriteJSON(wsInbound{SessionID: "sess-ws-2", Message: "hello"}); err != nil {
		t.Fatalf("write after error failed: %v", err)
	}
	var typing wsOutbound
	if err := conn.ReadJSON(&typing); err != nil {
		t.Fatalf("read after error failed: %v", err)
	}
	if typing.Type != "typing" {
		t.Fatalf("frame type = %q, want typing", typing.Type)
	}
}
