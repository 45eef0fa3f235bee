// CineTrack - Movie Watchlist and Ratings Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinetrack

package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// setupWebSocketServer runs handler against each upgraded connection.
func setupWebSocketServer(t *testing.T, handler func(t *testing.T, conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Failed to upgrade connection: %v", err)
			return
		}
		defer conn.Close()
		handler(t, conn)
	}))
}

func dialWebSocket(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	return conn
}

func waitForChannel(t *testing.T, ch <-chan bool, timeout time.Duration, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		t.Errorf("%s: timeout after %v", msg, timeout)
	}
}

func TestNewClient(t *testing.T) {
	hub := NewHub()
	client := NewClient(hub, nil)

	if client.hub != hub {
		t.Error("Expected client hub to be set")
	}
	if client.send == nil {
		t.Error("Expected send channel to be initialized")
	}
	if cap(client.send) != 256 {
		t.Errorf("Expected send buffer of 256, got %d", cap(client.send))
	}

	other := NewClient(hub, nil)
	if other.ID() <= client.ID() {
		t.Errorf("Expected monotonically increasing ids, got %d then %d", client.ID(), other.ID())
	}
}

func TestClient_Constants(t *testing.T) {
	if pingPeriod >= pongWait {
		t.Errorf("pingPeriod (%v) must be shorter than pongWait (%v)", pingPeriod, pongWait)
	}
	if maxMessageSize != 4*1024 {
		t.Errorf("Expected 4KB read limit, got %d", maxMessageSize)
	}
}

func TestClient_WritePump_SendMessage(t *testing.T) {
	hub := NewHub()

	messageReceived := make(chan bool, 1)
	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Errorf("Failed to read message: %v", err)
			return
		}
		if msg.Type != MessageTypeActivity {
			t.Errorf("Expected message type %s, got %s", MessageTypeActivity, msg.Type)
		}
		messageReceived <- true
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	defer conn.Close()

	client := NewClient(hub, conn)
	go client.writePump()

	client.send <- Message{Type: MessageTypeActivity, Data: testActivityEvent()}

	waitForChannel(t, messageReceived, time.Second, "Message not received")
}

func TestClient_ReadPump_PingPong(t *testing.T) {
	hub := setupHub(t)

	receivedPong := make(chan bool, 1)
	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
			t.Errorf("Failed to write ping: %v", err)
			return
		}

		var pong Message
		if err := conn.ReadJSON(&pong); err != nil {
			t.Errorf("Failed to read pong: %v", err)
			return
		}
		if pong.Type == MessageTypePong {
			receivedPong <- true
		}
		time.Sleep(100 * time.Millisecond)
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	defer conn.Close()

	client := NewClient(hub, conn)
	client.Start()

	waitForChannel(t, receivedPong, time.Second, "Pong not received")
}

func TestClient_ReadPump_UnregistersOnClose(t *testing.T) {
	hub := setupHub(t)

	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		time.Sleep(50 * time.Millisecond)
		// Server closes; the client's read pump should unregister.
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	client := NewClient(hub, conn)
	registerClient(hub, client)
	client.Start()

	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("Client never unregistered after connection close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestClient_WritePump_ChannelClose(t *testing.T) {
	hub := NewHub()

	closeReceived := make(chan bool, 1)
	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		// Reading returns a close error once the client sends the
		// close frame.
		_, _, err := conn.ReadMessage()
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
			closeReceived <- true
		}
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	defer conn.Close()

	client := NewClient(hub, conn)
	go client.writePump()

	close(client.send)

	waitForChannel(t, closeReceived, time.Second, "Close frame not received")
}

func TestClient_EndToEndThroughHub(t *testing.T) {
	hub := setupHub(t)

	messageReceived := make(chan bool, 1)
	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Errorf("Failed to read broadcast: %v", err)
			return
		}
		if msg.Type == MessageTypeActivity {
			messageReceived <- true
		}
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	defer conn.Close()

	client := NewClient(hub, conn)
	hub.Register <- client
	client.Start()
	time.Sleep(20 * time.Millisecond)

	hub.BroadcastActivity(testActivityEvent())

	waitForChannel(t, messageReceived, 2*time.Second, "Broadcast never reached the socket")
}
