package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brightnest/daycare/internal/pkg/messaging"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func startFeed(t *testing.T) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	router := gin.New()
	router.GET("/feed/ws", NewHandler(hub, nil, zerolog.Nop()).HandleConnection)
	srv := httptest.NewServer(router)

	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/feed/ws"
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", hub.ClientCount(), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestFeedDeliversSubscribedTopics(t *testing.T) {
	hub, url := startFeed(t)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?topics=newsletter", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, 1)

	ctx := context.Background()
	_ = hub.Publish(ctx, messaging.Event{Type: messaging.TypeEventCreated, EntityID: 1, Title: "Picnic"})
	_ = hub.Publish(ctx, messaging.Event{Type: messaging.TypeNewsletterPublished, EntityID: 2, Title: "May news"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var got messaging.Event
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
	if got.Type != messaging.TypeNewsletterPublished || got.EntityID != 2 {
		t.Errorf("received %+v, want the newsletter event only", got)
	}
}

func TestFeedRejectsUnknownTopic(t *testing.T) {
	_, url := startFeed(t)

	_, resp, err := websocket.DefaultDialer.Dial(url+"?topics=gossip", nil)
	if err == nil {
		t.Fatal("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %v, want 400", resp)
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example.com/"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	if !check(req) {
		t.Error("listed origin rejected")
	}
	req.Header.Set("Origin", "https://evil.example.com")
	if check(req) {
		t.Error("unlisted origin accepted")
	}
	if !originChecker([]string{"*"})(req) {
		t.Error("wildcard should allow all")
	}
}
