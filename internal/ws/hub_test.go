package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	assert.NotNil(t, hub.clients)
	assert.NotNil(t, hub.broadcast)
	assert.NotNil(t, hub.register)
	assert.NotNil(t, hub.unregister)
	assert.Equal(t, 0, hub.ConnectedClients())
}

func TestHub_AddAndRemoveClient(t *testing.T) {
	hub := runHub(t)
	client := &Client{hub: hub, send: make(chan []byte, 1)}

	hub.register <- client
	assert.Eventually(t, func() bool { return hub.ConnectedClients() == 1 }, time.Second, 10*time.Millisecond)

	hub.unregister <- client
	assert.Eventually(t, func() bool { return hub.ConnectedClients() == 0 }, time.Second, 10*time.Millisecond)

	_, open := <-client.send
	assert.False(t, open)
}

func TestHub_Publish(t *testing.T) {
	hub := runHub(t)

	first := &Client{hub: hub, send: make(chan []byte, 10)}
	second := &Client{hub: hub, send: make(chan []byte, 10)}
	hub.register <- first
	hub.register <- second

	hub.Publish(EventRoundPlayed, map[string]string{"predicted_key": "yujin"})

	for _, c := range []*Client{first, second} {
		select {
		case msg := <-c.send:
			var event Event
			require.NoError(t, json.Unmarshal(msg, &event))
			assert.Equal(t, EventRoundPlayed, event.Type)
			assert.Equal(t, "yujin", event.Data.(map[string]any)["predicted_key"])
			assert.False(t, event.Timestamp.IsZero())
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for message")
		}
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := runHub(t)

	slow := &Client{hub: hub, send: make(chan []byte)}
	hub.register <- slow
	assert.Eventually(t, func() bool { return hub.ConnectedClients() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(EventDatasetReloaded, nil)
	assert.Eventually(t, func() bool { return hub.ConnectedClients() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_RunStopsOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	client := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.register <- client
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	_, open := <-client.send
	assert.False(t, open)
}

func TestUpgradeMiddleware_RejectsPlainRequests(t *testing.T) {
	app := fiber.New()
	app.Get("/v1/live", UpgradeMiddleware(), func(c *fiber.Ctx) error {
		return c.SendString("upgraded")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/live", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
