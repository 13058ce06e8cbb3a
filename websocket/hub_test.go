package websocket

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestHub(t *testing.T, hub *Hub, resellerID string) *websocket.Conn {
	t.Helper()

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		return HandleWebSocket(c, hub)
	})
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	if resellerID != "" {
		url += "?resellerId=" + resellerID
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// First frame is always the connected acknowledgement.
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	require.Equal(t, "connected", ev.Type)

	// Give the hub's event loop time to finish registration.
	time.Sleep(50 * time.Millisecond)

	return conn
}

func TestHubBroadcastsPaymentEvents(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dialTestHub(t, hub, "RSL-F2FA9D")

	hub.NotifyPaymentEvent(EventPaymentApproved, "Payment approved", "RSL-F2FA9D", map[string]string{
		"paymentId": "PAY_1",
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))

	assert.Equal(t, EventPaymentApproved, ev.Type)
	assert.Equal(t, "RSL-F2FA9D", ev.ResellerID)
	assert.Equal(t, "Payment approved", ev.Message)
}

func TestHubSendToReseller(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	target := dialTestHub(t, hub, "RSL-AAAAAA")
	dialTestHub(t, hub, "RSL-BBBBBB")

	err := hub.SendToReseller("RSL-AAAAAA", Event{
		Type:    EventPayoutCompleted,
		Message: "Commission disbursed",
	})
	require.NoError(t, err)

	target.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	require.NoError(t, target.ReadJSON(&ev))
	assert.Equal(t, EventPayoutCompleted, ev.Type)

	assert.Error(t, hub.SendToReseller("RSL-MISSING", Event{Type: EventPayoutFailed}))
}
