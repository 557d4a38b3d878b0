package dashboard

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastHookSubscribe(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()
	event := WidgetEvent{AreaCode: AreaMain}
	if err := hook.WidgetUpdated(context.Background(), event); err != nil {
		t.Fatalf("WidgetUpdated returned error: %v", err)
	}
	select {
	case e := <-ch:
		if e.AreaCode != event.AreaCode {
			t.Fatalf("expected area %s, got %s", event.AreaCode, e.AreaCode)
		}
	default:
		t.Fatalf("expected event to be delivered")
	}
}

func TestBroadcastHookScopesSessionEvents(t *testing.T) {
	hook := NewBroadcastHook()
	mine, cancelMine := hook.SubscribeSession("s1")
	defer cancelMine()
	other, cancelOther := hook.SubscribeSession("s2")
	defer cancelOther()

	require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{SessionID: "s1", Reason: "notifications.read"}))

	select {
	case e := <-mine:
		assert.Equal(t, "notifications.read", e.Reason)
	default:
		t.Fatalf("expected s1 to receive its event")
	}
	select {
	case e := <-other:
		t.Fatalf("s2 should not receive s1 events, got %+v", e)
	default:
	}
}

func TestBroadcastHookCancelClosesChannel(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	assert.Equal(t, 1, hook.Subscribers())
	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, hook.Subscribers())
}

func TestBroadcastHookServeWebSocket(t *testing.T) {
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=s1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{SessionID: "s1", Reason: "notifications.read"}))

	var got WidgetEvent
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, "notifications.read", got.Reason)
}

func TestBroadcastHookServeSSE(t *testing.T) {
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeSSE))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{Reason: "refresh"}))

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "data: "))
	assert.Contains(t, line, `"reason":"refresh"`)
}
