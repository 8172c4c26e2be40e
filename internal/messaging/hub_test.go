package messaging

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/imadgeboyega/campusconnect-backend/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversNotifications(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	serve := hub.ServeWS(NewUpgrader(nil))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serve(w, r.WithContext(auth.WithUserID(r.Context(), r.URL.Query().Get("user"))))
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=u1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.IsUserOnline("u1") }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, hub.GetActiveConnections())

	hub.NotifyUser("u1", string(WSTypeMatchSuggestions), map[string]int{"count": 2})
	assert.False(t, hub.SendToUser("nobody", WSMessage{Type: "x"}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg WSMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "match_suggestions", msg.Type)
	assert.JSONEq(t, `{"count":2}`, string(msg.Data))
}

func TestServeWSRequiresUser(t *testing.T) {
	hub := NewHub()
	rec := httptest.NewRecorder()
	hub.ServeWS(NewUpgrader(nil))(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpgraderOrigins(t *testing.T) {
	up := NewUpgrader([]string{"https://campus.example"})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)

	req.Header.Set("Origin", "https://campus.example")
	assert.True(t, up.CheckOrigin(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, up.CheckOrigin(req))
}
