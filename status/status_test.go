package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(ServeWs))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() status {
		var s status
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &s))
		return s
	}

	Info("opened %s", "scene.json")
	s := read()
	assert.Equal(t, INFO, s.Type)
	assert.Equal(t, "opened scene.json", s.Message)

	Frame(2, 5)
	s = read()
	assert.Equal(t, FRAME, s.Type)
	assert.Equal(t, 2, s.Animation)
	assert.Equal(t, 5, s.Frame)

	// frames are not replayed
	globalLock.Lock()
	last := string(lastMessage)
	globalLock.Unlock()
	assert.Contains(t, last, "opened scene.json")
}
