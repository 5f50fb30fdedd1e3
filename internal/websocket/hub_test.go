package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"obrafin/internal/model"
	"obrafin/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, hub *Hub, tokens *token.Service) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ServeWs(hub, tokens, c) })
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestPublish_ReachesConnectedClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)
	tokens := token.New("ws-secret", time.Hour)
	url := startServer(t, hub, tokens)

	tok, err := tokens.GenerateToken(uuid.New(), model.RoleUser)
	require.NoError(t, err)

	conn, _, err := gorilla.DefaultDialer.Dial(url+"?token="+tok, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish("pagamento.atualizado", map[string]string{"id": "abc"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg, &ev))
	assert.Equal(t, "pagamento.atualizado", ev.Event)
	assert.Equal(t, "abc", ev.Data["id"])
}

func TestServeWs_RejectsPendingAndMissingToken(t *testing.T) {
	hub := NewHub()
	tokens := token.New("ws-secret", time.Hour)
	url := startServer(t, hub, tokens)

	_, res, err := gorilla.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	tok, err := tokens.GenerateToken(uuid.New(), model.RolePending)
	require.NoError(t, err)
	_, res, err = gorilla.DefaultDialer.Dial(url+"?token="+tok, nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestPublish_DoesNotBlockWithoutRunner(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish("x", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked")
	}
}
