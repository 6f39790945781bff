package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lxzan/gws"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/pkg/core"
)

// echoHandler echoes text frames and closes the connection on "bye".
type echoHandler struct {
	gws.BuiltinEventHandler
}

func (h *echoHandler) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()
	if message.Data.String() == "bye" {
		_ = socket.WriteClose(1000, nil)
		return
	}
	_ = socket.WriteMessage(message.Opcode, message.Bytes())
}

func newEchoServer(t *testing.T) string {
	t.Helper()
	upgrader := gws.NewUpgrader(&echoHandler{}, &gws.ServerOption{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		socket, err := upgrader.Upgrade(w, r)
		if err != nil {
			return
		}
		go socket.ReadLoop()
	}))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data, ok := <-c.Messages():
		require.True(t, ok, "messages closed")
		return data
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func TestClient_SendAndReceive(t *testing.T) {
	client := NewClient(Config{URL: newEchoServer(t)}, zerolog.Nop())
	defer client.Close()

	require.NoError(t, client.Connect(context.Background()))
	assert.Equal(t, StateConnected, client.State())

	require.NoError(t, client.SendJSON(map[string]string{"type": "subscribe"}))
	assert.JSONEq(t, `{"type":"subscribe"}`, string(receive(t, client)))
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	client := NewClient(Config{URL: newEchoServer(t)}, zerolog.Nop())
	require.NoError(t, client.Connect(context.Background()))

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	assert.Equal(t, StateClosed, client.State())
	_, ok := <-client.Messages()
	assert.False(t, ok)
	assert.NoError(t, client.Err())
	assert.ErrorIs(t, client.WriteMessage([]byte("x")), core.ErrNotConnected)
}

func TestClient_CloseWithoutConnect(t *testing.T) {
	client := NewClient(Config{URL: "ws://127.0.0.1:1"}, zerolog.Nop())

	require.NoError(t, client.Close())

	_, ok := <-client.Messages()
	assert.False(t, ok)
}

func TestClient_UpstreamClose(t *testing.T) {
	client := NewClient(Config{URL: newEchoServer(t)}, zerolog.Nop())
	defer client.Close()
	require.NoError(t, client.Connect(context.Background()))

	require.NoError(t, client.WriteMessage([]byte("bye")))

	select {
	case _, ok := <-client.Messages():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("messages not closed")
	}
	assert.Error(t, client.Err())
	assert.Equal(t, StateDisconnected, client.State())
}

func TestClient_WriteBeforeConnect(t *testing.T) {
	client := NewClient(Config{URL: "ws://127.0.0.1:1"}, zerolog.Nop())

	assert.ErrorIs(t, client.SendJSON("x"), core.ErrNotConnected)
}

func TestClient_ConnectRefused(t *testing.T) {
	client := NewClient(Config{URL: "ws://127.0.0.1:1"}, zerolog.Nop())

	err := client.Connect(context.Background())

	assert.Error(t, err)
	assert.Equal(t, StateDisconnected, client.State())
}

func TestConnState_String(t *testing.T) {
	assert.Equal(t, "connected", StateConnected.String())
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "unknown", ConnState(9).String())
}
