package ipc

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elegantclip/elegantclip/internal/events"
)

func startTestServer(t *testing.T, handler Handler, bus *events.Bus) string {
	t.Helper()
	socket := filepath.Join(t.TempDir(), "test.sock")
	srv := NewServer(socket, handler, bus, zap.NewNop())
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)
	return socket
}

func TestRequestResponse(t *testing.T) {
	socket := startTestServer(t, func(req *Request) *Response {
		switch req.Command {
		case "ping":
			return Ok("pong")
		case "echo_id":
			id, ok := req.Int64("id")
			if !ok {
				return Errorf("missing id")
			}
			return Ok(id)
		default:
			return Errorf("unknown command %q", req.Command)
		}
	}, nil)

	resp, err := Send(socket, "ping", nil)
	require.NoError(t, err)
	assert.True(t, resp.IsOK())
	assert.Equal(t, "pong", resp.Data)

	resp, err = Send(socket, "echo_id", map[string]interface{}{"id": 42})
	require.NoError(t, err)
	require.True(t, resp.IsOK())
	assert.Equal(t, float64(42), resp.Data)

	resp, err = Send(socket, "bogus", nil)
	require.NoError(t, err)
	assert.False(t, resp.IsOK())
	assert.Contains(t, resp.Message, "bogus")
}

func TestNilHandlerResponse(t *testing.T) {
	socket := startTestServer(t, func(*Request) *Response { return nil }, nil)

	resp, err := Send(socket, "anything", nil)
	require.NoError(t, err)
	assert.True(t, resp.IsOK())
}

func TestSubscribeStreamsEvents(t *testing.T) {
	bus := events.NewBus(zap.NewNop())
	defer bus.Close()

	socket := startTestServer(t, func(*Request) *Response { return Ok(nil) }, bus)

	ch, cancel, err := Subscribe(socket)
	require.NoError(t, err)
	defer cancel()

	bus.Emit("clipboard-updated", map[string]interface{}{"id": 7})

	select {
	case ev := <-ch:
		assert.Equal(t, "clipboard-updated", ev.Name)
		payload, ok := ev.Payload.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(7), payload["id"])
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestSubscribeWithoutBusRefused(t *testing.T) {
	socket := startTestServer(t, func(*Request) *Response { return Ok(nil) }, nil)

	_, _, err := Subscribe(socket)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}

func TestServerStopUnblocksSubscribers(t *testing.T) {
	bus := events.NewBus(zap.NewNop())
	defer bus.Close()

	socket := filepath.Join(t.TempDir(), "stop.sock")
	srv := NewServer(socket, func(*Request) *Response { return Ok(nil) }, bus, zap.NewNop())
	require.NoError(t, srv.Start())

	ch, cancel, err := Subscribe(socket)
	require.NoError(t, err)
	defer cancel()

	// Stop must not hang on the idle subscriber connection.
	done := make(chan struct{})
	go func() {
		srv.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("server stop hung on open subscription")
	}

	select {
	case _, open := <-ch:
		assert.False(t, open, "event channel closes when the server goes away")
	case <-time.After(2 * time.Second):
		t.Fatal("event channel did not close")
	}
}

func TestRequestArgAccessors(t *testing.T) {
	req := &Request{
		Command: "x",
		Args: map[string]interface{}{
			"id":    float64(9),
			"name":  "clip",
			"flag":  true,
			"wrong": []interface{}{},
		},
	}

	id, ok := req.Int64("id")
	assert.True(t, ok)
	assert.Equal(t, int64(9), id)

	n, ok := req.Int("id")
	assert.True(t, ok)
	assert.Equal(t, 9, n)

	name, ok := req.String("name")
	assert.True(t, ok)
	assert.Equal(t, "clip", name)

	flag, ok := req.Bool("flag")
	assert.True(t, ok)
	assert.True(t, flag)

	_, ok = req.Int64("missing")
	assert.False(t, ok)
	_, ok = req.Int64("name")
	assert.False(t, ok)
	_, ok = req.String("id")
	assert.False(t, ok)
	_, ok = req.Bool("wrong")
	assert.False(t, ok)
}
