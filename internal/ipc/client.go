package ipc

import (
	"encoding/json"
	"fmt"
	"net"

	"github.com/elegantclip/elegantclip/internal/events"
)

// SendRequest connects to the running app, sends one request, and
// returns the response.
func SendRequest(socketPath string, req *Request) (*Response, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to app (is it running?): %w", err)
	}
	defer conn.Close()

	enc := json.NewEncoder(conn)
	dec := json.NewDecoder(conn)

	if err := enc.Encode(req); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	var resp Response
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp, nil
}

// Send is SendRequest with the args built in place.
func Send(socketPath, command string, args map[string]interface{}) (*Response, error) {
	return SendRequest(socketPath, &Request{Command: command, Args: args})
}

// Subscribe opens a long-lived connection carrying the app's event
// stream. The returned cancel function closes the connection; the
// channel closes when the stream ends.
func Subscribe(socketPath string) (<-chan events.Event, func(), error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to app: %w", err)
	}

	enc := json.NewEncoder(conn)
	dec := json.NewDecoder(conn)
	if err := enc.Encode(&Request{Command: CommandSubscribeEvents}); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	var resp Response
	if err := dec.Decode(&resp); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to decode subscribe response: %w", err)
	}
	if !resp.IsOK() {
		conn.Close()
		return nil, nil, fmt.Errorf("subscribe refused: %s", resp.Message)
	}

	ch := make(chan events.Event, 16)
	go func() {
		defer close(ch)
		for {
			var ev events.Event
			if err := dec.Decode(&ev); err != nil {
				return
			}
			ch <- ev
		}
	}()
	return ch, func() { conn.Close() }, nil
}
