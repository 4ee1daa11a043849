// Package ipc carries commands between the CLI (or a UI shell) and the
// running app over a unix-domain socket. Windows 10+ supports AF_UNIX,
// so one transport serves every platform.
package ipc

import "fmt"

// Request is one command sent over the control socket.
type Request struct {
	Command string                 `json:"command"`
	Args    map[string]interface{} `json:"args,omitempty"`
}

// Response is the reply to a Request.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"

	// CommandSubscribeEvents switches the connection into a one-way
	// event stream instead of a request/response exchange.
	CommandSubscribeEvents = "subscribe_events"
)

// Ok builds a success response carrying data.
func Ok(data interface{}) *Response {
	return &Response{Status: StatusOK, Data: data}
}

// Errorf builds an error response.
func Errorf(format string, args ...interface{}) *Response {
	return &Response{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

// IsOK reports whether the response carries a success status.
func (r *Response) IsOK() bool {
	return r.Status == StatusOK
}

// String returns the string argument under key.
func (r *Request) String(key string) (string, bool) {
	v, ok := r.Args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int64 returns the integer argument under key. JSON numbers decode as
// float64; row ids fit without loss.
func (r *Request) Int64(key string) (int64, bool) {
	v, ok := r.Args[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// Int returns the integer argument under key.
func (r *Request) Int(key string) (int, bool) {
	n, ok := r.Int64(key)
	return int(n), ok
}

// Bool returns the boolean argument under key.
func (r *Request) Bool(key string) (bool, bool) {
	v, ok := r.Args[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}
