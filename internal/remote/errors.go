package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse is returned when a 2xx response body is not the JSON
// the caller asked for.
var ErrMalformedResponse = errors.New("malformed response")

// RemoteRejected is a non-2xx answer from the backend.
type RemoteRejected struct {
	Status int
	Body   string
	// Detail is the human readable message from a "detail" or "message" key,
	// when the body carries one.
	Detail string
}

func (e *RemoteRejected) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = strings.TrimSpace(e.Body)
	}
	if msg == "" {
		return fmt.Sprintf("server rejected request: status %d", e.Status)
	}
	return fmt.Sprintf("server rejected request: status %d: %s", e.Status, msg)
}

func newRejected(status int, body []byte) *RemoteRejected {
	out := &RemoteRejected{Status: status, Body: string(body)}

	var m map[string]any
	if json.Unmarshal(body, &m) == nil {
		for _, key := range []string{"detail", "message"} {
			if v, ok := m[key].(string); ok && v != "" {
				out.Detail = v
				break
			}
		}
	}
	return out
}

// NetworkUnavailable wraps a transport failure: no connectivity, DNS, TLS,
// timeout or a cancelled context.
type NetworkUnavailable struct {
	Err error
}

func (e *NetworkUnavailable) Error() string {
	return fmt.Sprintf("network unavailable: %v", e.Err)
}

func (e *NetworkUnavailable) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var rej *RemoteRejected
	return errors.As(err, &rej) && rej.Status == 401
}
