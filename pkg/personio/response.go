package personio

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Response is the raw result of a call. Only the Authorization header and the
// envelope fields are interpreted by the client.
type Response struct {
	StatusCode int
	Status     string // full status line, e.g. "404 Not Found"
	Header     http.Header
	Body       []byte
}

// Reason returns the reason phrase of the status line.
func (r *Response) Reason() string {
	prefix := strconv.Itoa(r.StatusCode) + " "
	if reason, ok := strings.CutPrefix(r.Status, prefix); ok && reason != "" {
		return reason
	}
	return http.StatusText(r.StatusCode)
}

// Envelope is the wrapper Personio puts around every response body.
type Envelope struct {
	Success bool
	Data    json.RawMessage
	Error   *EnvelopeError
}

// EnvelopeError is the vendor-supplied failure detail.
type EnvelopeError struct {
	Code    int
	Message string
}

// Envelope decodes the body defensively: a body that is not a JSON object
// yields a zero Envelope (Success false, no error detail).
func (r *Response) Envelope() Envelope {
	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   json.RawMessage `json:"error"`
	}
	if len(r.Body) == 0 || json.Unmarshal(r.Body, &raw) != nil {
		return Envelope{}
	}

	env := Envelope{Success: raw.Success, Data: raw.Data}

	var detail struct {
		Code    any    `json:"code"`
		Message string `json:"message"`
	}
	if len(raw.Error) > 0 && json.Unmarshal(raw.Error, &detail) == nil {
		env.Error = &EnvelopeError{Code: envelopeCode(detail.Code), Message: detail.Message}
	}
	return env
}

// DecodeData unmarshals the envelope's data member into out.
func (r *Response) DecodeData(out any) error {
	env := r.Envelope()
	if len(env.Data) == 0 {
		return fmt.Errorf("personio: response has no data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("personio: decode data: %w", err)
	}
	return nil
}

// envelopeCode accepts numeric codes sent either as numbers or numeric strings.
func envelopeCode(v any) int {
	switch c := v.(type) {
	case float64:
		return int(c)
	case string:
		if n, err := strconv.Atoi(c); err == nil {
			return n
		}
	}
	return 0
}
