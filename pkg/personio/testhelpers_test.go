package personio

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// stubTransport records every request and answers with fn.
type stubTransport struct {
	mu    sync.Mutex
	calls []*Request
	fn    func(req *Request) (*Response, error)
}

func (s *stubTransport) Send(_ context.Context, req *Request) (*Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req.Clone())
	s.mu.Unlock()
	return s.fn(req)
}

func (s *stubTransport) requests() []*Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Request(nil), s.calls...)
}

func (s *stubTransport) authCalls() int {
	n := 0
	for _, r := range s.requests() {
		if isAuthRequest(r) {
			n++
		}
	}
	return n
}

// businessCalls returns every non-auth request in order.
func (s *stubTransport) businessCalls() []*Request {
	var out []*Request
	for _, r := range s.requests() {
		if !isAuthRequest(r) {
			out = append(out, r)
		}
	}
	return out
}

func isAuthRequest(r *Request) bool {
	return strings.HasPrefix(r.URL, DefaultBaseURL+"auth?")
}

// jsonResponse builds a response with a proper status line.
func jsonResponse(status int, body string) *Response {
	return &Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       []byte(body),
	}
}

func authOK(token string) *Response {
	return jsonResponse(http.StatusOK, fmt.Sprintf(`{"success":true,"data":{"token":%q}}`, token))
}

// newStubbedClient returns a client whose auth exchange yields token and
// whose business calls are answered by business.
func newStubbedClient(token string, business func(req *Request) (*Response, error)) (*Client, *stubTransport) {
	stub := &stubTransport{fn: func(req *Request) (*Response, error) {
		if isAuthRequest(req) {
			return authOK(token), nil
		}
		return business(req)
	}}
	client := New(Credentials{ClientID: "abc", ClientSecret: "xyz"}, WithTransport(stub))
	return client, stub
}

func okEnvelope(data string) *Response {
	return jsonResponse(http.StatusOK, `{"success":true,"data":`+data+`}`)
}
