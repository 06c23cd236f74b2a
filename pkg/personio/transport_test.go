package personio

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Checker-Finance/personio-adapter/internal/rate"
)

func TestHTTPTransport_SendsHeadersAndBody(t *testing.T) {
	var (
		gotMethod string
		gotHeader http.Header
		gotBody   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeader = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Authorization", "Bearer rotated")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":1}}`))
	}))
	defer srv.Close()

	req, err := NewRequest(http.MethodPost, srv.URL+"/v1/company/time-offs", nil, map[string]int{"employee_id": 7})
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer T1")

	tr := NewHTTPTransport(nil, srv.Client(), nil, "")
	resp, err := tr.Send(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "Bearer T1", gotHeader.Get("Authorization"))
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, UserAgent, gotHeader.Get("User-Agent"))
	assert.JSONEq(t, `{"employee_id":7}`, string(gotBody))

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Created", resp.Reason())
	assert.Equal(t, "Bearer rotated", resp.Header.Get("Authorization"))
	assert.True(t, resp.Envelope().Success)
}

func TestHTTPTransport_ErrorStatusIsNotATransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`oops`))
	}))
	defer srv.Close()

	req, err := NewRequest(http.MethodGet, srv.URL+"/v1/company/employees", nil, nil)
	require.NoError(t, err)

	resp, err := NewHTTPTransport(nil, srv.Client(), nil, "").Send(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "oops", string(resp.Body))
}

func TestHTTPTransport_ConnectionFailureRedactsSecret(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	req, err := NewRequest(http.MethodPost, base+"/v1/auth?client_id=abc&client_secret=topsecret", nil, nil)
	require.NoError(t, err)

	resp, err := NewHTTPTransport(nil, nil, nil, "").Send(context.Background(), req)
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.NotContains(t, err.Error(), "topsecret")

	var ue *url.Error
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, ue.URL, "client_secret=***")
}

func TestHTTPTransport_RateLimitHonoursContext(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()

	mgr := rate.NewManager(rate.Config{RequestsPerSecond: 0.001, Burst: 1})
	require.True(t, mgr.GetLimiter("acme").Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, err := NewRequest(http.MethodGet, srv.URL+"/v1/company/employees", nil, nil)
	require.NoError(t, err)

	_, err = NewHTTPTransport(nil, srv.Client(), mgr, "acme").Send(ctx, req)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestEndpointLabel(t *testing.T) {
	cases := map[string]string{
		"https://api.personio.de/v1/company/employees":           "company/employees",
		"https://api.personio.de/v1/company/employees/42":        "company/employees/:id",
		"https://api.personio.de/v1/company/attendances/7?x=1":   "company/attendances/:id",
		"https://api.personio.de/v1/auth?client_secret=s":        "auth",
		"http://127.0.0.1:9999/company/time-offs/13/attachments": "company/time-offs/:id/attachments",
	}
	for raw, want := range cases {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, want, endpointLabel(u), raw)
	}
	assert.Equal(t, "unknown", endpointLabel(nil))
}

// The full stack against a fake Personio: exchange, call, rotation.
func TestClient_EndToEndAgainstHTTPServer(t *testing.T) {
	var exchanges int
	var seenAuth []string
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/auth", func(w http.ResponseWriter, r *http.Request) {
		exchanges++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "abc", r.URL.Query().Get("client_id"))
		assert.Equal(t, "xyz", r.URL.Query().Get("client_secret"))
		_, _ = w.Write([]byte(`{"success":true,"data":{"token":"T1"}}`))
	})
	mux.HandleFunc("/v1/company/employees", func(w http.ResponseWriter, r *http.Request) {
		seenAuth = append(seenAuth, r.Header.Get("Authorization"))
		w.Header().Set("Authorization", "bearer T2")
		_, _ = w.Write([]byte(`{"success":true,"data":[{"type":"Employee"}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := New(Credentials{ClientID: "abc", ClientSecret: "xyz"},
		WithBaseURL(srv.URL+"/v1/"),
		WithHTTPClient(srv.Client()))

	for i := 0; i < 2; i++ {
		resp, err := client.Get(context.Background(), "company/employees", nil)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"type":"Employee"}]`, string(resp.Envelope().Data))
	}

	assert.Equal(t, 1, exchanges)
	assert.Equal(t, []string{"Bearer T1", "Bearer T2"}, seenAuth)
}
