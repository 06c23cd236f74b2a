package personio

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURL_NoParamsOmitsQuery(t *testing.T) {
	cases := map[string]any{
		"nil":            nil,
		"empty map":      map[string]any{},
		"empty strings":  map[string]string{},
		"empty values":   url.Values{},
		"nil struct ptr": (*struct{ A string })(nil),
	}
	for name, params := range cases {
		t.Run(name, func(t *testing.T) {
			u, err := BuildURL(DefaultBaseURL, "company/employees", params)
			require.NoError(t, err)
			assert.Equal(t, "https://api.personio.de/v1/company/employees", u)
			assert.NotContains(t, u, "?")
		})
	}
}

func TestBuildURL_RFC3986Encoding(t *testing.T) {
	u, err := BuildURL(DefaultBaseURL, "company/employees", map[string]any{
		"q": "a b+c&d=e/f~g.h_i-j",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://api.personio.de/v1/company/employees?q=a%20b%2Bc%26d%3De%2Ff~g.h_i-j", u)
}

func TestBuildURL_PairsSortedAndJoinedWithAmpersand(t *testing.T) {
	u, err := BuildURL("https://x/", "e", map[string]string{"b": "2", "a": "1", "c": "3"})
	require.NoError(t, err)
	assert.Equal(t, "https://x/e?a=1&b=2&c=3", u)
}

func TestBuildURL_ScalarValues(t *testing.T) {
	u, err := BuildURL("https://x/", "e", map[string]any{
		"active":   true,
		"archived": false,
		"limit":    25,
		"offset":   uint(3),
		"ratio":    1.5,
		"small":    float32(0.1),
		"since":    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		"skipped":  nil,
	})
	require.NoError(t, err)
	assert.Equal(t,
		"https://x/e?active=1&archived=0&limit=25&offset=3&ratio=1.5&since=2024-01-02T03%3A04%3A05Z&small=0.1",
		u)
}

func TestBuildURL_NestedValuesUseBracketNotation(t *testing.T) {
	u, err := BuildURL("https://x/", "company/attendances", map[string]any{
		"employees": []int{17, 42},
		"filter":    map[string]any{"to": "b", "from": "a"},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"https://x/company/attendances?employees%5B0%5D=17&employees%5B1%5D=42&filter%5Bfrom%5D=a&filter%5Bto%5D=b",
		u)
}

func TestBuildURL_URLValuesKeepRepeatedKeys(t *testing.T) {
	u, err := BuildURL("https://x/", "e", url.Values{"id": {"1", "2"}, "a": {"z"}})
	require.NoError(t, err)
	assert.Equal(t, "https://x/e?a=z&id=1&id=2", u)
}

func TestBuildURL_StructParams(t *testing.T) {
	type attendanceQuery struct {
		StartDate string `url:"start_date"`
		EndDate   string `url:"end_date"`
		Limit     int    `url:"limit,omitempty"`
	}

	u, err := BuildURL("https://x/", "company/attendances", attendanceQuery{
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://x/company/attendances?end_date=2024-01-31&start_date=2024-01-01", u)

	u, err = BuildURL("https://x/", "company/attendances", &attendanceQuery{StartDate: "2024-01-01", Limit: 10})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(u, "?end_date=&limit=10&start_date=2024-01-01"), u)
}

func TestBuildURL_InvalidParams(t *testing.T) {
	cases := map[string]any{
		"func value":     map[string]any{"cb": func() {}},
		"chan in list":   map[string]any{"ids": []any{1, make(chan int)}},
		"non-string key": map[int]string{1: "a"},
		"scalar params":  42,
		"complex value":  map[string]any{"c": complex(1, 2)},
	}
	for name, params := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := BuildURL(DefaultBaseURL, "e", params)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidArgument)

			var invalid *InvalidArgumentError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestNewRequest_DefaultHeadersWithoutBody(t *testing.T) {
	req, err := NewRequest(http.MethodGet, "https://x/e", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "https://x/e", req.URL)
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.Equal(t, UserAgent, req.Header.Get("User-Agent"))
	assert.Empty(t, req.Header.Get("Content-Type"))
	assert.Nil(t, req.Body)
}

func TestNewRequest_JSONBody(t *testing.T) {
	req, err := NewRequest(http.MethodPost, "https://x/e", nil, map[string]any{"employee": 1, "date": "2024-01-01"})
	require.NoError(t, err)

	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"employee":1,"date":"2024-01-01"}`, string(req.Body))
}

func TestNewRequest_EmptyDataSendsNoBody(t *testing.T) {
	for name, body := range map[string]any{
		"empty map":   map[string]any{},
		"empty slice": []any{},
		"nil pointer": (*struct{})(nil),
	} {
		t.Run(name, func(t *testing.T) {
			req, err := NewRequest(http.MethodPost, "https://x/e", nil, body)
			require.NoError(t, err)
			assert.Nil(t, req.Body)
			assert.Empty(t, req.Header.Get("Content-Type"))
		})
	}
}

func TestNewRequest_UnencodableBody(t *testing.T) {
	_, err := NewRequest(http.MethodPost, "https://x/e", nil, map[string]any{"ch": make(chan int)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNewRequest_ExtraHeadersCannotOverrideDefaults(t *testing.T) {
	req, err := NewRequest(http.MethodGet, "https://x/e", http.Header{
		"Accept":       {"text/html"},
		"X-Request-Id": {"abc"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.Equal(t, "abc", req.Header.Get("X-Request-Id"))
}

func TestRequest_CloneIsIndependent(t *testing.T) {
	req, err := NewRequest(http.MethodPost, "https://x/e", nil, map[string]int{"a": 1})
	require.NoError(t, err)

	clone := req.Clone()
	clone.Header.Set("Authorization", "Bearer T")
	clone.Body[0] = '['

	assert.Empty(t, req.Header.Get("Authorization"))
	assert.Equal(t, byte('{'), req.Body[0])
}
