package personio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/google/go-querystring/query"
)

// DefaultBaseURL is the root every endpoint is resolved against.
const DefaultBaseURL = "https://api.personio.de/v1/"

// UserAgent is sent with every request.
var UserAgent = "checker-finance/personio-adapter " + versioninfo.Short()

// Request is an outbound call before it is handed to a Transport.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Clone returns a deep copy so authentication never mutates a built request.
func (r *Request) Clone() *Request {
	out := *r
	out.Header = r.Header.Clone()
	if out.Header == nil {
		out.Header = make(http.Header)
	}
	if r.Body != nil {
		out.Body = bytes.Clone(r.Body)
	}
	return &out
}

// NewRequest builds a request with the standard Personio headers. header is
// applied first; Accept and User-Agent always win. A non-empty body is
// JSON-encoded and marked as such.
func NewRequest(method, rawURL string, header http.Header, body any) (*Request, error) {
	req := &Request{
		Method: method,
		URL:    rawURL,
		Header: make(http.Header),
	}
	for name, values := range header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	if isEmptyBody(body) {
		return req, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, invalidArgument("unable to encode request body", err)
	}
	req.Body = data
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// BuildURL joins base and endpoint and appends params as an RFC 3986 query
// string. No "?" is added when params is empty.
func BuildURL(base, endpoint string, params any) (string, error) {
	pairs, err := flattenParams(params)
	if err != nil {
		return "", err
	}

	u := base + endpoint
	if len(pairs) == 0 {
		return u, nil
	}

	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, escapeRFC3986(p.key)+"="+escapeRFC3986(p.value))
	}
	return u + "?" + strings.Join(parts, "&"), nil
}

type queryPair struct {
	key   string
	value string
}

func flattenParams(params any) ([]queryPair, error) {
	switch p := params.(type) {
	case nil:
		return nil, nil
	case url.Values:
		var pairs []queryPair
		for _, k := range sortedKeys(p) {
			for _, v := range p[k] {
				pairs = append(pairs, queryPair{key: k, value: v})
			}
		}
		return pairs, nil
	case map[string]string:
		var pairs []queryPair
		for _, k := range sortedKeys(p) {
			pairs = append(pairs, queryPair{key: k, value: p[k]})
		}
		return pairs, nil
	}

	rv := reflect.ValueOf(params)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		values, err := query.Values(rv.Interface())
		if err != nil {
			return nil, invalidArgument(fmt.Sprintf("unable to encode parameters of type %T", params), err)
		}
		return flattenParams(values)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, invalidArgument(fmt.Sprintf("parameter map keys must be strings, got %s", rv.Type().Key()), nil)
		}
		var pairs []queryPair
		for _, k := range sortedMapKeys(rv) {
			var err error
			pairs, err = appendParam(pairs, k, rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())))
			if err != nil {
				return nil, err
			}
		}
		return pairs, nil
	default:
		return nil, invalidArgument(fmt.Sprintf("unsupported parameter type %T", params), nil)
	}
}

// appendParam follows PHP-style bracket notation for nested values:
// list[0]=a, filter[from]=b. Booleans encode as 1/0 and nil values are skipped.
func appendParam(pairs []queryPair, key string, v reflect.Value) ([]queryPair, error) {
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return pairs, nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return pairs, nil
	}

	if v.CanInterface() {
		switch val := v.Interface().(type) {
		case time.Time:
			return append(pairs, queryPair{key: key, value: val.Format(time.RFC3339)}), nil
		case fmt.Stringer:
			return append(pairs, queryPair{key: key, value: val.String()}), nil
		}
	}

	switch v.Kind() {
	case reflect.String:
		return append(pairs, queryPair{key: key, value: v.String()}), nil
	case reflect.Bool:
		b := "0"
		if v.Bool() {
			b = "1"
		}
		return append(pairs, queryPair{key: key, value: b}), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return append(pairs, queryPair{key: key, value: strconv.FormatInt(v.Int(), 10)}), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return append(pairs, queryPair{key: key, value: strconv.FormatUint(v.Uint(), 10)}), nil
	case reflect.Float32, reflect.Float64:
		return append(pairs, queryPair{key: key, value: strconv.FormatFloat(v.Float(), 'f', -1, v.Type().Bits())}), nil
	case reflect.Slice, reflect.Array:
		var err error
		for i := 0; i < v.Len(); i++ {
			pairs, err = appendParam(pairs, fmt.Sprintf("%s[%d]", key, i), v.Index(i))
			if err != nil {
				return nil, err
			}
		}
		return pairs, nil
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, invalidArgument(fmt.Sprintf("parameter %q: map keys must be strings", key), nil)
		}
		var err error
		for _, k := range sortedMapKeys(v) {
			pairs, err = appendParam(pairs, key+"["+k+"]", v.MapIndex(reflect.ValueOf(k).Convert(v.Type().Key())))
			if err != nil {
				return nil, err
			}
		}
		return pairs, nil
	default:
		return nil, invalidArgument(fmt.Sprintf("parameter %q has unsupported type %s", key, v.Type()), nil)
	}
}

func escapeRFC3986(s string) string {
	const upperhex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}

func isEmptyBody(body any) bool {
	if body == nil {
		return true
	}
	rv := reflect.ValueOf(body)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	case reflect.Map, reflect.Slice:
		return rv.Len() == 0
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedMapKeys(m reflect.Value) []string {
	keys := make([]string, 0, m.Len())
	for _, k := range m.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return keys
}
