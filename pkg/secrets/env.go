package secrets

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
)

const envPrefix = "SECRET_"

// EnvProvider serves secrets from environment variables, for local runs
// without AWS. The secret "dev/acme/personio" with field "client_id" is read
// from SECRET_DEV__ACME__PERSONIO__CLIENT_ID: path segments and the field are
// upper-cased and joined with a double underscore.
type EnvProvider struct {
	environ func() []string
}

func NewEnvProvider() *EnvProvider {
	return &EnvProvider{environ: os.Environ}
}

func envKey(name string) string {
	segments := strings.Split(strings.Trim(name, "/"), "/")
	for i, s := range segments {
		segments[i] = strings.ToUpper(strings.ReplaceAll(s, "-", "_"))
	}
	return envPrefix + strings.Join(segments, "__") + "__"
}

// GetSecret collects every field stored under name.
func (p *EnvProvider) GetSecret(_ context.Context, key string) (map[string]string, error) {
	prefix := envKey(key)
	out := make(map[string]string)
	for _, kv := range p.environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, prefix) {
			continue
		}
		field := strings.TrimPrefix(k, prefix)
		if field == "" || strings.Contains(field, "__") {
			continue
		}
		out[strings.ToLower(field)] = v
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("secret [%s]: %w", key, ErrNotFound)
	}
	return out, nil
}

// ListSecrets reconstructs secret names from variable names. Names come back
// lower-cased with underscores in segments turned into dashes, so "-" and "_"
// are not distinguishable here.
func (p *EnvProvider) ListSecrets(_ context.Context, prefix string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, kv := range p.environ() {
		k, _, _ := strings.Cut(kv, "=")
		rest, ok := strings.CutPrefix(k, envPrefix)
		if !ok {
			continue
		}
		parts := strings.Split(rest, "__")
		if len(parts) < 2 {
			continue
		}
		segments := parts[:len(parts)-1]
		for i, s := range segments {
			segments[i] = strings.ReplaceAll(strings.ToLower(s), "_", "-")
		}
		name := strings.Join(segments, "/")
		if strings.HasPrefix(name, strings.ToLower(prefix)) {
			seen[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}
