package personio

import (
	"context"
	"strings"
	"sync"
)

type tokenState int

const (
	tokenEmpty tokenState = iota
	tokenPopulated
)

func (s tokenState) String() string {
	if s == tokenPopulated {
		return "populated"
	}
	return "empty"
}

// TokenCache holds at most one bearer token. It starts empty, is populated by
// the first credential exchange and is overwritten whenever the server rotates
// the token. It never returns to empty.
//
// A single mutex covers check, exchange and store, so concurrent callers on an
// empty cache trigger exactly one exchange.
type TokenCache struct {
	mu    sync.Mutex
	state tokenState
	token string
}

// Token returns the cached token, calling exchange first if the cache is empty.
func (c *TokenCache) Token(ctx context.Context, exchange func(context.Context) (string, error)) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == tokenPopulated {
		return c.token, nil
	}

	token, err := exchange(ctx)
	if err != nil {
		return "", err
	}
	c.state, c.token = tokenPopulated, token
	return token, nil
}

// Refresh stores the token carried by an Authorization header value. It
// returns true when the cached value changed; empty values are ignored.
func (c *TokenCache) Refresh(header string) bool {
	token := parseBearer(header)
	if token == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	changed := c.state == tokenEmpty || c.token != token
	c.state, c.token = tokenPopulated, token
	return changed
}

// Peek returns the current token without triggering an exchange.
func (c *TokenCache) Peek() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.state == tokenPopulated
}

// parseBearer strips a case-insensitive "Bearer " prefix.
func parseBearer(header string) string {
	const prefix = "bearer "
	v := strings.TrimSpace(header)
	if len(v) >= len(prefix) && strings.EqualFold(v[:len(prefix)], prefix) {
		v = v[len(prefix):]
	}
	return strings.TrimSpace(v)
}
