package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Checker-Finance/personio-adapter/internal/rate"
	"github.com/Checker-Finance/personio-adapter/internal/secrets"
	"github.com/Checker-Finance/personio-adapter/pkg/personio"
)

// ErrInvalidTenant is returned for tenant ids that cannot name a secret.
var ErrInvalidTenant = errors.New("invalid tenant id")

var tenantPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

// Resolver supplies tenant credentials.
type Resolver interface {
	Resolve(ctx context.Context, tenant string) (secrets.TenantConfig, error)
	Invalidate(tenant string)
	DiscoverTenants(ctx context.Context) ([]string, error)
}

// Options configure how tenant clients are built.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	RateMgr    *rate.Manager
}

// Registry keeps one personio.Client per tenant, so each tenant has its own
// token cache and rate limiter.
type Registry struct {
	logger   *zap.Logger
	resolver Resolver
	opts     Options

	mu      sync.Mutex
	clients map[string]*personio.Client
}

func New(logger *zap.Logger, resolver Resolver, opts Options) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		logger:   logger,
		resolver: resolver,
		opts:     opts,
		clients:  make(map[string]*personio.Client),
	}
}

// NormalizeTenant lower-cases tenant and validates it.
func NormalizeTenant(tenant string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(tenant))
	if !tenantPattern.MatchString(t) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTenant, tenant)
	}
	return t, nil
}

// Client returns the client for tenant, resolving credentials on first use.
func (r *Registry) Client(ctx context.Context, tenant string) (*personio.Client, error) {
	t, err := NormalizeTenant(tenant)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	c, ok := r.clients[t]
	r.mu.Unlock()
	if ok {
		return c, nil
	}

	cfg, err := r.resolver.Resolve(ctx, t)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// another request may have built it while we were resolving
	if c, ok := r.clients[t]; ok {
		return c, nil
	}
	c = r.build(t, cfg)
	r.clients[t] = c

	r.logger.Info("registry.client_created", zap.String("tenant", t))
	return c, nil
}

// HR returns the company endpoints for tenant.
func (r *Registry) HR(ctx context.Context, tenant string) (*personio.HR, error) {
	c, err := r.Client(ctx, tenant)
	if err != nil {
		return nil, err
	}
	return personio.NewHR(c), nil
}

func (r *Registry) build(tenant string, cfg secrets.TenantConfig) *personio.Client {
	opts := []personio.Option{
		personio.WithLogger(r.logger.With(zap.String("tenant", tenant))),
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = r.opts.BaseURL
	}
	if baseURL != "" {
		opts = append(opts, personio.WithBaseURL(baseURL))
	}
	if r.opts.HTTPClient != nil {
		opts = append(opts, personio.WithHTTPClient(r.opts.HTTPClient))
	}
	if r.opts.RateMgr != nil {
		opts = append(opts, personio.WithRateLimiter(r.opts.RateMgr, tenant))
	}
	return personio.New(cfg.Credentials, opts...)
}

// Evict drops the tenant's client and cached credentials. The next call
// resolves the secret again and performs a fresh token exchange.
func (r *Registry) Evict(tenant string) {
	t, err := NormalizeTenant(tenant)
	if err != nil {
		return
	}
	r.mu.Lock()
	_, existed := r.clients[t]
	delete(r.clients, t)
	r.mu.Unlock()
	r.resolver.Invalidate(t)

	if existed {
		r.logger.Info("registry.client_evicted", zap.String("tenant", t))
	}
}

// Tenants lists tenants with a live client.
func (r *Registry) Tenants() []string {
	r.mu.Lock()
	out := make([]string, 0, len(r.clients))
	for t := range r.clients {
		out = append(out, t)
	}
	r.mu.Unlock()
	sort.Strings(out)
	return out
}

// Warm builds clients for every discoverable tenant. Tenants whose secret is
// unusable are logged and skipped.
func (r *Registry) Warm(ctx context.Context) (int, error) {
	tenants, err := r.resolver.DiscoverTenants(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, t := range tenants {
		if _, err := r.Client(ctx, t); err != nil {
			r.logger.Warn("registry.warm_failed", zap.String("tenant", t), zap.Error(err))
			continue
		}
		n++
	}
	return n, nil
}
