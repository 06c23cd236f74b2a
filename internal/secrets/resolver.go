package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Checker-Finance/personio-adapter/pkg/personio"
	pkgsecrets "github.com/Checker-Finance/personio-adapter/pkg/secrets"
	"github.com/Checker-Finance/personio-adapter/pkg/utils"
)

// ErrTenantNotFound is returned when no secret exists for a tenant.
var ErrTenantNotFound = errors.New("tenant not configured")

// TenantConfig is everything needed to build a Personio client for a tenant.
type TenantConfig struct {
	Credentials personio.Credentials
	// BaseURL overrides the API root; empty means the process default.
	BaseURL string
}

// ParseTenantConfig extracts a TenantConfig from a raw secret map. The secret
// must carry client_id and client_secret; base_url is optional.
func ParseTenantConfig(m map[string]string) (TenantConfig, error) {
	cfg := TenantConfig{
		Credentials: personio.Credentials{
			ClientID:     strings.TrimSpace(m["client_id"]),
			ClientSecret: strings.TrimSpace(m["client_secret"]),
		},
		BaseURL: strings.TrimSpace(m["base_url"]),
	}
	var missing []string
	if cfg.Credentials.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if cfg.Credentials.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if len(missing) > 0 {
		return TenantConfig{}, fmt.Errorf("secret missing required fields: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

// Resolver resolves per-tenant Personio credentials from a secrets provider,
// caching results locally to reduce API calls.
//
// Secret naming convention: {env}/{tenant}/{venue}
type Resolver struct {
	logger   *zap.Logger
	env      string
	venue    string
	provider pkgsecrets.Provider
	cache    *pkgsecrets.Cache[TenantConfig]
}

// NewResolver constructs a multi-tenant credential resolver.
func NewResolver(
	logger *zap.Logger,
	env string,
	venue string,
	provider pkgsecrets.Provider,
	cache *pkgsecrets.Cache[TenantConfig],
) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		logger:   logger,
		env:      env,
		venue:    venue,
		provider: provider,
		cache:    cache,
	}
}

func (r *Resolver) cacheKey(tenant string) string {
	return strings.ToLower(fmt.Sprintf("%s|%s", tenant, r.venue))
}

// secretName builds the secret key for a tenant.
// Pattern: {env}/{tenant}/{venue}
func (r *Resolver) secretName(tenant string) string {
	return strings.ToLower(fmt.Sprintf("%s/%s/%s", r.env, tenant, r.venue))
}

// Resolve fetches or returns the cached config for tenant.
func (r *Resolver) Resolve(ctx context.Context, tenant string) (TenantConfig, error) {
	key := r.cacheKey(tenant)

	// --- check in-memory cache first ---
	if cfg, ok := r.cache.Get(key); ok {
		return cfg, nil
	}

	// --- fetch from the secrets backend ---
	secretName := r.secretName(tenant)
	secretMap, err := r.provider.GetSecret(ctx, secretName)
	if err != nil {
		r.logger.Warn("secrets.fetch_failed",
			zap.String("key", secretName),
			zap.Error(err))
		if errors.Is(err, pkgsecrets.ErrNotFound) {
			return TenantConfig{}, fmt.Errorf("resolve tenant %q: %w", tenant, ErrTenantNotFound)
		}
		return TenantConfig{}, fmt.Errorf("resolve tenant %q: %w", tenant, err)
	}

	cfg, err := ParseTenantConfig(secretMap)
	if err != nil {
		return TenantConfig{}, fmt.Errorf("parse secret %q: %w", secretName, err)
	}

	// --- cache locally for next time ---
	r.cache.Put(key, cfg)

	r.logger.Info("secrets.tenant_resolved",
		zap.String("tenant", tenant),
		zap.String("venue", r.venue),
		zap.String("client_id", utils.MaskSecret(cfg.Credentials.ClientID)),
	)
	return cfg, nil
}

// Invalidate drops the cached config for tenant, forcing a refetch.
func (r *Resolver) Invalidate(tenant string) {
	r.cache.Bust(r.cacheKey(tenant))
}

// DiscoverTenants lists every tenant with a secret under "{env}/" ending in
// "/{venue}".
func (r *Resolver) DiscoverTenants(ctx context.Context) ([]string, error) {
	prefix := strings.ToLower(r.env + "/")
	suffix := "/" + strings.ToLower(r.venue)

	names, err := r.provider.ListSecrets(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("discover tenants: %w", err)
	}

	var tenants []string
	for _, name := range names {
		lower := strings.ToLower(name)
		if !strings.HasPrefix(lower, prefix) || !strings.HasSuffix(lower, suffix) {
			continue
		}
		// "{env}/{tenant}/{venue}" → tenant
		trimmed := strings.TrimSuffix(strings.TrimPrefix(lower, prefix), suffix)
		if trimmed != "" && !strings.Contains(trimmed, "/") {
			tenants = append(tenants, trimmed)
		}
	}

	r.logger.Info("secrets.tenants_discovered",
		zap.Int("count", len(tenants)),
		zap.Strings("tenants", tenants),
	)
	return tenants, nil
}
