package secrets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedEnv(vars ...string) func() []string {
	return func() []string { return vars }
}

func TestEnvProvider_GetSecret(t *testing.T) {
	p := &EnvProvider{environ: fixedEnv(
		"SECRET_DEV__ACME__PERSONIO__CLIENT_ID=abc",
		"SECRET_DEV__ACME__PERSONIO__CLIENT_SECRET=xyz",
		"SECRET_DEV__ACME_EU__PERSONIO__CLIENT_ID=other",
		"SECRET_PROD__ACME__PERSONIO__CLIENT_ID=prod",
		"PATH=/usr/bin",
	)}

	got, err := p.GetSecret(context.Background(), "dev/acme/personio")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"client_id": "abc", "client_secret": "xyz"}, got)

	got, err = p.GetSecret(context.Background(), "dev/acme-eu/personio")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"client_id": "other"}, got)
}

func TestEnvProvider_GetSecretMissing(t *testing.T) {
	p := &EnvProvider{environ: fixedEnv("SECRET_DEV__ACME__PERSONIO__CLIENT_ID=abc")}

	_, err := p.GetSecret(context.Background(), "dev/globex/personio")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnvProvider_ListSecrets(t *testing.T) {
	p := &EnvProvider{environ: fixedEnv(
		"SECRET_DEV__ACME__PERSONIO__CLIENT_ID=abc",
		"SECRET_DEV__ACME__PERSONIO__CLIENT_SECRET=xyz",
		"SECRET_DEV__ACME_EU__PERSONIO__CLIENT_ID=other",
		"SECRET_PROD__GLOBEX__PERSONIO__CLIENT_ID=prod",
		"SECRET_BROKEN=1",
		"HOME=/root",
	)}

	names, err := p.ListSecrets(context.Background(), "dev/")
	require.NoError(t, err)
	assert.Equal(t, []string{"dev/acme-eu/personio", "dev/acme/personio"}, names)

	all, err := p.ListSecrets(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
