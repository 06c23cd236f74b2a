package personio

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Checker-Finance/personio-adapter/internal/metrics"
	"github.com/Checker-Finance/personio-adapter/pkg/utils"
)

const (
	authEndpoint = "auth"

	msgTokenFetchFailed = "unable to fetch authorization token"
	msgTokenMissing     = "unable to get token from authorization response"
)

// Credentials are the API client id and secret issued by Personio.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Authenticator attaches the cached bearer token to requests, exchanging the
// credentials for a token when the cache is empty.
type Authenticator struct {
	logger    *zap.Logger
	creds     Credentials
	baseURL   string
	transport Transport
	tokens    *TokenCache
}

// NewAuthenticator creates an Authenticator. The exchange is sent through
// transport directly and is itself never authenticated.
func NewAuthenticator(logger *zap.Logger, creds Credentials, baseURL string, transport Transport, tokens *TokenCache) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{
		logger:    logger,
		creds:     creds,
		baseURL:   baseURL,
		transport: transport,
		tokens:    tokens,
	}
}

// Authenticate returns a copy of req carrying "Authorization: Bearer <token>".
func (a *Authenticator) Authenticate(ctx context.Context, req *Request) (*Request, error) {
	token, err := a.tokens.Token(ctx, a.fetchToken)
	if err != nil {
		return nil, err
	}

	out := req.Clone()
	out.Header.Set("Authorization", "Bearer "+token)
	return out, nil
}

func (a *Authenticator) fetchToken(ctx context.Context) (string, error) {
	u, err := BuildURL(a.baseURL, authEndpoint, map[string]string{
		"client_id":     a.creds.ClientID,
		"client_secret": a.creds.ClientSecret,
	})
	if err != nil {
		return "", err
	}
	req, err := NewRequest(http.MethodPost, u, nil, nil)
	if err != nil {
		return "", err
	}

	resp, sendErr := a.transport.Send(ctx, req)
	if err := classifyTransport(req, resp, sendErr); err != nil {
		return "", a.exchangeFailed(err)
	}
	if err := classifyStatus(req, resp); err != nil {
		return "", a.exchangeFailed(err)
	}

	env := resp.Envelope()
	if !env.Success {
		code := 0
		if env.Error != nil {
			code = env.Error.Code
		}
		return "", a.exchangeFailed(newError(req, resp, msgTokenFetchFailed, code, nil))
	}

	var data struct {
		Token string `json:"token"`
	}
	if len(env.Data) > 0 {
		_ = json.Unmarshal(env.Data, &data)
	}
	if data.Token == "" {
		return "", a.exchangeFailed(newError(req, resp, msgTokenMissing, 0, nil))
	}

	metrics.IncTokenExchange("success")
	a.logger.Info("personio.token_exchanged",
		zap.String("client_id", utils.MaskSecret(a.creds.ClientID)))
	return data.Token, nil
}

func (a *Authenticator) exchangeFailed(err *Error) *Error {
	metrics.IncTokenExchange("failure")
	a.logger.Warn("personio.token_exchange_failed",
		zap.String("client_id", utils.MaskSecret(a.creds.ClientID)),
		zap.Bool("has_response", err.HasResponse()),
		zap.Error(err))
	return err
}
