package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"
	"golang.org/x/xerrors"

	"github.com/ethanolivertroy/dep-usage/internal/cache"
	"github.com/ethanolivertroy/dep-usage/internal/models"
)

// defaultTokenLifetime is assumed when the API does not say when a token expires
const defaultTokenLifetime = 4 * time.Hour

// expiryMargin keeps a cached token from being used right before it lapses
const expiryMargin = 2 * time.Minute

type apiKeyRequest struct {
	Key    string `json:"key"`
	Secret string `json:"secret"`
}

type apiKeyResponse struct {
	Token          string `json:"token"`
	ExpirationTime string `json:"expiration_time,omitempty"`
}

type cachedToken struct {
	AccessToken string    `json:"access_token"`
	Expiry      time.Time `json:"expiry"`
}

// apiKeyTokenSource exchanges an API key/secret pair for a bearer token
type apiKeyTokenSource struct {
	httpClient *retryablehttp.Client
	authURL    string
	apiURL     string
	key        string
	secret     string
	timeout    string
	cache      *cache.Cache
}

// Token implements oauth2.TokenSource. It is called by the transport when the
// current token expires mid-run.
func (s *apiKeyTokenSource) Token() (*oauth2.Token, error) {
	return s.fetch(context.Background())
}

func (s *apiKeyTokenSource) cacheKey() string {
	return s.apiURL + "|" + s.key
}

func (s *apiKeyTokenSource) fetch(ctx context.Context) (*oauth2.Token, error) {
	if tok := s.cached(); tok != nil {
		return tok, nil
	}
	return s.request(ctx)
}

// request asks the API for a new token, skipping the cache
func (s *apiKeyTokenSource) request(ctx context.Context) (*oauth2.Token, error) {
	if s.key == "" || s.secret == "" {
		return nil, &models.AuthError{Err: errors.New("API key and secret are required")}
	}

	body, err := json.Marshal(apiKeyRequest{Key: s.key, Secret: s.secret})
	if err != nil {
		return nil, &models.AuthError{Err: err}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", s.authURL, body)
	if err != nil {
		return nil, &models.AuthError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Request-Timeout", s.timeout)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &models.AuthError{Err: xerrors.Errorf("failed to get token: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &models.AuthError{
			Status: resp.StatusCode,
			Err:    errors.New(string(bytes.TrimSpace(b))),
		}
	}

	var keyResp apiKeyResponse
	if err := json.NewDecoder(resp.Body).Decode(&keyResp); err != nil {
		return nil, &models.AuthError{Status: resp.StatusCode, Err: xerrors.Errorf("failed to decode token response: %w", err)}
	}
	if keyResp.Token == "" {
		return nil, &models.AuthError{Status: resp.StatusCode, Err: errors.New("response carried no token")}
	}

	expiry := time.Now().Add(defaultTokenLifetime)
	if keyResp.ExpirationTime != "" {
		if t, err := time.Parse(time.RFC3339, keyResp.ExpirationTime); err == nil {
			expiry = t
		}
	}

	tok := &oauth2.Token{
		AccessToken: keyResp.Token,
		TokenType:   "Bearer",
		Expiry:      expiry,
	}
	s.store(tok)
	return tok, nil
}

func (s *apiKeyTokenSource) cached() *oauth2.Token {
	if s.cache == nil {
		return nil
	}
	data, ok := s.cache.Get(s.cacheKey())
	if !ok {
		return nil
	}

	var ct cachedToken
	if err := json.Unmarshal(data, &ct); err != nil || ct.AccessToken == "" {
		return nil
	}
	if time.Until(ct.Expiry) < expiryMargin {
		return nil
	}
	return &oauth2.Token{AccessToken: ct.AccessToken, TokenType: "Bearer", Expiry: ct.Expiry}
}

// invalidate drops the cached token, e.g. after the API rejected it
func (s *apiKeyTokenSource) invalidate() {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(s.cacheKey()); err != nil {
		log.Printf("Failed to remove cached token: %v", err)
	}
}

func (s *apiKeyTokenSource) store(tok *oauth2.Token) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(cachedToken{AccessToken: tok.AccessToken, Expiry: tok.Expiry})
	if err != nil {
		return
	}
	// A token that cannot be cached is still usable for this run.
	_ = s.cache.Set(s.cacheKey(), data)
}
