package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"
	"golang.org/x/xerrors"

	"github.com/ethanolivertroy/dep-usage/internal/cache"
	"github.com/ethanolivertroy/dep-usage/internal/models"
)

// maxErrorBody bounds how much of a failed response body is kept for reporting
const maxErrorBody = 4096

// EndorClient handles requests to the Endor Labs REST API
type EndorClient struct {
	baseURL    string
	pageSize   int
	timeout    string
	httpClient *retryablehttp.Client
	auth       *apiKeyTokenSource
	authorized bool
	reauthed   bool
	transport  http.RoundTripper
}

// StatusError is returned for any non-2xx response that survived retries
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.URL, e.Status, e.Body)
}

// NewEndorClient creates a client for the API at config.APIURL. The token
// cache may be nil.
func NewEndorClient(config *models.Config, c *cache.Cache) *EndorClient {
	base := strings.TrimRight(config.APIURL, "/")
	client := &EndorClient{
		baseURL:    base,
		pageSize:   config.PageSize,
		timeout:    strconv.Itoa(int(config.Timeout.Seconds())),
		httpClient: newRetryableClient(config),
	}
	client.auth = &apiKeyTokenSource{
		httpClient: newRetryableClient(config),
		authURL:    base + "/auth/api-key",
		apiURL:     base,
		key:        config.APIKey,
		secret:     config.APISecret,
		timeout:    client.timeout,
		cache:      c,
	}
	return client
}

func newRetryableClient(config *models.Config) *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = config.Retries
	rc.HTTPClient.Timeout = config.Timeout
	// Keep the last response so its status and body can be reported.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if config.Verbose {
		rc.Logger = log.Default()
	} else {
		rc.Logger = nil
	}
	return rc
}

// Authenticate exchanges the API key and secret for a bearer token. It must
// succeed before any other call.
func (c *EndorClient) Authenticate(ctx context.Context) error {
	tok, err := c.auth.fetch(ctx)
	if err != nil {
		return err
	}
	c.useToken(tok)
	return nil
}

// reauthenticate replaces a token the API rejected with a fresh one. It is
// tried once per client; a second rejection is an authentication failure.
func (c *EndorClient) reauthenticate(ctx context.Context) error {
	c.reauthed = true
	c.auth.invalidate()
	log.Printf("Bearer token rejected, authenticating again")

	tok, err := c.auth.request(ctx)
	if err != nil {
		return err
	}
	c.useToken(tok)
	return nil
}

func (c *EndorClient) useToken(tok *oauth2.Token) {
	if c.transport == nil {
		c.transport = c.httpClient.HTTPClient.Transport
		if c.transport == nil {
			c.transport = http.DefaultTransport
		}
	}
	c.httpClient.HTTPClient.Transport = &oauth2.Transport{
		Source: oauth2.ReuseTokenSource(tok, c.auth),
		Base:   c.transport,
	}
	c.authorized = true
}

func (c *EndorClient) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	if !c.authorized {
		return xerrors.New("client is not authenticated")
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body interface{}
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return xerrors.Errorf("failed to marshal request: %w", err)
		}
		body = b
	}

	resp, err := c.send(ctx, method, u, body)
	if err != nil {
		return xerrors.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode == http.StatusUnauthorized && !c.reauthed {
		resp.Body.Close()
		if err := c.reauthenticate(ctx); err != nil {
			return err
		}
		if resp, err = c.send(ctx, method, u, body); err != nil {
			return xerrors.Errorf("%s %s: %w", method, path, err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &models.AuthError{
			Status: resp.StatusCode,
			Err:    xerrors.Errorf("%s %s rejected the bearer token: %s", method, path, bytes.TrimSpace(b)),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method: method,
			URL:    path,
			Status: resp.StatusCode,
			Body:   string(bytes.TrimSpace(b)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return xerrors.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func (c *EndorClient) send(ctx context.Context, method, u string, body interface{}) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, xerrors.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Request-Timeout", c.timeout)
	return c.httpClient.Do(req)
}

func namespacePath(namespace, resource string) string {
	return "/namespaces/" + url.PathEscape(namespace) + "/" + resource
}
