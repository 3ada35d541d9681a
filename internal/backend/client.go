package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-cleanhttp"

	"printhub/console/internal/config"
)

const maxBodyBytes = 4 << 20

// TokenSource supplies the bearer token attached to outgoing requests.
type TokenSource interface {
	AccessToken() string
}

// StaticToken is a TokenSource for a fixed token.
type StaticToken string

func (t StaticToken) AccessToken() string { return string(t) }

// Client talks to the printer backend. Anonymous calls (login, register) hang
// off Client; everything else goes through a Caller bound to a token.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	validate *validator.Validate
}

func NewClient(cfg config.BackendConfig) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", cfg.BaseURL)
	}

	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = cfg.Timeout
	if httpClient.Timeout == 0 {
		httpClient.Timeout = 15 * time.Second
	}

	return &Client{
		baseURL:  base,
		http:     httpClient,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// With binds the client to a token source. The token is read on every request.
func (c *Client) With(tokens TokenSource) *Caller {
	return &Caller{client: c, tokens: tokens}
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	token       string
}

func jsonBody(v any) (io.Reader, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return bytes.NewReader(buf), nil
}

// do sends req and decodes a 2xx body into out, validating its shape.
// out may be nil when the body is ignored.
func (c *Client) do(ctx context.Context, req request, out any) error {
	target := c.baseURL.JoinPath(req.path)
	// JoinPath drops a trailing slash that the listing endpoint expects.
	if strings.HasSuffix(req.path, "/") && !strings.HasSuffix(target.Path, "/") {
		target.Path += "/"
	}
	if len(req.query) > 0 {
		target.RawQuery = req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target.String(), req.body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &NetworkError{Method: req.method, URL: target.Redacted(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &NetworkError{Method: req.method, URL: target.Redacted(), Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAPIError(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return &SchemaError{Path: req.path, Err: errors.New("empty body")}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &SchemaError{Path: req.path, Err: err}
	}
	if err := c.validate.Struct(out); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return nil
		}
		return &SchemaError{Path: req.path, Err: err}
	}
	return nil
}
