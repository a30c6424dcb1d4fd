package gitlab_http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/davarch/pipeline-bot/internal/domain"
	"github.com/gregjones/httpcache"
)

var _ domain.GitlabClient = (*Client)(nil)

type Client struct {
	baseUrl string
	token   string
	hc      *http.Client
	retry   func() backoff.BackOff
}

// New builds a client for the v4 API below baseUrl. With cached set, GET
// responses are revalidated through ETags instead of being downloaded again.
func New(baseUrl string, token string, timeout time.Duration, cached bool) *Client {
	var tr http.RoundTripper = &http.Transport{
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
	}

	if cached {
		tr = &httpcache.Transport{
			Transport:           tr,
			Cache:               httpcache.NewMemoryCache(),
			MarkCachedResponses: true,
		}
	}

	return NewWithHTTPClient(&http.Client{Transport: tr, Timeout: timeout}, baseUrl, token)
}

func NewWithHTTPClient(hc *http.Client, baseUrl, token string) *Client {
	return &Client{
		baseUrl: trimSlash(baseUrl),
		token:   token,
		hc:      hc,
		retry:   defaultBackOff,
	}
}

// WithBackOff replaces the retry policy.
func (c *Client) WithBackOff(f func() backoff.BackOff) *Client {
	c.retry = f
	return c
}

func defaultBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 300 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = 5 * time.Second
	return bo
}

// APIError is a non-2xx answer from GitLab.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("gitlab %s %s: %s", e.Method, e.Path, e.Status)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthorized
	case http.StatusNotFound:
		return domain.ErrNotFound
	}
	return nil
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := c.baseUrl + "/api/v4" + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// do sends one request, retrying 5xx and 429 answers. The JSON body is
// decoded into out when out is not nil.
func (c *Client) do(ctx context.Context, method, rawURL string, form url.Values, out any) (http.Header, error) {
	var hdr http.Header

	op := func() error {
		var body io.Reader
		if form != nil {
			body = strings.NewReader(form.Encode())
		}

		req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("PRIVATE-TOKEN", c.token)
		req.Header.Set("Accept", "application/json")
		if form != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			return retryable(method, err)
		}

		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusTooManyRequests {
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if sec, _ := strconv.Atoi(ra); sec > 0 {
					select {
					case <-time.After(time.Duration(sec) * time.Second):
					case <-ctx.Done():
						return backoff.Permanent(ctx.Err())
					}
					return fmt.Errorf("retry after due to 429")
				}
			}

			return fmt.Errorf("gitlab 429")
		}

		if resp.StatusCode >= 500 {
			return retryable(method, fmt.Errorf("gitlab %s", resp.Status))
		}

		if resp.StatusCode >= 300 {
			return backoff.Permanent(apiError(req, resp))
		}

		hdr = resp.Header
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode %s: %w", req.URL.Path, err))
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(c.retry(), ctx)); err != nil {
		return nil, err
	}
	return hdr, nil
}

// retryable keeps err retryable for reads only. A repeated write could
// create a second trigger.
func retryable(method string, err error) error {
	if method != http.MethodGet {
		return backoff.Permanent(err)
	}
	return err
}

func apiError(req *http.Request, resp *http.Response) *APIError {
	e := &APIError{
		Method:     req.Method,
		Path:       req.URL.Path,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}

	var payload struct {
		Message any    `json:"message"`
		Error   string `json:"error"`
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(b, &payload) == nil {
		switch m := payload.Message.(type) {
		case string:
			e.Message = m
		case nil:
			e.Message = payload.Error
		default:
			if raw, err := json.Marshal(m); err == nil {
				e.Message = string(raw)
			}
		}
	}
	return e
}

type userDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Authenticate checks the token against the current user endpoint and
// returns the username it belongs to.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	var u userDTO
	if _, err := c.do(ctx, http.MethodGet, c.endpoint("/user", nil), nil, &u); err != nil {
		return "", fmt.Errorf("authenticate to %s: %w", c.baseUrl, err)
	}
	return u.Username, nil
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
