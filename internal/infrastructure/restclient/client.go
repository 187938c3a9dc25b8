package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gitbridge/internal/domain/entities"
)

const (
	defaultTimeout  = 30 * time.Second
	maxErrorBodyLen = 4096
)

// Client executes JSON requests against one provider API and normalizes every failure
// into *entities.AuthenticationError or *entities.ClientError.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authorize  Authorizer
}

// New creates a client. A nil httpClient gets a default client with a 30s timeout.
func New(baseURL string, httpClient *http.Client, authorize Authorizer) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		authorize:  authorize,
	}
}

// BaseURL returns the base URL without trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Path joins segments after escaping each one independently.
func Path(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, segment := range segments {
		escaped = append(escaped, url.PathEscape(segment))
	}
	return strings.Join(escaped, "/")
}

// PageQuery translates a zero-based page request into 1-based page parameters.
func PageQuery(page entities.PageRequest, pageKey, sizeKey string) url.Values {
	page = page.Normalize()
	return url.Values{
		pageKey: {strconv.Itoa(page.Number + 1)},
		sizeKey: {strconv.Itoa(page.Size)},
	}
}

// Get issues a GET and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) (http.Header, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST with a JSON body and decodes the JSON answer into out.
func (c *Client) Post(ctx context.Context, path string, query url.Values, body, out any) (http.Header, error) {
	return c.Do(ctx, http.MethodPost, path, query, body, out)
}

// Do executes one request. path is relative to the base URL unless it is absolute.
// A nil out discards the body.
func (c *Client) Do(
	ctx context.Context,
	method, path string,
	query url.Values,
	body, out any,
) (http.Header, error) {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debugf("%s %s failed after %s: %v", method, req.URL.Redacted(), time.Since(started), err)
		return nil, entities.NewTransportError(err)
	}
	defer resp.Body.Close()

	logger.Debugf("%s %s -> %d (%s)", method, req.URL.Redacted(), resp.StatusCode, time.Since(started))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, entities.NewHTTPError(resp.StatusCode, errorMessage(resp))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.Header, nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, entities.NewTransportError(fmt.Errorf("failed to read response: %w", err))
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return nil, entities.NewTransportError(errors.New("empty response body"))
	}
	if err = json.Unmarshal(respBody, out); err != nil {
		return nil, entities.NewTransportError(fmt.Errorf("failed to parse response: %w", err))
	}

	return resp.Header, nil
}

func (c *Client) newRequest(
	ctx context.Context,
	method, path string,
	query url.Values,
	body any,
) (*http.Request, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, entities.NewConfigurationError("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = c.baseURL + "/" + strings.TrimPrefix(path, "/")
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, entities.NewConfigurationError("failed to create request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.authorize != nil {
		if err = c.authorize(req); err != nil {
			return nil, err
		}
	}
	return req, nil
}

func errorMessage(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
	message := strings.TrimSpace(string(data))
	if message == "" {
		return http.StatusText(resp.StatusCode)
	}
	return message
}

// WithParameters copies caller-supplied parameters into query without overriding keys
// the adapter already set (paging, scope filters).
func WithParameters(query url.Values, parameters map[string]string) url.Values {
	if query == nil {
		query = url.Values{}
	}
	for key, value := range parameters {
		if key == "" || query.Has(key) {
			continue
		}
		query.Set(key, value)
	}
	return query
}
