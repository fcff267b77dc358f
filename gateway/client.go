package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	opListTools   = "list tools"
	opExecuteTool = "execute tool"

	headerRequestId = "X-Request-Id"
	contentTypeJSON = "application/json"
)

// Client represents a tool gateway client
type Client struct {
	baseURL          string
	base             *http.Client
	httpClient       *http.Client
	listTimeout      time.Duration
	callTimeout      time.Duration
	maxResponseBytes int64
	userAgent        string
	logger           *logrus.Entry
}

// BaseURL returns gateway base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListTools returns raw tool descriptors published by the gateway
func (c *Client) ListTools(ctx context.Context) ([]json.RawMessage, error) {
	data, err := c.do(ctx, opListTools, http.MethodGet, c.baseURL+"/tools", nil, c.listTimeout)
	if err != nil {
		return nil, err
	}
	var tools []json.RawMessage
	if err = json.Unmarshal(data, &tools); err == nil && tools != nil {
		return tools, nil
	}
	var wrapped map[string]json.RawMessage
	if wrappedErr := json.Unmarshal(data, &wrapped); wrappedErr != nil {
		return nil, &Error{Op: opListTools, Err: fmt.Errorf("invalid tools catalog: %w", err)}
	}
	raw, ok := wrapped["tools"]
	if !ok {
		return nil, &Error{Op: opListTools, Err: fmt.Errorf("invalid tools catalog: missing tools member")}
	}
	if err = json.Unmarshal(raw, &tools); err != nil {
		return nil, &Error{Op: opListTools, Err: fmt.Errorf("invalid tools catalog: %w", err)}
	}
	return tools, nil
}

// ExecuteTool executes named tool with supplied JSON arguments and returns the raw JSON result
func (c *Client) ExecuteTool(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	if len(bytes.TrimSpace(args)) == 0 {
		args = json.RawMessage("{}")
	}
	URL := c.baseURL + "/tools/" + url.PathEscape(name) + "/execute"
	data, err := c.do(ctx, opExecuteTool, http.MethodPost, URL, args, c.callTimeout)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(data) {
		return nil, &Error{Op: opExecuteTool, Err: fmt.Errorf("invalid result for tool %v", name)}
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, op, method, URL string, body []byte, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	request, err := http.NewRequestWithContext(ctx, method, URL, reader)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	requestId := uuid.New().String()
	request.Header.Set(headerRequestId, requestId)
	request.Header.Set("Accept", contentTypeJSON)
	if body != nil {
		request.Header.Set("Content-Type", contentTypeJSON)
	}
	if c.userAgent != "" {
		request.Header.Set("User-Agent", c.userAgent)
	}
	logger := c.logger.WithFields(logrus.Fields{"op": op, "requestId": requestId})
	started := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		logger.WithError(err).Warn("gateway call failed")
		return nil, &Error{Op: op, Err: err}
	}
	defer response.Body.Close()
	logger = logger.WithFields(logrus.Fields{"status": response.StatusCode, "elapsed": time.Since(started)})
	if response.StatusCode < 200 || response.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, c.maxResponseBytes))
		logger.Warn("gateway call rejected")
		return nil, &Error{Op: op, StatusCode: response.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(response.Body, c.maxResponseBytes+1))
	if err != nil {
		logger.WithError(err).Warn("failed to read gateway response")
		return nil, &Error{Op: op, Err: err}
	}
	if int64(len(data)) > c.maxResponseBytes {
		return nil, &Error{Op: op, Err: fmt.Errorf("response exceeded %d bytes", c.maxResponseBytes)}
	}
	logger.Debug("gateway call completed")
	return data, nil
}

// New creates a gateway client
func New(baseURL, token string, options ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway url %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid gateway url %q: expected http(s)://host", baseURL)
	}
	ret := &Client{
		baseURL:          baseURL,
		base:             http.DefaultClient,
		listTimeout:      DefaultListTimeout,
		callTimeout:      DefaultCallTimeout,
		maxResponseBytes: DefaultMaxResponseBytes,
		userAgent:        defaultUserAgent,
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		ret.logger = logrus.NewEntry(logger)
	}
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	httpClient := *ret.base
	httpClient.Transport = &oauth2.Transport{Source: source, Base: ret.base.Transport}
	ret.httpClient = &httpClient
	return ret, nil
}
