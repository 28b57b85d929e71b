package userapi

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

	"github.com/louisbranch/codemother/internal/services/web/session"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/louisbranch/codemother/internal/services/web/userapi"

	pathGetLoginUser = "/user/get/login"
	pathLogin        = "/user/login"
	pathLogout       = "/user/logout"

	maxResponseBytes = 1 << 20
)

// Client talks to the product API user controller.
type Client struct {
	baseURL        *url.URL
	httpClient     *http.Client
	tracerProvider trace.TracerProvider
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. Its transport is wrapped
// with otelhttp instrumentation.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTracerProvider replaces the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracerProvider = tp
		}
	}
}

// New returns a client rooted at baseURL, e.g. http://localhost:8123/api.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("user api base url is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse user api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("user api base url %q must use http or https", baseURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("user api base url %q has no host", baseURL)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")

	c := &Client{
		baseURL:    parsed,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.httpClient = instrumentClient(c.httpClient, c.tracerProvider)
	return c, nil
}

// instrumentClient returns a copy of base whose transport emits client spans
// and injects trace context into outgoing requests.
func instrumentClient(base *http.Client, tp trace.TracerProvider) *http.Client {
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	var opts []otelhttp.Option
	if tp != nil {
		opts = append(opts, otelhttp.WithTracerProvider(tp))
	}
	instrumented := *base
	instrumented.Transport = otelhttp.NewTransport(transport, opts...)
	return &instrumented
}

type envelope[T any] struct {
	Code    int    `json:"code"`
	Data    *T     `json:"data"`
	Message string `json:"message"`
}

type loginRequest struct {
	UserAccount  string `json:"userAccount"`
	UserPassword string `json:"userPassword"`
}

// GetLoginUser returns the identity behind the credentials in ctx.
func (c *Client) GetLoginUser(ctx context.Context) (*session.Session, error) {
	ctx, span := c.tracer().Start(ctx, "userapi.GetLoginUser")
	defer span.End()

	resp, err := c.do(ctx, http.MethodGet, pathGetLoginUser, nil)
	if err != nil {
		return nil, recordError(span, err)
	}
	defer resp.Body.Close()

	user, err := decodeEnvelope[session.Session](resp, span)
	if err != nil {
		return nil, recordError(span, err)
	}
	return user, nil
}

// FetchSession implements session.Fetcher.
func (c *Client) FetchSession(ctx context.Context) (*session.Session, error) {
	return c.GetLoginUser(ctx)
}

// Login exchanges an account and password for an identity. The returned
// cookies are the credentials the product API issued and must be handed to
// the browser.
func (c *Client) Login(ctx context.Context, account string, password string) (*session.Session, []*http.Cookie, error) {
	ctx, span := c.tracer().Start(ctx, "userapi.Login")
	defer span.End()

	body, err := json.Marshal(loginRequest{UserAccount: account, UserPassword: password})
	if err != nil {
		return nil, nil, recordError(span, fmt.Errorf("encode login request: %w", err))
	}
	resp, err := c.do(ctx, http.MethodPost, pathLogin, body)
	if err != nil {
		return nil, nil, recordError(span, err)
	}
	defer resp.Body.Close()

	user, err := decodeEnvelope[session.Session](resp, span)
	if err != nil {
		return nil, nil, recordError(span, err)
	}
	return user, resp.Cookies(), nil
}

// Logout ends the product API session behind the credentials in ctx.
func (c *Client) Logout(ctx context.Context) error {
	ctx, span := c.tracer().Start(ctx, "userapi.Logout")
	defer span.End()

	resp, err := c.do(ctx, http.MethodPost, pathLogout, nil)
	if err != nil {
		return recordError(span, err)
	}
	defer resp.Body.Close()

	if _, err := decodeEnvelope[bool](resp, span); err != nil && !errors.Is(err, ErrEmptyPayload) {
		return recordError(span, err)
	}
	return nil
}

func (c *Client) tracer() trace.Tracer {
	tp := c.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(instrumentationName)
}

func (c *Client) endpoint(path string) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	return u.String()
}

func (c *Client) do(ctx context.Context, method string, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range CredentialsFromContext(ctx) {
		req.AddCookie(cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func decodeEnvelope[T any](resp *http.Response, span trace.Span) (*T, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}
	var env envelope[T]
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode user api response: %w", err)
	}
	span.SetAttributes(attribute.Int("codemother.api.code", env.Code))
	if env.Code != CodeSuccess {
		return nil, &APIError{Code: env.Code, Message: env.Message}
	}
	if env.Data == nil {
		return nil, ErrEmptyPayload
	}
	return env.Data, nil
}

func recordError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
