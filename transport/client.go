package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	nethttp "net/http"
	"net/url"
	"slices"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/stackmode/fireadmin/apperror"
	"github.com/stackmode/fireadmin/logger"
)

const (
	// DefaultTimeout is the default request timeout duration
	DefaultTimeout = 30 * time.Second

	contentTypeHeader  = "Content-Type"
	defaultContentType = "application/json"
)

var bodylessMethods = []string{nethttp.MethodGet, nethttp.MethodHead}

// HTTPClient executes one logical request per Send call, transparently
// retrying per the configured RetryConfig and resolving to a parsed
// *Response or a typed error.
type HTTPClient struct {
	httpClient *nethttp.Client
	logger     logger.Logger
	config     *Config
	limiter    *rate.Limiter
	sleep      sleepFunc
	callCount  int64
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a transport client. A nil config applies the
// default timeout and the default retry policy; an explicit Config with a
// nil Retry disables retries entirely.
func NewHTTPClient(log logger.Logger, config *Config) *HTTPClient {
	if log == nil {
		log = logger.Disabled()
	}
	if config == nil {
		config = &Config{
			Timeout: DefaultTimeout,
			Retry:   DefaultRetryConfig(),
		}
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		burst := config.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(config.RateLimit, burst)
	}

	return &HTTPClient{
		httpClient: &nethttp.Client{Transport: config.Transport},
		logger:     log,
		config:     config,
		limiter:    limiter,
		sleep:      sleepWithContext,
	}
}

// Builder provides a fluent interface for configuring the transport client
type Builder struct {
	config *Config
	logger logger.Logger
}

// NewBuilder creates a new client builder
func NewBuilder(log logger.Logger) *Builder {
	return &Builder{
		config: &Config{
			Timeout:        DefaultTimeout,
			Retry:          DefaultRetryConfig(),
			DefaultHeaders: make(map[string]string),
		},
		logger: log,
	}
}

// WithTimeout sets the request timeout
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.config.Timeout = timeout
	return b
}

// WithRetry sets the retry configuration. Passing nil disables retries.
func (b *Builder) WithRetry(rc *RetryConfig) *Builder {
	b.config.Retry = rc
	return b
}

// WithDefaultHeader adds a header sent with all requests
func (b *Builder) WithDefaultHeader(key, value string) *Builder {
	b.config.DefaultHeaders[key] = value
	return b
}

// WithTransport sets the underlying round tripper
func (b *Builder) WithTransport(rt nethttp.RoundTripper) *Builder {
	b.config.Transport = rt
	return b
}

// WithRequestInterceptor adds a hook running before each send
func (b *Builder) WithRequestInterceptor(interceptor RequestInterceptor) *Builder {
	b.config.RequestInterceptors = append(b.config.RequestInterceptors, interceptor)
	return b
}

// WithResponseInterceptor adds a hook running after each successful send
func (b *Builder) WithResponseInterceptor(interceptor ResponseInterceptor) *Builder {
	b.config.ResponseInterceptors = append(b.config.ResponseInterceptors, interceptor)
	return b
}

// WithRateLimit caps outbound requests per second
func (b *Builder) WithRateLimit(limit rate.Limit, burst int) *Builder {
	b.config.RateLimit = limit
	b.config.RateBurst = burst
	return b
}

// Build creates the transport client with the configured options
func (b *Builder) Build() (*HTTPClient, error) {
	if err := b.config.Retry.Validate(); err != nil {
		return nil, apperror.Wrap(apperror.PrefixApp, apperror.CodeInvalidArgument,
			"invalid retry configuration", err)
	}
	return NewHTTPClient(b.logger, b.config), nil
}

// Send executes the request, retrying failed attempts per the retry
// policy, and returns the parsed response. Failure statuses (>= 400)
// return the response together with an *HTTPError; low-level failures
// return an app/network-error or app/network-timeout.
func (c *HTTPClient) Send(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if len(c.config.RequestInterceptors) > 0 {
		req = req.clone()
		for _, intercept := range c.config.RequestInterceptors {
			if err := intercept(ctx, req); err != nil {
				return nil, apperror.Wrap(apperror.PrefixApp, apperror.CodeInternalError,
					"request interceptor failed", err)
			}
		}
		if err := validateRequest(req); err != nil {
			return nil, err
		}
	}

	payload, err := serializeBody(req.Body)
	if err != nil {
		return nil, err
	}
	target, err := buildURL(req)
	if err != nil {
		return nil, err
	}

	timeout := c.config.Timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	callID := uuid.NewString()
	callCount := atomic.AddInt64(&c.callCount, 1)

	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, c.terminalIOError(err, timeout)
			}
		}
		c.logRequest(req, target, callID, attempt)

		resp, ioErr := c.attempt(ctx, req, target, payload)

		if ioErr == nil && resp.Status < 400 {
			for _, intercept := range c.config.ResponseInterceptors {
				if err := intercept(ctx, req, resp); err != nil {
					return nil, apperror.Wrap(apperror.PrefixApp, apperror.CodeInternalError,
						"response interceptor failed", err)
				}
			}
			c.logResponse(resp, callID, start, callCount)
			return resp, nil
		}

		// Response parse failures are already typed and never retried.
		var appErr *apperror.Error
		if errors.As(ioErr, &appErr) {
			return nil, ioErr
		}

		retry, delay := c.config.Retry.decide(attempt, resp, ioErrorCode(ioErr), time.Now())
		if retry {
			if err := c.sleep(ctx, delay); err != nil {
				return nil, c.terminalIOError(err, timeout)
			}
			continue
		}

		if ioErr != nil {
			return nil, c.terminalIOError(ioErr, timeout)
		}
		c.logResponse(resp, callID, start, callCount)
		return resp, NewHTTPError(resp)
	}
}

// attempt issues one HTTP request and parses the raw response. The
// caller's Request is never touched; headers are copied fresh per attempt.
func (c *HTTPClient) attempt(ctx context.Context, req *Request, target string, payload []byte) (*Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := nethttp.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, err
	}
	c.applyHeaders(httpReq, req, payload)

	client := c.httpClient
	if req.Transport != nil {
		clone := *c.httpClient
		clone.Transport = req.Transport
		client = &clone
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}
	return newResponse(httpResp.StatusCode, httpResp.Header, respBody)
}

func (c *HTTPClient) applyHeaders(httpReq *nethttp.Request, req *Request, payload []byte) {
	for key, value := range c.config.DefaultHeaders {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if payload != nil {
		if httpReq.Header.Get(contentTypeHeader) == "" {
			httpReq.Header.Set(contentTypeHeader, defaultContentType)
		}
		httpReq.ContentLength = int64(len(payload))
	}
}

// terminalIOError maps a low-level failure into the app namespace.
// Deadline expiry becomes app/network-timeout naming the configured
// bound; everything else becomes app/network-error.
func (c *HTTPClient) terminalIOError(err error, timeout time.Duration) error {
	if isTimeout(err) {
		return apperror.Wrap(apperror.PrefixApp, apperror.CodeNetworkTimeout,
			fmt.Sprintf("timed out after %v", timeout), err)
	}
	if errors.Is(err, context.Canceled) {
		return apperror.Wrap(apperror.PrefixApp, apperror.CodeNetworkError,
			"request canceled", err)
	}
	code := ioErrorCode(err)
	if code == "" {
		code = "unknown"
	}
	return apperror.Wrap(apperror.PrefixApp, apperror.CodeNetworkError,
		fmt.Sprintf("error while making request: %v; code: %s", err, code), err)
}

// validateRequest enforces the client-side contract before any I/O.
func validateRequest(req *Request) error {
	if req == nil {
		return apperror.New(apperror.PrefixApp, apperror.CodeNetworkError,
			"request cannot be nil")
	}
	if req.Method == "" {
		return apperror.New(apperror.PrefixApp, apperror.CodeNetworkError,
			"request method is required")
	}
	if req.URL == "" {
		return apperror.New(apperror.PrefixApp, apperror.CodeNetworkError,
			"request URL is required")
	}
	if req.Body != nil && slices.Contains(bodylessMethods, req.Method) {
		return apperror.Newf(apperror.PrefixApp, apperror.CodeNetworkError,
			"%s requests cannot have a body", req.Method)
	}
	return nil
}

// SerializedBody returns the wire bytes the client would send for the
// request body. Service callers use it to embed requests in batch
// payloads.
func (r *Request) SerializedBody() ([]byte, error) {
	return serializeBody(r.Body)
}

// serializeBody turns the request body into wire bytes. Strings and byte
// buffers pass through unchanged; anything else is JSON-serialized.
func serializeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, apperror.Wrap(apperror.PrefixApp, apperror.CodeInvalidArgument,
				"error while serializing request body", err)
		}
		return data, nil
	}
}

// buildURL normalizes the target URL: the scheme defaults to https, and
// Query entries are merged with any query string already present rather
// than clobbering it.
func buildURL(req *Request) (string, error) {
	raw := req.URL
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", apperror.Wrap(apperror.PrefixApp, apperror.CodeNetworkError,
			fmt.Sprintf("malformed request URL: %q", req.URL), err)
	}
	if len(req.Query) > 0 {
		values := parsed.Query()
		for key, value := range req.Query {
			values.Set(key, value)
		}
		parsed.RawQuery = values.Encode()
	}
	return parsed.String(), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// ioErrorCode classifies a low-level failure into one of the stable retry
// tokens, or "" when the failure has no retryable classification.
func ioErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case isTimeout(err):
		return IOErrorTimeout
	case errors.Is(err, syscall.ECONNRESET):
		return IOErrorConnectionReset
	case errors.Is(err, syscall.ECONNREFUSED):
		return IOErrorConnectionRefused
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return IOErrorDNS
	}
	return ""
}

// logRequest logs the outgoing request
func (c *HTTPClient) logRequest(req *Request, target, callID string, attempt int) {
	logEvent := c.logger.Info().
		Str("direction", "outbound").
		Str("call_id", callID).
		Str("method", req.Method).
		Str("url", target)

	if attempt > 0 {
		logEvent = logEvent.Int("attempt", attempt)
	}
	if len(req.Headers) > 0 {
		logEvent = logEvent.Interface("headers", redactHeaders(req.Headers))
	}

	logEvent.Msg("SDK transport request")
}

// logResponse logs the incoming response
func (c *HTTPClient) logResponse(resp *Response, callID string, start time.Time, callCount int64) {
	c.logger.Info().
		Str("direction", "inbound").
		Str("call_id", callID).
		Int("status", resp.Status).
		Dur("elapsed", time.Since(start)).
		Int64("call_count", callCount).
		Msg("SDK transport response")
}

// redactHeaders masks credential-bearing header values before logging.
func redactHeaders(headers map[string]string) map[string]string {
	redacted := make(map[string]string, len(headers))
	for key, value := range headers {
		if strings.EqualFold(key, "Authorization") {
			value = "[REDACTED]"
		}
		redacted[key] = value
	}
	return redacted
}
