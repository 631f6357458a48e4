package transport

import (
	"context"
	nethttp "net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client is the sole entry point into the transport core. Service clients
// build a *Request and receive either a parsed *Response or a typed error.
type Client interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// TokenProvider is the credential capability injected into the
// AuthorizedClient. Implementations own their caching and refresh
// semantics; the transport never caches tokens itself.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Request describes one logical HTTP exchange. It is treated as immutable
// by the transport: Send operates on private copies and never mutates the
// caller's struct or header map.
//
// Body may be a string, a []byte, or any JSON-marshalable value. GET and
// HEAD requests must not carry a body.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    any
	// Query is merged into any query string already present in URL.
	Query map[string]string
	// Timeout overrides the client-level timeout when positive.
	Timeout time.Duration
	// Transport optionally pins a connection-reuse handle for this request.
	// It is passed through to the underlying round tripper unmodified.
	Transport nethttp.RoundTripper
}

// RequestInterceptor runs before the first attempt of a send. It
// receives a private copy of the request and may mutate it.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor runs after a successful exchange, before the
// response is returned to the caller.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response) error

// Config holds the transport client configuration.
type Config struct {
	Timeout              time.Duration
	Retry                *RetryConfig
	DefaultHeaders       map[string]string
	Transport            nethttp.RoundTripper
	RequestInterceptors  []RequestInterceptor
	ResponseInterceptors []ResponseInterceptor
	// RateLimit caps outbound requests per second when positive.
	RateLimit rate.Limit
	RateBurst int
}

// clone returns a copy of the request with its own header and query maps.
func (r *Request) clone() *Request {
	dup := *r
	if r.Headers != nil {
		dup.Headers = make(map[string]string, len(r.Headers))
		for k, v := range r.Headers {
			dup.Headers[k] = v
		}
	}
	if r.Query != nil {
		dup.Query = make(map[string]string, len(r.Query))
		for k, v := range r.Query {
			dup.Query[k] = v
		}
	}
	return &dup
}
