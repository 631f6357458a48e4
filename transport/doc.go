// Package transport implements the HTTP request/retry engine shared by
// all SDK service clients.
//
// A service client builds a *Request (method, URL, headers, body) and
// calls Send on a Client. The transport serializes the body, applies the
// timeout, executes the request and parses the raw response into a
// uniform *Response with lowercased headers, a decompressed body, and
// lazy text/JSON/multipart views.
//
// # Retries
//
//   - Controlled via Config.Retry; a nil RetryConfig disables retries.
//   - I/O failures retry when their classified code (connection-reset,
//     timeout, connection-refused, dns) is listed in IOErrorCodes.
//   - HTTP failure statuses retry when listed in StatusCodes.
//   - A Retry-After header on the failing response overrides the
//     computed backoff; integer seconds and HTTP-dates are both honored.
//   - Otherwise the wait is BackOffFactor * 2^attempt seconds, with the
//     first retry issued immediately and every wait capped at MaxDelay.
//   - Retries are strictly sequential; after exhaustion the last error
//     encountered is surfaced.
//
// # Errors
//
// Terminal failure statuses (>= 400) surface as *HTTPError carrying the
// full response; low-level failures surface as app/network-error or
// app/network-timeout. Client-side contract violations (a GET with a
// body, an unserializable payload) are rejected before any I/O.
//
// AuthorizedClient decorates a Client with bearer credentials obtained
// from a pluggable TokenProvider.
package transport
