package transport

import (
	"context"
	nethttp "net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// I/O error codes eligible for retry. The transport classifies low-level
// failures into these stable tokens; RetryConfig.IOErrorCodes matches
// against them.
const (
	IOErrorConnectionRefused = "connection-refused"
	IOErrorConnectionReset   = "connection-reset"
	IOErrorDNS               = "dns"
	IOErrorTimeout           = "timeout"
)

// RetryConfig drives the transport's retry loop. A nil *RetryConfig
// disables retries entirely.
type RetryConfig struct {
	// MaxRetries bounds the number of re-issues after the first attempt.
	// Zero disables retry.
	MaxRetries int `validate:"gte=0"`
	// IOErrorCodes lists the classified transport error codes that are
	// eligible for retry.
	IOErrorCodes []string
	// StatusCodes lists the HTTP statuses that are eligible for retry.
	StatusCodes []int `validate:"dive,gte=100,lte=599"`
	// MaxDelay caps any single wait, including Retry-After waits.
	MaxDelay time.Duration `validate:"gte=0"`
	// BackOffFactor drives exponential growth of the wait between
	// attempts. Zero means no delay between retries.
	BackOffFactor float64 `validate:"gte=0"`
}

// DefaultRetryConfig returns the retry policy used when the caller does
// not supply one: four retries on 503 responses and on connection-reset
// or timeout failures, half-factor exponential backoff capped at one
// minute.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:    4,
		IOErrorCodes:  []string{IOErrorConnectionReset, IOErrorTimeout},
		StatusCodes:   []int{503},
		MaxDelay:      60 * time.Second,
		BackOffFactor: 0.5,
	}
}

var retryValidator = validator.New()

// Validate checks that all numeric fields are non-negative.
func (rc *RetryConfig) Validate() error {
	if rc == nil {
		return nil
	}
	return retryValidator.Struct(rc)
}

// decide is the pure retry decision function. Given the 0-based count of
// retries performed so far and the outcome of the last attempt (a
// response, or an I/O error classified into ioCode), it reports whether
// to retry and how long to wait first.
//
// The wait honors a Retry-After header on the failing response when
// present; otherwise it is exponential backoff with the first retry
// issued immediately. Waits never exceed MaxDelay.
func (rc *RetryConfig) decide(attempt int, resp *Response, ioCode string, now time.Time) (bool, time.Duration) {
	if rc == nil || attempt >= rc.MaxRetries {
		return false, 0
	}

	if resp == nil {
		if !slices.Contains(rc.IOErrorCodes, ioCode) {
			return false, 0
		}
		return true, rc.backoff(attempt)
	}

	if !slices.Contains(rc.StatusCodes, resp.Status) {
		return false, 0
	}
	if delay, ok := rc.retryAfter(resp, now); ok {
		return true, delay
	}
	return true, rc.backoff(attempt)
}

// retryAfter extracts the wait mandated by a Retry-After header. The
// header value is either a non-negative integer number of seconds or an
// HTTP-date; a date already in the past, or an unparsable value, means
// retry without waiting.
func (rc *RetryConfig) retryAfter(resp *Response, now time.Time) (time.Duration, bool) {
	value, ok := resp.Header["retry-after"]
	if !ok || value == "" {
		return 0, false
	}
	var delay time.Duration
	if secs, err := strconv.Atoi(value); err == nil {
		delay = time.Duration(secs) * time.Second
	} else if at, err := nethttp.ParseTime(value); err == nil {
		delay = at.Sub(now)
	}
	if delay < 0 {
		delay = 0
	}
	if delay > rc.MaxDelay {
		delay = rc.MaxDelay
	}
	return delay, true
}

// backoff computes BackOffFactor * 2^attempt seconds, capped at MaxDelay.
// The first retry is issued without delay.
func (rc *RetryConfig) backoff(attempt int) time.Duration {
	if attempt == 0 || rc.BackOffFactor <= 0 {
		return 0
	}
	// Cap the shift to keep the multiplier in range.
	if attempt > 30 {
		attempt = 30
	}
	delay := time.Duration(rc.BackOffFactor * float64(int64(1)<<attempt) * float64(time.Second))
	if delay > rc.MaxDelay {
		delay = rc.MaxDelay
	}
	return delay
}

// sleepFunc is the suspension point between attempts. The production
// implementation waits on a timer and aborts when the context is done;
// tests replace it to observe requested delays without waiting.
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		// Still honor an already-canceled context.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
