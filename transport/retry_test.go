package transport

import (
	"context"
	nethttp "net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRetryConfig(t *testing.T) {
	rc := DefaultRetryConfig()

	assert.Equal(t, 4, rc.MaxRetries)
	assert.Equal(t, []string{IOErrorConnectionReset, IOErrorTimeout}, rc.IOErrorCodes)
	assert.Equal(t, []int{503}, rc.StatusCodes)
	assert.Equal(t, 60*time.Second, rc.MaxDelay)
	assert.Equal(t, 0.5, rc.BackOffFactor)
	require.NoError(t, rc.Validate())
}

func TestRetryConfigValidate(t *testing.T) {
	assert.NoError(t, (*RetryConfig)(nil).Validate())
	assert.Error(t, (&RetryConfig{MaxRetries: -1}).Validate())
	assert.Error(t, (&RetryConfig{BackOffFactor: -0.5}).Validate())
	assert.Error(t, (&RetryConfig{StatusCodes: []int{7000}}).Validate())
	assert.NoError(t, (&RetryConfig{MaxRetries: 4, StatusCodes: []int{503}}).Validate())
}

func TestDecideNilConfigNeverRetries(t *testing.T) {
	var rc *RetryConfig

	retry, delay := rc.decide(0, nil, IOErrorConnectionReset, time.Now())
	assert.False(t, retry)
	assert.Zero(t, delay)

	retry, _ = rc.decide(0, &Response{Status: 503, Header: map[string]string{}}, "", time.Now())
	assert.False(t, retry)
}

func TestDecideRespectsMaxRetries(t *testing.T) {
	rc := DefaultRetryConfig()
	resp := &Response{Status: 503, Header: map[string]string{}}

	retry, _ := rc.decide(3, resp, "", time.Now())
	assert.True(t, retry)

	retry, _ = rc.decide(4, resp, "", time.Now())
	assert.False(t, retry)
}

func TestDecideIOErrorCodes(t *testing.T) {
	rc := DefaultRetryConfig()

	retry, _ := rc.decide(0, nil, IOErrorConnectionReset, time.Now())
	assert.True(t, retry)

	retry, _ = rc.decide(0, nil, IOErrorTimeout, time.Now())
	assert.True(t, retry)

	retry, _ = rc.decide(0, nil, IOErrorConnectionRefused, time.Now())
	assert.False(t, retry)

	retry, _ = rc.decide(0, nil, "", time.Now())
	assert.False(t, retry)
}

func TestDecideStatusCodes(t *testing.T) {
	rc := DefaultRetryConfig()

	retry, _ := rc.decide(0, &Response{Status: 503, Header: map[string]string{}}, "", time.Now())
	assert.True(t, retry)

	retry, _ = rc.decide(0, &Response{Status: 500, Header: map[string]string{}}, "", time.Now())
	assert.False(t, retry)

	retry, _ = rc.decide(0, &Response{Status: 400, Header: map[string]string{}}, "", time.Now())
	assert.False(t, retry)
}

func TestBackoffSequence(t *testing.T) {
	rc := DefaultRetryConfig()
	resp := &Response{Status: 503, Header: map[string]string{}}

	want := []time.Duration{0, time.Second, 2 * time.Second, 4 * time.Second}
	for attempt, expected := range want {
		retry, delay := rc.decide(attempt, resp, "", time.Now())
		require.True(t, retry, "attempt %d", attempt)
		assert.Equal(t, expected, delay, "attempt %d", attempt)
	}
}

func TestBackoffCappedAtMaxDelay(t *testing.T) {
	rc := &RetryConfig{
		MaxRetries:    10,
		StatusCodes:   []int{503},
		MaxDelay:      3 * time.Second,
		BackOffFactor: 0.5,
	}
	resp := &Response{Status: 503, Header: map[string]string{}}

	_, delay := rc.decide(9, resp, "", time.Now())
	assert.Equal(t, 3*time.Second, delay)
}

func TestBackoffZeroFactorMeansNoDelay(t *testing.T) {
	rc := &RetryConfig{
		MaxRetries:  4,
		StatusCodes: []int{503},
		MaxDelay:    60 * time.Second,
	}
	resp := &Response{Status: 503, Header: map[string]string{}}

	for attempt := 0; attempt < 4; attempt++ {
		retry, delay := rc.decide(attempt, resp, "", time.Now())
		require.True(t, retry)
		assert.Zero(t, delay)
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	rc := DefaultRetryConfig()
	resp := &Response{Status: 503, Header: map[string]string{"retry-after": "30"}}

	retry, delay := rc.decide(0, resp, "", time.Now())
	require.True(t, retry)
	assert.Equal(t, 30*time.Second, delay)
}

func TestRetryAfterHTTPDate(t *testing.T) {
	rc := DefaultRetryConfig()
	now := time.Now()
	at := now.Add(10 * time.Second).UTC().Format(nethttp.TimeFormat)
	resp := &Response{Status: 503, Header: map[string]string{"retry-after": at}}

	retry, delay := rc.decide(0, resp, "", now)
	require.True(t, retry)
	// Formatting truncates sub-second precision, so allow one second of slack.
	assert.GreaterOrEqual(t, delay, 9*time.Second)
	assert.LessOrEqual(t, delay, 10*time.Second)
}

func TestRetryAfterPastDateWaitsZeroButStillRetries(t *testing.T) {
	rc := DefaultRetryConfig()
	now := time.Now()
	at := now.Add(-1 * time.Hour).UTC().Format(nethttp.TimeFormat)
	resp := &Response{Status: 503, Header: map[string]string{"retry-after": at}}

	retry, delay := rc.decide(2, resp, "", now)
	require.True(t, retry)
	assert.Zero(t, delay)
}

func TestRetryAfterUnparsableWaitsZero(t *testing.T) {
	rc := DefaultRetryConfig()
	resp := &Response{Status: 503, Header: map[string]string{"retry-after": "soon"}}

	// Attempt 2 would normally back off for 2s; the unparsable header
	// takes precedence and means no wait.
	retry, delay := rc.decide(2, resp, "", time.Now())
	require.True(t, retry)
	assert.Zero(t, delay)
}

func TestRetryAfterCappedAtMaxDelay(t *testing.T) {
	rc := DefaultRetryConfig()
	resp := &Response{Status: 503, Header: map[string]string{"retry-after": "3600"}}

	retry, delay := rc.decide(0, resp, "", time.Now())
	require.True(t, retry)
	assert.Equal(t, 60*time.Second, delay)
}

func TestSleepWithContext(t *testing.T) {
	t.Run("zero delay returns immediately", func(t *testing.T) {
		require.NoError(t, sleepWithContext(context.Background(), 0))
	})

	t.Run("zero delay still observes canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Error(t, sleepWithContext(ctx, 0))
	})

	t.Run("cancel aborts the wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		go cancel()
		err := sleepWithContext(ctx, time.Minute)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
