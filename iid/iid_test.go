package iid

import (
	"context"
	"io"
	nethttp "net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackmode/fireadmin/apperror"
	"github.com/stackmode/fireadmin/logger"
	"github.com/stackmode/fireadmin/transport"
)

type roundTripperFunc func(*nethttp.Request) (*nethttp.Response, error)

func (f roundTripperFunc) RoundTrip(r *nethttp.Request) (*nethttp.Response, error) {
	return f(r)
}

func reply(status int) *nethttp.Response {
	return &nethttp.Response{
		StatusCode: status,
		Header:     nethttp.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader("{}")),
	}
}

func newTestIIDClient(t *testing.T, rt nethttp.RoundTripper) *Client {
	t.Helper()
	httpClient := transport.NewHTTPClient(logger.Disabled(), &transport.Config{Transport: rt})
	client, err := NewClient(httpClient, logger.Disabled(), "test-project")
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresProjectID(t *testing.T) {
	_, err := NewClient(nil, logger.Disabled(), "")
	require.Error(t, err)
	assert.Equal(t, "instance-id/invalid-argument", apperror.CodeOf(err))
}

func TestDeleteInstanceID(t *testing.T) {
	var captured *nethttp.Request
	client := newTestIIDClient(t, roundTripperFunc(func(r *nethttp.Request) (*nethttp.Response, error) {
		captured = r
		return reply(200), nil
	}))

	require.NoError(t, client.DeleteInstanceID(context.Background(), "iid-123"))
	assert.Equal(t, nethttp.MethodDelete, captured.Method)
	assert.Equal(t, "/v1/project/test-project/instanceId/iid-123", captured.URL.Path)
}

func TestDeleteInstanceIDEmptyID(t *testing.T) {
	client := newTestIIDClient(t, roundTripperFunc(func(*nethttp.Request) (*nethttp.Response, error) {
		t.Fatal("no HTTP call expected")
		return nil, nil
	}))

	err := client.DeleteInstanceID(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, "instance-id/invalid-argument", apperror.CodeOf(err))
}

func TestDeleteInstanceIDStatusMapping(t *testing.T) {
	tests := []struct {
		status  int
		code    string
		message string
	}{
		{400, "instance-id/invalid-argument", "Invalid argument provided."},
		{401, "instance-id/authentication-error", "Request not authorized."},
		{404, "instance-id/api-error", "Failed to find the instance ID."},
		{409, "instance-id/api-error", "The instance ID was already deleted."},
		{429, "instance-id/api-error", "Request throttled out by the backend server."},
		{500, "instance-id/internal-error", "An internal error has occurred."},
		{503, "instance-id/server-unavailable", "The backend server could not process the request in time."},
		{418, "instance-id/unknown-error", "An unknown server error was returned."},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			client := newTestIIDClient(t, roundTripperFunc(func(*nethttp.Request) (*nethttp.Response, error) {
				return reply(tt.status), nil
			}))

			err := client.DeleteInstanceID(context.Background(), "iid-123")
			require.Error(t, err)
			assert.Equal(t, tt.code, apperror.CodeOf(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
