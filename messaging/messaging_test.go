package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackmode/fireadmin/apperror"
	"github.com/stackmode/fireadmin/logger"
	"github.com/stackmode/fireadmin/transport"
)

const testProject = "test-project"

type roundTripperFunc func(*nethttp.Request) (*nethttp.Response, error)

func (f roundTripperFunc) RoundTrip(r *nethttp.Request) (*nethttp.Response, error) {
	return f(r)
}

func jsonReply(status int, body string) *nethttp.Response {
	return &nethttp.Response{
		StatusCode: status,
		Header:     nethttp.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestMessagingClient(t *testing.T, rt nethttp.RoundTripper) *Client {
	t.Helper()
	httpClient := transport.NewHTTPClient(logger.Disabled(), &transport.Config{Transport: rt})
	client, err := NewClient(httpClient, logger.Disabled(), testProject)
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresProjectID(t *testing.T) {
	_, err := NewClient(nil, logger.Disabled(), "")
	require.Error(t, err)
	assert.Equal(t, "messaging/invalid-argument", apperror.CodeOf(err))
}

func TestSendPostsMessage(t *testing.T) {
	var captured []byte
	client := newTestMessagingClient(t, roundTripperFunc(func(r *nethttp.Request) (*nethttp.Response, error) {
		assert.Equal(t, nethttp.MethodPost, r.Method)
		assert.Equal(t, "/v1/projects/test-project/messages:send", r.URL.Path)
		captured, _ = io.ReadAll(r.Body)
		return jsonReply(200, `{"name":"projects/test-project/messages/123"}`), nil
	}))

	name, err := client.Send(context.Background(), &Message{Token: "device-token"})
	require.NoError(t, err)
	assert.Equal(t, "projects/test-project/messages/123", name)

	var body map[string]any
	require.NoError(t, json.Unmarshal(captured, &body))
	message := body["message"].(map[string]any)
	assert.Equal(t, "device-token", message["token"])
	assert.NotContains(t, body, "validate_only")
}

func TestSendDryRunSetsValidateOnly(t *testing.T) {
	var captured []byte
	client := newTestMessagingClient(t, roundTripperFunc(func(r *nethttp.Request) (*nethttp.Response, error) {
		captured, _ = io.ReadAll(r.Body)
		return jsonReply(200, `{"name":"projects/test-project/messages/123"}`), nil
	}))

	_, err := client.SendDryRun(context.Background(), &Message{Token: "device-token"})
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(captured, &body))
	assert.Equal(t, true, body["validate_only"])
}

func TestSendNormalizesTopicName(t *testing.T) {
	var captured []byte
	client := newTestMessagingClient(t, roundTripperFunc(func(r *nethttp.Request) (*nethttp.Response, error) {
		captured, _ = io.ReadAll(r.Body)
		return jsonReply(200, `{"name":"n"}`), nil
	}))

	_, err := client.Send(context.Background(), &Message{Topic: "/topics/news"})
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(captured, &body))
	message := body["message"].(map[string]any)
	assert.Equal(t, "news", message["topic"])
}

func TestSendValidation(t *testing.T) {
	calls := 0
	client := newTestMessagingClient(t, roundTripperFunc(func(*nethttp.Request) (*nethttp.Response, error) {
		calls++
		return jsonReply(200, `{}`), nil
	}))

	tests := []struct {
		name    string
		message *Message
	}{
		{"nil message", nil},
		{"no target", &Message{}},
		{"multiple targets", &Message{Token: "t", Topic: "news"}},
		{"malformed topic", &Message{Topic: "$news!"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Send(context.Background(), tt.message)
			require.Error(t, err)
			assert.Equal(t, "messaging/invalid-argument", apperror.CodeOf(err))
		})
	}
	assert.Zero(t, calls)
}

func TestSendMapsV1ErrorCode(t *testing.T) {
	body := `{"error":{"status":"NOT_FOUND","message":"Requested entity was not found.",
		"details":[{"@type":"type.googleapis.com/google.firebase.fcm.v1.FcmError","errorCode":"UNREGISTERED"}]}}`
	client := newTestMessagingClient(t, roundTripperFunc(func(*nethttp.Request) (*nethttp.Response, error) {
		return jsonReply(404, body), nil
	}))

	_, err := client.Send(context.Background(), &Message{Token: "stale-token"})
	require.Error(t, err)
	assert.Equal(t, "messaging/registration-token-not-registered", apperror.CodeOf(err))
	assert.Contains(t, err.Error(), "Requested entity was not found.")
}

func TestSendMapsStatusFallbackForNonJSONError(t *testing.T) {
	client := newTestMessagingClient(t, roundTripperFunc(func(*nethttp.Request) (*nethttp.Response, error) {
		return &nethttp.Response{
			StatusCode: 503,
			Header:     nethttp.Header{"Content-Type": []string{"text/plain"}},
			Body:       io.NopCloser(strings.NewReader("upstream unavailable")),
		}, nil
	}))

	_, err := client.Send(context.Background(), &Message{Token: "device-token"})
	require.Error(t, err)
	assert.Equal(t, "messaging/server-unavailable", apperror.CodeOf(err))
}

func TestSendEachReportsPartialFailure(t *testing.T) {
	client := newTestMessagingClient(t, roundTripperFunc(func(r *nethttp.Request) (*nethttp.Response, error) {
		raw, _ := io.ReadAll(r.Body)
		if bytes.Contains(raw, []byte("bad-token")) {
			return jsonReply(400, `{"error":{"status":"INVALID_ARGUMENT","message":"bad token"}}`), nil
		}
		return jsonReply(200, `{"name":"projects/test-project/messages/ok"}`), nil
	}))

	batch, err := client.SendEach(context.Background(), []*Message{
		{Token: "good-token"},
		{Token: "bad-token"},
		{Token: "good-token-2"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, batch.SuccessCount)
	assert.Equal(t, 1, batch.FailureCount)
	require.Len(t, batch.Responses, 3)
	assert.True(t, batch.Responses[0].Success)
	assert.False(t, batch.Responses[1].Success)
	assert.Equal(t, "messaging/invalid-argument", apperror.CodeOf(batch.Responses[1].Error))
	assert.True(t, batch.Responses[2].Success)
}

func TestSendEachForMulticastExpandsTokens(t *testing.T) {
	var calls atomic.Int32
	client := newTestMessagingClient(t, roundTripperFunc(func(*nethttp.Request) (*nethttp.Response, error) {
		calls.Add(1)
		return jsonReply(200, `{"name":"n"}`), nil
	}))

	batch, err := client.SendEachForMulticast(context.Background(), &MulticastMessage{
		Tokens: []string{"a", "b", "c"},
		Data:   map[string]string{"k": "v"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, batch.SuccessCount)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendEachForMulticastValidation(t *testing.T) {
	client := newTestMessagingClient(t, roundTripperFunc(func(*nethttp.Request) (*nethttp.Response, error) {
		t.Fatal("no HTTP call expected")
		return nil, nil
	}))

	_, err := client.SendEachForMulticast(context.Background(), &MulticastMessage{})
	require.Error(t, err)
	assert.Equal(t, "messaging/invalid-argument", apperror.CodeOf(err))

	tokens := make([]string, maxBatchSize+1)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("token-%d", i)
	}
	_, err = client.SendEachForMulticast(context.Background(), &MulticastMessage{Tokens: tokens})
	require.Error(t, err)
	assert.Equal(t, "messaging/invalid-argument", apperror.CodeOf(err))
}

func TestSendEachRejectsOversizedBatch(t *testing.T) {
	client := newTestMessagingClient(t, roundTripperFunc(func(*nethttp.Request) (*nethttp.Response, error) {
		t.Fatal("no HTTP call expected")
		return nil, nil
	}))

	messages := make([]*Message, maxBatchSize+1)
	for i := range messages {
		messages[i] = &Message{Token: fmt.Sprintf("token-%d", i)}
	}
	_, err := client.SendEach(context.Background(), messages)
	require.Error(t, err)
	assert.Equal(t, "messaging/invalid-argument", apperror.CodeOf(err))

	_, err = client.SendEach(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, "messaging/invalid-argument", apperror.CodeOf(err))
}

func TestSendEachRejectsInvalidMessageUpfront(t *testing.T) {
	client := newTestMessagingClient(t, roundTripperFunc(func(*nethttp.Request) (*nethttp.Response, error) {
		t.Fatal("no HTTP call expected")
		return nil, nil
	}))

	_, err := client.SendEach(context.Background(), []*Message{
		{Token: "fine"},
		{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 1")
}
