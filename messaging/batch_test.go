package messaging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	nethttp "net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackmode/fireadmin/apperror"
)

// readBatchParts decodes the multipart/mixed request payload into the raw
// bytes of each embedded HTTP request.
func readBatchParts(t *testing.T, r *nethttp.Request) [][]byte {
	t.Helper()
	_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.NotEmpty(t, params["boundary"])

	var parts [][]byte
	reader := multipart.NewReader(r.Body, params["boundary"])
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		content, err := io.ReadAll(part)
		require.NoError(t, err)
		parts = append(parts, content)
	}
	return parts
}

// batchReply assembles a multipart/mixed response whose parts are raw
// serialized HTTP responses.
func batchReply(t *testing.T, parts ...string) *nethttp.Response {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, part := range parts {
		w, err := writer.CreatePart(map[string][]string{"Content-Type": {"application/http"}})
		require.NoError(t, err)
		_, err = w.Write([]byte(part))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return &nethttp.Response{
		StatusCode: 200,
		Header:     nethttp.Header{"Content-Type": []string{"multipart/mixed; boundary=" + writer.Boundary()}},
		Body:       io.NopCloser(&buf),
	}
}

func embeddedReply(status int, statusText, body string) string {
	return fmt.Sprintf("HTTP/1.1 %d %s\r\nContent-Type: application/json\r\nContent-Length: %d\r\n\r\n%s",
		status, statusText, len(body), body)
}

func TestSendAllBuildsMultipartRequest(t *testing.T) {
	var captured *nethttp.Request
	var parts [][]byte
	client := newTestMessagingClient(t, roundTripperFunc(func(r *nethttp.Request) (*nethttp.Response, error) {
		captured = r
		parts = readBatchParts(t, r)
		return batchReply(t,
			embeddedReply(200, "OK", `{"name":"projects/test-project/messages/1"}`),
			embeddedReply(200, "OK", `{"name":"projects/test-project/messages/2"}`),
		), nil
	}))

	batch, err := client.SendAll(context.Background(), []*Message{
		{Token: "token-1"},
		{Token: "token-2"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/batch", captured.URL.Path)
	contentType := captured.Header.Get("Content-Type")
	assert.True(t, strings.HasPrefix(contentType, "multipart/mixed; boundary=batch_"), contentType)

	require.Len(t, parts, 2)
	for i, part := range parts {
		text := string(part)
		assert.True(t, strings.HasPrefix(text, "POST /v1/projects/test-project/messages:send HTTP/1.1\r\n"), text)
		assert.Contains(t, text, fmt.Sprintf(`"token":"token-%d"`, i+1))
	}

	assert.Equal(t, 2, batch.SuccessCount)
	assert.Equal(t, "projects/test-project/messages/1", batch.Responses[0].MessageID)
	assert.Equal(t, "projects/test-project/messages/2", batch.Responses[1].MessageID)
}

func TestSendAllDryRunMarksEveryPart(t *testing.T) {
	var parts [][]byte
	client := newTestMessagingClient(t, roundTripperFunc(func(r *nethttp.Request) (*nethttp.Response, error) {
		parts = readBatchParts(t, r)
		return batchReply(t, embeddedReply(200, "OK", `{"name":"n"}`)), nil
	}))

	_, err := client.SendAllDryRun(context.Background(), []*Message{{Token: "token-1"}})
	require.NoError(t, err)

	require.Len(t, parts, 1)
	assert.Contains(t, string(parts[0]), `"validate_only":true`)
}

func TestSendAllPartialFailure(t *testing.T) {
	failure := `{"error":{"status":"NOT_FOUND","message":"gone",
		"details":[{"@type":"type.googleapis.com/google.firebase.fcm.v1.FcmError","errorCode":"UNREGISTERED"}]}}`
	client := newTestMessagingClient(t, roundTripperFunc(func(r *nethttp.Request) (*nethttp.Response, error) {
		return batchReply(t,
			embeddedReply(200, "OK", `{"name":"projects/test-project/messages/1"}`),
			embeddedReply(404, "Not Found", failure),
		), nil
	}))

	batch, err := client.SendAll(context.Background(), []*Message{
		{Token: "alive"},
		{Token: "stale"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, batch.SuccessCount)
	assert.Equal(t, 1, batch.FailureCount)
	assert.True(t, batch.Responses[0].Success)
	assert.Equal(t, "messaging/registration-token-not-registered", apperror.CodeOf(batch.Responses[1].Error))
}

func TestSendAllPartCountMismatch(t *testing.T) {
	client := newTestMessagingClient(t, roundTripperFunc(func(r *nethttp.Request) (*nethttp.Response, error) {
		return batchReply(t, embeddedReply(200, "OK", `{"name":"n"}`)), nil
	}))

	_, err := client.SendAll(context.Background(), []*Message{
		{Token: "a"},
		{Token: "b"},
	})
	require.Error(t, err)
	assert.Equal(t, "messaging/internal-error", apperror.CodeOf(err))
	assert.Contains(t, err.Error(), "1 parts for 2 messages")
}

func TestSendAllNonMultipartResponse(t *testing.T) {
	client := newTestMessagingClient(t, roundTripperFunc(func(r *nethttp.Request) (*nethttp.Response, error) {
		return jsonReply(200, `{"name":"n"}`), nil
	}))

	_, err := client.SendAll(context.Background(), []*Message{{Token: "a"}})
	require.Error(t, err)
	assert.Equal(t, "messaging/internal-error", apperror.CodeOf(err))
}

func TestSendAllMalformedPart(t *testing.T) {
	client := newTestMessagingClient(t, roundTripperFunc(func(r *nethttp.Request) (*nethttp.Response, error) {
		return batchReply(t, "this is not an HTTP response"), nil
	}))

	batch, err := client.SendAll(context.Background(), []*Message{{Token: "a"}})
	require.NoError(t, err)

	assert.Equal(t, 1, batch.FailureCount)
	assert.Equal(t, "app/internal-error", apperror.CodeOf(batch.Responses[0].Error))
}

func TestSendAllWholeBatchRejected(t *testing.T) {
	client := newTestMessagingClient(t, roundTripperFunc(func(r *nethttp.Request) (*nethttp.Response, error) {
		return jsonReply(401, `{"error":{"status":"UNAUTHENTICATED","message":"bad credential"}}`), nil
	}))

	_, err := client.SendAll(context.Background(), []*Message{{Token: "a"}})
	require.Error(t, err)
	// UNAUTHENTICATED is not in the code table; the fallback applies.
	assert.Equal(t, "messaging/unknown-error", apperror.CodeOf(err))
}
