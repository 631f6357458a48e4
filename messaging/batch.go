package messaging

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/stackmode/fireadmin/apperror"
	"github.com/stackmode/fireadmin/transport"
)

const (
	// Upper bound on messages per batch call.
	maxBatchSize = 100

	// Concurrent sends in flight during SendEach.
	sendEachConcurrency = 10
)

// SendResponse is the outcome of delivering one message within a batch.
type SendResponse struct {
	Success   bool
	MessageID string
	Error     error
}

// BatchResponse aggregates per-message outcomes. Individual failures
// never fail the batch call itself.
type BatchResponse struct {
	SuccessCount int
	FailureCount int
	Responses    []*SendResponse
}

// MulticastMessage addresses the same payload to up to 100 tokens.
type MulticastMessage struct {
	Tokens       []string
	Data         map[string]string
	Notification *Notification
	Android      *AndroidConfig
	Webpush      *WebpushConfig
	APNS         *APNSConfig
	FCMOptions   *FCMOptions
}

func (m *MulticastMessage) expand() ([]*Message, error) {
	if m == nil {
		return nil, fmt.Errorf("message must not be nil")
	}
	if len(m.Tokens) == 0 {
		return nil, fmt.Errorf("tokens must not be empty")
	}
	if len(m.Tokens) > maxBatchSize {
		return nil, fmt.Errorf("tokens must not contain more than %d elements", maxBatchSize)
	}
	messages := make([]*Message, len(m.Tokens))
	for i, token := range m.Tokens {
		messages[i] = &Message{
			Token:        token,
			Data:         m.Data,
			Notification: m.Notification,
			Android:      m.Android,
			Webpush:      m.Webpush,
			APNS:         m.APNS,
			FCMOptions:   m.FCMOptions,
		}
	}
	return messages, nil
}

// SendEach delivers each message with its own HTTP call and reports
// per-message outcomes in input order.
func (c *Client) SendEach(ctx context.Context, messages []*Message) (*BatchResponse, error) {
	return c.sendEach(ctx, messages, false)
}

// SendEachDryRun validates each message without delivering it.
func (c *Client) SendEachDryRun(ctx context.Context, messages []*Message) (*BatchResponse, error) {
	return c.sendEach(ctx, messages, true)
}

// SendEachForMulticast fans the multicast payload out to every token via
// SendEach.
func (c *Client) SendEachForMulticast(ctx context.Context, message *MulticastMessage) (*BatchResponse, error) {
	messages, err := message.expand()
	if err != nil {
		return nil, apperror.New(apperror.PrefixMessaging, "invalid-argument", err.Error())
	}
	return c.sendEach(ctx, messages, false)
}

// SendEachForMulticastDryRun validates the multicast payload for every
// token without delivering it.
func (c *Client) SendEachForMulticastDryRun(ctx context.Context, message *MulticastMessage) (*BatchResponse, error) {
	messages, err := message.expand()
	if err != nil {
		return nil, apperror.New(apperror.PrefixMessaging, "invalid-argument", err.Error())
	}
	return c.sendEach(ctx, messages, true)
}

func (c *Client) sendEach(ctx context.Context, messages []*Message, dryRun bool) (*BatchResponse, error) {
	if err := validateBatch(messages); err != nil {
		return nil, err
	}

	responses := make([]*SendResponse, len(messages))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(sendEachConcurrency)
	for i, message := range messages {
		group.Go(func() error {
			id, err := c.send(gctx, message, dryRun)
			if err != nil {
				responses[i] = &SendResponse{Error: err}
			} else {
				responses[i] = &SendResponse{Success: true, MessageID: id}
			}
			return nil
		})
	}
	// Goroutines never return errors; Wait only synchronizes.
	_ = group.Wait()

	return collectBatch(responses), nil
}

// SendAll delivers up to 100 messages in a single multipart/mixed HTTP
// batch call.
func (c *Client) SendAll(ctx context.Context, messages []*Message) (*BatchResponse, error) {
	return c.sendAll(ctx, messages, false)
}

// SendAllDryRun validates up to 100 messages in a single batch call
// without delivering them.
func (c *Client) SendAllDryRun(ctx context.Context, messages []*Message) (*BatchResponse, error) {
	return c.sendAll(ctx, messages, true)
}

func (c *Client) sendAll(ctx context.Context, messages []*Message, dryRun bool) (*BatchResponse, error) {
	if err := validateBatch(messages); err != nil {
		return nil, err
	}

	body, contentType, err := c.encodeBatch(messages, dryRun)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Send(ctx, &transport.Request{
		Method:  "POST",
		URL:     c.endpoint + batchPath,
		Headers: map[string]string{"Content-Type": contentType},
		Body:    body,
	})
	if err != nil {
		return nil, translateFCMError(err)
	}

	parts := resp.Multipart()
	if parts == nil {
		return nil, apperror.New(apperror.PrefixMessaging, "internal-error",
			"expected a multipart batch response")
	}
	if len(parts) != len(messages) {
		return nil, apperror.Newf(apperror.PrefixMessaging, "internal-error",
			"batch response contains %d parts for %d messages", len(parts), len(messages))
	}

	responses := make([]*SendResponse, len(parts))
	for i, part := range parts {
		responses[i] = decodeBatchPart(part)
	}
	return collectBatch(responses), nil
}

// encodeBatch serializes the messages as a multipart/mixed payload of
// embedded HTTP requests, one part per message.
func (c *Client) encodeBatch(messages []*Message, dryRun bool) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.SetBoundary("batch_" + uuid.NewString()); err != nil {
		return nil, "", apperror.Wrap(apperror.PrefixMessaging, "internal-error",
			"failed to set batch boundary", err)
	}

	for i, message := range messages {
		payload, err := serializeSubRequest(c.projectID, message, dryRun)
		if err != nil {
			return nil, "", err
		}
		part, err := writer.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"application/http"},
			"Content-Id":                {fmt.Sprintf("%d", i+1)},
			"Content-Transfer-Encoding": {"binary"},
		})
		if err != nil {
			return nil, "", apperror.Wrap(apperror.PrefixMessaging, "internal-error",
				"failed to build batch part", err)
		}
		if _, err := part.Write(payload); err != nil {
			return nil, "", apperror.Wrap(apperror.PrefixMessaging, "internal-error",
				"failed to write batch part", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", apperror.Wrap(apperror.PrefixMessaging, "internal-error",
			"failed to finalize batch payload", err)
	}

	return buf.Bytes(), "multipart/mixed; boundary=" + writer.Boundary(), nil
}

func serializeSubRequest(projectID string, message *Message, dryRun bool) ([]byte, error) {
	body, err := (&transport.Request{Body: &sendRequest{ValidateOnly: dryRun, Message: message}}).SerializedBody()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "POST /v1/projects/%s/messages:send HTTP/1.1\r\n", projectID)
	buf.WriteString("Content-Type: application/json\r\n")
	fmt.Fprintf(&buf, "Content-Length: %d\r\n", len(body))
	buf.WriteString("\r\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

// decodeBatchPart turns one embedded HTTP response into a SendResponse.
func decodeBatchPart(part []byte) *SendResponse {
	resp, err := transport.ParseHTTPResponse(part)
	if err != nil {
		return &SendResponse{Error: err}
	}
	if resp.Status >= 400 {
		return &SendResponse{Error: errorFromResponse(resp)}
	}
	var result sendResponse
	if err := resp.Decode(&result); err != nil {
		return &SendResponse{Error: err}
	}
	return &SendResponse{Success: true, MessageID: result.Name}
}

func validateBatch(messages []*Message) error {
	if len(messages) == 0 {
		return apperror.New(apperror.PrefixMessaging, "invalid-argument",
			"messages must not be empty")
	}
	if len(messages) > maxBatchSize {
		return apperror.Newf(apperror.PrefixMessaging, "invalid-argument",
			"messages must not contain more than %d elements", maxBatchSize)
	}
	for i, message := range messages {
		if err := validateMessage(message); err != nil {
			return apperror.Newf(apperror.PrefixMessaging, "invalid-argument",
				"invalid message at index %d: %s", i, strings.TrimSpace(err.Error()))
		}
	}
	return nil
}

func collectBatch(responses []*SendResponse) *BatchResponse {
	batch := &BatchResponse{Responses: responses}
	for _, r := range responses {
		if r.Success {
			batch.SuccessCount++
		} else {
			batch.FailureCount++
		}
	}
	return batch
}
