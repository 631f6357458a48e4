// Package messaging is the Firebase Cloud Messaging (FCM v1) service
// caller. It is a thin layer over the transport client: request shaping,
// response decoding, and server-code translation into the error taxonomy.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/stackmode/fireadmin/apperror"
	"github.com/stackmode/fireadmin/logger"
	"github.com/stackmode/fireadmin/transport"
)

const (
	defaultEndpoint = "https://fcm.googleapis.com"
	batchPath       = "/batch"
)

var topicNamePattern = regexp.MustCompile(`^(/topics/)?(private/)?[a-zA-Z0-9-_.~%]+$`)

// Client sends messages through the FCM v1 API.
type Client struct {
	client    transport.Client
	log       logger.Logger
	projectID string
	endpoint  string
}

// NewClient builds a messaging client for the given project. The
// transport client is expected to carry authorization already.
func NewClient(client transport.Client, log logger.Logger, projectID string) (*Client, error) {
	if projectID == "" {
		return nil, apperror.New(apperror.PrefixMessaging, "invalid-argument",
			"project ID is required to access Cloud Messaging")
	}
	return &Client{
		client:    client,
		log:       log,
		projectID: projectID,
		endpoint:  defaultEndpoint,
	}, nil
}

// Message is a single FCM v1 message. Exactly one of Token, Topic, or
// Condition selects the target.
type Message struct {
	Data         map[string]string `json:"data,omitempty"`
	Notification *Notification     `json:"notification,omitempty"`
	Android      *AndroidConfig    `json:"android,omitempty"`
	Webpush      *WebpushConfig    `json:"webpush,omitempty"`
	APNS         *APNSConfig       `json:"apns,omitempty"`
	FCMOptions   *FCMOptions       `json:"fcm_options,omitempty"`
	Token        string            `json:"token,omitempty"`
	Topic        string            `json:"-"`
	Condition    string            `json:"condition,omitempty"`
}

// Notification is the basic cross-platform notification payload.
type Notification struct {
	Title    string `json:"title,omitempty"`
	Body     string `json:"body,omitempty"`
	ImageURL string `json:"image,omitempty"`
}

// AndroidConfig carries Android-specific delivery options.
type AndroidConfig struct {
	CollapseKey  string               `json:"collapse_key,omitempty"`
	Priority     string               `json:"priority,omitempty"`
	TTL          string               `json:"ttl,omitempty"`
	Data         map[string]string    `json:"data,omitempty"`
	Notification *AndroidNotification `json:"notification,omitempty"`
}

// AndroidNotification overrides the notification payload on Android.
type AndroidNotification struct {
	Title       string   `json:"title,omitempty"`
	Body        string   `json:"body,omitempty"`
	Icon        string   `json:"icon,omitempty"`
	Color       string   `json:"color,omitempty"`
	Sound       string   `json:"sound,omitempty"`
	Tag         string   `json:"tag,omitempty"`
	ClickAction string   `json:"click_action,omitempty"`
	BodyLocKey  string   `json:"body_loc_key,omitempty"`
	BodyLocArgs []string `json:"body_loc_args,omitempty"`
	ChannelID   string   `json:"channel_id,omitempty"`
}

// WebpushConfig carries web push protocol options.
type WebpushConfig struct {
	Headers      map[string]string `json:"headers,omitempty"`
	Data         map[string]string `json:"data,omitempty"`
	Notification map[string]any    `json:"notification,omitempty"`
}

// APNSConfig carries Apple Push Notification service options. The
// payload follows the aps dictionary format.
type APNSConfig struct {
	Headers map[string]string `json:"headers,omitempty"`
	Payload map[string]any    `json:"payload,omitempty"`
}

// FCMOptions carries options shared across platforms.
type FCMOptions struct {
	AnalyticsLabel string `json:"analytics_label,omitempty"`
}

// MarshalJSON normalizes the topic name before serialization. Callers may
// pass either "name" or "/topics/name".
func (m *Message) MarshalJSON() ([]byte, error) {
	type alias Message
	wrapped := struct {
		Topic string `json:"topic,omitempty"`
		*alias
	}{
		Topic: strings.TrimPrefix(m.Topic, "/topics/"),
		alias: (*alias)(m),
	}
	return json.Marshal(wrapped)
}

func validateMessage(m *Message) error {
	if m == nil {
		return fmt.Errorf("message must not be nil")
	}
	targets := 0
	for _, t := range []string{m.Token, m.Topic, m.Condition} {
		if t != "" {
			targets++
		}
	}
	if targets != 1 {
		return fmt.Errorf("exactly one of token, topic or condition must be specified")
	}
	if m.Topic != "" && !topicNamePattern.MatchString(m.Topic) {
		return fmt.Errorf("malformed topic name %q", m.Topic)
	}
	return nil
}

type sendRequest struct {
	ValidateOnly bool     `json:"validate_only,omitempty"`
	Message      *Message `json:"message"`
}

type sendResponse struct {
	Name string `json:"name"`
}

// Send delivers the message and returns its FCM-assigned name.
func (c *Client) Send(ctx context.Context, message *Message) (string, error) {
	return c.send(ctx, message, false)
}

// SendDryRun validates the message against the FCM backend without
// delivering it.
func (c *Client) SendDryRun(ctx context.Context, message *Message) (string, error) {
	return c.send(ctx, message, true)
}

func (c *Client) send(ctx context.Context, message *Message, dryRun bool) (string, error) {
	if err := validateMessage(message); err != nil {
		return "", apperror.New(apperror.PrefixMessaging, "invalid-argument", err.Error())
	}

	resp, err := c.client.Send(ctx, &transport.Request{
		Method: "POST",
		URL:    fmt.Sprintf("%s/v1/projects/%s/messages:send", c.endpoint, c.projectID),
		Body:   &sendRequest{ValidateOnly: dryRun, Message: message},
	})
	if err != nil {
		return "", translateFCMError(err)
	}

	var result sendResponse
	if err := resp.Decode(&result); err != nil {
		return "", err
	}
	c.log.Debug().
		Str("message", result.Name).
		Bool("dry_run", dryRun).
		Msg("FCM message accepted")
	return result.Name, nil
}

// fcmErrorPayload is the v1 error envelope. The canonical code travels
// in details with the FcmError type marker; error.status is the platform
// fallback.
type fcmErrorPayload struct {
	Error struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Details []struct {
			Type      string `json:"@type"`
			ErrorCode string `json:"errorCode"`
		} `json:"details"`
	} `json:"error"`
}

func translateFCMError(err error) error {
	var httpErr *transport.HTTPError
	if !errors.As(err, &httpErr) {
		return err
	}
	return errorFromResponse(httpErr.Response)
}

func errorFromResponse(resp *transport.Response) error {
	var payload fcmErrorPayload
	if resp.IsJSON() && json.Unmarshal(resp.Body, &payload) == nil {
		code := payload.Error.Status
		for _, d := range payload.Error.Details {
			if strings.HasSuffix(d.Type, "fcm.v1.FcmError") && d.ErrorCode != "" {
				code = d.ErrorCode
			}
		}
		if code != "" {
			return apperror.FromMessagingServerCode(code, payload.Error.Message, json.RawMessage(resp.Body))
		}
	}
	return apperror.FromMessagingStatus(resp.Status, string(resp.Body))
}
