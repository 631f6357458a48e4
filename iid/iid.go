// Package iid is the Instance ID service caller. The service exposes a
// single deletion operation and reports failures only through HTTP
// status codes.
package iid

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/stackmode/fireadmin/apperror"
	"github.com/stackmode/fireadmin/logger"
	"github.com/stackmode/fireadmin/transport"
)

const defaultEndpoint = "https://console.firebase.google.com/v1"

// Client deletes instance IDs for a project.
type Client struct {
	client    transport.Client
	log       logger.Logger
	projectID string
	endpoint  string
}

// NewClient builds an Instance ID client for the given project.
func NewClient(client transport.Client, log logger.Logger, projectID string) (*Client, error) {
	if projectID == "" {
		return nil, apperror.New(apperror.PrefixInstanceID, "invalid-argument",
			"project ID is required to access Instance ID service")
	}
	return &Client{
		client:    client,
		log:       log,
		projectID: projectID,
		endpoint:  defaultEndpoint,
	}, nil
}

// DeleteInstanceID deletes the instance ID and all data associated with
// it, including FCM registrations and topic subscriptions.
func (c *Client) DeleteInstanceID(ctx context.Context, instanceID string) error {
	if instanceID == "" {
		return apperror.New(apperror.PrefixInstanceID, "invalid-argument",
			"instance ID must not be empty")
	}

	_, err := c.client.Send(ctx, &transport.Request{
		Method: "DELETE",
		URL: fmt.Sprintf("%s/project/%s/instanceId/%s",
			c.endpoint, c.projectID, url.PathEscape(instanceID)),
	})
	if err != nil {
		var httpErr *transport.HTTPError
		if errors.As(err, &httpErr) {
			return apperror.FromInstanceIDStatus(httpErr.Response.Status)
		}
		return err
	}

	c.log.Debug().Str("instance_id", instanceID).Msg("instance ID deleted")
	return nil
}
