// Package rules is the Firebase Security Rules service caller. It covers
// ruleset CRUD and release management against the firebaserules API.
package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/stackmode/fireadmin/apperror"
	"github.com/stackmode/fireadmin/logger"
	"github.com/stackmode/fireadmin/transport"
)

const (
	defaultEndpoint = "https://firebaserules.googleapis.com/v1"

	// Page size bounds imposed by the API.
	maxPageSize = 100
)

// Client manages rulesets and releases for a project.
type Client struct {
	client    transport.Client
	log       logger.Logger
	projectID string
	endpoint  string
}

// NewClient builds a Security Rules client for the given project.
func NewClient(client transport.Client, log logger.Logger, projectID string) (*Client, error) {
	if projectID == "" {
		return nil, apperror.New(apperror.PrefixSecurityRules, "invalid-argument",
			"project ID is required to access Security Rules service")
	}
	return &Client{
		client:    client,
		log:       log,
		projectID: projectID,
		endpoint:  defaultEndpoint,
	}, nil
}

// RulesFile is a single named source file within a ruleset.
type RulesFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Source is the set of files a ruleset is compiled from.
type Source struct {
	Files []*RulesFile `json:"files"`
}

// Ruleset is an immutable, versioned set of rules files.
type Ruleset struct {
	Name       string  `json:"name"`
	CreateTime string  `json:"createTime,omitempty"`
	Source     *Source `json:"source,omitempty"`
}

// Release points a named service surface at a ruleset.
type Release struct {
	Name        string `json:"name"`
	RulesetName string `json:"rulesetName"`
	CreateTime  string `json:"createTime,omitempty"`
	UpdateTime  string `json:"updateTime,omitempty"`
}

// RulesetPage is one page of ruleset listings.
type RulesetPage struct {
	Rulesets      []*Ruleset `json:"rulesets"`
	NextPageToken string     `json:"nextPageToken"`
}

// CreateRuleset uploads the source files as a new immutable ruleset.
func (c *Client) CreateRuleset(ctx context.Context, source *Source) (*Ruleset, error) {
	if source == nil || len(source.Files) == 0 {
		return nil, apperror.New(apperror.PrefixSecurityRules, "invalid-argument",
			"ruleset source must contain at least one file")
	}
	for _, f := range source.Files {
		if f == nil || f.Name == "" || f.Content == "" {
			return nil, apperror.New(apperror.PrefixSecurityRules, "invalid-argument",
				"ruleset files must have both a name and content")
		}
	}

	resp, err := c.client.Send(ctx, &transport.Request{
		Method: "POST",
		URL:    fmt.Sprintf("%s/projects/%s/rulesets", c.endpoint, c.projectID),
		Body:   &Ruleset{Source: source},
	})
	if err != nil {
		return nil, translateRulesError(err)
	}
	return decodeRuleset(resp)
}

// Ruleset fetches a ruleset, including its source, by short name or full
// resource name.
func (c *Client) Ruleset(ctx context.Context, name string) (*Ruleset, error) {
	id, err := c.rulesetID(name)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Send(ctx, &transport.Request{
		Method: "GET",
		URL:    fmt.Sprintf("%s/projects/%s/rulesets/%s", c.endpoint, c.projectID, id),
	})
	if err != nil {
		return nil, translateRulesError(err)
	}
	return decodeRuleset(resp)
}

// DeleteRuleset removes a ruleset. Rulesets referenced by a release
// cannot be deleted.
func (c *Client) DeleteRuleset(ctx context.Context, name string) error {
	id, err := c.rulesetID(name)
	if err != nil {
		return err
	}

	_, err = c.client.Send(ctx, &transport.Request{
		Method: "DELETE",
		URL:    fmt.Sprintf("%s/projects/%s/rulesets/%s", c.endpoint, c.projectID, id),
	})
	if err != nil {
		return translateRulesError(err)
	}
	c.log.Debug().Str("ruleset", id).Msg("ruleset deleted")
	return nil
}

// Rulesets lists the project's rulesets. Pass pageToken "" for the first
// page; pageSize 0 uses the server default.
func (c *Client) Rulesets(ctx context.Context, pageToken string, pageSize int) (*RulesetPage, error) {
	if pageSize < 0 || pageSize > maxPageSize {
		return nil, apperror.Newf(apperror.PrefixSecurityRules, "invalid-argument",
			"page size must be between 0 and %d", maxPageSize)
	}

	query := map[string]string{}
	if pageToken != "" {
		query["pageToken"] = pageToken
	}
	if pageSize > 0 {
		query["pageSize"] = strconv.Itoa(pageSize)
	}

	resp, err := c.client.Send(ctx, &transport.Request{
		Method: "GET",
		URL:    fmt.Sprintf("%s/projects/%s/rulesets", c.endpoint, c.projectID),
		Query:  query,
	})
	if err != nil {
		return nil, translateRulesError(err)
	}

	var page RulesetPage
	if err := resp.Decode(&page); err != nil {
		return nil, apperror.InvalidRulesServerResponse()
	}
	return &page, nil
}

// Release fetches a release by name, e.g. "cloud.firestore".
func (c *Client) Release(ctx context.Context, name string) (*Release, error) {
	if name == "" {
		return nil, apperror.New(apperror.PrefixSecurityRules, "invalid-argument",
			"release name must not be empty")
	}

	resp, err := c.client.Send(ctx, &transport.Request{
		Method: "GET",
		URL:    fmt.Sprintf("%s/projects/%s/releases/%s", c.endpoint, c.projectID, name),
	})
	if err != nil {
		return nil, translateRulesError(err)
	}
	return decodeRelease(resp)
}

// UpdateRelease points an existing release at a different ruleset,
// making that ruleset live.
func (c *Client) UpdateRelease(ctx context.Context, name, rulesetName string) (*Release, error) {
	if name == "" {
		return nil, apperror.New(apperror.PrefixSecurityRules, "invalid-argument",
			"release name must not be empty")
	}
	id, err := c.rulesetID(rulesetName)
	if err != nil {
		return nil, err
	}

	releaseName := fmt.Sprintf("projects/%s/releases/%s", c.projectID, name)
	resp, err := c.client.Send(ctx, &transport.Request{
		Method: "PATCH",
		URL:    fmt.Sprintf("%s/%s", c.endpoint, releaseName),
		Body: map[string]any{
			"release": &Release{
				Name:        releaseName,
				RulesetName: fmt.Sprintf("projects/%s/rulesets/%s", c.projectID, id),
			},
		},
	})
	if err != nil {
		return nil, translateRulesError(err)
	}
	return decodeRelease(resp)
}

// rulesetID strips an optional full resource prefix down to the bare
// ruleset identifier.
func (c *Client) rulesetID(name string) (string, error) {
	id := strings.TrimPrefix(name, fmt.Sprintf("projects/%s/rulesets/", c.projectID))
	if id == "" || strings.Contains(id, "/") {
		return "", apperror.Newf(apperror.PrefixSecurityRules, "invalid-argument",
			"malformed ruleset name %q", name)
	}
	return id, nil
}

func decodeRuleset(resp *transport.Response) (*Ruleset, error) {
	var ruleset Ruleset
	if err := resp.Decode(&ruleset); err != nil || ruleset.Name == "" {
		return nil, apperror.InvalidRulesServerResponse()
	}
	return &ruleset, nil
}

func decodeRelease(resp *transport.Response) (*Release, error) {
	var release Release
	if err := resp.Decode(&release); err != nil || release.Name == "" {
		return nil, apperror.InvalidRulesServerResponse()
	}
	return &release, nil
}

// rulesErrorPayload is the google.rpc error envelope used by the
// firebaserules API.
type rulesErrorPayload struct {
	Error struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

func translateRulesError(err error) error {
	var httpErr *transport.HTTPError
	if !errors.As(err, &httpErr) {
		return err
	}
	resp := httpErr.Response

	var payload rulesErrorPayload
	if resp.IsJSON() && json.Unmarshal(resp.Body, &payload) == nil && payload.Error.Status != "" {
		return apperror.FromRulesServerCode(payload.Error.Status, payload.Error.Message, json.RawMessage(resp.Body))
	}
	return apperror.FromRulesServerCode("", "", string(resp.Body))
}
