// Package fireadmin is the entry point to the SDK. It provides App, the
// central handle that owns configuration, credentials, and the shared
// HTTP transport, and exposes the individual service clients.
package fireadmin

import (
	"context"
	"os"

	"github.com/stackmode/fireadmin/config"
	"github.com/stackmode/fireadmin/credentials"
	"github.com/stackmode/fireadmin/iid"
	"github.com/stackmode/fireadmin/logger"
	"github.com/stackmode/fireadmin/messaging"
	"github.com/stackmode/fireadmin/rules"
	"github.com/stackmode/fireadmin/transport"
)

// Version of the SDK.
const Version = "0.1.0"

// An App holds configuration and state common to all services exposed
// from the SDK.
type App struct {
	cfg       *config.Config
	log       logger.Logger
	client    transport.Client
	projectID string
}

type options struct {
	configPath string
	cfg        *config.Config
	log        logger.Logger
	provider   transport.TokenProvider
	client     transport.Client
	projectID  string
}

// Option customizes App construction.
type Option func(*options)

// WithConfigFile names the YAML configuration file to load.
func WithConfigFile(path string) Option {
	return func(o *options) { o.configPath = path }
}

// WithConfig supplies an already-loaded configuration, bypassing Load.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger overrides the logger built from the configuration.
func WithLogger(log logger.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithTokenProvider supplies the credential, bypassing the service
// account and application-default lookup.
func WithTokenProvider(provider transport.TokenProvider) Option {
	return func(o *options) { o.provider = provider }
}

// WithHTTPClient replaces the whole transport, including authorization.
// Intended for tests and emulators.
func WithHTTPClient(client transport.Client) Option {
	return func(o *options) { o.client = client }
}

// WithProjectID overrides project ID resolution.
func WithProjectID(projectID string) Option {
	return func(o *options) { o.projectID = projectID }
}

// NewApp creates an App.
//
// The credential is resolved in order: WithTokenProvider, the service
// account file named in the configuration, application default
// credentials. The project ID is resolved in order: WithProjectID, the
// configuration, the credential itself, the GOOGLE_CLOUD_PROJECT and
// GCLOUD_PROJECT environment variables.
func NewApp(ctx context.Context, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg := o.cfg
	if cfg == nil {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	log := o.log
	if log == nil {
		log = logger.New(cfg.Log.Level, cfg.Log.Pretty)
	}

	provider := o.provider
	if provider == nil && o.client == nil {
		resolved, err := resolveCredential(ctx, cfg)
		if err != nil {
			return nil, err
		}
		provider = resolved
	}

	client := o.client
	if client == nil {
		base := transport.NewHTTPClient(log, cfg.TransportConfig())
		client = transport.NewAuthorizedClient(base, provider)
	}

	return &App{
		cfg:       cfg,
		log:       log,
		client:    client,
		projectID: resolveProjectID(o.projectID, cfg, provider),
	}, nil
}

func resolveCredential(ctx context.Context, cfg *config.Config) (*credentials.OAuthProvider, error) {
	if cfg.Project.CredentialsFile != "" {
		return credentials.NewServiceAccountFromFile(ctx, cfg.Project.CredentialsFile)
	}
	return credentials.ApplicationDefault(ctx)
}

func resolveProjectID(explicit string, cfg *config.Config, provider transport.TokenProvider) string {
	if explicit != "" {
		return explicit
	}
	if cfg.Project.ID != "" {
		return cfg.Project.ID
	}
	if p, ok := provider.(interface{ ProjectID() string }); ok && p.ProjectID() != "" {
		return p.ProjectID()
	}
	if id := os.Getenv("GOOGLE_CLOUD_PROJECT"); id != "" {
		return id
	}
	return os.Getenv("GCLOUD_PROJECT")
}

// ProjectID returns the resolved project ID, or "" when none could be
// determined.
func (a *App) ProjectID() string { return a.projectID }

// Messaging returns a Cloud Messaging client.
func (a *App) Messaging() (*messaging.Client, error) {
	return messaging.NewClient(a.client, a.log, a.projectID)
}

// InstanceID returns an Instance ID client.
func (a *App) InstanceID() (*iid.Client, error) {
	return iid.NewClient(a.client, a.log, a.projectID)
}

// SecurityRules returns a Security Rules client.
func (a *App) SecurityRules() (*rules.Client, error) {
	return rules.NewClient(a.client, a.log, a.projectID)
}

// Client exposes the shared authorized transport for callers that need
// to reach endpoints the SDK has no typed client for.
func (a *App) Client() transport.Client { return a.client }
