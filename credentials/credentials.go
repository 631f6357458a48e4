// Package credentials implements the token-provider capability consumed
// by transport.AuthorizedClient. Providers own token caching and refresh;
// the transport only ever asks for the current access token.
package credentials

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/stackmode/fireadmin/apperror"
	"github.com/stackmode/fireadmin/transport"
)

// Scopes requested for all SDK access tokens.
var defaultScopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/datastore",
	"https://www.googleapis.com/auth/devstorage.full_control",
	"https://www.googleapis.com/auth/firebase",
	"https://www.googleapis.com/auth/identitytoolkit",
	"https://www.googleapis.com/auth/userinfo.email",
}

// OAuthProvider adapts an oauth2.TokenSource to the transport's
// TokenProvider capability. The underlying source (wrapped in a
// ReuseTokenSource by the constructors) handles caching and refresh.
type OAuthProvider struct {
	source    oauth2.TokenSource
	projectID string
}

var _ transport.TokenProvider = (*OAuthProvider)(nil)

// Token returns the current access token.
func (p *OAuthProvider) Token(_ context.Context) (string, error) {
	tok, err := p.source.Token()
	if err != nil {
		return "", apperror.Wrap(apperror.PrefixApp, apperror.CodeInvalidCredential,
			"failed to fetch an OAuth2 access token", err)
	}
	return tok.AccessToken, nil
}

// ProjectID returns the project ID embedded in the credential, or ""
// when the credential carries none.
func (p *OAuthProvider) ProjectID() string { return p.projectID }

// NewServiceAccount builds a provider from service account JSON key bytes.
func NewServiceAccount(ctx context.Context, jsonKey []byte, scopes ...string) (*OAuthProvider, error) {
	if len(scopes) == 0 {
		scopes = defaultScopes
	}
	config, err := google.JWTConfigFromJSON(jsonKey, scopes...)
	if err != nil {
		return nil, apperror.Wrap(apperror.PrefixApp, apperror.CodeInvalidCredential,
			"invalid service account JSON", err)
	}

	// JWTConfigFromJSON does not surface the project; read it separately.
	creds, err := google.CredentialsFromJSON(ctx, jsonKey, scopes...)
	projectID := ""
	if err == nil {
		projectID = creds.ProjectID
	}

	return &OAuthProvider{
		source:    oauth2.ReuseTokenSource(nil, config.TokenSource(ctx)),
		projectID: projectID,
	}, nil
}

// NewServiceAccountFromFile builds a provider from a service account key
// file on disk.
func NewServiceAccountFromFile(ctx context.Context, path string, scopes ...string) (*OAuthProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperror.Wrap(apperror.PrefixApp, apperror.CodeInvalidCredential,
			fmt.Sprintf("failed to read service account file %q", path), err)
	}
	return NewServiceAccount(ctx, data, scopes...)
}

// NewRefreshToken builds a provider from authorized-user JSON, i.e. a
// client ID/secret pair plus a long-lived refresh token.
func NewRefreshToken(ctx context.Context, jsonKey []byte, scopes ...string) (*OAuthProvider, error) {
	if len(scopes) == 0 {
		scopes = defaultScopes
	}
	creds, err := google.CredentialsFromJSON(ctx, jsonKey, scopes...)
	if err != nil {
		return nil, apperror.Wrap(apperror.PrefixApp, apperror.CodeInvalidCredential,
			"invalid refresh token JSON", err)
	}
	return &OAuthProvider{
		source:    oauth2.ReuseTokenSource(nil, creds.TokenSource),
		projectID: creds.ProjectID,
	}, nil
}

// ApplicationDefault builds a provider from Google application default
// credentials (GOOGLE_APPLICATION_CREDENTIALS, gcloud user credentials,
// or the metadata server).
func ApplicationDefault(ctx context.Context, scopes ...string) (*OAuthProvider, error) {
	if len(scopes) == 0 {
		scopes = defaultScopes
	}
	creds, err := google.FindDefaultCredentials(ctx, scopes...)
	if err != nil {
		return nil, apperror.Wrap(apperror.PrefixApp, apperror.CodeInvalidCredential,
			"failed to resolve application default credentials", err)
	}
	return &OAuthProvider{
		source:    oauth2.ReuseTokenSource(nil, creds.TokenSource),
		projectID: creds.ProjectID,
	}, nil
}

// NewTokenSource wraps an arbitrary oauth2.TokenSource, for callers that
// already manage their own credential flow.
func NewTokenSource(source oauth2.TokenSource) *OAuthProvider {
	return &OAuthProvider{source: oauth2.ReuseTokenSource(nil, source)}
}

// Static returns a provider that always yields the given token. Intended
// for tests and emulator setups.
func Static(token string) *OAuthProvider {
	return &OAuthProvider{source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})}
}
