package transport

import (
	"context"

	"github.com/stackmode/fireadmin/apperror"
)

const authorizationHeader = "Authorization"

// AuthorizedClient decorates a Client, attaching a bearer credential to
// every outgoing request before delegating. Token acquisition, caching
// and refresh belong entirely to the injected TokenProvider; the
// decorator adds no synchronization and no caching of its own.
type AuthorizedClient struct {
	base     Client
	provider TokenProvider
}

var _ Client = (*AuthorizedClient)(nil)

// NewAuthorizedClient wraps base so that every request carries a bearer
// token obtained from provider.
func NewAuthorizedClient(base Client, provider TokenProvider) *AuthorizedClient {
	return &AuthorizedClient{base: base, provider: provider}
}

// Send attaches "Authorization: Bearer <token>" and delegates. Any
// Authorization header supplied by the caller is overridden. If the
// provider fails or yields an empty token, Send returns
// app/invalid-credential without attempting a network call.
func (c *AuthorizedClient) Send(ctx context.Context, req *Request) (*Response, error) {
	if c.provider == nil {
		return nil, invalidCredential(nil)
	}
	token, err := c.provider.Token(ctx)
	if err != nil {
		return nil, invalidCredential(err)
	}
	if token == "" {
		return nil, invalidCredential(nil)
	}

	// Clone the descriptor; the caller's request and header map stay
	// untouched.
	authorized := req.clone()
	if authorized.Headers == nil {
		authorized.Headers = make(map[string]string, 1)
	}
	authorized.Headers[authorizationHeader] = "Bearer " + token

	return c.base.Send(ctx, authorized)
}

func invalidCredential(cause error) error {
	const message = "failed to acquire an OAuth2 access token; verify that the " +
		"credential used to initialize the SDK is valid and has not been revoked"
	if cause != nil {
		return apperror.Wrap(apperror.PrefixApp, apperror.CodeInvalidCredential, message, cause)
	}
	return apperror.New(apperror.PrefixApp, apperror.CodeInvalidCredential, message)
}
