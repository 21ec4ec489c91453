// Package oauth implements the ERP authorization-server client on golang.org/x/oauth2.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driven"
)

// defaultExpiresIn is assumed when the server omits expires_in.
const defaultExpiresIn = 3600

// Ensure Client implements the interface.
var _ driven.TokenClient = (*Client)(nil)

// Client performs authorization-code and refresh grants.
// Client credentials are sent with HTTP Basic auth.
type Client struct {
	config     *oauth2.Config
	httpClient *http.Client
	timeout    time.Duration
	now        func() time.Time
}

// NewClient creates a client for the configured ERP application.
func NewClient(erp domain.ERPSettings) *Client {
	timeout := erp.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultERPTimeout
	}
	return &Client{
		config: &oauth2.Config{
			ClientID:     erp.ClientID,
			ClientSecret: erp.ClientSecret,
			RedirectURL:  erp.RedirectURI,
			Scopes:       erp.Scopes(),
			Endpoint: oauth2.Endpoint{
				AuthURL:   erp.AuthURL,
				TokenURL:  erp.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
		now:        time.Now,
	}
}

// AuthCodeURL builds the authorization redirect for a state.
func (c *Client) AuthCodeURL(state string, accountType domain.AccountType) string {
	var opts []oauth2.AuthCodeOption
	if accountType != domain.AccountTypeUser {
		opts = append(opts, oauth2.SetAuthURLParam("account_type", string(accountType)))
	}
	return c.config.AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for a token pair.
func (c *Client) Exchange(ctx context.Context, code string) (*domain.TokenGrant, error) {
	ctx, cancel := c.withClient(ctx)
	defer cancel()

	tok, err := c.config.Exchange(ctx, code)
	if err != nil {
		return nil, upstreamError(domain.ErrTokenExchangeFailed, err)
	}
	return c.grant(tok), nil
}

// Refresh runs the refresh grant.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*domain.TokenGrant, error) {
	ctx, cancel := c.withClient(ctx)
	defer cancel()

	// An expired seed token forces the source to hit the token endpoint.
	src := c.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken, Expiry: time.Unix(1, 0)})
	tok, err := src.Token()
	if err != nil {
		return nil, upstreamError(domain.ErrRefreshFailed, err)
	}
	return c.grant(tok), nil
}

func (c *Client) withClient(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) grant(tok *oauth2.Token) *domain.TokenGrant {
	expiresIn := tok.ExpiresIn
	if expiresIn <= 0 && !tok.Expiry.IsZero() {
		expiresIn = int64(tok.Expiry.Sub(c.now()).Seconds())
	}
	if expiresIn <= 0 {
		expiresIn = defaultExpiresIn
	}
	return &domain.TokenGrant{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.Type(),
		ExpiresIn:    expiresIn,
	}
}

// upstreamError keeps the status and body of a rejected grant.
func upstreamError(kind error, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		return &domain.UpstreamError{Kind: kind, StatusCode: re.Response.StatusCode, Body: string(re.Body)}
	}
	return fmt.Errorf("%w: %w", kind, err)
}
