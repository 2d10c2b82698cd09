// Package oauth exchanges Google sign-in authorization codes for a verified
// identity (subject and email) used by the alternate sign-in flow.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const userinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// Identity is the subset of the Google userinfo document we rely on.
type Identity struct {
	Subject string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// GoogleVerifier exchanges an authorization code for a verified identity.
type GoogleVerifier interface {
	Exchange(ctx context.Context, code string) (*Identity, error)
}

// GoogleClient implements GoogleVerifier against the real Google endpoints.
type GoogleClient struct {
	config *oauth2.Config
}

// NewGoogleClient builds a client for the given OAuth application credentials.
func NewGoogleClient(clientID, clientSecret, redirectURL string) *GoogleClient {
	return &GoogleClient{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
		},
	}
}

// AuthURL returns the provider URL that starts the sign-in flow.
func (c *GoogleClient) AuthURL(state string) string {
	return c.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades the authorization code for tokens and fetches the userinfo
// document identifying the account.
func (c *GoogleClient) Exchange(ctx context.Context, code string) (*Identity, error) {
	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange error: %w", err)
	}

	client := c.config.Client(ctx, token)
	resp, err := client.Get(userinfoEndpoint)
	if err != nil {
		return nil, fmt.Errorf("userinfo request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed: %s", resp.Status)
	}

	identity := &Identity{}
	if err := json.NewDecoder(resp.Body).Decode(identity); err != nil {
		return nil, fmt.Errorf("userinfo decode error: %w", err)
	}
	if identity.Subject == "" || identity.Email == "" {
		return nil, errors.New("userinfo response missing subject or email")
	}

	return identity, nil
}
