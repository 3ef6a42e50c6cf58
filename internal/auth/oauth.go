package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const githubUserURL = "https://api.github.com/user"

// GitHubUser is the part of the GitHub /user response the sign-in needs.
type GitHubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// GitHubProvider runs the OAuth authorization-code flow against GitHub.
//
// It is an alternative way for the site owner to reach the admin pages; the
// service layer decides which GitHub logins are allowed in.
type GitHubProvider struct {
	config  *oauth2.Config
	userURL string
}

// NewGitHubProvider creates a GitHubProvider with the given credentials.
// callbackURL must match the one registered with the GitHub OAuth app.
//
// Only "read:user" is requested: the login name is all the site needs.
func NewGitHubProvider(clientID, clientSecret, callbackURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user"},
			Endpoint:     github.Endpoint,
		},
		userURL: githubUserURL,
	}
}

// AuthURL returns the GitHub authorization URL for the given CSRF state.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for a token (server to server,
// using the client secret) and fetches the GitHub profile with it.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*GitHubUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	client := p.config.Client(ctx, oauthToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userURL, nil)
	if err != nil {
		return nil, fmt.Errorf("auth: building GitHub /user request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: calling GitHub /user API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: GitHub /user API returned status %d", resp.StatusCode)
	}

	var ghUser GitHubUser
	if err := json.NewDecoder(resp.Body).Decode(&ghUser); err != nil {
		return nil, fmt.Errorf("auth: decoding GitHub /user response: %w", err)
	}

	if ghUser.ID == 0 || ghUser.Login == "" {
		return nil, fmt.Errorf("auth: GitHub returned an incomplete user profile")
	}

	return &ghUser, nil
}
