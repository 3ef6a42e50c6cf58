package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// fakeGitHub serves the token endpoint and the /user endpoint.
func fakeGitHub(t *testing.T, userStatus int, userBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"gho_test","token_type":"bearer"}`))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gho_test", r.Header.Get("Authorization"))
		w.WriteHeader(userStatus)
		w.Write([]byte(userBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGitHubProvider(srv *httptest.Server) *GitHubProvider {
	p := NewGitHubProvider("client-id", "client-secret", "http://localhost/auth/github/callback")
	p.config.Endpoint = oauth2.Endpoint{
		AuthURL:  srv.URL + "/login/oauth/authorize",
		TokenURL: srv.URL + "/login/oauth/access_token",
	}
	p.userURL = srv.URL + "/user"
	return p
}

func TestGitHubProvider_AuthURLCarriesState(t *testing.T) {
	p := NewGitHubProvider("client-id", "secret", "http://localhost/cb")

	u, err := url.Parse(p.AuthURL("state-123"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "http://localhost/cb", q.Get("redirect_uri"))
}

func TestGitHubProvider_Exchange(t *testing.T) {
	srv := fakeGitHub(t, http.StatusOK, `{"id":42,"login":"burakyalinat"}`)
	p := newTestGitHubProvider(srv)

	user, err := p.Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "burakyalinat", user.Login)
}

func TestGitHubProvider_ExchangeUserAPIError(t *testing.T) {
	srv := fakeGitHub(t, http.StatusForbidden, `{"message":"nope"}`)
	p := newTestGitHubProvider(srv)

	_, err := p.Exchange(context.Background(), "the-code")
	assert.Error(t, err)
}

func TestGitHubProvider_ExchangeIncompleteProfile(t *testing.T) {
	srv := fakeGitHub(t, http.StatusOK, `{"id":0}`)
	p := newTestGitHubProvider(srv)

	_, err := p.Exchange(context.Background(), "the-code")
	assert.Error(t, err)
}
