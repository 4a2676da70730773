package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gateway-service/internal/auth"
	"gateway-service/internal/auth/provider"
)

type fakeGoogle struct {
	*httptest.Server
	tokenCalls    atomic.Int32
	userInfoCalls atomic.Int32
	form          url.Values
	userInfo      string
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	t.Helper()
	f := &fakeGoogle{userInfo: `{"id":"109876543210987654321","email":"victoria@example.com","name":"Victoria","verified_email":true}`}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		_ = r.ParseForm()
		f.form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"ya29.test","refresh_token":"1//refresh","expires_in":3599,"token_type":"Bearer","scope":"openid email profile"}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		f.userInfoCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer ya29.test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(f.userInfo))
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func newTestProvider(t *testing.T, f *fakeGoogle) *Provider {
	t.Helper()
	p, err := New(context.Background(), Config{
		ClientID:     "google-client",
		ClientSecret: "google-secret",
		RedirectURL:  "http://localhost:8080/google/callback",
		AuthURL:      f.URL + "/auth",
		TokenURL:     f.URL + "/token",
		UserInfoURL:  f.URL + "/userinfo",
	}, f.Client())
	require.NoError(t, err)
	return p
}

func TestNew_RequiresClientID(t *testing.T) {
	_, err := New(context.Background(), Config{RedirectURL: "http://x"}, nil)
	assert.Error(t, err)
}

func TestAuthCodeURL(t *testing.T) {
	f := newFakeGoogle(t)
	p := newTestProvider(t, f)

	u, err := url.Parse(p.AuthCodeURL())
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "/auth", u.Path)
	assert.Equal(t, "google-client", q.Get("client_id"))
	assert.Equal(t, "http://localhost:8080/google/callback", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
	assert.False(t, q.Has("state"))
}

func TestExchangeCode_PostsClientCredentialsInForm(t *testing.T) {
	f := newFakeGoogle(t)
	p := newTestProvider(t, f)

	tok, err := p.ExchangeCode(context.Background(), "auth-code", provider.ExchangeParams{})
	require.NoError(t, err)

	assert.Equal(t, "ya29.test", tok.AccessToken)
	assert.Equal(t, "1//refresh", tok.RefreshToken)
	assert.Equal(t, int64(3599), provider.ExpiresIn(tok))

	assert.Equal(t, "authorization_code", f.form.Get("grant_type"))
	assert.Equal(t, "auth-code", f.form.Get("code"))
	assert.Equal(t, "google-client", f.form.Get("client_id"))
	assert.Equal(t, "google-secret", f.form.Get("client_secret"))
	assert.Equal(t, "http://localhost:8080/google/callback", f.form.Get("redirect_uri"))
}

func TestExchangeCode_HTTPErrorIsExchangeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Bad Request"}`))
	}))
	defer srv.Close()

	p, err := New(context.Background(), Config{
		ClientID:    "c",
		RedirectURL: "http://localhost/cb",
		AuthURL:     srv.URL + "/auth",
		TokenURL:    srv.URL + "/token",
		UserInfoURL: srv.URL + "/userinfo",
	}, srv.Client())
	require.NoError(t, err)

	_, err = p.ExchangeCode(context.Background(), "bad", provider.ExchangeParams{})
	require.Error(t, err)

	var exErr *provider.ExchangeError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, auth.Google, exErr.Provider)
	assert.Equal(t, "Bad Request", exErr.Message)
}

func TestFetchProfile(t *testing.T) {
	f := newFakeGoogle(t)
	p := newTestProvider(t, f)

	id, err := p.FetchProfile(context.Background(), "ya29.test")
	require.NoError(t, err)

	assert.Equal(t, auth.Google, id.Provider)
	assert.Equal(t, "109876543210987654321", id.ExternalID)
	assert.Equal(t, "victoria@example.com", id.Email)
	assert.Equal(t, "Victoria", id.DisplayName)
	assert.Equal(t, int32(1), f.userInfoCalls.Load())
}

func TestFetchProfile_FallsBackToSub(t *testing.T) {
	f := newFakeGoogle(t)
	f.userInfo = `{"sub":"abc-sub","email":"s@example.com","name":"S"}`
	p := newTestProvider(t, f)

	id, err := p.FetchProfile(context.Background(), "ya29.test")
	require.NoError(t, err)
	assert.Equal(t, "abc-sub", id.ExternalID)
}

func TestFetchProfile_RejectedToken(t *testing.T) {
	f := newFakeGoogle(t)
	p := newTestProvider(t, f)

	_, err := p.FetchProfile(context.Background(), "expired")
	assert.ErrorIs(t, err, provider.ErrProfile)
}

func TestFetchProfile_MissingID(t *testing.T) {
	f := newFakeGoogle(t)
	f.userInfo = `{"email":"x@example.com"}`
	p := newTestProvider(t, f)

	_, err := p.FetchProfile(context.Background(), "ya29.test")
	assert.ErrorIs(t, err, provider.ErrProfile)
}
