package naver

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"gateway-service/internal/auth"
	"gateway-service/internal/auth/provider"
	"gateway-service/internal/logger"
)

const (
	providerName = auth.Naver

	resultOK = "00"
)

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
}

// Provider implements Naver login. Naver requires the state value on the
// token request and reports token errors in-band with HTTP 200.
type Provider struct {
	oauthConfig *oauth2.Config
	userInfoURL string
	client      *http.Client

	// newState mints the authorize state; replaced in tests.
	newState func() string
}

func New(cfg Config, client *http.Client) (*Provider, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RedirectURL == "" {
		return nil, errors.New("naver oauth config missing required fields")
	}
	if client == nil {
		client = provider.NewHTTPClient(0)
	}

	return &Provider{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: cfg.UserInfoURL,
		client:      client,
		newState:    uuid.NewString,
	}, nil
}

func (p *Provider) Name() auth.Provider {
	return providerName
}

// AuthCodeURL embeds a fresh random state per call. The state is not
// remembered server-side; it is echoed back to the token endpoint only.
func (p *Provider) AuthCodeURL() string {
	return p.oauthConfig.AuthCodeURL(p.newState())
}

func (p *Provider) ExchangeCode(
	ctx context.Context,
	code string,
	params provider.ExchangeParams,
) (*oauth2.Token, error) {
	return provider.Exchange(ctx, p.client, providerName, p.oauthConfig, code,
		oauth2.SetAuthURLParam("state", params.State),
	)
}

type userInfo struct {
	ResultCode string `json:"resultcode"`
	Message    string `json:"message"`
	Response   *struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Name     string `json:"name"`
		Nickname string `json:"nickname"`
	} `json:"response"`
}

func (p *Provider) FetchProfile(ctx context.Context, accessToken string) (*auth.Identity, error) {
	var info userInfo
	if err := provider.GetJSON(ctx, p.client, p.userInfoURL, accessToken, &info); err != nil {
		return nil, &provider.ProfileError{Provider: providerName, Message: err.Error(), Err: err}
	}
	if info.ResultCode != resultOK {
		return nil, &provider.ProfileError{Provider: providerName, Message: info.Message}
	}
	if info.Response == nil || info.Response.ID == "" {
		return nil, &provider.ProfileError{Provider: providerName, Message: "user info missing response"}
	}

	displayName := info.Response.Nickname
	if displayName == "" {
		displayName = info.Response.Name
	}

	logger.Info("naver user info fetched", map[string]any{
		"email_present": info.Response.Email != "",
	})

	return &auth.Identity{
		Provider:    providerName,
		ExternalID:  info.Response.ID,
		Email:       info.Response.Email,
		DisplayName: displayName,
	}, nil
}
