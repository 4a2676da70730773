package kakao

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/oauth2"

	"gateway-service/internal/auth"
	"gateway-service/internal/auth/provider"
	"gateway-service/internal/logger"
)

const providerName = auth.Kakao

type Config struct {
	// RestAPIKey is Kakao's name for the OAuth client id.
	RestAPIKey  string
	RedirectURL string
	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

// Provider implements Kakao login. The token endpoint takes no client secret.
type Provider struct {
	oauthConfig *oauth2.Config
	userInfoURL string
	client      *http.Client
}

func New(cfg Config, client *http.Client) (*Provider, error) {
	if cfg.RestAPIKey == "" || cfg.RedirectURL == "" {
		return nil, errors.New("kakao oauth config missing required fields")
	}
	if client == nil {
		client = provider.NewHTTPClient(0)
	}

	return &Provider{
		oauthConfig: &oauth2.Config{
			ClientID:    cfg.RestAPIKey,
			RedirectURL: cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: cfg.UserInfoURL,
		client:      client,
	}, nil
}

func (p *Provider) Name() auth.Provider {
	return providerName
}

func (p *Provider) AuthCodeURL() string {
	return p.oauthConfig.AuthCodeURL("")
}

func (p *Provider) ExchangeCode(
	ctx context.Context,
	code string,
	_ provider.ExchangeParams,
) (*oauth2.Token, error) {
	return provider.Exchange(ctx, p.client, providerName, p.oauthConfig, code)
}

type userInfo struct {
	ID      json.Number `json:"id"`
	Account *struct {
		Email   string `json:"email"`
		Profile *struct {
			Nickname string `json:"nickname"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

func (p *Provider) FetchProfile(ctx context.Context, accessToken string) (*auth.Identity, error) {
	var info userInfo
	if err := provider.GetJSON(ctx, p.client, p.userInfoURL, accessToken, &info); err != nil {
		return nil, &provider.ProfileError{Provider: providerName, Message: err.Error(), Err: err}
	}
	if info.ID == "" {
		return nil, &provider.ProfileError{Provider: providerName, Message: "user info missing id"}
	}

	id := &auth.Identity{
		Provider:   providerName,
		ExternalID: info.ID.String(),
	}
	// kakao_account and its profile are both consent-dependent.
	if info.Account != nil {
		id.Email = info.Account.Email
		if info.Account.Profile != nil {
			id.DisplayName = info.Account.Profile.Nickname
		}
	}

	logger.Info("kakao user info fetched", map[string]any{
		"email_present":    id.Email != "",
		"nickname_present": id.DisplayName != "",
	})

	return id, nil
}
