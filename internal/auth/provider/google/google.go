package google

import (
	"context"
	"errors"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"gateway-service/internal/auth"
	"gateway-service/internal/auth/provider"
	"gateway-service/internal/logger"
)

const providerName = auth.Google

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
}

// Provider implements the Google authorization code flow. The profile is
// read from the userinfo endpoint rather than a verified id_token, so only
// the access token is required.
type Provider struct {
	oauthConfig *oauth2.Config
	userInfo    *oidc.Provider
	client      *http.Client
}

func New(ctx context.Context, cfg Config, client *http.Client) (*Provider, error) {
	if cfg.ClientID == "" || cfg.RedirectURL == "" {
		return nil, errors.New("google oauth config missing required fields")
	}
	if client == nil {
		client = provider.NewHTTPClient(0)
	}

	endpoint := oauth2.Endpoint{
		AuthURL:   cfg.AuthURL,
		TokenURL:  cfg.TokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     endpoint,
		Scopes: []string{
			oidc.ScopeOpenID,
			"email",
			"profile",
		},
	}

	// No discovery: only the userinfo endpoint is used.
	userInfo := (&oidc.ProviderConfig{
		AuthURL:     cfg.AuthURL,
		TokenURL:    cfg.TokenURL,
		UserInfoURL: cfg.UserInfoURL,
	}).NewProvider(ctx)

	return &Provider{
		oauthConfig: oauthCfg,
		userInfo:    userInfo,
		client:      client,
	}, nil
}

// Name returns the provider identifier used by the registry.
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

func (p *Provider) FetchProfile(ctx context.Context, accessToken string) (*auth.Identity, error) {
	ctx = oidc.ClientContext(ctx, p.client)

	info, err := p.userInfo.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	if err != nil {
		return nil, &provider.ProfileError{Provider: providerName, Message: err.Error(), Err: err}
	}

	var claims struct {
		ID            string `json:"id"`
		Subject       string `json:"sub"`
		Email         string `json:"email"`
		Name          string `json:"name"`
		VerifiedEmail bool   `json:"verified_email"`
	}
	if err := info.Claims(&claims); err != nil {
		return nil, &provider.ProfileError{Provider: providerName, Message: "unreadable userinfo", Err: err}
	}

	externalID := claims.ID
	if externalID == "" {
		externalID = claims.Subject
	}
	if externalID == "" {
		return nil, &provider.ProfileError{Provider: providerName, Message: "userinfo missing id"}
	}

	logger.Info("google userinfo fetched", map[string]any{
		"email_present":  claims.Email != "",
		"email_verified": claims.VerifiedEmail || info.EmailVerified,
	})

	return &auth.Identity{
		Provider:    providerName,
		ExternalID:  externalID,
		Email:       claims.Email,
		DisplayName: claims.Name,
	}, nil
}
