package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppPort  string `env:"APP_PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`

	Google GoogleConfig `envPrefix:"GOOGLE_"`
	Kakao  KakaoConfig  `envPrefix:"KAKAO_"`
	Naver  NaverConfig  `envPrefix:"NAVER_"`

	// ProviderTimeout bounds every outbound call to an identity provider.
	ProviderTimeout time.Duration `env:"PROVIDER_HTTP_TIMEOUT" envDefault:"10s"`

	JWT     JWTConfig     `envPrefix:"JWT_"`
	Redis   RedisConfig   `envPrefix:"REDIS_"`
	Facade  FacadeConfig  `envPrefix:"FACADE_"`
	Proxy   ProxyConfig   `envPrefix:"PROXY_"`
	Gateway GatewayConfig `envPrefix:"GATEWAY_"`

	DatabaseDSN string `env:"DATABASE_DSN"`
}

type GoogleConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURI  string `env:"REDIRECT_URI"`
	FrontendURL  string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	AuthURI      string `env:"AUTH_URI" envDefault:"https://accounts.google.com/o/oauth2/v2/auth"`
	TokenURI     string `env:"TOKEN_URI" envDefault:"https://oauth2.googleapis.com/token"`
	UserInfoURI  string `env:"USER_INFO_URI" envDefault:"https://www.googleapis.com/oauth2/v2/userinfo"`
}

// KakaoConfig uses the REST API key as the OAuth client id; Kakao does not
// take a client secret on the token endpoint.
type KakaoConfig struct {
	RestAPIKey  string `env:"REST_API_KEY"`
	RedirectURI string `env:"REDIRECT_URI"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	AuthURI     string `env:"AUTH_URI" envDefault:"https://kauth.kakao.com/oauth/authorize"`
	TokenURI    string `env:"TOKEN_URI" envDefault:"https://kauth.kakao.com/oauth/token"`
	UserInfoURI string `env:"USER_INFO_URI" envDefault:"https://kapi.kakao.com/v2/user/me"`
}

type NaverConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURI  string `env:"REDIRECT_URI"`
	FrontendURL  string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	AuthURI      string `env:"AUTH_URI" envDefault:"https://nid.naver.com/oauth2.0/authorize"`
	TokenURI     string `env:"TOKEN_URI" envDefault:"https://nid.naver.com/oauth2.0/token"`
	UserInfoURI  string `env:"USER_INFO_URI" envDefault:"https://openapi.naver.com/v1/nid/me"`
}

type JWTConfig struct {
	Secret                 string        `env:"SECRET"`
	AccessTokenExpiration  time.Duration `env:"ACCESS_TOKEN_EXPIRATION" envDefault:"1h"`
	RefreshTokenExpiration time.Duration `env:"REFRESH_TOKEN_EXPIRATION" envDefault:"720h"`
}

type RedisConfig struct {
	Addr     string        `env:"ADDR" envDefault:"localhost:6379"`
	Username string        `env:"USERNAME"`
	Password string        `env:"PASSWORD"`
	UseTLS   bool          `env:"USE_SSL" envDefault:"false"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"2s"`
}

type FacadeConfig struct {
	// ConfigPath optionally points at a YAML file describing backend calls.
	ConfigPath string        `env:"CONFIG"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"5s"`

	UserServiceURL    string `env:"USER_SERVICE_URL" envDefault:"http://userservice:8082"`
	TitanicServiceURL string `env:"TITANIC_SERVICE_URL" envDefault:"http://titanic-service:9006"`
	OAuthServiceURL   string `env:"OAUTH_SERVICE_URL" envDefault:"http://oauth-service:8080"`
}

type ProxyConfig struct {
	// ConfigPath optionally points at a YAML route table replacing the defaults.
	ConfigPath string `env:"CONFIG"`

	MLServiceURL   string `env:"ML_SERVICE_URL" envDefault:"http://titanic-service:9006"`
	UserServiceURL string `env:"USER_SERVICE_URL" envDefault:"http://userservice:8082"`
}

type GatewayConfig struct {
	// PublicPaths replaces the built-in allow-list when set.
	PublicPaths []string `env:"PUBLIC_PATHS" envSeparator:","`
}

// Load binds the process environment onto Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
