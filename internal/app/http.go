package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"gateway-service/internal/auth"
	"gateway-service/internal/auth/handler"
	"gateway-service/internal/auth/provider"
	"gateway-service/internal/auth/provider/google"
	"gateway-service/internal/auth/provider/kakao"
	"gateway-service/internal/auth/provider/naver"
	"gateway-service/internal/auth/token"
	"gateway-service/internal/auth/tokencache"
	"gateway-service/internal/config"
	"gateway-service/internal/facade"
	"gateway-service/internal/logger"
	"gateway-service/internal/metrics"
	"gateway-service/internal/middleware"
	"gateway-service/internal/proxy"
	"gateway-service/internal/users"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	registry, frontends := setupProviders(ctx, cfg)

	cache := tokencache.NewRedisCache(infra.Redis.Client, cfg.Redis.Timeout)
	orchestrator := provider.NewOrchestrator(registry, cache)

	issuer := token.NewIssuer(token.Config{
		Secret:     cfg.JWT.Secret,
		AccessTTL:  cfg.JWT.AccessTokenExpiration,
		RefreshTTL: cfg.JWT.RefreshTokenExpiration,
	})

	authHandler := handler.NewHandler(orchestrator, issuer, frontends)

	topology, err := facade.LoadTopology(cfg.Facade.ConfigPath, facade.DefaultTopology(facade.ServiceURLs{
		User:    cfg.Facade.UserServiceURL,
		Titanic: cfg.Facade.TitanicServiceURL,
		OAuth:   cfg.Facade.OAuthServiceURL,
	}))
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}
	aggregator := facade.NewAggregator(&http.Client{Timeout: cfg.Facade.Timeout})
	facadeHandler := facade.NewHandler(aggregator, topology)

	userHandler := users.NewHandler(users.NewService(infra.UserStore))

	routes, err := proxy.LoadRoutes(cfg.Proxy.ConfigPath, proxy.DefaultRoutes(proxy.ServiceURLs{
		ML:   cfg.Proxy.MLServiceURL,
		User: cfg.Proxy.UserServiceURL,
	}))
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}
	backendProxy, err := proxy.New(routes, nil)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	pipeline := middleware.NewPipeline(
		middleware.Observability{},
		middleware.NewAuthGate(cfg.Gateway.PublicPaths),
		middleware.Recovery{},
	)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(pipeline.Handler())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/actuator/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
	router.GET("/actuator/prometheus", metrics.Handler())

	// ----------------------------
	// Protected Routes
	// ----------------------------

	facadeHandler.RegisterRoutes(router)
	userHandler.RegisterRoutes(router)

	// ----------------------------
	// Backend Proxy
	// ----------------------------

	router.NoRoute(backendProxy.Handler())

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, infra.Close, nil
}

// setupProviders builds every provider whose credentials are configured.
// A provider with incomplete config is skipped, so its routes are not mounted.
func setupProviders(ctx context.Context, cfg config.Config) (*provider.Registry, map[auth.Provider]string) {
	var list []provider.OAuthProvider
	frontends := make(map[auth.Provider]string)

	googleProvider, err := google.New(ctx, google.Config{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURI,
		AuthURL:      cfg.Google.AuthURI,
		TokenURL:     cfg.Google.TokenURI,
		UserInfoURL:  cfg.Google.UserInfoURI,
	}, provider.NewHTTPClient(cfg.ProviderTimeout))
	if err != nil {
		skipProvider(auth.Google, err)
	} else {
		list = append(list, googleProvider)
		frontends[auth.Google] = cfg.Google.FrontendURL
	}

	kakaoProvider, err := kakao.New(kakao.Config{
		RestAPIKey:  cfg.Kakao.RestAPIKey,
		RedirectURL: cfg.Kakao.RedirectURI,
		AuthURL:     cfg.Kakao.AuthURI,
		TokenURL:    cfg.Kakao.TokenURI,
		UserInfoURL: cfg.Kakao.UserInfoURI,
	}, provider.NewHTTPClient(cfg.ProviderTimeout))
	if err != nil {
		skipProvider(auth.Kakao, err)
	} else {
		list = append(list, kakaoProvider)
		frontends[auth.Kakao] = cfg.Kakao.FrontendURL
	}

	naverProvider, err := naver.New(naver.Config{
		ClientID:     cfg.Naver.ClientID,
		ClientSecret: cfg.Naver.ClientSecret,
		RedirectURL:  cfg.Naver.RedirectURI,
		AuthURL:      cfg.Naver.AuthURI,
		TokenURL:     cfg.Naver.TokenURI,
		UserInfoURL:  cfg.Naver.UserInfoURI,
	}, provider.NewHTTPClient(cfg.ProviderTimeout))
	if err != nil {
		skipProvider(auth.Naver, err)
	} else {
		list = append(list, naverProvider)
		frontends[auth.Naver] = cfg.Naver.FrontendURL
	}

	return provider.NewRegistry(list...), frontends
}

func skipProvider(name auth.Provider, err error) {
	logger.Warn("oauth provider disabled", map[string]any{
		"provider": name.String(),
		"error":    err.Error(),
	})
}
