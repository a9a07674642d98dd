package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/pitchapp/pitch-api/internal/core/ports"
	customMiddleware "github.com/pitchapp/pitch-api/internal/infrastructure/httpserver/middleware"
)

type ServerConfig struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	TLSCertFile    string
	TLSKeyFile     string
	AllowedOrigins []string
	Environment    string
}

type ServerDeps struct {
	AccountService     ports.AccountService
	AuthService        ports.AuthService
	PitchService       ports.PitchService
	RateLimiterService ports.RateLimiterService
	HealthCheckers     []ports.HealthChecker
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	accountSvc     ports.AccountService
	authSvc        ports.AuthService
	pitchSvc       ports.PitchService
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.Validator = NewValidator()
	e.HideBanner = true
	e.Debug = serverConfig.Environment == "development"

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		accountSvc:     deps.AccountService,
		authSvc:        deps.AuthService,
		pitchSvc:       deps.PitchService,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			deps.AuthService,
			deps.RateLimiterService,
			logger,
			GetRequestsTotal(),
			GetRequestDuration(),
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
