package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/rs/cors"

	"github.com/trezcool/studymatch/core"
	"github.com/trezcool/studymatch/core/match"
	"github.com/trezcool/studymatch/core/message"
	"github.com/trezcool/studymatch/core/notification"
	"github.com/trezcool/studymatch/core/points"
	"github.com/trezcool/studymatch/core/review"
	"github.com/trezcool/studymatch/core/session"
	"github.com/trezcool/studymatch/core/subject"
	"github.com/trezcool/studymatch/core/user"
	redisstore "github.com/trezcool/studymatch/storage/redis"
)

type (
	ServerDeps struct {
		Conf     *core.Config
		Logger   core.Logger
		Validate *core.Validator

		Users         *user.Service
		Subjects      *subject.Service
		Sessions      *session.Service
		Reviews       *review.Service
		Matches       *match.Service
		Messages      *message.Service
		Notifications *notification.Service
		Ledger        *points.Ledger

		// Redis backs the auth rate limiter; nil limits in process.
		Redis *redisstore.Redis

		DisableReqLogs bool
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		handler  http.Handler
		httpSrv  *http.Server
		metrics  *metrics
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		metrics:  newMetrics(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()

	s.handler = cors.New(cors.Options{
		AllowedOrigins:   []string{deps.Conf.FrontendBaseURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{echo.HeaderContentType, echo.HeaderAuthorization},
		ExposedHeaders:   []string{echo.HeaderAuthorization},
		AllowCredentials: true,
	}).Handler(s.app)

	s.httpSrv = &http.Server{
		Addr:    deps.Conf.Server.Addr,
		Handler: s.handler,
	}
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf
	app := s.app

	app.HideBanner = true
	app.Debug = conf.Debug
	app.Validator = s.deps.Validate
	app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)

	app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	app.Use(s.metrics.middleware)

	app.GET("/", home)
	app.GET("/healthz", s.healthz)
	app.GET("/metrics", echo.WrapHandler(s.metrics.handler()))

	v1 := app.Group("/v1")
	jwt := middleware.JWTWithConfig(jwtConfig(conf))
	limit := newRateLimiter(s.deps.Redis, conf.Server.RateLimitPerMinute, s.deps.Logger, s.metrics).middleware

	registerUserAPI(v1, jwt, limit, s.deps, s.metrics)
	registerSubjectAPI(v1, jwt, s.deps.Subjects)
	registerMatchAPI(v1, jwt, s.deps.Matches)
	registerSessionAPI(v1, jwt, s.deps.Sessions, s.deps.Reviews, s.metrics)
	registerMessageAPI(v1, jwt, s.deps.Messages, s.metrics)
	registerNotificationAPI(v1, jwt, s.deps.Notifications)
	registerPointsAPI(v1, jwt, s.deps.Ledger, s.metrics)
}

// Start blocks serving requests; failures are reported on Errors().
func (s *Server) Start() {
	s.deps.Logger.Info("API listening on " + s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signalled
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.httpSrv.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.handler.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Study Match API!")
}

func (s *Server) healthz(ctx echo.Context) error {
	status := http.StatusOK
	redisHealthy := true
	if s.deps.Redis != nil {
		redisHealthy = s.deps.Redis.Healthy(ctx.Request().Context())
	}
	if !redisHealthy {
		status = http.StatusServiceUnavailable
	}
	return ctx.JSON(status, echo.Map{"status": http.StatusText(status), "redis": redisHealthy})
}
