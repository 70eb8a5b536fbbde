package http

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/labstack/echo/v4"
	echo_middleware "github.com/labstack/echo/v4/middleware"
	infra "github.com/pot-code/learning-engine/internal/infrastructure"
	"github.com/pot-code/learning-engine/internal/infrastructure/auth"
	"github.com/pot-code/learning-engine/internal/infrastructure/validate"
	"github.com/pot-code/learning-engine/internal/interfaces/http/middleware"
	"github.com/pot-code/learning-engine/internal/session"
	"go.elastic.co/apm/module/apmechov4"
	"go.uber.org/zap"
)

// StreamPrefix route prefix of long-lived websocket streams
const StreamPrefix = "/api/v1/learning/ws/"

type endpoint struct {
	apiVersion  string
	middlewares []echo.MiddlewareFunc
	groups      []*apiGroup
}

type apiGroup struct {
	prefix      string
	middlewares []echo.MiddlewareFunc
	routes      []*route
}

type route struct {
	method      string
	path        string
	handler     echo.HandlerFunc
	middlewares []echo.MiddlewareFunc
}

// Pinger backing store checked by the liveness probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// ServerOption dependencies of the http transport
type ServerOption struct {
	Config    *infra.AppConfig
	Registry  *session.Registry
	Validator validate.Validator
	Probes    []Pinger
	Logger    *zap.Logger
}

// NewServer create http transport server
func NewServer(option *ServerOption) *echo.Echo {
	var (
		app     = echo.New()
		cfg     = option.Config
		logger  = option.Logger
		jwtUtil = auth.NewJWTUtil(cfg.Security.JWTMethod,
			cfg.Security.JWTSecret,
			cfg.Security.TokenName)
		jwtMiddleware = middleware.VerifyToken(jwtUtil)
	)
	if logger == nil {
		logger = zap.NewNop()
	}
	app.HideBanner = true
	app.HidePort = true

	registerLivenessProbe(app, option.Probes)
	if cfg.Env == infra.EnvDevelopment {
		registerProfileEndpoints(app)
	}
	app.Use(middleware.Logging(logger, &middleware.LoggingConfig{
		Skipper: func(e echo.Context) bool {
			return strings.HasPrefix(e.Request().RequestURI, "/healthz")
		},
	}))
	app.Use(middleware.ErrorHandling(&middleware.ErrorHandlingOption{Logger: logger}))
	app.Use(echo_middleware.Secure())
	if cfg.DevOP.APM {
		app.Use(apmechov4.Middleware())
	}
	app.Use(echo_middleware.CORS())
	app.Use(middleware.AbortRequest(&middleware.AbortRequestOption{
		Timeout: cfg.RequestTimeout,
		Skipper: func(e echo.Context) bool {
			return strings.HasPrefix(e.Request().URL.Path, StreamPrefix)
		},
	}))

	SessionHandler := NewSessionHandler(option.Registry, jwtUtil, option.Validator)

	createEndpoint(app, v1Endpoint(
		SessionHandler,
		jwtMiddleware, echo_middleware.RequestID(), middleware.SetTraceLogger(logger),
	))

	printRoutes(app, logger)
	return app
}

func printRoutes(app *echo.Echo, logger *zap.Logger) {
	for _, route := range app.Routes() {
		if !strings.HasPrefix(route.Name, "github.com/labstack/echo") {
			name := route.Name
			trimIndex := strings.LastIndexByte(name, '/')
			logger.Debug("Registered route", zap.String("method", route.Method), zap.String("path", route.Path), zap.String("name", string(name[trimIndex+1:])))
		}
	}
}

func registerLivenessProbe(app *echo.Echo, probes []Pinger) {
	app.GET("/healthz", func(c echo.Context) error {
		for _, p := range probes {
			if err := p.Ping(c.Request().Context()); err != nil {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})
}

func registerProfileEndpoints(app *echo.Echo) {
	expvarHandler := expvar.Handler()
	app.GET("/debug/vars", func(c echo.Context) error {
		expvarHandler.ServeHTTP(c.Response().Writer, c.Request())
		return nil
	})
	app.GET("/debug/pprof/", func(c echo.Context) error {
		pprof.Index(c.Response().Writer, c.Request())
		return nil
	})
	app.GET("/debug/pprof/:name", func(c echo.Context) error {
		switch c.Param("name") {
		case "cmdline":
			pprof.Cmdline(c.Response().Writer, c.Request())
		case "profile":
			pprof.Profile(c.Response().Writer, c.Request())
		case "symbol":
			pprof.Symbol(c.Response().Writer, c.Request())
		case "trace":
			pprof.Trace(c.Response().Writer, c.Request())
		default:
			pprof.Handler(c.Param("name")).ServeHTTP(c.Response().Writer, c.Request())
		}
		return nil
	})
}

func createEndpoint(app *echo.Echo, def *endpoint) {
	type RESTMethod func(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route

	var root *echo.Group
	if strings.HasPrefix(def.apiVersion, "/") {
		root = app.Group(def.apiVersion, def.middlewares...)
	} else {
		root = app.Group("/"+def.apiVersion, def.middlewares...)
	}

	for _, group := range def.groups {
		echoGroup := root.Group(group.prefix, group.middlewares...)
		for _, api := range group.routes {
			var method RESTMethod
			switch api.method {
			case "GET":
				method = echoGroup.GET
			case "POST":
				method = echoGroup.POST
			case "PUT":
				method = echoGroup.PUT
			case "DELETE":
				method = echoGroup.DELETE
			default:
				panic(fmt.Errorf("createEndpoint: unknown method %s", api.method))
			}
			method(api.path, api.handler, api.middlewares...)
		}
	}
}
