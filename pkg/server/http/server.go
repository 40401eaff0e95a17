package http_server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/duccv/contact-addin/config"
	"github.com/duccv/contact-addin/internal/middleware"
	"github.com/duccv/contact-addin/internal/model/response"
	"github.com/duccv/contact-addin/pkg/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/timeout"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	_ "github.com/duccv/contact-addin/docs"
)

type Server struct {
	App    *gin.Engine
	API    *gin.RouterGroup
	notify chan error
	srv    *http.Server

	address         string
	timeout         time.Duration
	shutdownTimeout time.Duration
	apiMiddleware   []gin.HandlerFunc
}

// New -.
func New(env *config.Env, opts ...Option) *Server {
	s := &Server{
		notify:          make(chan error, 1),
		address:         _defaultAddr,
		timeout:         _defaultTimeout,
		shutdownTimeout: _defaultShutdownTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.App, s.API = s.initGinServer(env)
	s.srv = &http.Server{
		Addr:              s.address,
		Handler:           otelhttp.NewHandler(s.App, env.AppConfig.Name),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func timeoutResponse(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusRequestTimeout, response.ResponseData{
		Ec:    http.StatusRequestTimeout,
		Error: "Request timeout",
	})
}

func timeoutMiddleware(to time.Duration) gin.HandlerFunc {
	return timeout.New(
		timeout.WithTimeout(to),
		timeout.WithResponse(timeoutResponse),
	)
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error": "Endpoint not found",
		"path":  c.Request.URL.Path,
	})
}

func (s *Server) initGinServer(env *config.Env) (*gin.Engine, *gin.RouterGroup) {
	pathPrefix := env.AppConfig.PathPrefix
	if pathPrefix == "" {
		pathPrefix = "/api"
	}
	if env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	mwCfg := middleware.NewMiddlewareConfig(env)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CorrelationIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(mwCfg).RequestLogger())
	r.Use(middleware.SecurityHeaders())

	if env.CORSConfig.Enabled {
		corsConfig := cors.Config{
			AllowOrigins:     env.CORSConfig.AllowedOrigins,
			AllowMethods:     env.CORSConfig.AllowedMethods,
			AllowHeaders:     env.CORSConfig.AllowedHeaders,
			ExposeHeaders:    env.CORSConfig.ExposedHeaders,
			AllowCredentials: env.CORSConfig.AllowCredentials,
			MaxAge:           time.Duration(env.CORSConfig.MaxAge) * time.Second,
		}
		// The cors package refuses a wildcard origin together with credentials.
		if len(corsConfig.AllowOrigins) == 1 && corsConfig.AllowOrigins[0] == "*" {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(string) bool { return true }
		}

		r.Use(cors.New(corsConfig))
	}

	if env.MetricsConfig.Enabled {
		m := metrics.GetMonitor(env.MetricsConfig.Path)
		m.Use(r)
	}

	r.NoRoute(notFound)

	// Swagger documentation
	r.GET(pathPrefix+"/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	api := r.Group(pathPrefix)
	api.Use(timeoutMiddleware(s.timeout))
	api.Use(s.apiMiddleware...)

	return r, api
}

// Handler is the instrumented root handler, as served by Start.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start -.
func (s *Server) Start() {
	go func() {
		zap.L().Info("HTTP server listening", zap.String("addr", s.address))
		err := s.srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.notify <- err
		}
		close(s.notify)
	}()
}

// Notify -.
func (s *Server) Notify() <-chan error {
	return s.notify
}

// Shutdown drains in-flight requests, waiting at most the shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
