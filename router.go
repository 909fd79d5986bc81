package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/material-motion/motion-site/pkg/config"
	"github.com/material-motion/motion-site/pkg/container"
	"github.com/material-motion/motion-site/pkg/event"
	"github.com/material-motion/motion-site/pkg/metrics"
	"github.com/material-motion/motion-site/pkg/models"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	liveReloadRoute = "/api/events/ws"
)

// liveReloadPath is the socket address handed to the page in local mode,
// subscribed to template reloads only.
func liveReloadPath() string {
	return liveReloadRoute + "?events=" + event.TemplateReloaded
}

type Server struct {
	ginEngine *gin.Engine
	cfg       *config.AppConfig
	page      *container.Handler
	emitter   *event.Emitter
	metrics   *metrics.Metrics
	logger    *slog.Logger
	port      int
	stopped   chan struct{}
}

// NewServer wires the page handler into a gin engine. The framework runs in
// debug mode exactly when the page is in local mode.
func NewServer(cfg *config.AppConfig, page *container.Handler, emitter *event.Emitter, m *metrics.Metrics, logger *slog.Logger) *Server {
	if page.Mode().IsLocal() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ginEngine := gin.New()
	// Paths ending in "/" belong to the page, so /healthz/ must not be
	// redirected to /healthz.
	ginEngine.RedirectTrailingSlash = false
	ginEngine.Use(gin.Recovery())
	ginEngine.Use(requestID())
	ginEngine.Use(accessLog(logger))
	if m != nil {
		ginEngine.Use(m.Middleware())
	}

	server := &Server{
		ginEngine: ginEngine,
		cfg:       cfg,
		page:      page,
		emitter:   emitter,
		metrics:   m,
		logger:    logger,
		stopped:   make(chan struct{}),
	}

	attachStatic(ginEngine, cfg, page.Mode(), logger)
	server.SetupRoutes()

	return server
}

// Start listens on the configured address and serves until ctx is done.
// It returns an error right away if the address cannot be bound.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host(), strconv.Itoa(s.cfg.Port()))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Attempt to listen on port first; if occupied return error immediately
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	if tcpAddr, ok := ln.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	} else {
		s.port = s.cfg.Port()
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped", "error", err)
		}
	}()

	go func() {
		defer close(s.stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("http server shutdown", "error", err)
		}
	}()

	return nil
}

// Stopped is closed once the server has shut down after its context ended.
func (s *Server) Stopped() <-chan struct{} { return s.stopped }

// Port is the bound port, valid after Start.
func (s *Server) Port() int { return s.port }

func (s *Server) SetupRoutes() {
	s.ginEngine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, models.Response{Code: 200, Message: "OK"})
	})

	if s.metrics != nil {
		s.ginEngine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	// API group
	// /api
	apiGroup := s.ginEngine.Group("/api")
	apiGroup.GET("/runtime", s.getRuntime)

	// Live reload notifications only exist while developing.
	if s.page.Mode().IsLocal() && s.emitter != nil {
		s.ginEngine.GET(liveReloadRoute, event.NewWSHandler(s.emitter, s.logger).Handle)
	}

	// Everything else is a candidate for the container page.
	s.ginEngine.NoRoute(s.page.Handle)
}

// getRuntime reports the detected mode and asset prefixes.
func (s *Server) getRuntime(c *gin.Context) {
	port := s.port
	if port == 0 {
		port = s.cfg.Port()
	}
	host := s.cfg.Host()
	if host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	hostPort := net.JoinHostPort(host, strconv.Itoa(port))

	mode := s.page.Mode()
	paths := s.page.Paths()
	info := models.RuntimeInfo{
		Mode:         mode.String(),
		Local:        mode.IsLocal(),
		DistJSPath:   paths.DistJSPath,
		StaticJSPath: paths.StaticJSPath,
		HTTPBaseURL:  "http://" + hostPort,
		Port:         port,
	}
	if mode.IsLocal() {
		info.WSBaseURL = "ws://" + hostPort
	}
	c.JSON(http.StatusOK, models.Response{Code: 200, Message: "OK", Data: info})
}

// requestID tags every request with an id, reusing a valid incoming one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"request_id", c.GetString(requestIDKey),
		)
	}
}
