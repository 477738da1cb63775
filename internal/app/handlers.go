package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Server serves the single-page scheduler and its API
type Server struct {
	echo     *echo.Echo
	pipeline *Pipeline
	metrics  *Metrics
	logger   *zap.Logger
	config   *Config
}

// HealthResponse is the response body for GET /health
type HealthResponse struct {
	Status string `json:"status"`
}

// NewServer creates the HTTP server around a pipeline
func NewServer(cfg *Config, pipeline *Pipeline, metrics *Metrics, logger *zap.Logger) (*Server, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("pipeline is required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(logger))

	s := &Server{
		echo:     e,
		pipeline: pipeline,
		metrics:  metrics,
		logger:   logger,
		config:   cfg,
	}
	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.ServeIndex)
	s.echo.GET("/health", s.HandleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	api := s.echo.Group("/api")
	api.GET("/config", s.GetConfig)

	var limiter []echo.MiddlewareFunc
	if s.config.Limits.RequestsPerMinute > 0 {
		limiter = append(limiter, rateLimiter(s.config.Limits))
	}
	api.POST("/schedule", s.HandleSchedule, limiter...)
}

// ServeHTTP lets the server be mounted or exercised directly
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on the configured address until Shutdown
func (s *Server) Start() error {
	addr := s.config.Addr()
	s.logger.Info("starting http server", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

// ServeIndex serves the single-page form
func (s *Server) ServeIndex(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, IndexHTML)
}

// HandleHealth returns a simple health check response
func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// GetConfig returns what the page needs to prefill the form
func (s *Server) GetConfig(c echo.Context) error {
	today := time.Now()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"formats":          Formats,
		"model":            s.config.Generator.Model,
		"defaultStartDate": today.Format("2006-01-02"),
		"defaultDeadline":  today.AddDate(0, 0, 7).Format("2006-01-02"),
	})
}

// HandleSchedule generates a schedule and returns it as a download.
// Form fields or JSON: task, start_date, deadline, format, reminder_time.
func (s *Server) HandleSchedule(c echo.Context) error {
	var req DownloadRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid schedule request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, ErrInvalidRequestBody)
	}

	req.Task = strings.TrimSpace(req.Task)
	if req.Task == "" {
		return echo.NewHTTPError(http.StatusBadRequest, ErrEmptyTask)
	}

	format, ok := NormalizeFormat(req.Format)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, ErrInvalidFormat)
	}
	req.Format = format

	report, err := s.pipeline.Generate(c.Request().Context(), req.ScheduleRequest())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, FailureMessage(err))
	}

	var buf bytes.Buffer
	if err := Export(&buf, s.pipeline.Renderer(), req, report.Records); err != nil {
		s.logger.Error("failed to export schedule", zap.String("format", format), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, ErrFailedToRender)
	}

	s.pipeline.RecordDownload(format)
	SetAttachment(c.Response(), format, req.Task)
	return c.Blob(http.StatusOK, ContentTypes[format], buf.Bytes())
}

// requestLogger logs one line per request
func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let echo write the error response before logging its status
				c.Error(err)
			}

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return nil
		}
	}
}

// rateLimiter allows limits.RequestsPerMinute generations per client IP
func rateLimiter(limits LimitsConfig) echo.MiddlewareFunc {
	burst := limits.Burst
	if burst < 1 {
		burst = 1
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(limits.RequestsPerMinute / 60),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.ErrForbidden
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, ErrTooManyRequests)
		},
	})
}
