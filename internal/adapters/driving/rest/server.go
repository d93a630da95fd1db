// Package rest exposes the knowledge base and question answering services
// over a JSON HTTP API built on echo.
package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driving"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/session"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/logger"
)

// MaxUploadBytes bounds the size of a /kb/build request.
const MaxUploadBytes = 64 << 20

const shutdownTimeout = 10 * time.Second

// Ports holds the services the API serves.
type Ports struct {
	Knowledge driving.KnowledgeBaseService
	Answers   driving.AnswerService
	Housing   driving.HousingService
	Feedback  driving.FeedbackService

	// Session is shared by every request.
	Session *session.Session

	// Metrics serves GET /metrics. May be nil.
	Metrics http.Handler
}

// Server is the HTTP API.
type Server struct {
	ports *Ports
	echo  *echo.Echo
}

// NewServer creates a server with every route registered.
func NewServer(ports *Ports) (*Server, error) {
	if ports == nil {
		return nil, errors.New("ports cannot be nil")
	}
	if ports.Knowledge == nil || ports.Answers == nil || ports.Housing == nil || ports.Feedback == nil {
		return nil, errors.New("all services are required")
	}
	if ports.Session == nil {
		return nil, errors.New("session is required")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", MaxUploadBytes>>20)))
	e.Use(requestLogger())

	s := &Server{ports: ports, echo: e}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	e := s.echo
	e.GET("/health", s.health)
	e.GET("/examples", s.examples)

	e.POST("/kb/build", s.build)
	e.GET("/kb/sources", s.sources)

	e.POST("/ask", s.ask)
	e.POST("/housing", s.housing)

	e.POST("/feedback", s.recordFeedback)
	e.GET("/feedback/stats", s.feedbackStats)

	if s.ports.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.ports.Metrics))
	}
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURIPath: true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			log := logger.With("method", v.Method, "path", v.URIPath, "status", v.Status, "latency", v.Latency)
			if v.Error != nil {
				log.Warnw("request failed", "error", v.Error)
				return nil
			}
			log.Debug("request")
			return nil
		},
	})
}
