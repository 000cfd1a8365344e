package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/devices-configuration/internal/audit"
	"github.com/nerrad567/devices-configuration/internal/device"
	"github.com/nerrad567/devices-configuration/internal/infrastructure/config"
	"github.com/nerrad567/devices-configuration/internal/infrastructure/logging"
)

// gracefulShutdownTimeout bounds how long Close waits for in-flight requests.
const gracefulShutdownTimeout = 10 * time.Second

// DeviceService is the device configuration use-case surface.
// *device.Service implements it.
type DeviceService interface {
	Get(ctx context.Context, id string) (device.Configuration, bool, error)
	CreateNewDevice(ctx context.Context, id string, u device.Update) (device.Configuration, error)
	Update(ctx context.Context, id string, u device.Update) (device.Configuration, bool, error)
}

// Metrics serves the Prometheus endpoint and records request metrics.
// *metrics.Metrics implements it.
type Metrics interface {
	Handler() http.Handler
	ObserveHTTPRequest(method, route string, status int, elapsed time.Duration)
}

// EventHistory lists recorded configuration events.
// *audit.SQLiteRepository implements it.
type EventHistory interface {
	List(ctx context.Context, filter audit.Filter) (*audit.ListResult, error)
}

// HealthChecker is implemented by every infrastructure client.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies of the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Logger   *logging.Logger
	Service  DeviceService
	Metrics  Metrics                  // optional
	History  EventHistory             // optional, serves /devices/{id}/events
	Checks   map[string]HealthChecker // optional, reported by /health
	Hub      *Hub                     // optional; created by Start when nil
	Version  string
}

// Server is the HTTP API server.
type Server struct {
	cfg     config.APIConfig
	wsCfg   config.WebSocketConfig
	secCfg  config.SecurityConfig
	logger  *logging.Logger
	service DeviceService
	metrics Metrics
	history EventHistory
	checks  map[string]HealthChecker
	version string
	server  *http.Server
	hub     *Hub
	cancel  context.CancelFunc
}

// New creates a server. It is not listening until Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Service == nil {
		return nil, fmt.Errorf("device service is required")
	}

	return &Server{
		cfg:     deps.Config,
		wsCfg:   deps.WS,
		secCfg:  deps.Security,
		logger:  deps.Logger,
		service: deps.Service,
		metrics: deps.Metrics,
		history: deps.History,
		checks:  deps.Checks,
		version: deps.Version,
		hub:     deps.Hub,
	}, nil
}

// Hub returns the WebSocket hub, creating it if needed. The event
// publisher is wired to it before the server starts.
func (s *Server) Hub() *Hub {
	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
	}
	return s.hub
}

// Start runs the hub and begins listening in a background goroutine.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.Hub().Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server listening", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close stops background goroutines and shuts the listener down, waiting
// up to 10 seconds for in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck reports whether the server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
