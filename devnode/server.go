package devnode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/ava-labs/sleepy"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// DevicePathPrefix is where device endpoints live: the device registered
// under minor number N is served at DevicePathPrefix followed by N.
const DevicePathPrefix = "/dev/sleepy"

var _ sleepy.Registrar = (*Server)(nil)

// Server publishes every registered device as a WebSocket endpoint and
// serves the registry's status surfaces. It is the registry's Registrar:
// devices become reachable when the registry announces them and stop being
// reachable, with their open connections severed, when they are revoked.
type Server struct {
	logger   sleepy.Logger
	registry *sleepy.Registry
	health   *Health
	upgrader websocket.Upgrader

	lock      sync.Mutex
	published set.Set[uint32]
	conns     set.Set[*deviceConn]

	httpServer *http.Server
}

func NewServer(logger sleepy.Logger, registry *sleepy.Registry, cfg ServerConfig) *Server {
	s := &Server{
		logger:    logger,
		registry:  registry,
		health:    NewHealth(),
		published: set.NewSet[uint32](16),
		conns:     set.NewSet[*deviceConn](16),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/dev/", s.handleDevice)
	mux.HandleFunc("/devices", s.handleDevices)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: mux,
	}

	return s
}

// RegisterInstance publishes the device endpoint for the given minor number.
func (s *Server) RegisterInstance(minor uint32) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.published.Contains(minor) {
		return fmt.Errorf("device %d is already published", minor)
	}
	s.published.Add(minor)

	s.logger.Info("Published device node",
		zap.String("path", fmt.Sprintf("%s%d", DevicePathPrefix, minor)))

	return nil
}

// UnregisterInstance revokes the device endpoint for the given minor number
// and severs every connection open on it.
func (s *Server) UnregisterInstance(minor uint32) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.published.Contains(minor) {
		return fmt.Errorf("device %d is not published", minor)
	}
	s.published.Remove(minor)

	for _, dc := range s.conns.List() {
		if dc.minor == minor {
			dc.close()
		}
	}

	s.logger.Info("Revoked device node",
		zap.String("path", fmt.Sprintf("%s%d", DevicePathPrefix, minor)))

	return nil
}

// Handler exposes the server's HTTP surface.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("Server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown severs every open device connection, releasing any callers still
// blocked in an await, and stops accepting new ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.lock.Lock()
	conns := s.conns.List()
	s.lock.Unlock()

	for _, dc := range conns {
		dc.close()
	}

	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleDevice(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, DevicePathPrefix)
	if rest == r.URL.Path || rest == "" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	minor64, err := strconv.ParseUint(rest, 10, 32)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	minor := uint32(minor64)

	s.lock.Lock()
	published := s.published.Contains(minor)
	s.lock.Unlock()

	if !published {
		s.logger.Warn("Rejected open of unpublished device", zap.Uint32("minor", minor))
		http.Error(w, "no such device", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("Failed to upgrade device connection", zap.Error(err))
		return
	}

	dc := newDeviceConn(s.logger, s.registry, minor, conn, s.removeConn)

	s.lock.Lock()
	s.conns.Add(dc)
	s.lock.Unlock()

	s.logger.Debug("Opened device connection",
		zap.Uint32("minor", minor),
		zap.String("remote", r.RemoteAddr))

	dc.run()
}

func (s *Server) removeConn(dc *deviceConn) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.conns.Remove(dc)
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.registry.Status())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.health.Snapshot(len(s.registry.Status())))
}
