// Package grpc exposes the detection engine over a gRPC DetectService:
// submit a run, poll its status, list tracked runs, and check health.
package grpc

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/umad/orca/pkg/api/grpc/proto"
	"github.com/umad/orca/pkg/config"
	"github.com/umad/orca/pkg/observability"
	"github.com/umad/orca/pkg/rcache"
	"github.com/umad/orca/pkg/runregistry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

// Server implements proto.DetectServiceServer over a run registry, a
// result cache, and the detection engine.
type Server struct {
	proto.UnimplementedDetectServiceServer

	config     *config.Config
	grpcServer *grpc.Server
	listener   net.Listener
	startTime  time.Time
	shutdownMu sync.Mutex
	isShutdown bool

	registry *runregistry.Registry
	cache    *rcache.CachedDetector
	metrics  *observability.Metrics
	logger   *observability.Logger
}

// NewServer builds a Server from configuration, wiring its run registry
// and result cache from the configured limits and cache settings.
func NewServer(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	limits := runregistry.Limits{
		MaxConcurrentRuns: cfg.Limits.MaxConcurrentRuns,
		MaxObjects:        cfg.Limits.MaxObjects,
		RateLimitQPS:      cfg.Limits.RateLimitQPS,
	}

	var cache *rcache.CachedDetector
	if cfg.Cache.Enabled {
		cache = rcache.NewCachedDetector(cfg.Cache.Capacity, cfg.Cache.TTL)
	} else {
		cache = rcache.NewCachedDetector(0, 0)
	}

	s := &Server{
		config:    cfg,
		startTime: time.Now(),
		registry:  runregistry.NewRegistry(limits),
		cache:     cache,
		metrics:   observability.NewMetrics(),
		logger:    observability.NewDefaultLogger(),
	}

	return s, nil
}

// Start configures TLS/keepalive/reflection and begins serving.
func (s *Server) Start() error {
	var opts []grpc.ServerOption

	if s.config.Server.EnableTLS {
		cert, err := tls.LoadX509KeyPair(s.config.Server.CertFile, s.config.Server.KeyFile)
		if err != nil {
			return fmt.Errorf("failed to load TLS certificates: %w", err)
		}
		tlsConfig := &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		opts = append(opts, grpc.Creds(credentials.NewTLS(tlsConfig)))
		s.logger.Info("TLS enabled")
	}

	kaParams := keepalive.ServerParameters{
		MaxConnectionIdle: 15 * time.Second,
		MaxConnectionAge:  30 * time.Second,
		Time:              5 * time.Second,
		Timeout:           1 * time.Second,
	}
	opts = append(opts, grpc.KeepaliveParams(kaParams))
	opts = append(opts, grpc.MaxConcurrentStreams(uint32(s.config.Server.MaxConnections)))

	s.grpcServer = grpc.NewServer(opts...)
	proto.RegisterDetectServiceServer(s.grpcServer, s)
	reflection.Register(s.grpcServer)

	addr := s.config.Server.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	s.logger.Infof("orca gRPC server listening on %s", addr)

	go func() {
		if err := s.grpcServer.Serve(listener); err != nil {
			s.logger.Errorf("gRPC server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server, forcing a stop if the
// configured shutdown timeout elapses first.
func (s *Server) Stop() error {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()

	if s.isShutdown {
		return nil
	}

	s.logger.Info("shutting down gRPC server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		s.logger.Info("gRPC server stopped gracefully")
	case <-ctx.Done():
		s.logger.Warn("shutdown timeout exceeded, forcing stop")
		s.grpcServer.Stop()
	}

	s.isShutdown = true
	return nil
}

// Wait blocks until the listener is closed.
func (s *Server) Wait() {
	if s.listener != nil {
		<-make(chan struct{})
	}
}

// Uptime returns how long the server has been running.
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// Stats returns server-level statistics.
func (s *Server) Stats() map[string]interface{} {
	cacheStats := s.cache.CacheStats()
	return map[string]interface{}{
		"uptime_seconds": s.Uptime().Seconds(),
		"active_runs":    s.registry.ActiveCount(),
		"total_runs":     len(s.registry.ListRuns()),
		"cache_hits":     cacheStats.Hits,
		"cache_misses":   cacheStats.Misses,
		"cache_hit_rate": cacheStats.HitRate,
	}
}
