// Command detectd runs the orca detection engine as a long-lived
// service: a gRPC DetectService and, optionally, a REST gateway in
// front of it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	grpcserver "github.com/umad/orca/pkg/api/grpc"
	"github.com/umad/orca/pkg/api/rest"
	"github.com/umad/orca/pkg/api/rest/middleware"
	"github.com/umad/orca/pkg/config"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version and exit")
		showHelp    = flag.Bool("help", false, "show help and exit")
		host        = flag.String("host", "", "gRPC server host (overrides config/env)")
		port        = flag.Int("port", 0, "gRPC server port (overrides config/env)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("orca detection server v%s (commit: %s)\n", version, commit)
		os.Exit(0)
	}
	if *showHelp {
		showUsage()
		os.Exit(0)
	}

	printBanner()

	cfg := config.LoadFromEnv()
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Println("Initializing orca detection server...")
	grpcServer, err := grpcserver.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create gRPC server: %v", err)
	}

	printStartupInfo(cfg)

	errChan := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Println("Starting gRPC server...")
		if err := grpcServer.Start(); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	var restServer *rest.Server
	if cfg.REST.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()

			time.Sleep(500 * time.Millisecond)

			restConfig := rest.Config{
				Host:        cfg.REST.Host,
				Port:        cfg.REST.Port,
				GRPCAddress: cfg.Server.Address(),
				CORSEnabled: cfg.REST.CORSEnabled,
				CORSOrigins: cfg.REST.CORSOrigins,
				Auth: middleware.AuthConfig{
					Enabled:     cfg.REST.AuthEnabled,
					JWTSecret:   cfg.REST.JWTSecret,
					PublicPaths: cfg.REST.PublicPaths,
					AdminPaths:  cfg.REST.AdminPaths,
				},
				RateLimit: middleware.RateLimitConfig{
					Enabled:        cfg.REST.RateLimitEnabled,
					RequestsPerSec: cfg.REST.RateLimitPerSec,
					Burst:          cfg.REST.RateLimitBurst,
					PerIP:          cfg.REST.RateLimitPerIP,
					PerUser:        cfg.REST.RateLimitPerUser,
					GlobalLimit:    cfg.REST.RateLimitGlobal,
				},
			}

			var err error
			restServer, err = rest.NewServer(restConfig)
			if err != nil {
				errChan <- fmt.Errorf("failed to create REST server: %w", err)
				return
			}

			log.Println("Starting REST API server...")
			if err := restServer.Start(); err != nil {
				errChan <- fmt.Errorf("REST server error: %w", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	log.Println("Servers are ready. Press Ctrl+C to stop.")
	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-errChan:
		log.Printf("Server error: %v", err)
	}

	log.Println("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if restServer != nil {
		if err := restServer.Stop(ctx); err != nil {
			log.Printf("Error stopping REST server: %v", err)
		}
	}

	if err := grpcServer.Stop(); err != nil {
		log.Printf("Error stopping gRPC server: %v", err)
	}

	wg.Wait()

	log.Println("Servers stopped. Goodbye!")
}

func printBanner() {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║                                                             ║
║   orca - distance-based Top-N outlier detection service     ║
║                                                             ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Println(banner)
	fmt.Printf("Version: %s (commit: %s)\n\n", version, commit)
}

func printStartupInfo(cfg *config.Config) {
	fmt.Println("\n╔════════════════════════════════════════════════════════╗")
	fmt.Println("║            gRPC Server Configuration                    ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Address:          %-35s ║\n", cfg.Server.Address())
	fmt.Printf("║ TLS Enabled:      %-35v ║\n", cfg.Server.EnableTLS)
	fmt.Printf("║ Max Connections:  %-35d ║\n", cfg.Server.MaxConnections)
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Println("║            REST API Configuration                       ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Enabled:          %-35v ║\n", cfg.REST.Enabled)
	if cfg.REST.Enabled {
		fmt.Printf("║ Address:          %-35s ║\n", fmt.Sprintf("%s:%d", cfg.REST.Host, cfg.REST.Port))
		fmt.Printf("║ Auth Enabled:     %-35v ║\n", cfg.REST.AuthEnabled)
		fmt.Printf("║ CORS Enabled:     %-35v ║\n", cfg.REST.CORSEnabled)
		fmt.Printf("║ Rate Limiting:    %-35v ║\n", cfg.REST.RateLimitEnabled)
		fmt.Printf("║ API Docs:         %-35s ║\n", fmt.Sprintf("http://%s:%d/docs", cfg.REST.Host, cfg.REST.Port))
	}
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Println("║               Detector Configuration                    ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ N (Top-N):        %-35d ║\n", cfg.Detect.N)
	fmt.Printf("║ K (neighbors):    %-35d ║\n", cfg.Detect.K)
	fmt.Printf("║ Block size:       %-35d ║\n", cfg.Detect.BlockSize)
	fmt.Printf("║ Num pivots:       %-35d ║\n", cfg.Detect.NumPivots)
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Println("║               Cache Configuration                       ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Enabled:          %-35v ║\n", cfg.Cache.Enabled)
	fmt.Printf("║ Capacity:         %-35d ║\n", cfg.Cache.Capacity)
	fmt.Printf("║ TTL:              %-35s ║\n", cfg.Cache.TTL)
	fmt.Println("╚════════════════════════════════════════════════════════╝")
	fmt.Println()
}

func showUsage() {
	fmt.Println("orca detection server - distance-based Top-N outlier detection")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  detectd [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -help             Show this help message")
	fmt.Println("  -version          Show version information")
	fmt.Println("  -host HOST        gRPC server host (default: 0.0.0.0)")
	fmt.Println("  -port PORT        gRPC server port (default: 50051)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  ORCA_HOST                      gRPC server host")
	fmt.Println("  ORCA_PORT                      gRPC server port")
	fmt.Println("  ORCA_MAX_CONNECTIONS           Max concurrent connections")
	fmt.Println("  ORCA_REQUEST_TIMEOUT           Request timeout (e.g., 30s)")
	fmt.Println("  ORCA_ENABLE_TLS                Enable TLS (true/false)")
	fmt.Println("  ORCA_DETECT_N                  Top-N outliers to report")
	fmt.Println("  ORCA_DETECT_K                  Neighbors per object")
	fmt.Println("  ORCA_DETECT_NUM_PIVOTS         Pivot count")
	fmt.Println("  ORCA_DETECT_HIDDEN_CANDIDATES  Enable HOD-style deflation (true/false)")
	fmt.Println("  ORCA_CACHE_ENABLED             Enable result caching (true/false)")
	fmt.Println("  ORCA_CACHE_CAPACITY            Cache capacity")
	fmt.Println("  ORCA_CACHE_TTL                 Cache TTL (e.g., 5m)")
	fmt.Println("  ORCA_DATASET_PATH              Default dataset path")
	fmt.Println("  ORCA_DATASET_FORMAT            Default dataset format")
	fmt.Println("  ORCA_REST_ENABLED              Enable the REST gateway (true/false)")
	fmt.Println("  ORCA_REST_PORT                 REST gateway port")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  detectd")
	fmt.Println("  detectd -port 50052")
	fmt.Println("  ORCA_PORT=50052 ORCA_DETECT_N=50 detectd")
	fmt.Println()
}
