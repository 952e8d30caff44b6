package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all server configuration
type Config struct {
	Server  ServerConfig
	REST    RESTConfig
	Detect  DetectConfig
	Cache   CacheConfig
	Dataset DatasetConfig
	Limits  RunLimitsConfig
}

// RESTConfig holds the REST gateway's configuration; the gateway proxies
// to the gRPC server over GRPCAddress.
type RESTConfig struct {
	Enabled     bool
	Host        string
	Port        int
	GRPCAddress string

	CORSEnabled bool
	CORSOrigins []string

	AuthEnabled bool
	JWTSecret   string
	PublicPaths []string
	AdminPaths  []string

	RateLimitEnabled bool
	RateLimitPerSec  float64
	RateLimitBurst   int
	RateLimitPerIP   bool
	RateLimitPerUser bool
	RateLimitGlobal  bool
}

// RunLimitsConfig bounds how many detection runs may be submitted and
// how large a dataset a single run may process.
type RunLimitsConfig struct {
	MaxConcurrentRuns int
	MaxObjects        int
	RateLimitQPS      int
}

// ServerConfig holds gRPC server configuration
type ServerConfig struct {
	Host            string        // Server host (default: "0.0.0.0")
	Port            int           // Server port (default: 50051)
	MaxConnections  int           // Max concurrent connections
	RequestTimeout  time.Duration // Request timeout
	ShutdownTimeout time.Duration // Graceful shutdown timeout
	EnableTLS       bool          // Enable TLS
	CertFile        string        // TLS certificate file
	KeyFile         string        // TLS key file
}

// DetectConfig holds block-sweep detector configuration
type DetectConfig struct {
	N                int  // Top-N outliers to report (default: 30)
	K                int  // neighbors per object (default: 5)
	BlockSize        int  // sweep block size (default: 200)
	NumPivots        int  // pivot count; 1 = prefilter, >1 = true pruning (default: 1)
	HiddenCandidates bool // enable HOD-style hidden-candidate deflation
}

// CacheConfig holds query cache configuration
type CacheConfig struct {
	Enabled  bool          // Enable query caching
	Capacity int           // Max cache entries
	TTL      time.Duration // Time to live for cache entries
}

// DatasetConfig holds dataset loading configuration
type DatasetConfig struct {
	Path       string // Path to the dataset file
	Format     string // tabular, kddcup99, stock, or dna
	MaxObjects int    // Max number of objects to load
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            50051,
			MaxConnections:  1000,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			EnableTLS:       false,
		},
		REST: RESTConfig{
			Enabled:          true,
			Host:             "0.0.0.0",
			Port:             8080,
			CORSEnabled:      true,
			CORSOrigins:      []string{"*"},
			AuthEnabled:      false,
			PublicPaths:      []string{"/v1/health"},
			RateLimitEnabled: true,
			RateLimitPerSec:  20,
			RateLimitBurst:   40,
			RateLimitPerIP:   true,
		},
		Limits: RunLimitsConfig{
			MaxConcurrentRuns: 4,
			MaxObjects:        1000000,
			RateLimitQPS:      10,
		},
		Detect: DetectConfig{
			N:         30,
			K:         5,
			BlockSize: 200,
			NumPivots: 1,
		},
		Cache: CacheConfig{
			Enabled:  true,
			Capacity: 1000,
			TTL:      5 * time.Minute,
		},
		Dataset: DatasetConfig{
			Path:       "./data/dataset.txt",
			Format:     "tabular",
			MaxObjects: 100000,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	cfg := Default()

	// Server configuration
	if host := os.Getenv("ORCA_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("ORCA_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if maxConn := os.Getenv("ORCA_MAX_CONNECTIONS"); maxConn != "" {
		if mc, err := strconv.Atoi(maxConn); err == nil {
			cfg.Server.MaxConnections = mc
		}
	}
	if timeout := os.Getenv("ORCA_REQUEST_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			cfg.Server.RequestTimeout = t
		}
	}
	if enableTLS := os.Getenv("ORCA_ENABLE_TLS"); enableTLS == "true" {
		cfg.Server.EnableTLS = true
		cfg.Server.CertFile = os.Getenv("ORCA_TLS_CERT")
		cfg.Server.KeyFile = os.Getenv("ORCA_TLS_KEY")
	}

	// Detector configuration
	if n := os.Getenv("ORCA_DETECT_N"); n != "" {
		if v, err := strconv.Atoi(n); err == nil {
			cfg.Detect.N = v
		}
	}
	if k := os.Getenv("ORCA_DETECT_K"); k != "" {
		if v, err := strconv.Atoi(k); err == nil {
			cfg.Detect.K = v
		}
	}
	if numPivots := os.Getenv("ORCA_DETECT_NUM_PIVOTS"); numPivots != "" {
		if v, err := strconv.Atoi(numPivots); err == nil {
			cfg.Detect.NumPivots = v
		}
	}
	if hidden := os.Getenv("ORCA_DETECT_HIDDEN_CANDIDATES"); hidden == "true" {
		cfg.Detect.HiddenCandidates = true
	}

	// Cache configuration
	if cacheEnabled := os.Getenv("ORCA_CACHE_ENABLED"); cacheEnabled == "false" {
		cfg.Cache.Enabled = false
	}
	if capacity := os.Getenv("ORCA_CACHE_CAPACITY"); capacity != "" {
		if c, err := strconv.Atoi(capacity); err == nil {
			cfg.Cache.Capacity = c
		}
	}
	if ttl := os.Getenv("ORCA_CACHE_TTL"); ttl != "" {
		if t, err := time.ParseDuration(ttl); err == nil {
			cfg.Cache.TTL = t
		}
	}

	// Dataset configuration
	if path := os.Getenv("ORCA_DATASET_PATH"); path != "" {
		cfg.Dataset.Path = path
	}
	if format := os.Getenv("ORCA_DATASET_FORMAT"); format != "" {
		cfg.Dataset.Format = format
	}
	if maxObjects := os.Getenv("ORCA_DATASET_MAX_OBJECTS"); maxObjects != "" {
		if v, err := strconv.Atoi(maxObjects); err == nil {
			cfg.Dataset.MaxObjects = v
		}
	}

	// REST gateway configuration
	if enabled := os.Getenv("ORCA_REST_ENABLED"); enabled == "false" {
		cfg.REST.Enabled = false
	}
	if host := os.Getenv("ORCA_REST_HOST"); host != "" {
		cfg.REST.Host = host
	}
	if port := os.Getenv("ORCA_REST_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.REST.Port = p
		}
	}
	if authEnabled := os.Getenv("ORCA_REST_AUTH_ENABLED"); authEnabled == "true" {
		cfg.REST.AuthEnabled = true
		cfg.REST.JWTSecret = os.Getenv("ORCA_REST_JWT_SECRET")
	}
	cfg.REST.GRPCAddress = cfg.Server.Address()

	// Run-limits configuration
	if maxRuns := os.Getenv("ORCA_LIMITS_MAX_CONCURRENT_RUNS"); maxRuns != "" {
		if v, err := strconv.Atoi(maxRuns); err == nil {
			cfg.Limits.MaxConcurrentRuns = v
		}
	}
	if maxObjects := os.Getenv("ORCA_LIMITS_MAX_OBJECTS"); maxObjects != "" {
		if v, err := strconv.Atoi(maxObjects); err == nil {
			cfg.Limits.MaxObjects = v
		}
	}
	if qps := os.Getenv("ORCA_LIMITS_RATE_QPS"); qps != "" {
		if v, err := strconv.Atoi(qps); err == nil {
			cfg.Limits.RateLimitQPS = v
		}
	}

	return cfg
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.MaxConnections < 1 {
		return fmt.Errorf("invalid max connections: %d (must be > 0)", c.Server.MaxConnections)
	}
	if c.Server.EnableTLS {
		if c.Server.CertFile == "" || c.Server.KeyFile == "" {
			return fmt.Errorf("TLS enabled but cert or key file not specified")
		}
	}

	// Detector validation
	if c.Detect.N < 1 {
		return fmt.Errorf("invalid detect N: %d (must be > 0)", c.Detect.N)
	}
	if c.Detect.K < 1 {
		return fmt.Errorf("invalid detect K: %d (must be > 0)", c.Detect.K)
	}
	if c.Detect.BlockSize < 1 {
		return fmt.Errorf("invalid detect block size: %d (must be > 0)", c.Detect.BlockSize)
	}
	if c.Detect.NumPivots < 1 {
		return fmt.Errorf("invalid detect num pivots: %d (must be >= 1)", c.Detect.NumPivots)
	}

	// Cache validation
	if c.Cache.Enabled && c.Cache.Capacity < 1 {
		return fmt.Errorf("invalid cache capacity: %d (must be > 0)", c.Cache.Capacity)
	}

	// Dataset validation
	if c.Dataset.Path == "" {
		return fmt.Errorf("dataset path not specified")
	}

	return nil
}

// Address returns the server address (host:port)
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
