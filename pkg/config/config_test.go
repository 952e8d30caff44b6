package config

import (
	"os"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Test Server defaults
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Expected host 0.0.0.0, got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 50051 {
		t.Errorf("Expected port 50051, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxConnections != 1000 {
		t.Errorf("Expected max connections 1000, got %d", cfg.Server.MaxConnections)
	}
	if cfg.Server.RequestTimeout != 30*time.Second {
		t.Errorf("Expected request timeout 30s, got %v", cfg.Server.RequestTimeout)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected shutdown timeout 10s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.EnableTLS {
		t.Error("Expected TLS disabled by default")
	}

	// Test Detect defaults
	if cfg.Detect.N != 30 {
		t.Errorf("Expected N=30, got %d", cfg.Detect.N)
	}
	if cfg.Detect.K != 5 {
		t.Errorf("Expected K=5, got %d", cfg.Detect.K)
	}
	if cfg.Detect.BlockSize != 200 {
		t.Errorf("Expected BlockSize=200, got %d", cfg.Detect.BlockSize)
	}
	if cfg.Detect.NumPivots != 1 {
		t.Errorf("Expected NumPivots=1, got %d", cfg.Detect.NumPivots)
	}
	if cfg.Detect.HiddenCandidates {
		t.Error("Expected hidden candidates disabled by default")
	}

	// Test Cache defaults
	if !cfg.Cache.Enabled {
		t.Error("Expected cache enabled by default")
	}
	if cfg.Cache.Capacity != 1000 {
		t.Errorf("Expected cache capacity 1000, got %d", cfg.Cache.Capacity)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Expected cache TTL 5m, got %v", cfg.Cache.TTL)
	}

	// Test Dataset defaults
	if cfg.Dataset.Path != "./data/dataset.txt" {
		t.Errorf("Expected dataset path ./data/dataset.txt, got %s", cfg.Dataset.Path)
	}
	if cfg.Dataset.Format != "tabular" {
		t.Errorf("Expected dataset format tabular, got %s", cfg.Dataset.Format)
	}
}

func TestLoadFromEnv(t *testing.T) {
	envVars := []string{
		"ORCA_HOST", "ORCA_PORT", "ORCA_MAX_CONNECTIONS",
		"ORCA_REQUEST_TIMEOUT", "ORCA_ENABLE_TLS",
		"ORCA_DETECT_N", "ORCA_DETECT_K", "ORCA_DETECT_NUM_PIVOTS", "ORCA_DETECT_HIDDEN_CANDIDATES",
		"ORCA_CACHE_ENABLED", "ORCA_CACHE_CAPACITY", "ORCA_CACHE_TTL",
		"ORCA_DATASET_PATH", "ORCA_DATASET_FORMAT",
	}
	originalEnv := make(map[string]string)
	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
	}
	defer func() {
		for key, value := range originalEnv {
			if value == "" {
				os.Unsetenv(key)
			} else {
				os.Setenv(key, value)
			}
		}
	}()

	os.Setenv("ORCA_HOST", "127.0.0.1")
	os.Setenv("ORCA_PORT", "8080")
	os.Setenv("ORCA_MAX_CONNECTIONS", "5000")
	os.Setenv("ORCA_REQUEST_TIMEOUT", "60s")
	os.Setenv("ORCA_ENABLE_TLS", "true")

	os.Setenv("ORCA_DETECT_N", "50")
	os.Setenv("ORCA_DETECT_K", "10")
	os.Setenv("ORCA_DETECT_NUM_PIVOTS", "4")
	os.Setenv("ORCA_DETECT_HIDDEN_CANDIDATES", "true")

	os.Setenv("ORCA_CACHE_ENABLED", "false")
	os.Setenv("ORCA_CACHE_CAPACITY", "5000")
	os.Setenv("ORCA_CACHE_TTL", "10m")

	os.Setenv("ORCA_DATASET_PATH", "/var/lib/orca/dataset.txt")
	os.Setenv("ORCA_DATASET_FORMAT", "kddcup99")

	cfg := LoadFromEnv()

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Expected host 127.0.0.1, got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxConnections != 5000 {
		t.Errorf("Expected max connections 5000, got %d", cfg.Server.MaxConnections)
	}
	if cfg.Server.RequestTimeout != 60*time.Second {
		t.Errorf("Expected request timeout 60s, got %v", cfg.Server.RequestTimeout)
	}
	if !cfg.Server.EnableTLS {
		t.Error("Expected TLS enabled")
	}

	if cfg.Detect.N != 50 {
		t.Errorf("Expected N=50, got %d", cfg.Detect.N)
	}
	if cfg.Detect.K != 10 {
		t.Errorf("Expected K=10, got %d", cfg.Detect.K)
	}
	if cfg.Detect.NumPivots != 4 {
		t.Errorf("Expected NumPivots=4, got %d", cfg.Detect.NumPivots)
	}
	if !cfg.Detect.HiddenCandidates {
		t.Error("Expected hidden candidates enabled")
	}

	if cfg.Cache.Enabled {
		t.Error("Expected cache disabled")
	}
	if cfg.Cache.Capacity != 5000 {
		t.Errorf("Expected cache capacity 5000, got %d", cfg.Cache.Capacity)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("Expected cache TTL 10m, got %v", cfg.Cache.TTL)
	}

	if cfg.Dataset.Path != "/var/lib/orca/dataset.txt" {
		t.Errorf("Expected dataset path /var/lib/orca/dataset.txt, got %s", cfg.Dataset.Path)
	}
	if cfg.Dataset.Format != "kddcup99" {
		t.Errorf("Expected dataset format kddcup99, got %s", cfg.Dataset.Format)
	}
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	originalPort := os.Getenv("ORCA_PORT")
	defer func() {
		if originalPort == "" {
			os.Unsetenv("ORCA_PORT")
		} else {
			os.Setenv("ORCA_PORT", originalPort)
		}
	}()

	os.Setenv("ORCA_PORT", "invalid")
	cfg := LoadFromEnv()

	if cfg.Server.Port != 50051 {
		t.Errorf("Expected default port 50051 for invalid value, got %d", cfg.Server.Port)
	}
}

func TestLoadFromEnv_DefaultsWhenNotSet(t *testing.T) {
	envVars := []string{
		"ORCA_HOST", "ORCA_PORT", "ORCA_MAX_CONNECTIONS",
		"ORCA_REQUEST_TIMEOUT", "ORCA_ENABLE_TLS",
		"ORCA_DETECT_N", "ORCA_DETECT_K", "ORCA_DETECT_NUM_PIVOTS", "ORCA_DETECT_HIDDEN_CANDIDATES",
		"ORCA_CACHE_ENABLED", "ORCA_CACHE_CAPACITY", "ORCA_CACHE_TTL",
		"ORCA_DATASET_PATH", "ORCA_DATASET_FORMAT",
	}

	originalEnv := make(map[string]string)
	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
		os.Unsetenv(key)
	}
	defer func() {
		for key, value := range originalEnv {
			if value != "" {
				os.Setenv(key, value)
			}
		}
	}()

	cfg := LoadFromEnv()
	defaults := Default()

	if cfg.Server.Host != defaults.Server.Host {
		t.Errorf("Expected default host, got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != defaults.Server.Port {
		t.Errorf("Expected default port, got %d", cfg.Server.Port)
	}
	if cfg.Detect.NumPivots != defaults.Detect.NumPivots {
		t.Errorf("Expected default NumPivots, got %d", cfg.Detect.NumPivots)
	}
	if cfg.Cache.Enabled != defaults.Cache.Enabled {
		t.Errorf("Expected default cache enabled, got %v", cfg.Cache.Enabled)
	}
	if cfg.Dataset.Path != defaults.Dataset.Path {
		t.Errorf("Expected default dataset path, got %s", cfg.Dataset.Path)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "Valid default config",
			config:  Default(),
			wantErr: false,
		},
		{
			name: "Invalid port (too low)",
			config: &Config{
				Server: ServerConfig{Port: 0},
			},
			wantErr: true,
		},
		{
			name: "Invalid port (too high)",
			config: &Config{
				Server: ServerConfig{Port: 70000},
			},
			wantErr: true,
		},
		{
			name: "Invalid K (too low)",
			config: &Config{
				Server: ServerConfig{Port: 50051, MaxConnections: 1},
				Detect: DetectConfig{N: 1, K: 0, BlockSize: 1, NumPivots: 1},
				Dataset: DatasetConfig{Path: "x"},
			},
			wantErr: true,
		},
		{
			name: "Invalid num pivots",
			config: &Config{
				Server:  ServerConfig{Port: 50051, MaxConnections: 1},
				Detect:  DetectConfig{N: 1, K: 1, BlockSize: 1, NumPivots: 0},
				Dataset: DatasetConfig{Path: "x"},
			},
			wantErr: true,
		},
		{
			name: "Missing dataset path",
			config: &Config{
				Server: ServerConfig{Port: 50051, MaxConnections: 1},
				Detect: DetectConfig{N: 1, K: 1, BlockSize: 1, NumPivots: 1},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestServerConfig_Address(t *testing.T) {
	cfg := ServerConfig{
		Host: "localhost",
		Port: 8080,
	}

	addr := cfg.Address()
	expected := "localhost:8080"

	if addr != expected {
		t.Errorf("Expected address %s, got %s", expected, addr)
	}

	defaultCfg := Default()
	addr = defaultCfg.Server.Address()
	expected = "0.0.0.0:50051"

	if addr != expected {
		t.Errorf("Expected default address %s, got %s", expected, addr)
	}
}
