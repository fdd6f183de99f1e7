package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/wekeepgrowing/board-server/pkg/config"
)

const serviceName = "board"

// Config is the typed service configuration.
type Config struct {
	Service  ServiceConfig
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	JWT      JWTConfig
	Link     LinkConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Cors     CorsConfig
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string
	Format      string
	Output      string
	FilePath    string
	Development bool
}

// JWTConfig holds the upstream auth token settings.
type JWTConfig struct {
	Secret    string
	Issuer    string
	SkipPaths []string
}

// LinkConfig holds invite link settings.
type LinkConfig struct {
	// Secret keys the invite link hash. Rotating it invalidates every link.
	Secret     string
	CodeLength int
	// JoinLimit is the number of join attempts allowed per user and board within JoinWindow.
	JoinLimit  int
	JoinWindow time.Duration
}

// CorsConfig holds CORS settings.
type CorsConfig struct {
	AllowedOrigins []string
}

var defaults = map[string]interface{}{
	"service.name":                "board",
	"service.environment":         "development",
	"service.client_url":          "http://localhost:3000",
	"server.http.host":            "0.0.0.0",
	"server.http.port":            8080,
	"server.http.body_limit":      "10M",
	"server.grpc.host":            "0.0.0.0",
	"server.grpc.port":            9090,
	"database.host":               "localhost",
	"database.port":               5432,
	"database.name":               "board",
	"database.user":               "postgres",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  "30m",
	"database.conn_max_idle_time": "5m",
	"database.slow_threshold":     "200ms",
	"log.level":                   "info",
	"log.format":                  "json",
	"log.output":                  "stdout",
	"jwt.skip_paths":              []string{"/health"},
	"link.code_length":            10,
	"link.join_limit":             10,
	"link.join_window":            "1m",
	"storage.folder_board":        "board",
	"storage.folder_card":         "card",
	"storage.presign_expiry":      "15m",
	"cors.allowed_origins":        []string{"*"},
}

// LoadConfig loads configuration from configs/{APP_ENV}/board.yaml and
// BOARD_* environment variables.
func LoadConfig() (*Config, error) {
	raw, err := pkgconfig.Load(serviceName, defaults)
	if err != nil {
		return nil, err
	}

	cfg := FromSource(raw)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromSource maps raw configuration values into Config.
func FromSource(raw pkgconfig.Config) *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        raw.GetString("service.name"),
			Environment: raw.GetString("service.environment"),
			Version:     raw.GetString("service.version"),
			ClientURL:   raw.GetString("service.client_url"),
		},
		Server: ServerConfig{
			HTTP: HTTPConfig{
				Host:      raw.GetString("server.http.host"),
				Port:      raw.GetInt("server.http.port"),
				BodyLimit: raw.GetString("server.http.body_limit"),
			},
			GRPC: GRPCConfig{
				Host: raw.GetString("server.grpc.host"),
				Port: raw.GetInt("server.grpc.port"),
			},
		},
		Database: DatabaseConfig{
			Host:            raw.GetString("database.host"),
			Port:            raw.GetInt("database.port"),
			Name:            raw.GetString("database.name"),
			User:            raw.GetString("database.user"),
			Password:        raw.GetString("database.password"),
			SSLMode:         raw.GetString("database.sslmode"),
			MaxOpenConns:    raw.GetInt("database.max_open_conns"),
			MaxIdleConns:    raw.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: raw.GetDuration("database.conn_max_lifetime"),
			ConnMaxIdleTime: raw.GetDuration("database.conn_max_idle_time"),
			SlowThreshold:   raw.GetDuration("database.slow_threshold"),
		},
		Log: LogConfig{
			Level:       raw.GetString("log.level"),
			Format:      raw.GetString("log.format"),
			Output:      raw.GetString("log.output"),
			FilePath:    raw.GetString("log.file_path"),
			Development: raw.GetBool("log.development"),
		},
		JWT: JWTConfig{
			Secret:    raw.GetString("jwt.secret"),
			Issuer:    raw.GetString("jwt.issuer"),
			SkipPaths: raw.GetStringSlice("jwt.skip_paths"),
		},
		Link: LinkConfig{
			Secret:     raw.GetString("link.secret"),
			CodeLength: raw.GetInt("link.code_length"),
			JoinLimit:  raw.GetInt("link.join_limit"),
			JoinWindow: raw.GetDuration("link.join_window"),
		},
		Storage: StorageConfig{
			Region:        raw.GetString("storage.region"),
			Bucket:        raw.GetString("storage.bucket"),
			Endpoint:      raw.GetString("storage.endpoint"),
			AccessKey:     raw.GetString("storage.access_key"),
			SecretKey:     raw.GetString("storage.secret_key"),
			PublicURL:     raw.GetString("storage.public_url"),
			PresignExpiry: raw.GetDuration("storage.presign_expiry"),
			FolderBoard:   raw.GetString("storage.folder_board"),
			FolderCard:    raw.GetString("storage.folder_card"),
		},
		Redis: RedisConfig{
			Address:  raw.GetString("redis.address"),
			Password: raw.GetString("redis.password"),
			DB:       raw.GetInt("redis.db"),
			TLS:      raw.GetBool("redis.tls"),
		},
		Cors: CorsConfig{
			AllowedOrigins: raw.GetStringSlice("cors.allowed_origins"),
		},
	}
}

// Validate checks settings the service cannot start without.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	if len(c.Link.Secret) < 16 {
		return fmt.Errorf("link.secret must be at least 16 bytes")
	}
	if c.Link.CodeLength < 6 {
		return fmt.Errorf("link.code_length must be at least 6")
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}
	return nil
}
