package config

import "time"

type ServiceConfig struct {
	Name        string
	Environment string
	Version     string
	// ClientURL is the frontend origin; invite join URLs are built on it.
	ClientURL string
}

// StorageConfig holds S3-compatible object storage settings.
type StorageConfig struct {
	Region    string
	Bucket    string
	Endpoint  string
	AccessKey string
	SecretKey string
	// PublicURL, when set, is used as the base for object URLs instead of presigning.
	PublicURL     string
	PresignExpiry time.Duration
	FolderBoard   string
	FolderCard    string
}

// RedisConfig holds Redis settings. An empty Address disables Redis.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	TLS      bool
}
