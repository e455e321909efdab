package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/submission-intake/pkg/submission"
	"github.com/tendant/submission-intake/pkg/submission/audit"
	repomemory "github.com/tendant/submission-intake/pkg/submission/repo/memory"
	repopg "github.com/tendant/submission-intake/pkg/submission/repo/postgres"
	memorystorage "github.com/tendant/submission-intake/pkg/submission/storage/memory"
	s3storage "github.com/tendant/submission-intake/pkg/submission/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top
// of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:              "8080",
		Environment:       "development",
		DatabaseType:      "memory",
		StorageType:       "memory",
		MaxFileSize:       submission.DefaultMaxSizeBytes,
		AllowedExtensions: nil, // nil means the library defaults
		PrivilegedGroups:  []string{"Faculty", "Admin"},
		StudentGroup:      "Students",
		MigrationsPath:    "file://migrations",
	}
}

// ServerConfig represents server configuration for the submission service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"

	// Blob storage configuration
	StorageType string // "memory", "s3"
	S3          S3Config

	// Intake rules
	MaxFileSize       int64
	AllowedExtensions []string // empty means library defaults

	// Access policy
	PrivilegedGroups []string
	StudentGroup     string

	// Schema migrations source (golang-migrate URL form)
	MigrationsPath string
}

// S3Config carries the blob store backend settings
type S3Config struct {
	Bucket                 string
	Region                 string
	Endpoint               string
	AccessKeyID            string
	SecretAccessKey        string
	UsePathStyle           bool
	CreateBucketIfNotExist bool
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	if c.StorageType != "memory" && c.StorageType != "s3" {
		return errors.New("storage_type must be 'memory' or 's3'")
	}

	if c.StorageType == "s3" && c.S3.Bucket == "" {
		return errors.New("s3 bucket is required when using s3 storage")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("max_file_size must be positive")
	}

	return nil
}

// BuildService creates a Service instance from the server configuration.
// The returned cleanup function releases the database pool and drains the
// async audit queue.
func (c *ServerConfig) BuildService(ctx context.Context, logger *slog.Logger) (submission.Service, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	var repo submission.Repository
	var pool *pgxpool.Pool

	switch c.DatabaseType {
	case "postgres":
		var err error
		pool, err = pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		repo = repopg.NewWithPool(pool)
	default:
		repo = repomemory.New()
	}

	var store submission.BlobStore
	var locationPrefix string

	switch c.StorageType {
	case "s3":
		backend, err := s3storage.New(s3storage.Config{
			Bucket:                 c.S3.Bucket,
			Region:                 c.S3.Region,
			Endpoint:               c.S3.Endpoint,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			UsePathStyle:           c.S3.UsePathStyle,
			CreateBucketIfNotExist: c.S3.CreateBucketIfNotExist,
		})
		if err != nil {
			if pool != nil {
				pool.Close()
			}
			return nil, nil, fmt.Errorf("failed to create s3 backend: %w", err)
		}
		store = backend
		locationPrefix = backend.LocationPrefix()
	default:
		store = memorystorage.New()
		locationPrefix = "memory:/"
	}

	sink := audit.NewAsyncSink(audit.NewRecorder(repo, logger), logger)

	svc, err := submission.New(
		submission.WithRepository(repo),
		submission.WithBlobStore(store),
		submission.WithAuditSink(sink),
		submission.WithValidationConfig(submission.ValidationConfig{
			AllowedExtensions: c.extensionSet(),
			MaxSizeBytes:      c.MaxFileSize,
		}),
		submission.WithAccessPolicy(submission.AccessPolicy{
			PrivilegedGroups: c.PrivilegedGroups,
			StudentGroup:     c.StudentGroup,
		}),
		submission.WithStorageLocation(locationPrefix),
		submission.WithLogger(logger),
	)
	if err != nil {
		sink.Close()
		if pool != nil {
			pool.Close()
		}
		return nil, nil, err
	}

	cleanup := func() {
		sink.Close()
		if pool != nil {
			pool.Close()
		}
	}

	return svc, cleanup, nil
}

func (c *ServerConfig) extensionSet() map[string]struct{} {
	if len(c.AllowedExtensions) == 0 {
		return submission.DefaultAllowedExtensions()
	}
	set := make(map[string]struct{}, len(c.AllowedExtensions))
	for _, ext := range c.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}
