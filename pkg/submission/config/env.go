package config

import (
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// envConfig is the cleanenv-tagged view of the environment.
type envConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	// DATABASE_URL selects the metadata store: empty or "memory" for the
	// in-memory repository, a postgres:// URL for Postgres.
	DatabaseURL string `env:"DATABASE_URL" env-default:""`

	// RAW_BUCKET selects the blob store: empty for in-memory, a bucket
	// name for S3.
	RawBucket       string `env:"RAW_BUCKET" env-default:""`
	S3Region        string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	S3Endpoint      string `env:"AWS_S3_ENDPOINT" env-default:""`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-default:""`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-default:""`
	S3PathStyle     bool   `env:"AWS_S3_PATH_STYLE" env-default:"false"`
	S3CreateBucket  bool   `env:"AWS_S3_CREATE_BUCKET" env-default:"false"`

	MaxFileSize       int64  `env:"MAX_FILE_SIZE" env-default:"52428800"`
	AllowedExtensions string `env:"ALLOWED_EXTENSIONS" env-default:""`

	PrivilegedGroups string `env:"PRIVILEGED_GROUPS" env-default:"Faculty,Admin"`
	StudentGroup     string `env:"STUDENT_GROUP" env-default:"Students"`

	MigrationsPath string `env:"MIGRATIONS_PATH" env-default:"file://migrations"`
}

// WithEnv applies environment variable overrides.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return err
		}

		c.Port = env.Port
		c.Environment = env.Environment

		switch {
		case env.DatabaseURL == "" || env.DatabaseURL == "memory":
			c.DatabaseType = "memory"
			c.DatabaseURL = ""
		default:
			c.DatabaseType = "postgres"
			c.DatabaseURL = env.DatabaseURL
		}

		if env.RawBucket != "" {
			c.StorageType = "s3"
			c.S3 = S3Config{
				Bucket:                 env.RawBucket,
				Region:                 env.S3Region,
				Endpoint:               env.S3Endpoint,
				AccessKeyID:            env.AccessKeyID,
				SecretAccessKey:        env.SecretAccessKey,
				UsePathStyle:           env.S3PathStyle,
				CreateBucketIfNotExist: env.S3CreateBucket,
			}
		} else {
			c.StorageType = "memory"
		}

		c.MaxFileSize = env.MaxFileSize
		if env.AllowedExtensions != "" {
			c.AllowedExtensions = splitList(env.AllowedExtensions)
		}
		if env.PrivilegedGroups != "" {
			c.PrivilegedGroups = splitList(env.PrivilegedGroups)
		}
		if env.StudentGroup != "" {
			c.StudentGroup = env.StudentGroup
		}
		c.MigrationsPath = env.MigrationsPath

		return nil
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
