package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks the configuration for the current environment.
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()
	var errs []ValidationError

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"server_port", "is required"})
	}

	switch cfg.DBDriver {
	case "postgres":
		for field, value := range map[string]string{
			"db_host": cfg.DBHost,
			"db_port": cfg.DBPort,
			"db_user": cfg.DBUser,
			"db_name": cfg.DBName,
		} {
			if value == "" {
				errs = append(errs, ValidationError{field, "is required for the postgres driver"})
			}
		}
	case "sqlite":
		if env == Production {
			errs = append(errs, ValidationError{"db_driver", "sqlite is not allowed in production"})
		}
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"sqlite_path", "is required for the sqlite driver"})
		}
	default:
		errs = append(errs, ValidationError{"db_driver", fmt.Sprintf("unknown driver %q", cfg.DBDriver)})
	}

	if cfg.JWTSecret == "" {
		if env == CI {
			errs = append(errs, ValidationError{"jwt_secret", "JWT_SECRET environment variable is required in CI environment"})
		} else {
			errs = append(errs, ValidationError{"jwt_secret", "jwt_secret secret or JWT_SECRET is required"})
		}
	}
	if env == Production && cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
		errs = append(errs, ValidationError{"db_password", "db_password secret is required"})
	}

	switch cfg.MediaBackend {
	case "filesystem":
		if cfg.MediaDir == "" {
			errs = append(errs, ValidationError{"media_dir", "is required for the filesystem backend"})
		}
	case "s3":
		if cfg.S3Bucket == "" {
			errs = append(errs, ValidationError{"s3_bucket_name", "is required for the s3 backend"})
		}
	default:
		errs = append(errs, ValidationError{"media_backend", fmt.Sprintf("unknown backend %q", cfg.MediaBackend)})
	}

	if cfg.PageSize < 1 {
		errs = append(errs, ValidationError{"page_size", "must be at least 1"})
	}
	if cfg.TokenTTL <= 0 {
		errs = append(errs, ValidationError{"token_ttl", "must be positive"})
	}

	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(msgs, "\n"))
	}

	return nil
}
