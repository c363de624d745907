package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/fastandfab/sellerservice/internal/logger"
)

const (
	defaultListenAddr    = "localhost:5000"
	defaultLoggingLevel  = logger.LevelInfo
	defaultEnvironment   = logger.EnvProduction
	defaultStorageBucket = "seller-images"
	defaultSweepInterval = time.Hour
)

var defaultCORSOrigins = []string{"http://localhost:3000", "https://www.fastandfab.in"}

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the seller service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secrets to sign access and refresh tokens
	// Refresh secret falls back to access secret if not set
	AccessSecret  string
	RefreshSecret string

	// Environment: dev or prod
	Environment string

	// Redis for public product cache. Cache is disabled if empty
	RedisURL string

	// S3 compatible storage for images
	// Images are kept in process memory if endpoint is empty (development only)
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageUseSSL    bool
	StoragePublicURL string

	// Origins allowed to call the API from browser
	CORSOrigins []string

	// How often expired refresh tokens are deleted
	SweepInterval time.Duration
}

func NewConfig() *Config {
	return &Config{
		LogLevel:      defaultLoggingLevel,
		ListenAddr:    defaultListenAddr,
		Environment:   defaultEnvironment,
		StorageBucket: defaultStorageBucket,
		CORSOrigins:   slices.Clone(defaultCORSOrigins),
		SweepInterval: defaultSweepInterval,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setBool := func(o *bool) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			b, err := strconv.ParseBool(value)
			if err != nil {
				return err
			}
			*o = b
			return nil
		}
	}
	setList := func(o *[]string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = splitList(value)
			}
			return nil
		}
	}
	setDuration := func(o *time.Duration) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			*o = d
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":          setString(&c.ListenAddr),
		"DATABASE_URI":         setString(&c.DatabaseDSN),
		"ACCESS_TOKEN_SECRET":  setString(&c.AccessSecret),
		"REFRESH_TOKEN_SECRET": setString(&c.RefreshSecret),
		"LOG_LEVEL":            setString(&c.LogLevel),
		"ENVIRONMENT":          setString(&c.Environment),
		"REDIS_URL":            setString(&c.RedisURL),
		"STORAGE_ENDPOINT":     setString(&c.StorageEndpoint),
		"STORAGE_ACCESS_KEY":   setString(&c.StorageAccessKey),
		"STORAGE_SECRET_KEY":   setString(&c.StorageSecretKey),
		"STORAGE_BUCKET":       setString(&c.StorageBucket),
		"STORAGE_USE_SSL":      setBool(&c.StorageUseSSL),
		"STORAGE_PUBLIC_URL":   setString(&c.StoragePublicURL),
		"CORS_ORIGINS":         setList(&c.CORSOrigins),
		"TOKEN_SWEEP_INTERVAL": setDuration(&c.SweepInterval),
	}

	var errs []error
	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("sellerservice", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.AccessSecret, "access-secret", "s", c.AccessSecret, "Access token signing secret")
	fs.StringVar(&c.RefreshSecret, "refresh-secret", c.RefreshSecret, "Refresh token signing secret")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVar(&c.RedisURL, "redis", c.RedisURL, "Redis URL for product cache")
	fs.StringVar(&c.StorageEndpoint, "storage-endpoint", c.StorageEndpoint, "S3 compatible storage endpoint")
	fs.StringVar(&c.StorageAccessKey, "storage-access-key", c.StorageAccessKey, "Storage access key")
	fs.StringVar(&c.StorageSecretKey, "storage-secret-key", c.StorageSecretKey, "Storage secret key")
	fs.StringVar(&c.StorageBucket, "storage-bucket", c.StorageBucket, "Storage bucket for images")
	fs.BoolVar(&c.StorageUseSSL, "storage-ssl", c.StorageUseSSL, "Use TLS to connect to storage")
	fs.StringVar(&c.StoragePublicURL, "storage-public-url", c.StoragePublicURL, "Base URL of stored images")
	fs.StringSliceVar(&c.CORSOrigins, "cors-origins", c.CORSOrigins, "Allowed CORS origins")
	fs.DurationVar(&c.SweepInterval, "token-sweep-interval", c.SweepInterval, "Interval of expired refresh tokens cleanup")

	return fs.Parse(args)
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return res
}
