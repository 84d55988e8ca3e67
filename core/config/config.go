package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"appointment-scheduler/core/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv   string
	LogLevel string
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Queue    QueueConfig
	Upload   UploadConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type CacheConfig struct {
	TokenTTL         time.Duration
	FailureThreshold int
	Cooldown         time.Duration
}

type JWTConfig struct {
	Secret    string
	AccessTTL time.Duration
}

type StorageConfig struct {
	Driver          string // s3 or local
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	LocalDir        string
}

type QueueConfig struct {
	Concurrency int
	Queue       string
}

type UploadConfig struct {
	MaxSizeBytes int64
	StuckAfter   time.Duration
	SweepCron    string
}

var (
	cfg  *Config
	once sync.Once
	mu   sync.RWMutex
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 7070)
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "appointments")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_ENABLED", true)

	v.SetDefault("CACHE_TOKEN_TTL", "1h")
	v.SetDefault("CACHE_FAILURE_THRESHOLD", 3)
	v.SetDefault("CACHE_COOLDOWN", "30s")

	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("JWT_ACCESS_TTL", "12h")

	v.SetDefault("STORAGE_DRIVER", "local")
	v.SetDefault("STORAGE_BUCKET", "bulk-uploads")
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_ENDPOINT", "")
	v.SetDefault("STORAGE_ACCESS_KEY_ID", "")
	v.SetDefault("STORAGE_SECRET_ACCESS_KEY", "")
	v.SetDefault("STORAGE_USE_PATH_STYLE", false)
	v.SetDefault("STORAGE_LOCAL_DIR", "./uploads")

	v.SetDefault("QUEUE_CONCURRENCY", 5)
	v.SetDefault("QUEUE_NAME", "default")

	v.SetDefault("UPLOAD_MAX_SIZE_BYTES", 10*1024*1024)
	v.SetDefault("UPLOAD_STUCK_AFTER", "30m")
	v.SetDefault("UPLOAD_SWEEP_CRON", "@every 5m")
}

// Load reads .env (if present) and the environment into a Config without touching the singleton.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("Config:Load:NoDotEnv", "error", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	c := &Config{
		AppEnv:   v.GetString("APP_ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),
		Server: ServerConfig{
			Host:            v.GetString("SERVER_HOST"),
			Port:            v.GetInt("SERVER_PORT"),
			AllowedOrigins:  splitList(v.GetString("ALLOWED_ORIGINS")),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetInt("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			DBName:      v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			Enabled:  v.GetBool("REDIS_ENABLED"),
		},
		Cache: CacheConfig{
			TokenTTL:         v.GetDuration("CACHE_TOKEN_TTL"),
			FailureThreshold: v.GetInt("CACHE_FAILURE_THRESHOLD"),
			Cooldown:         v.GetDuration("CACHE_COOLDOWN"),
		},
		JWT: JWTConfig{
			Secret:    v.GetString("JWT_SECRET"),
			AccessTTL: v.GetDuration("JWT_ACCESS_TTL"),
		},
		Storage: StorageConfig{
			Driver:          strings.ToLower(v.GetString("STORAGE_DRIVER")),
			Bucket:          v.GetString("STORAGE_BUCKET"),
			Region:          v.GetString("STORAGE_REGION"),
			Endpoint:        v.GetString("STORAGE_ENDPOINT"),
			AccessKeyID:     v.GetString("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("STORAGE_SECRET_ACCESS_KEY"),
			UsePathStyle:    v.GetBool("STORAGE_USE_PATH_STYLE"),
			LocalDir:        v.GetString("STORAGE_LOCAL_DIR"),
		},
		Queue: QueueConfig{
			Concurrency: v.GetInt("QUEUE_CONCURRENCY"),
			Queue:       v.GetString("QUEUE_NAME"),
		},
		Upload: UploadConfig{
			MaxSizeBytes: v.GetInt64("UPLOAD_MAX_SIZE_BYTES"),
			StuckAfter:   v.GetDuration("UPLOAD_STUCK_AFTER"),
			SweepCron:    v.GetString("UPLOAD_SWEEP_CRON"),
		},
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.AppEnv == "production" && c.JWT.Secret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be positive")
	}
	if c.Storage.Driver != "s3" && c.Storage.Driver != "local" {
		return fmt.Errorf("STORAGE_DRIVER must be s3 or local, got %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "s3" && c.Storage.Bucket == "" {
		return fmt.Errorf("STORAGE_BUCKET is required for the s3 driver")
	}
	if c.Queue.Concurrency <= 0 {
		c.Queue.Concurrency = 1
	}
	return nil
}

// Init loads the configuration once and stores it as the process-wide instance.
func Init() (*Config, error) {
	var err error
	once.Do(func() {
		var loaded *Config
		loaded, err = Load()
		if err != nil {
			return
		}
		Set(loaded)
	})
	if err != nil {
		return nil, err
	}
	return Get(), nil
}

// Set overrides the process-wide instance. Used by tests.
func Set(c *Config) {
	mu.Lock()
	defer mu.Unlock()
	cfg = c
}

func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
