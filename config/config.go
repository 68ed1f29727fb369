package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"algoquest/models"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const minJWTSecretLength = 32

type Config struct {
	Port        string
	BindAddress string

	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	JWTTTL    time.Duration

	ProgressCacheTTL  time.Duration
	ReconcileInterval time.Duration

	LogMode        string
	AllowedOrigins []string

	Archive ArchiveConfig
}

// ArchiveConfig points at an S3 compatible bucket (R2 by default). An empty
// bucket disables snapshot archiving.
type ArchiveConfig struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

// Load reads an optional .env file and then the environment. Secrets have no
// defaults: a missing JWT secret or database password is an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", "8080")
	v.SetDefault("bind_address", "")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "algoquest")
	v.SetDefault("db_name", "algoquest")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_db", 0)
	v.SetDefault("jwt_ttl", "24h")
	v.SetDefault("progress_cache_ttl", "10m")
	v.SetDefault("reconcile_interval", "15m")
	v.SetDefault("log_mode", "development")
	v.SetDefault("allowed_origins", "http://localhost:3000")
	v.SetDefault("archive_region", "auto")

	cfg := &Config{
		Port:              v.GetString("port"),
		BindAddress:       v.GetString("bind_address"),
		DatabaseURL:       v.GetString("database_url"),
		DBHost:            v.GetString("db_host"),
		DBPort:            v.GetString("db_port"),
		DBUser:            v.GetString("db_user"),
		DBPassword:        v.GetString("db_password"),
		DBName:            v.GetString("db_name"),
		DBSSLMode:         v.GetString("db_sslmode"),
		RedisAddr:         v.GetString("redis_addr"),
		RedisPassword:     v.GetString("redis_password"),
		RedisDB:           v.GetInt("redis_db"),
		JWTSecret:         v.GetString("jwt_secret"),
		JWTTTL:            v.GetDuration("jwt_ttl"),
		ProgressCacheTTL:  v.GetDuration("progress_cache_ttl"),
		ReconcileInterval: v.GetDuration("reconcile_interval"),
		LogMode:           v.GetString("log_mode"),
		AllowedOrigins:    splitList(v.GetString("allowed_origins")),
		Archive: ArchiveConfig{
			Bucket:          v.GetString("archive_bucket"),
			Endpoint:        v.GetString("archive_endpoint"),
			Region:          v.GetString("archive_region"),
			AccessKeyID:     v.GetString("archive_access_key_id"),
			SecretAccessKey: v.GetString("archive_secret_access_key"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if len(c.JWTSecret) < minJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", minJWTSecretLength))
	}
	if c.DatabaseURL == "" && c.DBPassword == "" {
		errs = append(errs, errors.New("DATABASE_URL or DB_PASSWORD is required"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.Archive.Enabled() && c.Archive.Endpoint == "" {
		errs = append(errs, errors.New("ARCHIVE_ENDPOINT is required when ARCHIVE_BUCKET is set"))
	}
	return errors.Join(errs...)
}

func (c *Config) ListenAddr() string {
	return c.BindAddress + ":" + c.Port
}

func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.MissionAttempt{},
		&models.MissionScore{},
		&models.UserBadge{},
		&models.MissionProgress{},
	)
}

func InitRedis(cfg *Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}
