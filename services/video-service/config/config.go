package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/RigelNana/cinexnema/pkg/logger"
	"github.com/RigelNana/cinexnema/services/video-service/pricing"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Pricing  pricing.Rule   `mapstructure:"pricing"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      logger.Config  `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	GRPCPort        string        `mapstructure:"grpc_port"`
	MetricsPort     string        `mapstructure:"metrics_port"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	TimeZone        string        `mapstructure:"timezone"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
	// PublicBaseURL overrides the endpoint when building public object URLs.
	PublicBaseURL    string        `mapstructure:"public_base_url"`
	VideoBucket      string        `mapstructure:"video_bucket"`
	CoverBucket      string        `mapstructure:"cover_bucket"`
	BannerBucket     string        `mapstructure:"banner_bucket"`
	ThumbnailBucket  string        `mapstructure:"thumbnail_bucket"`
	ScreenshotBucket string        `mapstructure:"screenshot_bucket"`
	UploadExpiry     time.Duration `mapstructure:"upload_expiry"`
	MaxCoverBytes    int64         `mapstructure:"max_cover_bytes"`
}

type AuthConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	AdminEmails []string      `mapstructure:"admin_emails"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type RedisConfig struct {
	Addr       string        `mapstructure:"addr"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	AuthLimit  int           `mapstructure:"auth_limit"`
	AuthWindow time.Duration `mapstructure:"auth_window"`
}

var envBindings = map[string]string{
	"server.addr":                "HTTP_ADDR",
	"server.grpc_port":           "GRPC_PORT",
	"server.metrics_port":        "METRICS_PORT",
	"server.cors_origins":        "CORS_ORIGINS",
	"server.read_timeout":        "HTTP_READ_TIMEOUT",
	"server.write_timeout":       "HTTP_WRITE_TIMEOUT",
	"server.shutdown_timeout":    "SHUTDOWN_TIMEOUT",
	"database.host":              "DB_HOST",
	"database.port":              "DB_PORT",
	"database.user":              "DB_USER",
	"database.password":          "DB_PASSWORD",
	"database.dbname":            "DB_NAME",
	"database.sslmode":           "DB_SSLMODE",
	"database.timezone":          "DB_TIMEZONE",
	"database.max_open_conns":    "DB_MAX_OPEN_CONNS",
	"database.max_idle_conns":    "DB_MAX_IDLE_CONNS",
	"database.conn_max_lifetime": "DB_CONN_MAX_LIFETIME",
	"storage.endpoint":           "MINIO_ENDPOINT",
	"storage.access_key":         "MINIO_ACCESS_KEY",
	"storage.secret_key":         "MINIO_SECRET_KEY",
	"storage.use_ssl":            "MINIO_USE_SSL",
	"storage.region":             "MINIO_REGION",
	"storage.public_base_url":    "STORAGE_PUBLIC_BASE_URL",
	"storage.video_bucket":       "STORAGE_VIDEO_BUCKET",
	"storage.cover_bucket":       "STORAGE_COVER_BUCKET",
	"storage.banner_bucket":      "STORAGE_BANNER_BUCKET",
	"storage.thumbnail_bucket":   "STORAGE_THUMBNAIL_BUCKET",
	"storage.screenshot_bucket":  "STORAGE_SCREENSHOT_BUCKET",
	"storage.upload_expiry":      "STORAGE_UPLOAD_EXPIRY",
	"storage.max_cover_bytes":    "STORAGE_MAX_COVER_BYTES",
	"auth.jwt_secret":            "JWT_SECRET",
	"auth.token_ttl":             "JWT_TTL",
	"auth.admin_emails":          "AUTH_ADMIN_EMAILS",
	"pricing.free_minutes":       "PRICING_FREE_MINUTES",
	"pricing.block_minutes":      "PRICING_BLOCK_MINUTES",
	"pricing.unit_fee":           "PRICING_UNIT_FEE",
	"kafka.brokers":              "KAFKA_BROKERS",
	"kafka.topic":                "KAFKA_TOPIC",
	"redis.addr":                 "REDIS_ADDR",
	"redis.password":             "REDIS_PASSWORD",
	"redis.db":                   "REDIS_DB",
	"redis.auth_limit":           "REDIS_AUTH_LIMIT",
	"redis.auth_window":          "REDIS_AUTH_WINDOW",
	"log.level":                  "LOG_LEVEL",
	"log.format":                 "LOG_FORMAT",
	"log.file":                   "LOG_FILE",
	"log.max_size_mb":            "LOG_MAX_SIZE_MB",
	"log.max_backups":            "LOG_MAX_BACKUPS",
	"log.max_age_days":           "LOG_MAX_AGE_DAYS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.metrics_port", "9090")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("storage.video_bucket", "videos")
	v.SetDefault("storage.cover_bucket", "covers")
	v.SetDefault("storage.banner_bucket", "banners")
	v.SetDefault("storage.thumbnail_bucket", "thumbnails")
	v.SetDefault("storage.screenshot_bucket", "screenshots")
	v.SetDefault("storage.upload_expiry", 2*time.Hour)
	v.SetDefault("storage.max_cover_bytes", 20<<20)

	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("pricing.free_minutes", pricing.FreeMinutes)
	v.SetDefault("pricing.block_minutes", pricing.BlockMinutes)
	v.SetDefault("pricing.unit_fee", pricing.DefaultUnitFee)

	v.SetDefault("kafka.topic", "video.lifecycle")

	v.SetDefault("redis.auth_limit", 20)
	v.SetDefault("redis.auth_window", time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logger.FormatJSON)
}

// LoadConfig reads an optional .env file and binds the environment onto Config.
// Extra env files may be passed; missing files are ignored.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.Server.CORSOrigins = cleanList(c.Server.CORSOrigins, false)
	c.Kafka.Brokers = cleanList(c.Kafka.Brokers, false)
	c.Auth.AdminEmails = cleanList(c.Auth.AdminEmails, true)
}

// Validate reports settings without which the process cannot start.
func (c *Config) Validate() error {
	var missing []string
	if c.Database.Host == "" {
		missing = append(missing, "DB_HOST")
	}
	if c.Database.User == "" {
		missing = append(missing, "DB_USER")
	}
	if c.Database.DBName == "" {
		missing = append(missing, "DB_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.Pricing.UnitFee < 0 {
		return fmt.Errorf("PRICING_UNIT_FEE must not be negative, got %d", c.Pricing.UnitFee)
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode, c.TimeZone)
}

// Configured reports whether object store credentials are present.
func (s StorageConfig) Configured() bool {
	return s.Endpoint != "" && s.AccessKey != "" && s.SecretKey != ""
}

// WithDefaults fills bucket names and limits left empty.
func (s StorageConfig) WithDefaults() StorageConfig {
	def := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	def(&s.VideoBucket, "videos")
	def(&s.CoverBucket, "covers")
	def(&s.BannerBucket, "banners")
	def(&s.ThumbnailBucket, "thumbnails")
	def(&s.ScreenshotBucket, "screenshots")
	if s.UploadExpiry <= 0 {
		s.UploadExpiry = 2 * time.Hour
	}
	if s.MaxCoverBytes <= 0 {
		s.MaxCoverBytes = 20 << 20
	}
	return s
}

// PublicBuckets lists the buckets that allow anonymous reads.
func (s StorageConfig) PublicBuckets() []string {
	return []string{s.CoverBucket, s.BannerBucket, s.ThumbnailBucket, s.ScreenshotBucket}
}

func (a AuthConfig) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range a.AdminEmails {
		if e == email {
			return true
		}
	}
	return false
}

func cleanList(in []string, lower bool) []string {
	out := make([]string, 0, len(in))
	for _, raw := range in {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if lower {
				s = strings.ToLower(s)
			}
			out = append(out, s)
		}
	}
	return out
}
