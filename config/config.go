package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Supabase  SupabaseConfig
	Storage   StorageConfig
	Geocoding GeocodingConfig
	Import    ImportConfig
	Scheduler SchedulerConfig
	DBPath    string
	LogLevel  string
	Markets   map[string]*MarketConfig
}

type SupabaseConfig struct {
	URL        string
	ServiceKey string
	// DBURL, when set, switches the property store to a direct
	// Postgres connection instead of the REST API.
	DBURL string
}

type StorageConfig struct {
	Bucket string
	// S3-compatible storage takes over uploads when configured;
	// otherwise images go through the Supabase Storage API.
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

type GeocodingConfig struct {
	Endpoint string
	APIKey   string
}

type ImportConfig struct {
	// SystemLandlordID owns scraped, unclaimed listings until a
	// landlord claims them through the web app.
	SystemLandlordID string
	AuditLogPath     string
}

type SchedulerConfig struct {
	Interval time.Duration
	Cron     string
}

type MarketConfig struct {
	Slug     string `yaml:"slug"`
	Name     string `yaml:"name"`
	FeedFile string `yaml:"feed_file"`
}

// marketSlugPattern matches city-state slugs like "san-antonio-tx".
var marketSlugPattern = regexp.MustCompile(`^[a-z-]+-[a-z]{2}$`)

// ValidMarketSlug reports whether a source-market slug is well formed.
func ValidMarketSlug(slug string) bool {
	return marketSlugPattern.MatchString(slug)
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Supabase: SupabaseConfig{
			URL:        os.Getenv("SUPABASE_URL"),
			ServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
			DBURL:      os.Getenv("SUPABASE_DB_URL"),
		},
		Storage: StorageConfig{
			Bucket:            getEnv("STORAGE_BUCKET", "property-images"),
			S3Region:          os.Getenv("S3_REGION"),
			S3Endpoint:        os.Getenv("S3_ENDPOINT"),
			S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			S3SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
		Geocoding: GeocodingConfig{
			Endpoint: os.Getenv("GEOCODING_ENDPOINT"),
			APIKey:   os.Getenv("GEOCODING_API_KEY"),
		},
		Import: ImportConfig{
			SystemLandlordID: os.Getenv("SYSTEM_LANDLORD_ID"),
			AuditLogPath:     getEnv("SYNC_AUDIT_LOG", "sync-audit.jsonl"),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("SYNC_CRON"),
		},
		DBPath:   getEnv("DB_PATH", "ingest.db"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Markets:  make(map[string]*MarketConfig),
	}

	if interval := os.Getenv("SYNC_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	if err := cfg.loadMarketConfigs(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration required before any record is
// touched. Missing store credentials abort the whole run.
func (c *Config) Validate() error {
	if c.Supabase.DBURL != "" {
		return nil
	}
	if c.Supabase.URL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.Supabase.ServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}
	return nil
}

func (c *Config) loadMarketConfigs() error {
	configDir := "config/markets"
	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(configDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var market MarketConfig
		if err := yaml.Unmarshal(data, &market); err != nil {
			return err
		}
		if !ValidMarketSlug(market.Slug) {
			return fmt.Errorf("invalid market slug %q in %s", market.Slug, path)
		}

		c.Markets[market.Slug] = &market
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

