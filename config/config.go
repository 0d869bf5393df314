package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"leadpipe/geo"
)

// FeatureFlags gate which read/write paths the API and workers take during
// the legacy-to-vNext migration window. They are loaded once and passed
// explicitly; nothing reads them from the environment after startup.
type FeatureFlags struct {
	UseLegacySchema bool
	ScoringEnabled  bool
	Debug           bool
}

type Config struct {
	DatabaseURL string
	OpsDBPath   string
	LogLevel    string
	LogJSON     bool
	LogPath     string

	Flags FeatureFlags

	Region    RegionConfig
	Scheduler SchedulerConfig
	API       APIConfig
	SkipTrace SkipTraceConfig
	OpenAI    OpenAIConfig
	CRM       CRMConfig
	Archive   ArchiveConfig
	Apify     ApifyConfig

	Sources map[string]*SourceConfig
}

// RegionConfig pins the pipeline's target region and the fixed hubs used for
// proximity scoring.
type RegionConfig struct {
	State           string
	Hubs            []geo.Hub
	DriveTimeCutoff float64 // minutes
}

type SchedulerConfig struct {
	Cron     string
	Interval time.Duration
}

type APIConfig struct {
	Port         string
	AllowOrigins []string
}

type SkipTraceConfig struct {
	BaseURL string
	APIKey  string
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type CRMConfig struct {
	BaseURL    string
	APIKey     string
	LocationID string
}

// ArchiveConfig configures optional S3-compatible archival of raw scrape
// payloads.
type ArchiveConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

type ApifyConfig struct {
	APIKey string
}

// SourceConfig describes one scrape source, loaded from config/sources/*.yaml.
type SourceConfig struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Handler     string            `yaml:"handler"` // apify | html
	County      string            `yaml:"county"`
	RateLimitMS int               `yaml:"rate_limit_ms"`
	Endpoints   map[string]string `yaml:"endpoints"`
	ApifyActor  string            `yaml:"apify_actor"`
	MaxListings int               `yaml:"max_listings"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		OpsDBPath:   getEnv("OPS_DB_PATH", "leadpipe.db"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogJSON:     os.Getenv("LOG_JSON") == "true",
		LogPath:     getEnv("LOG_PATH", "leadpipe.log"),
		Flags: FeatureFlags{
			UseLegacySchema: os.Getenv("USE_LEGACY_SCHEMA") == "true",
			ScoringEnabled:  getEnv("SCORING_ENABLED", "true") == "true",
			Debug:           os.Getenv("DEBUG") == "true",
		},
		Region: RegionConfig{
			State: getEnv("TARGET_STATE", "TN"),
			Hubs: []geo.Hub{
				{ID: "nashville", Name: "Nashville", Lat: getEnvFloat("HUB_NASHVILLE_LAT", 36.1627), Lon: getEnvFloat("HUB_NASHVILLE_LON", -86.7816)},
				{ID: "mt_juliet", Name: "Mt. Juliet", Lat: getEnvFloat("HUB_MT_JULIET_LAT", 36.2001), Lon: getEnvFloat("HUB_MT_JULIET_LON", -86.5186)},
			},
			DriveTimeCutoff: getEnvFloat("DRIVE_TIME_CUTOFF_MIN", 30),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("SCRAPE_CRON"),
		},
		API: APIConfig{
			Port:         getEnv("API_PORT", "8080"),
			AllowOrigins: []string{getEnv("CORS_ORIGIN", "*")},
		},
		SkipTrace: SkipTraceConfig{
			BaseURL: getEnv("SKIPTRACE_BASE_URL", "https://api.skipengine.com/v1"),
			APIKey:  os.Getenv("SKIPTRACE_API_KEY"),
		},
		OpenAI: OpenAIConfig{
			APIKey: os.Getenv("OPENAI_API_KEY"),
			Model:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		CRM: CRMConfig{
			BaseURL:    getEnv("GHL_BASE_URL", "https://services.leadconnectorhq.com"),
			APIKey:     os.Getenv("GHL_API_KEY"),
			LocationID: os.Getenv("GHL_LOCATION_ID"),
		},
		Archive: ArchiveConfig{
			Bucket:          os.Getenv("ARCHIVE_BUCKET"),
			Region:          getEnv("ARCHIVE_REGION", "us-east-1"),
			Endpoint:        os.Getenv("ARCHIVE_ENDPOINT"),
			AccessKeyID:     os.Getenv("ARCHIVE_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("ARCHIVE_SECRET_ACCESS_KEY"),
		},
		Apify: ApifyConfig{
			APIKey: os.Getenv("APIFY_API_KEY"),
		},
		Sources: make(map[string]*SourceConfig),
	}

	if interval := os.Getenv("SCRAPE_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid SCRAPE_INTERVAL %q: %w", interval, err)
		}
		cfg.Scheduler.Interval = d
	}

	if err := cfg.loadSourceConfigs(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadSourceConfigs() error {
	configDir := getEnv("SOURCES_DIR", "config/sources")
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

		var src SourceConfig
		if err := yaml.Unmarshal(data, &src); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if src.ID == "" {
			return fmt.Errorf("source config %s has no id", path)
		}

		c.Sources[src.ID] = &src
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
