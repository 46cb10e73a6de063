package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	envAPIKey   = "ALEPH_API_KEY"
	envHost     = "ALEPH_HOST"
	envRedisURL = "REDIS_URL"

	defaultHost       = "https://aleph.occrp.org/"
	defaultStagingDir = ""
	defaultReportDir  = "."
)

type AlephConfig struct {
	Host         string `yaml:"host"`
	APIKey       string `yaml:"-"` // Environment only, never from file
	CollectionID string `yaml:"collection_id"`
}

type UploaderConfig struct {
	// Labels selects the archive folders to process, in upload order.
	Labels        []string `yaml:"labels"`
	ExtractImages bool     `yaml:"extract_images"`
	StagingDir    string   `yaml:"staging_dir"` // Empty means a per-run temp dir
	ReportDir     string   `yaml:"report_dir"`
}

type Config struct {
	LogLevel string         `yaml:"log_level"`
	RedisURL string         `yaml:"redis_url"`
	Aleph    AlephConfig    `yaml:"aleph"`
	Uploader UploaderConfig `yaml:"uploader"`

	// FolderCacheSeed pre-seeds the folder cache: collection id -> label -> remote id.
	FolderCacheSeed map[string]map[string]string `yaml:"folder_cache"`
}

func (c *Config) SetDefaults() {
	c.LogLevel = LogLevelInfo
	c.Aleph.Host = defaultHost
	c.Uploader.Labels = []string{"pages", "photos", "attachments"}
	c.Uploader.StagingDir = defaultStagingDir
	c.Uploader.ReportDir = defaultReportDir
}

func Load(fileName string) (*Config, error) {
	cfg := &Config{}
	cfg.SetDefaults()

	if fileName != "" {
		data, err := os.ReadFile(fileName)
		if err != nil {
			return nil, fmt.Errorf("cannot read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot unmarshal config: %w", err)
		}
	}

	// A missing .env is fine, environment may be set by the caller.
	_ = godotenv.Load()

	if key := os.Getenv(envAPIKey); key != "" {
		cfg.Aleph.APIKey = key
	}
	if host := os.Getenv(envHost); host != "" {
		cfg.Aleph.Host = host
	}
	if url := os.Getenv(envRedisURL); url != "" {
		cfg.RedisURL = url
	}

	if !strings.HasSuffix(cfg.Aleph.Host, "/") {
		cfg.Aleph.Host += "/"
	}

	return cfg, nil
}

func MustLoad(fileName string) *Config {
	cfg, err := Load(fileName)
	if err != nil {
		panic(err)
	}

	return cfg
}
