package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/avichaydahan/brandlight-reports/internal/errors"
)

type AppConfig struct {
	File       string            `json:"-"`
	HTTP       *HTTPConfig       `json:"http,omitempty"`
	Consul     *ConsulConfig     `json:"consul,omitempty"`
	Redis      *RedisConfig      `json:"redis,omitempty"`
	Database   *DatabaseConfig   `json:"database,omitempty"`
	Brandlight *BrandlightConfig `json:"brandlight,omitempty"`
	Storage    *StorageConfig    `json:"storage,omitempty"`
	Browser    *BrowserConfig    `json:"browser,omitempty"`
}

type HTTPConfig struct {
	Addr string `json:"addr"`
}

type ConsulConfig struct {
	Id            string `json:"id"`
	Address       string `json:"address"`
	PublicAddress string `json:"publicAddress"`
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type DatabaseConfig struct {
	Url string `json:"url"`
}

type BrandlightConfig struct {
	BaseURL        string        `json:"baseUrl"`
	PageSize       int           `json:"pageSize"`
	BatchSize      int           `json:"batchSize"`
	RequestTimeout time.Duration `json:"requestTimeout"`
}

type StorageConfig struct {
	Bucket string `json:"bucket"`
}

type BrowserConfig struct {
	Bin           string        `json:"bin"`
	Headless      bool          `json:"headless"`
	RenderTimeout time.Duration `json:"renderTimeout"`
}

func LoadConfig() (*AppConfig, error) {
	bindFlagsAndEnv()

	configFile := getConfigFilePath()
	if configFile != "" {
		if err := loadFromFile(configFile); err != nil {
			return nil, err
		}
	}

	cfg := buildAppConfig(configFile)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func bindFlagsAndEnv() {
	pflag.String("config_file", "", "Configuration file in JSON format")

	// http
	pflag.String("http_addr", ":8080", "HTTP listen address")

	// database
	pflag.String("data_source", "", "Data source")

	// consul (optional; empty address disables registration)
	pflag.String("id", "", "Service id")
	pflag.String("consul", "", "Host to consul")
	pflag.String("public_addr", "", "Public HTTP address with port")

	// redis
	pflag.String("redis_addr", "localhost:6379", "Redis address")
	pflag.String("redis_password", "", "Redis password")
	pflag.Int("redis_db", 0, "Redis DB number")

	// brandlight api
	pflag.String("brandlight_url", "", "Brandlight API base URL")
	pflag.Int("export_page_size", 100, "Items requested per export API call")
	pflag.Int("export_batch_size", 15, "Max concurrent export API calls per batch")
	pflag.Duration("export_request_timeout", 30*time.Second, "Timeout per export API call")

	// storage
	pflag.String("storage_bucket", "", "GCS bucket for report artifacts")

	// browser
	pflag.String("browser_bin", "", "Chromium binary path (empty: auto-detect)")
	pflag.Bool("browser_headless", true, "Run the browser headless")
	pflag.Duration("browser_render_timeout", 60*time.Second, "Timeout per PDF render")

	pflag.Parse()

	_ = viper.BindPFlags(pflag.CommandLine)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit mapping
	_ = viper.BindEnv("http_addr", "HTTP_ADDR")
	_ = viper.BindEnv("id", "CONSUL_ID")
	_ = viper.BindEnv("consul", "CONSUL_HOST")
	_ = viper.BindEnv("public_addr", "PUBLIC_ADDR")
	_ = viper.BindEnv("redis_addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis_password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis_db", "REDIS_DB")
	_ = viper.BindEnv("brandlight_url", "BRANDLIGHT_URL")
	_ = viper.BindEnv("storage_bucket", "STORAGE_BUCKET")
}

func getConfigFilePath() string {
	file := viper.GetString("config_file")
	if file == "" {
		file = os.Getenv("BRANDLIGHT_REPORTS_CONFIG_FILE")
	}
	return file
}

func loadFromFile(path string) error {
	viper.SetConfigFile(path)
	viper.SetConfigType("json")
	if err := viper.ReadInConfig(); err != nil {
		return errors.New(fmt.Sprintf("could not load config file: %s", err.Error()))
	}
	return nil
}

func buildAppConfig(file string) *AppConfig {
	return &AppConfig{
		File:     file,
		HTTP:     &HTTPConfig{Addr: viper.GetString("http_addr")},
		Database: &DatabaseConfig{Url: viper.GetString("data_source")},
		Consul: &ConsulConfig{
			Id:            viper.GetString("id"),
			Address:       viper.GetString("consul"),
			PublicAddress: viper.GetString("public_addr"),
		},
		Redis: &RedisConfig{
			Addr:     viper.GetString("redis_addr"),
			Password: viper.GetString("redis_password"),
			DB:       viper.GetInt("redis_db"),
		},
		Brandlight: &BrandlightConfig{
			BaseURL:        viper.GetString("brandlight_url"),
			PageSize:       viper.GetInt("export_page_size"),
			BatchSize:      viper.GetInt("export_batch_size"),
			RequestTimeout: viper.GetDuration("export_request_timeout"),
		},
		Storage: &StorageConfig{Bucket: viper.GetString("storage_bucket")},
		Browser: &BrowserConfig{
			Bin:           viper.GetString("browser_bin"),
			Headless:      viper.GetBool("browser_headless"),
			RenderTimeout: viper.GetDuration("browser_render_timeout"),
		},
	}
}

func validateConfig(cfg *AppConfig) error {
	if cfg.Database.Url == "" {
		return errors.New("Data source is required")
	}
	if cfg.Brandlight.BaseURL == "" {
		return errors.New("Brandlight API base URL is required")
	}
	if cfg.Storage.Bucket == "" {
		return errors.New("Storage bucket is required")
	}
	if cfg.Redis.Addr == "" {
		return errors.New("Redis address is required")
	}
	if cfg.Brandlight.PageSize <= 0 {
		return errors.New("Export page size must be positive")
	}
	if cfg.Brandlight.BatchSize <= 0 {
		return errors.New("Export batch size must be positive")
	}
	if cfg.Consul.Address != "" && cfg.Consul.Id == "" {
		return errors.New("Service id is required when consul is enabled")
	}
	if cfg.Consul.Address != "" && cfg.Consul.PublicAddress == "" {
		return errors.New("Public HTTP address is required when consul is enabled")
	}
	return nil
}
