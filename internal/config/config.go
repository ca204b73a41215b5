package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/deepscan/internal/logging"
)

// Providers understood by the ai section.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Storage drivers understood by the storage section.
const (
	DriverNone     = "none"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Config struct {
	Server ServerConfig   `yaml:"server"`
	AI     AIConfig       `yaml:"ai"`
	Log    logging.Config `yaml:"log"`

	Storage StorageConfig `yaml:"storage"`
	Minio   MinioConfig   `yaml:"minio"`
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	CORSOrigins  []string      `yaml:"corsOrigins"`
	// APIKeys maps a tenant to its API key. Empty disables auth.
	APIKeys map[string]string `yaml:"apiKeys"`
	// RateLimit is requests per minute per client; 0 disables the limiter.
	RateLimit   int `yaml:"rateLimit"`
	MaxCodeSize int `yaml:"maxCodeSize"`
}

type AIConfig struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseURL"`
	MaxTokens   int           `yaml:"maxTokens"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	// PromptsDir optionally overrides instruction templates with <name>.tmpl files.
	PromptsDir string `yaml:"promptsDir"`
}

type StorageConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslMode"`
}

type MinioConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"accessKey"`
	SecretKey  string `yaml:"secretKey"`
	BucketName string `yaml:"bucketName"`
	Region     string `yaml:"region"`
	UseSSL     bool   `yaml:"useSSL"`
}

// Default returns a config that runs the API on :8080 against OpenAI with no
// archive.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 5 * time.Minute,
			CORSOrigins:  []string{"*"},
			RateLimit:    60,
			MaxCodeSize:  200 * 1024,
		},
		AI: AIConfig{
			Provider:  ProviderOpenAI,
			MaxTokens: 4096,
			Timeout:   2 * time.Minute,
		},
		Log:     logging.Config{Level: "info", Format: "json"},
		Storage: StorageConfig{Driver: DriverNone},
	}
}

// Load reads the yaml file at path over the defaults. A missing file is not
// an error. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("DEEPSCAN_PROVIDER"); v != "" {
		c.AI.Provider = v
	}
	if v := getenv("DEEPSCAN_MODEL"); v != "" {
		c.AI.Model = v
	}
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	if c.AI.APIKey == "" {
		switch c.AI.Provider {
		case ProviderOpenAI:
			c.AI.APIKey = getenv("OPENAI_API_KEY")
		case ProviderGemini:
			c.AI.APIKey = getenv("GEMINI_API_KEY")
			if c.AI.APIKey == "" {
				c.AI.APIKey = getenv("GOOGLE_API_KEY")
			}
		}
	}
	if c.AI.Provider == ProviderOllama && c.AI.BaseURL == "" {
		c.AI.BaseURL = getenv("OLLAMA_HOST")
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverNone
	}
}

// Validate rejects unknown providers and drivers.
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case ProviderOpenAI, ProviderGemini, ProviderOllama:
	default:
		return fmt.Errorf("config: unknown ai provider %q", c.AI.Provider)
	}
	switch c.Storage.Driver {
	case DriverNone, DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.AI.Timeout < 0 {
		return errors.New("config: ai timeout must not be negative")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	return nil
}

// pipelineStages is the number of sequential generation rounds in one
// analysis: the concurrent first stage, then the report.
const pipelineStages = 2

// HTTPWriteTimeout is the server write timeout, raised when needed so a
// response is never cut while both pipeline stages may still be running.
func (c *Config) HTTPWriteTimeout() time.Duration {
	wt := c.Server.WriteTimeout
	if wt <= 0 || c.AI.Timeout <= 0 {
		return wt
	}
	if need := pipelineStages*c.AI.Timeout + 30*time.Second; wt < need {
		return need
	}
	return wt
}

// MySQLDSN builds the go-sql-driver DSN.
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Storage.User,
		c.Storage.Password,
		c.Storage.Host,
		c.Storage.Port,
		c.Storage.Name,
	)
}

// PostgresDSN builds a lib/pq connection string.
func (c *Config) PostgresDSN() string {
	ssl := c.Storage.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Storage.Host,
		c.Storage.Port,
		c.Storage.User,
		c.Storage.Password,
		c.Storage.Name,
		ssl,
	)
}
