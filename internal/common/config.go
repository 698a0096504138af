package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/edital-planner/constants"
)

// ServerConfig holds the profile API daemon configuration
type ServerConfig struct {
	Env      string `envconfig:"APP_ENV" default:"prod"`
	Database DatabaseConfig
	Redis    RedisConfig
	HTTP     HTTPConfig
	GRPC     GRPCConfig
	Auth     AuthConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string        `envconfig:"DB_URL"`
	MaxConns         int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns         int32         `envconfig:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime  time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	MaxConnIdleTime  time.Duration `envconfig:"DB_MAX_CONN_IDLE_TIME" default:"5m"`
	DialTimeout      time.Duration `envconfig:"DB_DIAL_TIMEOUT" default:"3s"`
	StatementTimeout time.Duration `envconfig:"DB_STATEMENT_TIMEOUT" default:"0s"`
}

// RedisConfig holds session cache configuration
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// HTTPConfig holds REST and metrics listener configuration
type HTTPConfig struct {
	Addr           string        `envconfig:"HTTP_ADDR" default:":3001"`
	MetricsAddr    string        `envconfig:"METRICS_ADDR" default:":9090"`
	RequestTimeout time.Duration `envconfig:"HTTP_REQUEST_TIMEOUT" default:"15s"`
}

// GRPCConfig holds the health/reflection listener configuration
type GRPCConfig struct {
	Addr string `envconfig:"GRPC_ADDR" default:":3002"`
}

// AuthConfig holds token and password hashing configuration
type AuthConfig struct {
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	BcryptCost int           `envconfig:"BCRYPT_COST" default:"10"`
}

// LoadServerConfig loads the daemon configuration from environment variables.
// A .env file in the working directory is read first when present; variables
// already set in the environment win.
func LoadServerConfig() (*ServerConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, NewAppError(CodeConfig, "load .env", err)
	}
	var cfg ServerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, NewAppError(CodeConfig, "load server config", err)
	}
	return &cfg, nil
}

// Validate validates the loaded configuration
func (c *ServerConfig) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError(CodeConfig, "DB_URL is required", ErrUserInputInvalid)
	}
	if c.HTTP.Addr == "" {
		return NewAppError(CodeConfig, "HTTP_ADDR is required", ErrUserInputInvalid)
	}
	if c.Auth.SessionTTL <= 0 {
		return NewAppError(CodeConfig, "SESSION_TTL must be positive", ErrUserInputInvalid)
	}
	return nil
}

// Write policies for plan mutations
const (
	WriteThrough = "write-through"
	Optimistic   = "optimistic"
)

// ClientConfig holds the CLI configuration
type ClientConfig struct {
	Env         string `envconfig:"APP_ENV" yaml:"env" default:"prod"`
	APIURL      string `envconfig:"EDITAL_API_URL" yaml:"api_url" default:"http://localhost:3001/api"`
	StateDB     string `envconfig:"EDITAL_STATE_DB" yaml:"state_db"`
	WritePolicy string `envconfig:"EDITAL_WRITE_POLICY" yaml:"write_policy" default:"write-through"`
	LLM         LLMConfig `yaml:"llm"`
}

// LLMConfig holds generative model configuration
type LLMConfig struct {
	Provider     string        `envconfig:"EDITAL_PROVIDER" yaml:"provider" default:"gemini"`
	Model        string        `envconfig:"EDITAL_MODEL" yaml:"model"`
	GeminiAPIKey string        `envconfig:"GEMINI_API_KEY" yaml:"gemini_api_key"`
	OpenAIAPIKey string        `envconfig:"OPENAI_API_KEY" yaml:"openai_api_key"`
	OpenAIURL    string        `envconfig:"OPENAI_BASE_URL" yaml:"openai_base_url"`
	JSONMode     bool          `envconfig:"EDITAL_JSON_MODE" yaml:"json_mode"`
	Temperature  float32       `envconfig:"EDITAL_TEMPERATURE" yaml:"temperature" default:"0"`
	Timeout      time.Duration `envconfig:"EDITAL_LLM_TIMEOUT" yaml:"timeout" default:"0s"`
}

// DefaultClientConfigPath returns $XDG_CONFIG_HOME/edital/config.yaml.
func DefaultClientConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "edital", "config.yaml")
}

// DefaultStateDBPath returns the local state database location.
func DefaultStateDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "edital-state.db"
	}
	return filepath.Join(dir, "edital", "state.db")
}

// LoadClientConfig reads the optional YAML file at path and then applies
// environment overrides. A missing file is not an error.
func LoadClientConfig(path string) (*ClientConfig, error) {
	var cfg ClientConfig
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, NewAppError(CodeConfig, fmt.Sprintf("parse %s", path), err)
			}
		case os.IsNotExist(err):
		default:
			return nil, NewAppError(CodeConfig, fmt.Sprintf("read %s", path), err)
		}
	}
	fileCfg := cfg
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, NewAppError(CodeConfig, "load client config", err)
	}
	cfg.overlay(fileCfg)
	if cfg.StateDB == "" {
		cfg.StateDB = DefaultStateDBPath()
	}
	return &cfg, nil
}

// overlay restores file values that envconfig replaced with defaults when the
// corresponding variable was not set.
func (c *ClientConfig) overlay(file ClientConfig) {
	keep := func(dst *string, key, fromFile string) {
		if _, set := os.LookupEnv(key); !set && fromFile != "" {
			*dst = fromFile
		}
	}
	keep(&c.Env, "APP_ENV", file.Env)
	keep(&c.APIURL, "EDITAL_API_URL", file.APIURL)
	keep(&c.WritePolicy, "EDITAL_WRITE_POLICY", file.WritePolicy)
	keep(&c.LLM.Provider, "EDITAL_PROVIDER", file.LLM.Provider)
	if _, set := os.LookupEnv("EDITAL_TEMPERATURE"); !set && file.LLM.Temperature != 0 {
		c.LLM.Temperature = file.LLM.Temperature
	}
	if _, set := os.LookupEnv("EDITAL_LLM_TIMEOUT"); !set && file.LLM.Timeout != 0 {
		c.LLM.Timeout = file.LLM.Timeout
	}
}

// Validate validates the loaded configuration
func (c *ClientConfig) Validate() error {
	switch c.WritePolicy {
	case WriteThrough, Optimistic:
	default:
		return NewAppError(CodeConfig, "EDITAL_WRITE_POLICY must be write-through or optimistic", ErrUserInputInvalid)
	}
	if _, ok := constants.CanonicalProvider(c.LLM.Provider); !ok {
		return NewAppError(CodeConfig, "EDITAL_PROVIDER must be gemini or openai", ErrUserInputInvalid)
	}
	if c.APIURL == "" {
		return NewAppError(CodeConfig, "EDITAL_API_URL is required", ErrUserInputInvalid)
	}
	return nil
}

// ValidateLLM checks that the selected provider has credentials.
func (c *ClientConfig) ValidateLLM() error {
	switch p, _ := constants.CanonicalProvider(c.LLM.Provider); p {
	case constants.ProviderOpenAI:
		if c.LLM.OpenAIAPIKey == "" {
			return NewAppError(CodeConfig, "OPENAI_API_KEY is required", ErrUserInputInvalid)
		}
	default:
		if c.LLM.GeminiAPIKey == "" {
			return NewAppError(CodeConfig, "GEMINI_API_KEY is required", ErrUserInputInvalid)
		}
	}
	return nil
}
