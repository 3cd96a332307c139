package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path
// when no --config flag is given.
const EnvConfigPath = "TRANSCRIPT_API_CONFIG"

var validate = validator.New()

type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`
	YouTube   YouTubeConfig   `yaml:"youtube" toml:"youtube"`
	Optimizer OptimizerConfig `yaml:"optimizer" toml:"optimizer"`
}

type ServerConfig struct {
	Port                   int    `yaml:"port" toml:"port" validate:"min=1,max=65535"`
	GRPCHealthPort         int    `yaml:"grpc_health_port" toml:"grpc_health_port" validate:"min=0,max=65535"`
	PublicURL              string `yaml:"public_url" toml:"public_url" validate:"omitempty,url"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds" toml:"shutdown_timeout_seconds" validate:"min=1"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" toml:"format" validate:"oneof=auto json text"`
}

// RateLimitConfig holds limiter rules written as "N per unit", e.g.
// "50 per hour". Global rules apply to every route; Transcript rules are
// added on top for the transcript endpoint.
type RateLimitConfig struct {
	Enabled    bool     `yaml:"enabled" toml:"enabled"`
	Global     []string `yaml:"global" toml:"global"`
	Transcript []string `yaml:"transcript" toml:"transcript"`
}

type YouTubeConfig struct {
	BaseURL               string   `yaml:"base_url" toml:"base_url" validate:"required,url"`
	Languages             []string `yaml:"languages" toml:"languages" validate:"min=1,dive,required"`
	RequestTimeoutSeconds int      `yaml:"request_timeout_seconds" toml:"request_timeout_seconds" validate:"min=1"`
}

type OptimizerConfig struct {
	MinOverlapTokens int `yaml:"min_overlap_tokens" toml:"min_overlap_tokens" validate:"min=1"`
}

// Default returns the configuration used when no file or environment
// overrides are present. The rate limits match the public deployment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                   5000,
			ShutdownTimeoutSeconds: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		RateLimit: RateLimitConfig{
			Enabled:    true,
			Global:     []string{"200 per day", "50 per hour"},
			Transcript: []string{"10 per minute"},
		},
		YouTube: YouTubeConfig{
			BaseURL:               "https://www.youtube.com",
			Languages:             []string{"en"},
			RequestTimeoutSeconds: 15,
		},
		Optimizer: OptimizerConfig{
			MinOverlapTokens: 1,
		},
	}
}

// Load builds the configuration from defaults, the optional file at path
// (falling back to $TRANSCRIPT_API_CONFIG), and environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	cfg := Default()
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		err = toml.Unmarshal(data, c)
	default:
		return fmt.Errorf("config %s: unsupported extension %q (want .yaml, .yml or .toml)", path, ext)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("GRPC_HEALTH_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GRPC_HEALTH_PORT: %w", err)
		}
		c.Server.GRPCHealthPort = port
	}
	if v := os.Getenv("PUBLIC_URL"); v != "" {
		c.Server.PublicURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
	if v := os.Getenv("YOUTUBE_LANGUAGES"); v != "" {
		var langs []string
		for _, l := range strings.Split(v, ",") {
			if l = strings.TrimSpace(l); l != "" {
				langs = append(langs, l)
			}
		}
		c.YouTube.Languages = langs
	}
	return nil
}

// Validate checks field constraints, parses the rate-limit rules and
// normalizes the caption language tags in place.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed on %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := ParseRules(c.RateLimit.Global); err != nil {
		return fmt.Errorf("rate_limit.global: %w", err)
	}
	if _, err := ParseRules(c.RateLimit.Transcript); err != nil {
		return fmt.Errorf("rate_limit.transcript: %w", err)
	}

	for i, l := range c.YouTube.Languages {
		// Raw keeps deprecated codes such as "iw" that YouTube still uses.
		tag, err := language.Raw.Parse(strings.TrimSpace(l))
		if err != nil {
			return fmt.Errorf("youtube.languages[%d] %q: %w", i, l, err)
		}
		c.YouTube.Languages[i] = tag.String()
	}
	return nil
}

// Addr is the HTTP listen address.
func (s ServerConfig) Addr() string {
	return ":" + strconv.Itoa(s.Port)
}

func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

func (y YouTubeConfig) RequestTimeout() time.Duration {
	return time.Duration(y.RequestTimeoutSeconds) * time.Second
}
