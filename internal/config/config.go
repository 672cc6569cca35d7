// Package config loads resumebot settings from defaults, a YAML file, a
// .env file, and RESUMEBOT_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/resumebot/internal/llm"
	"github.com/abhisek/resumebot/internal/logging"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "RESUMEBOT"

// Backend names accepted by analysis.backend.
const (
	BackendHTTP  = "http"
	BackendLocal = "local"
	BackendLLM   = "llm"
)

// Config holds all configuration options for resumebot.
type Config struct {
	Analysis AnalysisConfig `mapstructure:"analysis"`
	DB       string         `mapstructure:"db"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Server   ServerConfig   `mapstructure:"server"`
	LLM      LLMConfig      `mapstructure:"llm"`
}

// AnalysisConfig selects the collaborator behind the three remote operations.
type AnalysisConfig struct {
	// Backend is "http", "local", or "llm".
	Backend string        `mapstructure:"backend"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// TracingConfig enables span export. An empty File disables tracing.
type TracingConfig struct {
	File string `mapstructure:"file"`
}

// ServerConfig configures `resumebot serve`.
type ServerConfig struct {
	Addr     string        `mapstructure:"addr"`
	Engine   string        `mapstructure:"engine"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	// Catalog is an optional YAML skills catalog replacing the built-in one.
	Catalog string `mapstructure:"catalog"`
}

type LLMConfig struct {
	Provider   string         `mapstructure:"provider"`
	Timeout    time.Duration  `mapstructure:"timeout"`
	Anthropic  ProviderConfig `mapstructure:"anthropic"`
	OpenAI     ProviderConfig `mapstructure:"openai"`
	Gemini     ProviderConfig `mapstructure:"gemini"`
	OpenRouter ProviderConfig `mapstructure:"openrouter"`
}

type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// providerKeyEnv lists the conventional API key variables honored in
// addition to RESUMEBOT_LLM_<PROVIDER>_API_KEY.
var providerKeyEnv = map[string]string{
	"anthropic":  "ANTHROPIC_API_KEY",
	"openai":     "OPENAI_API_KEY",
	"gemini":     "GEMINI_API_KEY",
	"openrouter": "OPENROUTER_API_KEY",
}

func setDefaults(v *viper.Viper) {
	lc := llm.DefaultConfig()

	v.SetDefault("analysis.backend", BackendHTTP)
	v.SetDefault("analysis.base_url", "http://localhost:5000")
	v.SetDefault("analysis.timeout", 30*time.Second)
	v.SetDefault("db", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", defaultLogFile())
	v.SetDefault("tracing.file", "")
	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.engine", BackendLocal)
	v.SetDefault("server.cache_ttl", 10*time.Minute)
	v.SetDefault("server.catalog", "")
	v.SetDefault("llm.provider", lc.Provider)
	v.SetDefault("llm.timeout", lc.Timeout)

	for name, pc := range map[string]llm.ProviderConfig{
		"anthropic":  lc.Anthropic,
		"openai":     lc.OpenAI,
		"gemini":     lc.Gemini,
		"openrouter": lc.OpenRouter,
	} {
		v.SetDefault("llm."+name+".api_key", "")
		v.SetDefault("llm."+name+".model", pc.Model)
		v.SetDefault("llm."+name+".base_url", pc.BaseURL)
	}
}

// Load reads configuration. An empty path means DefaultPath(), which may
// be absent; an explicit path must exist.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for name, env := range providerKeyEnv {
		key := "llm." + name + ".api_key"
		_ = v.BindEnv(key, EnvPrefix+"_LLM_"+strings.ToUpper(name)+"_API_KEY", env)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			missing := errors.Is(err, os.ErrNotExist) || errors.As(err, &notFound)
			if explicit || !missing {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/resumebot/config.yaml, falling back
// to ~/.config. It returns "" when no home directory can be resolved.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "resumebot", "config.yaml")
}

func defaultLogFile() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "resumebot", "resumebot.log")
}

// Validate checks backend names and the settings each backend needs.
func (c Config) Validate() error {
	switch c.Analysis.Backend {
	case BackendHTTP:
		u, err := url.Parse(c.Analysis.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("analysis.base_url must be an http(s) URL, got %q", c.Analysis.BaseURL)
		}
	case BackendLocal:
	case BackendLLM:
		if err := c.LLMConfig().Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown analysis.backend %q (want http, local, or llm)", c.Analysis.Backend)
	}

	switch c.Server.Engine {
	case BackendLocal, BackendLLM:
	default:
		return fmt.Errorf("unknown server.engine %q (want local or llm)", c.Server.Engine)
	}
	if c.Analysis.Timeout < 0 {
		return fmt.Errorf("analysis.timeout must not be negative")
	}
	return nil
}

// LLMConfig converts the llm.* keys into the provider layer's config,
// keeping its default retry policy.
func (c Config) LLMConfig() llm.Config {
	lc := llm.DefaultConfig()
	lc.Provider = c.LLM.Provider
	if c.LLM.Timeout > 0 {
		lc.Timeout = c.LLM.Timeout
	}
	lc.Anthropic = c.LLM.Anthropic.toLLM()
	lc.OpenAI = c.LLM.OpenAI.toLLM()
	lc.Gemini = c.LLM.Gemini.toLLM()
	lc.OpenRouter = c.LLM.OpenRouter.toLLM()
	return lc
}

func (p ProviderConfig) toLLM() llm.ProviderConfig {
	return llm.ProviderConfig{APIKey: p.APIKey, Model: p.Model, BaseURL: p.BaseURL}
}

func (c Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format, File: c.Log.File}
}
