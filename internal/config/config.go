package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/spf13/viper"
)

const (
	ProviderGemini = "gemini"
	ProviderArk    = "ark"

	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	AI        AIConfig        `mapstructure:"ai"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Port               string   `mapstructure:"port"`
	CORSOrigins        []string `mapstructure:"cors_origins"`
	ExposeErrorDetails bool     `mapstructure:"expose_error_details"`
}

// Addr returns the listen address. PORT may be "8080", ":8080" or "127.0.0.1:8080".
func (c ServerConfig) Addr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider    string        `mapstructure:"provider"`
	Persona     string        `mapstructure:"persona"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature *float64      `mapstructure:"temperature"`
	MaxTokens   *int          `mapstructure:"max_tokens"`
	Gemini      GeminiConfig  `mapstructure:"gemini"`
	Ark         ArkConfig     `mapstructure:"ark"`
}

// GeminiConfig holds Google Gemini API settings.
type GeminiConfig struct {
	APIKey         string   `mapstructure:"api_key"`
	Model          string   `mapstructure:"model"`
	FallbackModels []string `mapstructure:"fallback_models"`
}

// ArkConfig holds Volcengine Ark settings.
type ArkConfig struct {
	APIKey    string `mapstructure:"api_key"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Model     string `mapstructure:"model"`
	BaseURL   string `mapstructure:"base_url"`
	Region    string `mapstructure:"region"`
}

// Enabled 表示当前 provider 是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderGemini:
		return c.Gemini.APIKey != "" && c.Gemini.Model != ""
	case ProviderArk:
		return c.Ark.Model != "" && (c.Ark.APIKey != "" || (c.Ark.AccessKey != "" && c.Ark.SecretKey != ""))
	default:
		return false
	}
}

// NewChatModel 使用 Ark 配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if c.Provider != ProviderArk || !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + ARK_MODEL 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.Ark.BaseURL,
		Region:      c.Ark.Region,
		APIKey:      c.Ark.APIKey,
		AccessKey:   c.Ark.AccessKey,
		SecretKey:   c.Ark.SecretKey,
		Model:       c.Ark.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

// RateLimitConfig 描述限流配置。RedisURL 为空时限流被旁路。
type RateLimitConfig struct {
	RedisURL    string        `mapstructure:"redis_url"`
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
	Prefix      string        `mapstructure:"prefix"`
}

// Enabled reports whether a counter store is configured.
func (c RateLimitConfig) Enabled() bool {
	return c.RedisURL != ""
}

// DatabaseConfig 描述持久化配置。Driver 为空时使用内存存储。
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// Persistent reports whether sessions go to a real database.
func (c DatabaseConfig) Persistent() bool {
	return c.Driver == DriverPostgres || c.Driver == DriverSQLite
}

// LogConfig 描述日志配置。
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
	File   string `mapstructure:"file"`
}

// Load reads defaults, the optional YAML file and environment variables.
// Environment variables win over the file.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.expose_error_details", true)

	v.SetDefault("ai.provider", ProviderGemini)
	v.SetDefault("ai.persona", "dba-virtual")
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.gemini.model", "gemini-flash-latest")
	v.SetDefault("ai.gemini.fallback_models", []string{"gemini-1.5-flash", "gemini-pro"})
	v.SetDefault("ai.ark.base_url", "https://ark.cn-beijing.volces.com/api/v3")
	v.SetDefault("ai.ark.region", "cn-beijing")

	v.SetDefault("ratelimit.max_requests", 10)
	v.SetDefault("ratelimit.window", "60m")
	v.SetDefault("ratelimit.prefix", "dba:ratelimit")

	v.SetDefault("database.driver", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.file", "")
}

var envBindings = map[string][]string{
	"server.port":                 {"PORT"},
	"server.cors_origins":         {"CORS_ORIGINS"},
	"server.expose_error_details": {"EXPOSE_ERROR_DETAILS"},

	"ai.provider":               {"AI_PROVIDER"},
	"ai.persona":                {"AI_PERSONA"},
	"ai.timeout":                {"AI_TIMEOUT"},
	"ai.temperature":            {"AI_TEMPERATURE"},
	"ai.max_tokens":             {"AI_MAX_TOKENS"},
	"ai.gemini.api_key":         {"GEMINI_API_KEY"},
	"ai.gemini.model":           {"GEMINI_MODEL"},
	"ai.gemini.fallback_models": {"GEMINI_FALLBACK_MODELS"},
	"ai.ark.api_key":            {"ARK_API_KEY"},
	"ai.ark.access_key":         {"ARK_ACCESS_KEY"},
	"ai.ark.secret_key":         {"ARK_SECRET_KEY"},
	"ai.ark.model":              {"ARK_MODEL"},
	"ai.ark.base_url":           {"ARK_BASE_URL"},
	"ai.ark.region":             {"ARK_REGION"},

	"ratelimit.redis_url":    {"RATELIMIT_REDIS_URL", "REDIS_URL"},
	"ratelimit.max_requests": {"RATELIMIT_MAX_REQUESTS"},
	"ratelimit.window":       {"RATELIMIT_WINDOW"},
	"ratelimit.prefix":       {"RATELIMIT_PREFIX"},

	"database.driver":            {"DATABASE_DRIVER"},
	"database.dsn":               {"DATABASE_URL"},
	"database.max_open_conns":    {"DATABASE_MAX_OPEN_CONNS"},
	"database.max_idle_conns":    {"DATABASE_MAX_IDLE_CONNS"},
	"database.conn_max_lifetime": {"DATABASE_CONN_MAX_LIFETIME"},
	"database.auto_migrate":      {"DATABASE_AUTO_MIGRATE"},

	"log.level":  {"LOG_LEVEL"},
	"log.pretty": {"LOG_PRETTY"},
	"log.file":   {"LOG_FILE"},
}

func bindEnv(v *viper.Viper) error {
	for key, names := range envBindings {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) normalize() {
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	c.AI.Persona = strings.TrimSpace(c.AI.Persona)
	c.AI.Gemini.APIKey = strings.TrimSpace(c.AI.Gemini.APIKey)
	c.AI.Gemini.Model = strings.TrimSpace(c.AI.Gemini.Model)
	c.AI.Gemini.FallbackModels = trimAll(c.AI.Gemini.FallbackModels)
	c.AI.Ark.APIKey = strings.TrimSpace(c.AI.Ark.APIKey)
	c.AI.Ark.AccessKey = strings.TrimSpace(c.AI.Ark.AccessKey)
	c.AI.Ark.SecretKey = strings.TrimSpace(c.AI.Ark.SecretKey)
	c.AI.Ark.Model = strings.TrimSpace(c.AI.Ark.Model)

	c.RateLimit.RedisURL = strings.TrimSpace(c.RateLimit.RedisURL)

	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == DriverMemory {
		c.Database.Driver = ""
	}
	c.Database.DSN = strings.TrimSpace(c.Database.DSN)

	c.Server.CORSOrigins = trimAll(c.Server.CORSOrigins)
}

// Validate checks values that would otherwise fail at request time.
func (c *Config) Validate() error {
	var errs []error

	if strings.ContainsAny(strings.TrimSpace(c.Server.Port), " \t") {
		errs = append(errs, fmt.Errorf("invalid PORT value: %q", c.Server.Port))
	}
	if c.AI.Provider != ProviderGemini && c.AI.Provider != ProviderArk {
		errs = append(errs, fmt.Errorf("unsupported AI_PROVIDER %q", c.AI.Provider))
	}
	if c.AI.Timeout < 0 {
		errs = append(errs, fmt.Errorf("AI_TIMEOUT must not be negative"))
	}
	if c.RateLimit.MaxRequests < 1 {
		errs = append(errs, fmt.Errorf("RATELIMIT_MAX_REQUESTS must be at least 1, got %d", c.RateLimit.MaxRequests))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, fmt.Errorf("RATELIMIT_WINDOW must be positive, got %s", c.RateLimit.Window))
	}
	switch c.Database.Driver {
	case "":
	case DriverPostgres, DriverSQLite:
		if c.Database.DSN == "" {
			errs = append(errs, fmt.Errorf("DATABASE_URL is required for driver %s", c.Database.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver))
	}

	return errors.Join(errs...)
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
