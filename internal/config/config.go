// Package config provides configuration loading and validation for the CLI.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonathan/resume-builder/internal/llm"
)

// EnvPrefix is the prefix of environment variables read into Config.
const EnvPrefix = "RESUME_BUILDER"

// Config represents the CLI configuration. Values come from an optional
// JSON or YAML file, RESUME_BUILDER_* environment variables, and CLI flags.
type Config struct {
	// LLM
	APIKey      string  `mapstructure:"api_key"`
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`   // overrides the lite-tier model
	APIURL      string  `mapstructure:"api_url"` // OpenAI-compatible base URL
	Temperature float64 `mapstructure:"temperature"`

	// Inputs and outputs
	Resume    string `mapstructure:"resume"`     // Path to the YAML resume
	StylesDir string `mapstructure:"styles_dir"` // Directory of CSS styles; empty uses built-ins
	Style     string `mapstructure:"style"`      // Style name; empty prompts interactively
	Output    string `mapstructure:"output"`     // Path of the generated PDF or HTML
	UsageLog  string `mapstructure:"usage_log"`  // NDJSON file of completion usage

	// Job description
	JobURL     string `mapstructure:"job_url"`
	JobText    string `mapstructure:"job_text"`
	UseBrowser bool   `mapstructure:"use_browser"` // Use headless browser for SPA job pages

	// Generation
	Workers           int           `mapstructure:"workers"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"` // 0 disables client-side pacing
	MaxAttempts       int           `mapstructure:"max_attempts"`
	InitialDelay      time.Duration `mapstructure:"initial_delay"`
	Strict            bool          `mapstructure:"strict"` // Fail when any section fails
	Base64            bool          `mapstructure:"base64"` // Write the PDF base64-encoded

	// Checks on the generated resume
	MaxPages         int      `mapstructure:"max_pages"` // 0 disables the page limit
	ForbiddenPhrases []string `mapstructure:"forbidden_phrases"`

	// Behavior
	Verbose       bool   `mapstructure:"verbose"`
	Trace         bool   `mapstructure:"trace"`
	TraceEndpoint string `mapstructure:"trace_endpoint"` // OTLP gRPC collector; empty prints spans
	DatabaseURL   string `mapstructure:"database_url"`
}

// Defaults returns the built-in configuration values.
func Defaults() Config {
	retry := llm.DefaultRetryConfig()
	return Config{
		Provider:     string(llm.ProviderOpenAI),
		Temperature:  llm.DefaultTemperature,
		Resume:       "plain_text_resume.yaml",
		Output:       "resume.pdf",
		UsageLog:     "log/llm_calls.jsonl",
		Workers:      4,
		MaxAttempts:  retry.MaxAttempts,
		InitialDelay: retry.InitialDelay,
	}
}

// Load reads configuration from path (optional) and the environment,
// on top of Defaults. A missing API key falls back to the provider's
// conventional variable (OPENAI_API_KEY or GEMINI_API_KEY).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = APIKeyFromEnv(llm.Provider(cfg.Provider))
	}

	return &cfg, nil
}

// LoadConfig loads configuration from a file. Unlike Load it requires a path.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	return Load(path)
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("api_key", "")
	v.SetDefault("provider", d.Provider)
	v.SetDefault("model", "")
	v.SetDefault("api_url", "")
	v.SetDefault("temperature", d.Temperature)
	v.SetDefault("resume", d.Resume)
	v.SetDefault("styles_dir", "")
	v.SetDefault("style", "")
	v.SetDefault("output", d.Output)
	v.SetDefault("usage_log", d.UsageLog)
	v.SetDefault("job_url", "")
	v.SetDefault("job_text", "")
	v.SetDefault("use_browser", false)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("requests_per_minute", 0)
	v.SetDefault("max_attempts", d.MaxAttempts)
	v.SetDefault("initial_delay", d.InitialDelay)
	v.SetDefault("strict", false)
	v.SetDefault("base64", false)
	v.SetDefault("max_pages", 0)
	v.SetDefault("forbidden_phrases", []string{})
	v.SetDefault("verbose", false)
	v.SetDefault("trace", false)
	v.SetDefault("trace_endpoint", "")
	v.SetDefault("database_url", "")
}

// APIKeyFromEnv returns the conventional API key variable of a provider.
func APIKeyFromEnv(provider llm.Provider) string {
	if provider == llm.ProviderGemini {
		return os.Getenv("GEMINI_API_KEY")
	}
	return os.Getenv("OPENAI_API_KEY")
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for the API key since commands that never call
// a model (styles, usage) run without one.
func (c *Config) Validate() error {
	// Validate mutually exclusive fields
	if c.JobURL != "" && c.JobText != "" {
		return fmt.Errorf("config error: 'job_url' and 'job_text' are mutually exclusive")
	}

	switch llm.Provider(c.Provider) {
	case llm.ProviderOpenAI, llm.ProviderGemini, "":
	default:
		return fmt.Errorf("config error: unknown provider %q", c.Provider)
	}

	// Validate numeric ranges
	if c.Workers < 0 {
		return fmt.Errorf("config error: 'workers' must be non-negative")
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("config error: 'max_attempts' must be non-negative")
	}
	if c.InitialDelay < 0 {
		return fmt.Errorf("config error: 'initial_delay' must be non-negative")
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("config error: 'requests_per_minute' must be non-negative")
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("config error: 'max_pages' must be non-negative")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config error: 'temperature' must be between 0 and 2")
	}

	// Validate file paths exist (if specified)
	if c.StylesDir != "" {
		info, err := os.Stat(c.StylesDir)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("config error: styles directory not found: %s", c.StylesDir)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.APIURL == "" {
		result.APIURL = defaults.APIURL
	}
	if result.Resume == "" {
		result.Resume = defaults.Resume
	}
	if result.StylesDir == "" {
		result.StylesDir = defaults.StylesDir
	}
	if result.Style == "" {
		result.Style = defaults.Style
	}
	if result.Output == "" {
		result.Output = defaults.Output
	}
	if result.UsageLog == "" {
		result.UsageLog = defaults.UsageLog
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Numeric fields: use default if zero
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.MaxAttempts == 0 {
		result.MaxAttempts = defaults.MaxAttempts
	}
	if result.InitialDelay == 0 {
		result.InitialDelay = defaults.InitialDelay
	}
	if result.Temperature == 0 {
		result.Temperature = defaults.Temperature
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// LLM returns the model configuration described by c.
func (c *Config) LLM() *llm.Config {
	cfg := llm.ConfigFor(llm.Provider(c.Provider))
	if c.Model != "" {
		cfg = cfg.WithModel(llm.TierLite, c.Model)
	}
	if c.APIURL != "" {
		cfg = cfg.WithBaseURL(c.APIURL)
	}
	cfg.Temperature = c.Temperature
	return cfg
}

// Retry returns the retry schedule described by c.
func (c *Config) Retry() llm.RetryConfig {
	retry := llm.DefaultRetryConfig()
	if c.MaxAttempts > 0 {
		retry.MaxAttempts = c.MaxAttempts
	}
	if c.InitialDelay > 0 {
		retry.InitialDelay = c.InitialDelay
	}
	return retry
}
