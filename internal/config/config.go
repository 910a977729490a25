// Package config builds the typed runtime configuration from viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/phone-manager/internal/classification"
	"github.com/Veraticus/phone-manager/internal/common"
	"github.com/Veraticus/phone-manager/internal/llm"
	"github.com/Veraticus/phone-manager/internal/sheets"
	"github.com/spf13/viper"
)

const (
	// DefaultInterval is the pause between sync cycles.
	DefaultInterval = 5 * time.Minute
	defaultDataDir  = "~/.local/share/phone-manager"
)

// Config is the complete runtime configuration.
type Config struct {
	Sheets       sheets.Config
	LLM          llm.Config
	Paths        Paths
	Logging      Logging
	Precedence   classification.Precedence
	SyncInterval time.Duration
}

// Paths are the local files the daemon writes.
type Paths struct {
	Database string
	Cache    string
	AuditLog string
	DebugLog string
}

// Logging selects the slog level and handler.
type Logging struct {
	Level  string
	Format string
}

// SetDefaults registers defaults for every key that has one. Sheet
// credentials are defaulted in Load so that OAuth and service account
// settings can be told apart.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("sync.interval", DefaultInterval)
	v.SetDefault("paths.database", defaultDataDir+"/records.db")
	v.SetDefault("paths.cache", defaultDataDir+"/snapshot.csv")
	v.SetDefault("paths.audit_log", defaultDataDir+"/audit.log")
	v.SetDefault("paths.debug_log", defaultDataDir+"/debug.log")
	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.max_tokens", 512)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.rate_limit", 0)
	v.SetDefault("llm.cache_ttl", 24*time.Hour)
	v.SetDefault("llm.max_retries", 1)
	v.SetDefault("llm.retry_delay", time.Second)
	v.SetDefault("classification.precedence", string(classification.PrecedenceModel))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads every section from v. It does not validate; call Validate for
// commands that talk to the sheet or the model.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Sheets: loadSheets(v),
		LLM:    loadLLM(v),
		Paths: Paths{
			Database: ExpandPath(v.GetString("paths.database")),
			Cache:    ExpandPath(v.GetString("paths.cache")),
			AuditLog: ExpandPath(v.GetString("paths.audit_log")),
			DebugLog: ExpandPath(v.GetString("paths.debug_log")),
		},
		Logging: Logging{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		SyncInterval: v.GetDuration("sync.interval"),
	}

	if minutes := v.GetInt("sync.interval_minutes"); minutes > 0 {
		cfg.SyncInterval = time.Duration(minutes) * time.Minute
	}

	precedence, err := classification.ParsePrecedence(v.GetString("classification.precedence"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	cfg.Precedence = precedence

	return cfg, nil
}

func loadSheets(v *viper.Viper) sheets.Config {
	cfg := sheets.DefaultConfig()

	cfg.ClientID = v.GetString("sheets.client_id")
	cfg.ClientSecret = v.GetString("sheets.client_secret")
	cfg.RefreshToken = v.GetString("sheets.refresh_token")
	cfg.SpreadsheetID = v.GetString("sheets.spreadsheet_id")

	hasOAuth := cfg.ClientID != "" && cfg.ClientSecret != "" && cfg.RefreshToken != ""
	switch path := v.GetString("sheets.service_account_path"); {
	case path != "":
		cfg.ServiceAccountPath = ExpandPath(path)
	case hasOAuth:
		cfg.ServiceAccountPath = ""
	}

	if r := v.GetString("sheets.range"); r != "" {
		cfg.Range = r
	}
	if v.IsSet("sheets.retry_attempts") {
		cfg.RetryAttempts = v.GetInt("sheets.retry_attempts")
	}
	if v.IsSet("sheets.retry_delay") {
		cfg.RetryDelay = v.GetDuration("sheets.retry_delay")
	}

	return cfg
}

func loadLLM(v *viper.Viper) llm.Config {
	provider := strings.ToLower(v.GetString("llm.provider"))

	return llm.Config{
		Provider:    provider,
		APIKey:      apiKey(v, provider),
		Model:       v.GetString("llm.model"),
		BaseURL:     v.GetString("llm.base_url"),
		Temperature: v.GetFloat64("llm.temperature"),
		MaxTokens:   v.GetInt("llm.max_tokens"),
		Timeout:     v.GetDuration("llm.timeout"),
		RateLimit:   v.GetInt("llm.rate_limit"),
		CacheTTL:    v.GetDuration("llm.cache_ttl"),
		MaxRetries:  v.GetInt("llm.max_retries"),
		RetryDelay:  v.GetDuration("llm.retry_delay"),
	}
}

// apiKey checks llm.api_key, then llm.<provider>_api_key, then the
// provider's conventional environment variables.
func apiKey(v *viper.Viper, provider string) string {
	if k := v.GetString("llm.api_key"); k != "" {
		return k
	}
	if provider == "" {
		return ""
	}
	if k := v.GetString("llm." + provider + "_api_key"); k != "" {
		return k
	}

	var envs []string
	switch provider {
	case "openai":
		envs = []string{"OPENAI_API_KEY"}
	case "anthropic":
		envs = []string{"ANTHROPIC_API_KEY"}
	case "gemini":
		envs = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	}
	for _, env := range envs {
		if k := os.Getenv(env); k != "" {
			return k
		}
	}
	return ""
}

// Validate checks everything a sync cycle needs.
func (c *Config) Validate() error {
	if err := c.Sheets.Validate(); err != nil {
		return fmt.Errorf("%w: sheets: %w", common.ErrInvalidConfig, err)
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("%w: sync interval must be positive, got %s", common.ErrInvalidConfig, c.SyncInterval)
	}
	if err := c.ValidatePaths(); err != nil {
		return err
	}

	switch c.LLM.Provider {
	case "ollama":
	case "openai", "anthropic", "gemini":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("%w: %s API key not found in config or environment", common.ErrMissingConfig, c.LLM.Provider)
		}
	default:
		return fmt.Errorf("%w: unsupported LLM provider %q", common.ErrInvalidConfig, c.LLM.Provider)
	}
	if c.LLM.RateLimit < 0 {
		return fmt.Errorf("%w: llm rate limit cannot be negative", common.ErrInvalidConfig)
	}

	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: log format %q", common.ErrInvalidConfig, c.Logging.Format)
	}

	return nil
}

// ValidatePaths checks the local file locations, which every command needs.
func (c *Config) ValidatePaths() error {
	for name, p := range map[string]string{
		"paths.database":  c.Paths.Database,
		"paths.cache":     c.Paths.Cache,
		"paths.audit_log": c.Paths.AuditLog,
	} {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: %s", common.ErrMissingConfig, name)
		}
	}
	if filepath.Clean(c.Paths.Cache) == filepath.Clean(c.Paths.Database) {
		return fmt.Errorf("%w: cache and database must be different files", common.ErrInvalidConfig)
	}
	return nil
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}
