package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/phone-manager/internal/classification"
	"github.com/Veraticus/phone-manager/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T, values map[string]any) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		t.Setenv(env, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	clearKeyEnv(t)

	cfg, err := Load(newViper(t, map[string]any{"sheets.spreadsheet_id": "sheet-123"}))
	require.NoError(t, err)

	assert.Equal(t, "sheet-123", cfg.Sheets.SpreadsheetID)
	assert.Equal(t, "Sheet1", cfg.Sheets.Range)
	assert.Equal(t, "credentials.json", cfg.Sheets.ServiceAccountPath)
	assert.Equal(t, 3, cfg.Sheets.RetryAttempts)
	assert.Equal(t, DefaultInterval, cfg.SyncInterval)
	assert.Equal(t, filepath.Join(home, ".local/share/phone-manager/records.db"), cfg.Paths.Database)
	assert.Equal(t, filepath.Join(home, ".local/share/phone-manager/snapshot.csv"), cfg.Paths.Cache)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, 512, cfg.LLM.MaxTokens)
	assert.Equal(t, 24*time.Hour, cfg.LLM.CacheTTL)
	assert.Equal(t, classification.PrecedenceModel, cfg.Precedence)

	require.NoError(t, cfg.Validate())
}

func TestLoad_IntervalMinutesOverrides(t *testing.T) {
	cfg, err := Load(newViper(t, map[string]any{
		"sync.interval":         "30s",
		"sync.interval_minutes": 2,
	}))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.SyncInterval)
}

func TestLoad_OAuthClearsDefaultServiceAccount(t *testing.T) {
	cfg, err := Load(newViper(t, map[string]any{
		"sheets.spreadsheet_id": "s",
		"sheets.client_id":      "id",
		"sheets.client_secret":  "secret",
		"sheets.refresh_token":  "token",
	}))
	require.NoError(t, err)
	assert.Empty(t, cfg.Sheets.ServiceAccountPath)
	require.NoError(t, cfg.Sheets.Validate())
}

func TestLoad_ExplicitSheetOptions(t *testing.T) {
	t.Setenv("CREDS_DIR", "/secrets")
	cfg, err := Load(newViper(t, map[string]any{
		"sheets.service_account_path": "$CREDS_DIR/sa.json",
		"sheets.range":                "Messages!A:E",
		"sheets.retry_attempts":       0,
		"sheets.retry_delay":          "250ms",
	}))
	require.NoError(t, err)
	assert.Equal(t, "/secrets/sa.json", cfg.Sheets.ServiceAccountPath)
	assert.Equal(t, "Messages!A:E", cfg.Sheets.Range)
	assert.Equal(t, 0, cfg.Sheets.RetryAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Sheets.RetryDelay)
}

func TestLoad_InvalidPrecedence(t *testing.T) {
	_, err := Load(newViper(t, map[string]any{"classification.precedence": "coin-flip"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestLoad_APIKeyResolution(t *testing.T) {
	clearKeyEnv(t)

	t.Run("explicit key wins", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "from-env")
		cfg, err := Load(newViper(t, map[string]any{"llm.provider": "openai", "llm.api_key": "explicit"}))
		require.NoError(t, err)
		assert.Equal(t, "explicit", cfg.LLM.APIKey)
	})

	t.Run("provider key", func(t *testing.T) {
		cfg, err := Load(newViper(t, map[string]any{"llm.provider": "Anthropic", "llm.anthropic_api_key": "ak"}))
		require.NoError(t, err)
		assert.Equal(t, "anthropic", cfg.LLM.Provider)
		assert.Equal(t, "ak", cfg.LLM.APIKey)
	})

	t.Run("environment fallback", func(t *testing.T) {
		t.Setenv("GOOGLE_API_KEY", "gk")
		cfg, err := Load(newViper(t, map[string]any{"llm.provider": "gemini"}))
		require.NoError(t, err)
		assert.Equal(t, "gk", cfg.LLM.APIKey)
	})

	t.Run("ollama needs none", func(t *testing.T) {
		cfg, err := Load(newViper(t, nil))
		require.NoError(t, err)
		assert.Empty(t, cfg.LLM.APIKey)
	})
}

func TestConfig_Validate(t *testing.T) {
	clearKeyEnv(t)

	tests := []struct {
		values  map[string]any
		wantErr error
		name    string
	}{
		{
			name:    "missing spreadsheet",
			values:  map[string]any{},
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "zero interval",
			values:  map[string]any{"sheets.spreadsheet_id": "s", "sync.interval": "0s"},
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "openai without key",
			values:  map[string]any{"sheets.spreadsheet_id": "s", "llm.provider": "openai"},
			wantErr: common.ErrMissingConfig,
		},
		{
			name:    "unknown provider",
			values:  map[string]any{"sheets.spreadsheet_id": "s", "llm.provider": "claudecode"},
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "bad log level",
			values:  map[string]any{"sheets.spreadsheet_id": "s", "logging.level": "loud"},
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "bad log format",
			values:  map[string]any{"sheets.spreadsheet_id": "s", "logging.format": "xml"},
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "empty cache path",
			values:  map[string]any{"sheets.spreadsheet_id": "s", "paths.cache": ""},
			wantErr: common.ErrMissingConfig,
		},
		{
			name:    "cache collides with database",
			values:  map[string]any{"sheets.spreadsheet_id": "s", "paths.cache": "/tmp/x.db", "paths.database": "/tmp/x.db"},
			wantErr: common.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(newViper(t, tt.values))
			require.NoError(t, err)
			err = cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PM_DIR", "/data")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "a/b.db"), ExpandPath("~/a/b.db"))
	assert.Equal(t, "/data/x.csv", ExpandPath("$PM_DIR/x.csv"))
	assert.Equal(t, "relative/file", ExpandPath("relative/file"))
}
