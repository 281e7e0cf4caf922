package cliconfig

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/hubstore/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %v, want %v", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("HTTPTimeout = %v, want 15s", cfg.HTTPTimeout)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %v, want 30s", cfg.PollInterval)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		wantBaseURL string
	}{
		{
			name:        "valid minimal config",
			config:      Config{BaseURL: "http://store:8000"},
			wantBaseURL: "http://store:8000",
		},
		{
			name:        "trailing slash kept as given",
			config:      Config{BaseURL: "https://store.example.com/api/"},
			wantBaseURL: "https://store.example.com/api/",
		},
		{
			name:    "missing base url",
			config:  Config{},
			wantErr: true,
		},
		{
			name:    "relative base url",
			config:  Config{BaseURL: "/api"},
			wantErr: true,
		},
		{
			name:    "unsupported scheme",
			config:  Config{BaseURL: "ftp://store"},
			wantErr: true,
		},
		{
			name:    "unparseable base url",
			config:  Config{BaseURL: "http://[::1"},
			wantErr: true,
		},
		{
			name:    "negative timeout",
			config:  Config{BaseURL: "http://store", HTTPTimeout: -time.Second},
			wantErr: true,
		},
		{
			name:        "zero timeout disables it",
			config:      Config{BaseURL: "http://store", HTTPTimeout: 0},
			wantBaseURL: "http://store",
		},
		{
			name:    "negative poll",
			config:  Config{BaseURL: "http://store", PollInterval: -time.Second},
			wantErr: true,
		},
		{
			name:    "unknown log level",
			config:  Config{BaseURL: "http://store", LogLevel: "loud"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidConfig) {
					t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
			if tt.config.BaseURL != tt.wantBaseURL {
				t.Errorf("BaseURL = %v, want %v", tt.config.BaseURL, tt.wantBaseURL)
			}
		})
	}
}

func TestConfig_Level(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		cfg := Config{LogLevel: tt.level}
		got, err := cfg.Level()
		if err != nil {
			t.Errorf("Level(%q) error: %v", tt.level, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Level(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
