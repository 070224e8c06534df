// Package config handles loading and validating the phrasebook configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the phrasebook daemon.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Data    DataConfig    `mapstructure:"data"`
	TTS     TTSConfig     `mapstructure:"tts"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds the API and health server settings.
type ServerConfig struct {
	Port       int `mapstructure:"port"`
	HealthPort int `mapstructure:"health_port"`
}

// DataConfig locates the translation data on disk.
type DataConfig struct {
	// Mode selects the backing layout: "unified" (one merged file, the
	// default) or "per_language" (one JSON file per language).
	Mode string `mapstructure:"mode"`

	// Dir is the directory holding per-language files (<language>.json).
	Dir string `mapstructure:"dir"`

	// UnifiedFile is the merged translation file produced by the unify tool.
	UnifiedFile string `mapstructure:"unified_file"`

	// ContextualFile is the contextual-phrases dataset.
	ContextualFile string `mapstructure:"contextual_file"`

	// ConversationIndex lists available conversations.
	ConversationIndex string `mapstructure:"conversation_index"`

	// ConversationsDir holds per-conversation files
	// (multilanguage_<context>.json or <context>_<language>.json).
	ConversationsDir string `mapstructure:"conversations_dir"`
}

// TTSConfig points at the external text-to-speech engine.
type TTSConfig struct {
	// BaseURL is the engine's base address (e.g. "http://localhost:5000").
	BaseURL string `mapstructure:"base_url"`

	// Timeout bounds a single synthesis round trip, retries included.
	Timeout time.Duration `mapstructure:"timeout"`

	// SpeakPerMinute and SpeakBurst shape the per-client rate limit on the
	// speak endpoint.
	SpeakPerMinute int `mapstructure:"speak_per_minute"`
	SpeakBurst     int `mapstructure:"speak_burst"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./phrasebook.yaml, ./configs/phrasebook.yaml, /etc/phrasebook/phrasebook.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("data.mode", "unified")
	v.SetDefault("data.dir", "translations")
	v.SetDefault("data.unified_file", "translations/unified_translations.json")
	v.SetDefault("data.contextual_file", "translations_network/priority_contextual_phrases.json")
	v.SetDefault("data.conversation_index", "translations_network/conversations.json")
	v.SetDefault("data.conversations_dir", "translations_network/conversations")
	v.SetDefault("tts.base_url", "http://localhost:5000")
	v.SetDefault("tts.timeout", "30s")
	v.SetDefault("tts.speak_per_minute", 10)
	v.SetDefault("tts.speak_burst", 3)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("phrasebook")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/phrasebook")
	}

	// Environment variables: PHRASEBOOK_SERVER_PORT, PHRASEBOOK_TTS_BASE_URL, etc.
	v.SetEnvPrefix("PHRASEBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional; env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references (e.g., "${TTS_SERVICE_URL}")
	cfg.TTS.BaseURL = resolveEnvRef(cfg.TTS.BaseURL)

	if cfg.Data.Mode != "unified" && cfg.Data.Mode != "per_language" {
		return nil, fmt.Errorf("invalid data.mode %q: must be \"unified\" or \"per_language\"", cfg.Data.Mode)
	}

	return &cfg, nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
