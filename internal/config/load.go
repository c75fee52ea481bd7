package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config file; environment variables override it.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; anything else is a real error.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables use the JOTTA_ prefix with underscores for
	// nesting, e.g. JOTTA_DATABASE_URL, JOTTA_AUTH_JWT_SECRET.
	v.SetEnvPrefix("JOTTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindSecretKeys(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := validateProviderSettings(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// bindSecretKeys binds the keys that carry no default value.
// Viper only resolves environment variables during Unmarshal for keys
// it already knows about, so credentials need an explicit binding.
func bindSecretKeys(v *viper.Viper) {
	for _, key := range []string{
		"database.url",
		"auth.jwt_secret",
		"transcription.assemblyai.api_key",
		"transcription.whisper.model_path",
		"summarization.gemini.api_key",
		"summarization.huggingface.api_key",
	} {
		// BindEnv only errors on an empty key
		_ = v.BindEnv(key)
	}
}

// setDefaults registers default values so a minimal environment
// (database URL, JWT secret, provider API key) is enough to start.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080)

	v.SetDefault("media.ytdlp_path", "yt-dlp")
	v.SetDefault("media.temp_dir", "/tmp/jotta-media")

	v.SetDefault("transcription.provider", "assemblyai")
	v.SetDefault("transcription.whisper.binary_path", "whisper")
	v.SetDefault("transcription.whisper.language", "en")
	v.SetDefault("transcription.assemblyai.base_url", "https://api.assemblyai.com")
	v.SetDefault("transcription.assemblyai.poll_interval_seconds", 5)
	v.SetDefault("transcription.assemblyai.max_polls", 120)

	v.SetDefault("summarization.provider", "gemini")
	v.SetDefault("summarization.gemini.model_name", "gemini-2.0-flash")
	v.SetDefault("summarization.huggingface.model", "facebook/bart-large-cnn")
	v.SetDefault("summarization.chunk_size", 3500)
	v.SetDefault("summarization.max_retries", 3)
	v.SetDefault("summarization.retry_delay_seconds", 2)

	v.SetDefault("task.worker_count", 4)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.max_attempts", 5)
	v.SetDefault("task.retry_delay_seconds", 5)
	v.SetDefault("task.stuck_task_age_minutes", 30)
}

// validateProviderSettings enforces the conditional requirements that
// struct tags cannot express: the selected providers must carry their
// own credentials and paths.
func validateProviderSettings(cfg *Config) error {
	switch cfg.Transcription.Provider {
	case "assemblyai":
		if cfg.Transcription.AssemblyAI.APIKey == "" {
			return fmt.Errorf("config validation failed: transcription.assemblyai.api_key is required when provider is assemblyai")
		}
	case "whisper":
		if cfg.Transcription.Whisper.ModelPath == "" {
			return fmt.Errorf("config validation failed: transcription.whisper.model_path is required when provider is whisper")
		}
	}

	switch cfg.Summarization.Provider {
	case "gemini":
		if cfg.Summarization.Gemini.APIKey == "" {
			return fmt.Errorf("config validation failed: summarization.gemini.api_key is required when provider is gemini")
		}
	case "huggingface":
		if cfg.Summarization.HuggingFace.APIKey == "" {
			return fmt.Errorf("config validation failed: summarization.huggingface.api_key is required when provider is huggingface")
		}
	}

	return nil
}
