package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"        validate:"required"`
	Database      DatabaseConfig      `mapstructure:"database"      validate:"required"`
	Auth          AuthConfig          `mapstructure:"auth"          validate:"required"`
	Media         MediaConfig         `mapstructure:"media"         validate:"required"`
	Transcription TranscriptionConfig `mapstructure:"transcription" validate:"required"`
	Summarization SummarizationConfig `mapstructure:"summarization" validate:"required"`
	Task          TaskConfig          `mapstructure:"task"          validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0,lte=1440"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0,lte=43200"`
}

// MediaConfig configures the yt-dlp based media resolver.
type MediaConfig struct {
	YtdlpPath string `mapstructure:"ytdlp_path" validate:"required"`
	TempDir   string `mapstructure:"temp_dir"   validate:"required"`
}

// TranscriptionConfig selects and configures the transcription provider.
type TranscriptionConfig struct {
	Provider   string           `mapstructure:"provider" validate:"required,oneof=whisper assemblyai"`
	Whisper    WhisperConfig    `mapstructure:"whisper"`
	AssemblyAI AssemblyAIConfig `mapstructure:"assemblyai"`
}

// WhisperConfig configures the local whisper.cpp transcriber.
type WhisperConfig struct {
	BinaryPath string `mapstructure:"binary_path"`
	ModelPath  string `mapstructure:"model_path"`
	Language   string `mapstructure:"language"`
}

// AssemblyAIConfig configures the hosted transcription provider.
// The poll interval and max poll count bound how long a single
// transcription may be awaited.
type AssemblyAIConfig struct {
	APIKey              string `mapstructure:"api_key"`
	BaseURL             string `mapstructure:"base_url"`
	PollIntervalSeconds int    `mapstructure:"poll_interval_seconds" validate:"gte=0"`
	MaxPolls            int    `mapstructure:"max_polls"             validate:"gte=0"`
}

// SummarizationConfig selects and configures the summarization provider
// and the transcript chunking applied before summarization.
type SummarizationConfig struct {
	Provider          string            `mapstructure:"provider"            validate:"required,oneof=gemini huggingface"`
	Gemini            GeminiConfig      `mapstructure:"gemini"`
	HuggingFace       HuggingFaceConfig `mapstructure:"huggingface"`
	ChunkSize         int               `mapstructure:"chunk_size"          validate:"required,gt=0"`
	MaxRetries        int               `mapstructure:"max_retries"         validate:"gte=0"`
	RetryDelaySeconds int               `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}

// GeminiConfig configures the Gemini summarizer.
type GeminiConfig struct {
	APIKey    string `mapstructure:"api_key"`
	ModelName string `mapstructure:"model_name"`
}

// HuggingFaceConfig configures the Hugging Face inference summarizer.
type HuggingFaceConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// TaskConfig configures the background task runner.
type TaskConfig struct {
	WorkerCount         int `mapstructure:"worker_count"           validate:"required,gt=0,lte=64"`
	QueueSize           int `mapstructure:"queue_size"             validate:"required,gt=0"`
	MaxAttempts         int `mapstructure:"max_attempts"           validate:"required,gt=0,lte=20"`
	RetryDelaySeconds   int `mapstructure:"retry_delay_seconds"    validate:"gte=0"`
	StuckTaskAgeMinutes int `mapstructure:"stuck_task_age_minutes" validate:"required,gt=0"`
}
