package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server (intake service)
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers   []string
	KafkaGroupID   string
	IntakeTopic    string
	JobEventsTopic string

	// Content listing API
	ContentAPIBaseURL      string
	ContentAPITokenURL     string
	ContentAPIClientID     string
	ContentAPIClientSecret string
	ContentAPITimeout      time.Duration
	CollectLimit           int
	CollectPostLimit       int

	// Blob storage
	BlobEndpoint   string
	BlobBucket     string
	BlobAccessKey  string
	BlobSecretKey  string
	BlobPresignTTL time.Duration

	// Speech to text
	SpeechBaseURL string
	SpeechAPIKey  string
	SpeechTimeout time.Duration

	// Gemini
	GeminiAPIKey   string
	TranslateModel string
	EmbedModel     string
	GeminiTimeout  time.Duration

	// Pipeline
	ClaimLimit       int
	BatchParallelism int
	RunTimeout       time.Duration

	// Stall timeouts
	AudioStallTimeout      time.Duration
	TranscribeStallTimeout time.Duration
	TranslateStallTimeout  time.Duration

	// Embedding indexer
	EmbedBatchSize    int
	ChunkMaxRunes     int
	ChunkOverlapRunes int

	// Scoring
	ThresholdsFile string
	RankingWindow  time.Duration
	RankingSize    int

	// Read view cache
	CacheTTL time.Duration
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "vidscribe"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "vidscribe123"),
		PostgresDB:       getEnv("POSTGRES_DB", "vidscribe"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:   getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:   getEnv("KAFKA_GROUP_ID", "vidscribe-platform"),
		IntakeTopic:    getEnv("KAFKA_INTAKE_TOPIC", "post-urls"),
		JobEventsTopic: getEnv("KAFKA_JOB_EVENTS_TOPIC", "job-events"),

		ContentAPIBaseURL:      getEnv("CONTENT_API_BASE_URL", "https://api.contentlist.example.com"),
		ContentAPITokenURL:     getEnv("CONTENT_API_TOKEN_URL", "https://auth.contentlist.example.com/oauth/token"),
		ContentAPIClientID:     getEnv("CONTENT_API_CLIENT_ID", ""),
		ContentAPIClientSecret: getEnv("CONTENT_API_CLIENT_SECRET", ""),
		ContentAPITimeout:      getDuration("CONTENT_API_TIMEOUT", 30*time.Second),
		CollectLimit:           getIntEnv("COLLECT_LIMIT", 3),
		CollectPostLimit:       getIntEnv("COLLECT_POST_LIMIT", 30),

		BlobEndpoint:   getEnv("BLOB_ENDPOINT", "http://localhost:9000"),
		BlobBucket:     getEnv("BLOB_BUCKET", "vidscribe-audio"),
		BlobAccessKey:  getEnv("BLOB_ACCESS_KEY", ""),
		BlobSecretKey:  getEnv("BLOB_SECRET_KEY", ""),
		BlobPresignTTL: getDuration("BLOB_PRESIGN_TTL", 15*time.Minute),

		SpeechBaseURL: getEnv("SPEECH_BASE_URL", "https://api.speech.example.com"),
		SpeechAPIKey:  getEnv("SPEECH_API_KEY", ""),
		SpeechTimeout: getDuration("SPEECH_TIMEOUT", 5*time.Minute),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		TranslateModel: getEnv("TRANSLATE_MODEL", "gemini-2.5-flash"),
		EmbedModel:     getEnv("EMBED_MODEL", "text-embedding-004"),
		GeminiTimeout:  getDuration("GEMINI_TIMEOUT", 90*time.Second),

		ClaimLimit:       getIntEnv("CLAIM_LIMIT", 10),
		BatchParallelism: getIntEnv("BATCH_PARALLELISM", 5),
		RunTimeout:       getDuration("RUN_TIMEOUT", 10*time.Minute),

		AudioStallTimeout:      getDuration("AUDIO_STALL_TIMEOUT", 1*time.Minute),
		TranscribeStallTimeout: getDuration("TRANSCRIBE_STALL_TIMEOUT", 30*time.Minute),
		TranslateStallTimeout:  getDuration("TRANSLATE_STALL_TIMEOUT", 10*time.Minute),

		EmbedBatchSize:    getIntEnv("EMBED_BATCH_SIZE", 20),
		ChunkMaxRunes:     getIntEnv("CHUNK_MAX_RUNES", 800),
		ChunkOverlapRunes: getIntEnv("CHUNK_OVERLAP_RUNES", 200),

		ThresholdsFile: getEnv("SCORING_THRESHOLDS_FILE", ""),
		RankingWindow:  getDuration("RANKING_WINDOW", 30*24*time.Hour),
		RankingSize:    getIntEnv("RANKING_SIZE", 100),

		CacheTTL: getDuration("READ_VIEW_CACHE_TTL", 5*time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return []string{value}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
