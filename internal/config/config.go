package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr           string
	AllowedOrigins []string
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	JWTSecret      string
	SeedEmail      string
	SeedPass       string

	LogLevel  string
	LogFormat string

	Provider      string
	APIKey        string
	UseVertex     bool
	CloudProject  string
	CloudLocation string
	PackageModel  string
	VideoModel    string
	SpeechModel   string

	VideoPollInterval time.Duration
	VideoMaxPolls     int
	VideoBackoff      float64
	RenderSlots       int
	RenderQueue       int
	RenderAttempts    int

	MediaBackend string
	MediaDir     string
	MediaBaseURL string
	S3Bucket     string
	S3Region     string
	S3Profile    string
	S3Prefix     string
	S3PathStyle  bool

	RedisAddr string
	RedisPass string
	RedisDB   int

	// Empty formats and microphone let the capture device pick the platform
	// default; MicDevice "none" records video only.
	CameraDevice string
	CameraFormat string
	MicDevice    string
	MicFormat    string
}

func Load() Config {
	return Config{
		Addr:           env("SOULSOUND_SERVER_ADDR", ":8080"),
		AllowedOrigins: envList("ALLOWED_ORIGINS", "http://localhost:5173"),
		AccessTTL:      envDuration("SOULSOUND_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:     envDuration("SOULSOUND_REFRESH_TTL", 14*24*time.Hour),
		JWTSecret:      env("SOULSOUND_JWT_SECRET", "dev-change-me"),
		SeedEmail:      env("SOULSOUND_SEED_EMAIL", "artist@soulsound.local"),
		SeedPass:       env("SOULSOUND_SEED_PASSWORD", "soulsound123"),

		LogLevel:  env("SOULSOUND_LOG_LEVEL", "info"),
		LogFormat: env("SOULSOUND_LOG_FORMAT", "json"),

		Provider:      strings.ToLower(env("SOULSOUND_PROVIDER", "mock")),
		APIKey:        env("GEMINI_API_KEY", os.Getenv("API_KEY")),
		UseVertex:     envBool("GOOGLE_GENAI_USE_VERTEXAI", false),
		CloudProject:  os.Getenv("GOOGLE_CLOUD_PROJECT"),
		CloudLocation: env("GOOGLE_CLOUD_LOCATION", "us-central1"),
		PackageModel:  os.Getenv("SOULSOUND_PACKAGE_MODEL"),
		VideoModel:    os.Getenv("SOULSOUND_VIDEO_MODEL"),
		SpeechModel:   os.Getenv("SOULSOUND_TTS_MODEL"),

		VideoPollInterval: envDuration("SOULSOUND_VIDEO_POLL_INTERVAL", 5*time.Second),
		VideoMaxPolls:     envInt("SOULSOUND_VIDEO_MAX_POLLS", 60),
		VideoBackoff:      envFloat("SOULSOUND_VIDEO_BACKOFF", 1),
		RenderSlots:       envInt("SOULSOUND_RENDER_SLOTS", 4),
		RenderQueue:       envInt("SOULSOUND_RENDER_QUEUE", 16),
		RenderAttempts:    envInt("SOULSOUND_RENDER_ATTEMPTS", 1),

		MediaBackend: strings.ToLower(env("SOULSOUND_MEDIA_BACKEND", "local")),
		MediaDir:     env("SOULSOUND_MEDIA_DIR", "./data/media"),
		MediaBaseURL: env("SOULSOUND_MEDIA_BASE_URL", "/api/v1/media"),
		S3Bucket:     os.Getenv("S3_BUCKET"),
		S3Region:     env("S3_REGION", "us-east-1"),
		S3Profile:    os.Getenv("S3_PROFILE"),
		S3Prefix:     env("S3_PREFIX", "soulsound"),
		S3PathStyle:  envBool("S3_USE_PATH_STYLE", false),

		RedisAddr: os.Getenv("REDIS_ADDR"),
		RedisPass: os.Getenv("REDIS_PASS"),
		RedisDB:   envInt("REDIS_DB", 0),

		CameraDevice: env("SOULSOUND_CAMERA_DEVICE", "/dev/video0"),
		CameraFormat: os.Getenv("SOULSOUND_CAMERA_FORMAT"),
		MicDevice:    os.Getenv("SOULSOUND_MIC_DEVICE"),
		MicFormat:    os.Getenv("SOULSOUND_MIC_FORMAT"),
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envList(key, fallback string) []string {
	var out []string
	for _, v := range strings.Split(env(key, fallback), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
