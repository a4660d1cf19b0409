package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SOULSOUND_PROVIDER", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")
	cfg := Load()
	if cfg.Provider != "mock" || cfg.MediaBackend != "local" {
		t.Fatalf("provider=%q media=%q", cfg.Provider, cfg.MediaBackend)
	}
	if cfg.VideoPollInterval != 5*time.Second || cfg.VideoMaxPolls != 60 {
		t.Fatalf("poll=%s max=%d", cfg.VideoPollInterval, cfg.VideoMaxPolls)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SOULSOUND_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "fallback-key")
	t.Setenv("SOULSOUND_VIDEO_POLL_INTERVAL", "2s")
	t.Setenv("SOULSOUND_VIDEO_BACKOFF", "1.5")
	t.Setenv("S3_USE_PATH_STYLE", "true")
	t.Setenv("REDIS_DB", "not-a-number")
	cfg := Load()
	if cfg.Provider != "gemini" || cfg.APIKey != "fallback-key" {
		t.Fatalf("provider=%q key=%q", cfg.Provider, cfg.APIKey)
	}
	if cfg.VideoPollInterval != 2*time.Second || cfg.VideoBackoff != 1.5 || !cfg.S3PathStyle {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.RedisDB != 0 {
		t.Fatalf("bad int should fall back, got %d", cfg.RedisDB)
	}
}

func TestAllowedOriginsList(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", " https://app.soulsound.fm, ,http://localhost:5173 ")
	got := Load().AllowedOrigins
	if len(got) != 2 || got[0] != "https://app.soulsound.fm" || got[1] != "http://localhost:5173" {
		t.Fatalf("origins=%q", got)
	}
}

func TestCaptureDevicesDeferToPlatform(t *testing.T) {
	t.Setenv("SOULSOUND_CAMERA_FORMAT", "")
	t.Setenv("SOULSOUND_MIC_DEVICE", "")
	t.Setenv("SOULSOUND_MIC_FORMAT", "")
	cfg := Load()
	if cfg.CameraFormat != "" || cfg.MicDevice != "" || cfg.MicFormat != "" {
		t.Fatalf("camera format=%q mic=%q/%q", cfg.CameraFormat, cfg.MicDevice, cfg.MicFormat)
	}

	t.Setenv("SOULSOUND_MIC_DEVICE", "hw:1")
	t.Setenv("SOULSOUND_MIC_FORMAT", "alsa")
	cfg = Load()
	if cfg.MicDevice != "hw:1" || cfg.MicFormat != "alsa" {
		t.Fatalf("mic=%q/%q", cfg.MicDevice, cfg.MicFormat)
	}
}
