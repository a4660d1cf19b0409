package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sk88studiosinc-maker/Soulsound/internal/auth"
	"github.com/sk88studiosinc-maker/Soulsound/internal/config"
	"github.com/sk88studiosinc-maker/Soulsound/internal/events"
	"github.com/sk88studiosinc-maker/Soulsound/internal/job"
	"github.com/sk88studiosinc-maker/Soulsound/internal/media"
	"github.com/sk88studiosinc-maker/Soulsound/internal/promo"
	"github.com/sk88studiosinc-maker/Soulsound/internal/provider"
	"github.com/sk88studiosinc-maker/Soulsound/internal/speech"
	"github.com/sk88studiosinc-maker/Soulsound/internal/store"
	"github.com/sk88studiosinc-maker/Soulsound/internal/video"
)

type generator interface {
	provider.TextModel
	provider.VideoModel
	provider.SpeechModel
}

// Runtime is the wired process: provider, media backend, persistence and the
// shared per-artist services. Both binaries start from it.
type Runtime struct {
	Accounts *store.MemoryStore
	Projects store.ProjectStore
	Hub      *events.Hub
	Keys     *auth.Keyring
	Media    media.Store
	Speech   *speech.Synthesizer
	Services Services

	closers []func() error
}

func NewRuntime(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rt := &Runtime{
		Accounts: store.NewMemoryStore(),
		Hub:      events.NewHub(),
		Keys:     auth.NewKeyring(cfg.APIKey, cfg.UseVertex),
	}

	var gen generator
	switch cfg.Provider {
	case "gemini":
		gen = provider.NewGeminiAdapter(provider.GeminiConfig{
			Keys:      rt.Keys,
			UseVertex: cfg.UseVertex,
			Project:   cfg.CloudProject,
			Location:  cfg.CloudLocation,
		})
	case "mock", "":
		gen = provider.NewMockAdapter()
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	switch cfg.MediaBackend {
	case "s3":
		st, err := media.NewS3Store(ctx, media.S3Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			Profile:      cfg.S3Profile,
			Prefix:       cfg.S3Prefix,
			UsePathStyle: cfg.S3PathStyle,
			BaseURL:      cfg.MediaBaseURL,
		})
		if err != nil {
			return nil, err
		}
		rt.Media = st
	case "local", "":
		st, err := media.NewLocalStore(cfg.MediaDir, cfg.MediaBaseURL)
		if err != nil {
			return nil, err
		}
		rt.Media = st
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.MediaBackend)
	}

	rt.Projects = rt.Accounts
	if cfg.RedisAddr != "" {
		rs, err := store.NewRedisStore(ctx, store.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		rt.Projects = rs
		rt.closers = append(rt.closers, rs.Close)
	}

	rt.Speech = speech.NewSynthesizer(gen, rt.Media, cfg.SpeechModel, logger)
	rt.Services = Services{
		Packages: promo.NewBuilder(gen, cfg.PackageModel, logger),
		Videos: job.NewQueue(video.NewBuilder(gen, rt.Media, logger, video.Options{
			Model:        cfg.VideoModel,
			PollInterval: cfg.VideoPollInterval,
			MaxPolls:     cfg.VideoMaxPolls,
			Backoff:      cfg.VideoBackoff,
		}), job.Options{
			MaxConcurrent: cfg.RenderSlots,
			MaxWaiting:    cfg.RenderQueue,
			MaxAttempts:   cfg.RenderAttempts,
			Logger:        logger,
		}),
		Keys:   rt.Keys,
		Store:  rt.Projects,
		Log:    rt.Accounts,
		Hub:    rt.Hub,
		Logger: logger,
	}
	logger.Info("runtime_ready",
		"provider", cfg.Provider,
		"media_backend", cfg.MediaBackend,
		"redis", cfg.RedisAddr != "",
		"vertex", cfg.UseVertex,
	)
	return rt, nil
}

func (r *Runtime) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
