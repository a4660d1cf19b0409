package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sk88studiosinc-maker/Soulsound/internal/media"
	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
	"github.com/sk88studiosinc-maker/Soulsound/internal/provider"
)

const (
	DefaultModel        = "veo-3.1-fast-generate-preview"
	DefaultPollInterval = 5 * time.Second
	DefaultMaxPolls     = 60
	Resolution          = "720p"
	AspectRatio         = "9:16"
)

var errNoLocator = errors.New("video generation failed: operation finished without a video")

type Options struct {
	Model        string
	PollInterval time.Duration
	MaxPolls     int
	// Backoff multiplies the interval after every poll; values <= 1 keep it
	// fixed. The interval never grows past MaxInterval.
	Backoff     float64
	MaxInterval time.Duration
}

type Result struct {
	Media  model.MediaRef
	Prompt string
}

// StatusFunc receives the rotating status line on every poll tick.
type StatusFunc func(message string)

type Builder struct {
	video provider.VideoModel
	media media.Store
	log   *slog.Logger
	opts  Options
}

func NewBuilder(v provider.VideoModel, st media.Store, logger *slog.Logger, opts Options) *Builder {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.MaxPolls < 1 {
		opts.MaxPolls = DefaultMaxPolls
	}
	if opts.MaxInterval < opts.PollInterval {
		opts.MaxInterval = 8 * opts.PollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{video: v, media: st, log: logger, opts: opts}
}

func Prompt(style model.VideoStyle, plan string) string {
	return fmt.Sprintf("A professional 9:16 vertical video for music promotion. Style Details: %s Content Description: %s Ultra-high quality, smooth frame rate, music-reactive visuals, atmospheric.",
		Descriptor(style), plan)
}

// Generate starts a synthesis operation, polls it until it finishes, and
// stores the resulting clip. Polling stops after MaxPolls with a timeout
// error, or as soon as ctx is cancelled.
func (b *Builder) Generate(ctx context.Context, style model.VideoStyle, plan string, onStatus StatusFunc) (Result, error) {
	prompt := Prompt(style, plan)
	op, err := b.video.StartVideo(ctx, provider.VideoRequest{
		Model:          b.opts.Model,
		Prompt:         prompt,
		NumberOfVideos: 1,
		Resolution:     Resolution,
		AspectRatio:    AspectRatio,
	})
	if err != nil {
		return Result{}, b.classify(ctx, "start", err)
	}
	b.log.Info("video_started", "operation", op.Name, "style", style)

	interval := b.opts.PollInterval
	for polls := 0; !op.Done; polls++ {
		if polls >= b.opts.MaxPolls {
			b.log.Warn("video_poll_exhausted", "operation", op.Name, "polls", polls)
			return Result{}, provider.TimeoutError(fmt.Errorf("operation %s not done after %d polls", op.Name, polls))
		}
		if onStatus != nil {
			onStatus(StatusMessages[polls%len(StatusMessages)])
		}
		if err := sleepWithCancel(ctx, interval); err != nil {
			return Result{}, b.classify(ctx, "wait", err)
		}
		op, err = b.video.PollVideo(ctx, op)
		if err != nil {
			return Result{}, b.classify(ctx, "poll", err)
		}
		b.log.Debug("video_poll", "operation", op.Name, "poll", polls+1, "done", op.Done)
		interval = b.nextInterval(interval)
	}
	if op.Err != nil {
		return Result{}, b.classify(ctx, "operation", op.Err)
	}

	ref, err := b.materialise(ctx, op)
	if err != nil {
		return Result{}, err
	}
	b.log.Info("video_ready", "operation", op.Name, "key", ref.Key, "bytes", ref.SizeBytes)
	return Result{Media: ref, Prompt: prompt}, nil
}

func (b *Builder) materialise(ctx context.Context, op provider.Operation) (model.MediaRef, error) {
	var (
		body     io.Reader
		mimeType = "video/mp4"
	)
	switch {
	case len(op.Inline) > 0:
		body = bytes.NewReader(op.Inline)
	case op.URI != "":
		rc, mt, err := b.video.Fetch(ctx, op.URI)
		if err != nil {
			return model.MediaRef{}, b.classify(ctx, "fetch", err)
		}
		defer rc.Close()
		body, mimeType = rc, mt
	default:
		return model.MediaRef{}, provider.VideoGenerationFailure(errNoLocator)
	}
	ref, err := b.media.Put(ctx, "clip"+media.ExtensionFor(mimeType), mimeType, body)
	if err != nil {
		return model.MediaRef{}, b.classify(ctx, "store", err)
	}
	return ref, nil
}

func (b *Builder) nextInterval(cur time.Duration) time.Duration {
	if b.opts.Backoff <= 1 {
		return cur
	}
	next := time.Duration(float64(cur) * b.opts.Backoff)
	if next > b.opts.MaxInterval {
		return b.opts.MaxInterval
	}
	return next
}

func (b *Builder) classify(ctx context.Context, stage string, err error) error {
	var pErr *provider.Error
	if errors.As(err, &pErr) {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return provider.TimeoutError(err)
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return provider.Canceled(err)
	}
	b.log.Error("video_failed", "stage", stage, "error", err)
	if provider.IsEntitlementMessage(err) {
		return provider.EntitlementError(err)
	}
	return provider.VideoGenerationFailure(err)
}

func sleepWithCancel(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
