package job

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
	"github.com/sk88studiosinc-maker/Soulsound/internal/provider"
	"github.com/sk88studiosinc-maker/Soulsound/internal/video"
)

var ErrQueueFull = errors.New("render queue is full")

const WaitingStatus = "Waiting for a free render slot..."

type Generator interface {
	Generate(ctx context.Context, style model.VideoStyle, plan string, onStatus video.StatusFunc) (video.Result, error)
}

type Options struct {
	// MaxConcurrent bounds renders in flight across all artists.
	MaxConcurrent int
	// MaxWaiting bounds renders queued for a slot; further requests fail fast.
	MaxWaiting int
	// MaxAttempts includes the first try. Only retryable generation
	// failures are retried.
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
	Logger      *slog.Logger
}

// Queue sits in front of the video builder and shares the render quota
// between artist sessions.
type Queue struct {
	next Generator
	opts Options
	log  *slog.Logger
	sem  chan struct{}

	mu      sync.Mutex
	waiting int
}

func NewQueue(next Generator, opts Options) *Queue {
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 4
	}
	if opts.MaxWaiting < 0 {
		opts.MaxWaiting = 0
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.Backoff == nil {
		opts.Backoff = retryBackoff
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Queue{
		next: next,
		opts: opts,
		log:  opts.Logger,
		sem:  make(chan struct{}, opts.MaxConcurrent),
	}
}

func (q *Queue) Generate(ctx context.Context, style model.VideoStyle, plan string, onStatus video.StatusFunc) (video.Result, error) {
	if err := q.acquire(ctx, onStatus); err != nil {
		return video.Result{}, err
	}
	defer func() { <-q.sem }()

	var lastErr error
	for attempt := 1; attempt <= q.opts.MaxAttempts; attempt++ {
		res, err := q.next.Generate(ctx, style, plan, onStatus)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if attempt == q.opts.MaxAttempts || !retryable(ctx, err) {
			break
		}
		wait := q.opts.Backoff(attempt)
		q.log.Warn("video_retry", "attempt", attempt, "backoff_ms", wait.Milliseconds(), "error", err)
		if !sleepWithCancel(ctx, wait) {
			return video.Result{}, provider.Canceled(ctx.Err())
		}
	}
	return video.Result{}, lastErr
}

// Stats reports renders in flight and renders waiting for a slot.
func (q *Queue) Stats() (running, waiting int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.sem), q.waiting
}

func (q *Queue) acquire(ctx context.Context, onStatus video.StatusFunc) error {
	select {
	case q.sem <- struct{}{}:
		return nil
	default:
	}

	q.mu.Lock()
	if q.waiting >= q.opts.MaxWaiting {
		q.mu.Unlock()
		return provider.VideoGenerationFailure(ErrQueueFull)
	}
	q.waiting++
	q.mu.Unlock()
	defer func() {
		q.mu.Lock()
		q.waiting--
		q.mu.Unlock()
	}()

	if onStatus != nil {
		onStatus(WaitingStatus)
	}
	q.log.Info("video_queued", "running", len(q.sem))
	select {
	case q.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return provider.Canceled(ctx.Err())
	}
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var pErr *provider.Error
	if !errors.As(err, &pErr) {
		return false
	}
	return pErr.Code == provider.CodeVideoFailed && pErr.Retryable && !errors.Is(err, ErrQueueFull)
}

func retryBackoff(attempt int) time.Duration {
	base := time.Second << max(attempt-1, 0) // 1s, 2s, 4s...
	jitter := time.Duration(rand.Int63n(int64(base / 5)))
	return base + jitter
}

func sleepWithCancel(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
