package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sk88studiosinc-maker/Soulsound/internal/media"
	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
	"github.com/sk88studiosinc-maker/Soulsound/internal/provider"
)

type State string

const (
	StateIdle       State = "idle"
	StatePreviewing State = "previewing"
	StateRecording  State = "recording"
	StateReviewing  State = "reviewing"
	StateClosed     State = "closed"
)

const RecordingMimeType = "video/webm"

var ErrInvalidState = errors.New("capture: invalid state")

type Recording struct {
	Data     []byte
	MimeType string
	Elapsed  time.Duration
	Filter   Filter
}

type Options struct {
	// Tick is the elapsed-counter period; one second unless overridden.
	Tick time.Duration
	// OnTick observes the elapsed seconds while recording.
	OnTick func(seconds int)
	Logger *slog.Logger
	Now    func() time.Time
}

type chunkBuffer struct {
	mu     sync.Mutex
	chunks [][]byte
}

func (b *chunkBuffer) add(p []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chunks = append(b.chunks, append([]byte(nil), p...))
}

func (b *chunkBuffer) join() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Join(b.chunks, nil)
}

// Session is one visit to the studio. It owns the camera stream from Open
// until Close; Close is safe to call any number of times and from any exit
// path.
type Session struct {
	factory RecorderFactory
	opts    Options
	log     *slog.Logger

	mu       sync.Mutex
	state    State
	stream   Stream
	filter   Filter
	recorder Recorder
	buf      *chunkBuffer
	elapsed  int
	review   *Recording

	tickStop chan struct{}
	tickDone chan struct{}

	closeOnce sync.Once
}

// Open acquires the camera. When access fails the returned session is
// already closed and holds no stream.
func Open(ctx context.Context, dev Device, factory RecorderFactory, opts Options) (*Session, error) {
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Session{factory: factory, opts: opts, log: opts.Logger, state: StateIdle, filter: FilterNatural}

	stream, err := dev.Acquire(ctx, DefaultConstraints())
	if err != nil {
		s.log.Warn("camera_access_failed", "error", err)
		s.Close()
		return s, provider.MediaAccessError(err)
	}
	s.mu.Lock()
	s.stream = stream
	s.state = StatePreviewing
	s.mu.Unlock()
	s.log.Info("studio_opened", "tracks", len(stream.Tracks()))
	return s, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stream returns the attached stream, nil once closed.
func (s *Session) Stream() Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream
}

func (s *Session) Filter() Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

func (s *Session) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

func (s *Session) Review() (Recording, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.review == nil {
		return Recording{}, false
	}
	return *s.review, true
}

func (s *Session) SelectFilter(f Filter) error {
	if _, ok := Describe(f); !ok {
		return fmt.Errorf("capture: unknown filter %q", f)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return ErrInvalidState
	}
	s.filter = f
	if fs, ok := s.recorder.(FilterSetter); ok {
		fs.SetFilter(f)
	}
	return nil
}

func (s *Session) StartRecording() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePreviewing {
		return ErrInvalidState
	}
	rec, err := s.factory.NewRecorder(s.stream, RecordingMimeType, s.filter)
	if err != nil {
		return fmt.Errorf("capture: create recorder: %w", err)
	}
	buf := &chunkBuffer{}
	if err := rec.Start(buf.add); err != nil {
		return fmt.Errorf("capture: start recorder: %w", err)
	}
	s.recorder = rec
	s.buf = buf
	s.elapsed = 0
	s.review = nil
	s.state = StateRecording
	s.startTickerLocked()
	s.log.Info("recording_started", "filter", s.filter)
	return nil
}

func (s *Session) StopRecording() (Recording, error) {
	s.mu.Lock()
	if s.state != StateRecording {
		s.mu.Unlock()
		return Recording{}, ErrInvalidState
	}
	rec, buf := s.recorder, s.buf
	s.recorder, s.buf = nil, nil
	s.mu.Unlock()

	// The ticker goroutine takes s.mu, so stop it before relocking.
	s.stopTicker()
	stopErr := rec.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return Recording{}, ErrInvalidState
	}
	r := Recording{
		Data:     buf.join(),
		MimeType: RecordingMimeType,
		Elapsed:  time.Duration(s.elapsed) * time.Second,
		Filter:   s.filter,
	}
	s.review = &r
	s.state = StateReviewing
	if stopErr != nil {
		s.log.Warn("recorder_stop_failed", "error", stopErr)
	}
	s.log.Info("recording_stopped", "bytes", len(r.Data), "elapsed_s", s.elapsed)
	return r, nil
}

// Discard drops the reviewed take and returns to the live preview on the
// same stream.
func (s *Session) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReviewing {
		return ErrInvalidState
	}
	s.review = nil
	s.elapsed = 0
	s.state = StatePreviewing
	return nil
}

// Download stores the reviewed take as soulsound-prod-<unix-ms>.webm.
func (s *Session) Download(ctx context.Context, st media.Store) (model.MediaRef, error) {
	s.mu.Lock()
	if s.state != StateReviewing || s.review == nil {
		s.mu.Unlock()
		return model.MediaRef{}, ErrInvalidState
	}
	r := *s.review
	s.mu.Unlock()

	name := fmt.Sprintf("soulsound-prod-%d.webm", s.opts.Now().UnixMilli())
	ref, err := st.Put(ctx, name, r.MimeType, bytes.NewReader(r.Data))
	if err != nil {
		return model.MediaRef{}, fmt.Errorf("capture: save recording: %w", err)
	}
	s.log.Info("recording_saved", "key", ref.Key, "bytes", ref.SizeBytes)
	return ref, nil
}

// Close stops any active recorder, every track, and the elapsed counter.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.stopTicker()
		s.mu.Lock()
		rec, stream := s.recorder, s.stream
		s.recorder, s.buf, s.stream = nil, nil, nil
		s.review = nil
		s.state = StateClosed
		s.mu.Unlock()

		if rec != nil {
			if err := rec.Stop(); err != nil {
				s.log.Warn("recorder_stop_failed", "error", err)
			}
		}
		if stream != nil {
			for _, t := range stream.Tracks() {
				t.Stop()
			}
		}
		s.log.Info("studio_closed")
	})
}

func (s *Session) startTickerLocked() {
	stop := make(chan struct{})
	done := make(chan struct{})
	s.tickStop, s.tickDone = stop, done
	tick := time.NewTicker(s.opts.Tick)
	go func() {
		defer close(done)
		defer tick.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tick.C:
				s.mu.Lock()
				s.elapsed++
				n := s.elapsed
				s.mu.Unlock()
				if s.opts.OnTick != nil {
					s.opts.OnTick(n)
				}
			}
		}
	}()
}

func (s *Session) stopTicker() {
	s.mu.Lock()
	stop, done := s.tickStop, s.tickDone
	s.tickStop, s.tickDone = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}
