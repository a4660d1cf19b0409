package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
	"github.com/sk88studiosinc-maker/Soulsound/internal/platform"
	"github.com/sk88studiosinc-maker/Soulsound/internal/promo"
	"github.com/sk88studiosinc-maker/Soulsound/internal/provider"
	"github.com/sk88studiosinc-maker/Soulsound/internal/store"
	"github.com/sk88studiosinc-maker/Soulsound/internal/video"
)

type State string

const (
	StateEmpty           State = "empty"
	StateAnalyzing       State = "analyzing"
	StateReady           State = "ready"
	StateGeneratingVideo State = "generating_video"
	StateVideoReady      State = "video_ready"
)

const clipDurationSeconds = 10

var (
	ErrInvalidTransition = errors.New("invalid project state transition")
	// ErrSuperseded is returned to a request whose result was discarded because
	// a newer request (or a reset) replaced it.
	ErrSuperseded = errors.New("request superseded")
)

type PackageBuilder interface {
	Build(ctx context.Context, req promo.Request) (model.PromotionPackage, error)
}

type VideoGenerator interface {
	Generate(ctx context.Context, style model.VideoStyle, plan string, onStatus video.StatusFunc) (video.Result, error)
}

// Entitlement is the credential collaborator consulted before video
// generation and after a billing failure.
type Entitlement interface {
	HasSelectedKey(ctx context.Context) (bool, error)
	SelectKey(ctx context.Context) error
}

// EventSink receives every session event. It must not block.
type EventSink func(model.ProjectEvent)

type Deps struct {
	Packages PackageBuilder
	Videos   VideoGenerator
	Keys     Entitlement
	Store    store.ProjectStore
	Events   EventSink
	Logger   *slog.Logger
	// UserID scopes persisted snapshots and events.
	UserID string
}

type SubmitInput struct {
	Link            string
	Mood            string
	TargetPlatforms []model.SocialPlatform
	Style           model.VideoStyle
}

type ErrorInfo struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// Snapshot is a read-only copy of the session handed to views.
type Snapshot struct {
	State         State          `json:"state"`
	Project       *model.Project `json:"project"`
	StatusMessage string         `json:"status_message,omitempty"`
	Error         *ErrorInfo     `json:"error,omitempty"`
}

// Session owns the single active project and is its only mutator. Each
// asynchronous request captures a sequence number; a result that comes back
// after the number moved on is dropped.
type Session struct {
	deps Deps
	log  *slog.Logger

	mu      sync.Mutex
	state   State
	project *model.Project
	status  string
	lastErr *ErrorInfo
	seq     uint64
	cancel  context.CancelFunc
}

func New(deps Deps) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{deps: deps, log: logger.With("user_id", deps.UserID), state: StateEmpty}
}

// Restore reloads a persisted project. A generation that was in flight when
// the snapshot was written is not resumed.
func (s *Session) Restore(ctx context.Context) error {
	if s.deps.Store == nil {
		return nil
	}
	p, err := s.deps.Store.LoadProject(ctx, s.deps.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p.IsGeneratingVideo = false
	s.project = &p
	s.state = StateReady
	if len(p.VideoClips) > 0 {
		s.state = StateVideoReady
	}
	s.log.Info("project_restored", "project_id", p.ID, "clips", len(p.VideoClips))
	return nil
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{State: s.state, StatusMessage: s.status}
	if s.project != nil {
		p := s.project.Clone()
		snap.Project = &p
	}
	if s.lastErr != nil {
		e := *s.lastErr
		snap.Error = &e
	}
	return snap
}

// Submit analyses a track link and, on success, creates the project.
func (s *Session) Submit(ctx context.Context, in SubmitInput) (Snapshot, error) {
	link := strings.TrimSpace(in.Link)
	if link == "" {
		err := provider.InputInvalid("Paste a track link to begin.")
		s.mu.Lock()
		s.fail(err)
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, err
	}

	s.mu.Lock()
	if s.state != StateEmpty {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrInvalidTransition
	}
	runCtx, mySeq := s.beginLocked(ctx)
	detected := platform.Detect(link)
	s.state = StateAnalyzing
	s.lastErr = nil
	s.emitState()
	s.mu.Unlock()

	s.log.Info("project_analyzing", "link", link, "platform", detected, "style", in.Style)
	pkg, err := s.deps.Packages.Build(runCtx, promo.Request{
		Link:            link,
		Mood:            in.Mood,
		Platform:        detected,
		TargetPlatforms: in.TargetPlatforms,
		Style:           in.Style,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != mySeq {
		s.log.Info("package_result_discarded", "link", link)
		return s.snapshotLocked(), ErrSuperseded
	}
	s.endLocked()
	if err != nil {
		s.state = StateEmpty
		s.fail(err)
		return s.snapshotLocked(), err
	}

	now := time.Now().UTC()
	s.project = &model.Project{
		ID:              uuid.NewString(),
		MusicLink:       link,
		Mood:            in.Mood,
		Platform:        detected,
		TargetPlatforms: append([]model.SocialPlatform(nil), in.TargetPlatforms...),
		Style:           in.Style,
		Package:         &pkg,
		VideoClips:      []model.VideoClip{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.state = StateReady
	s.persistLocked()
	s.emitState()
	s.log.Info("project_ready", "project_id", s.project.ID, "platform", detected)
	return s.snapshotLocked(), nil
}

// GenerateVideo renders a clip for the active project and blocks until it is
// stored, fails, or is superseded by a newer request.
func (s *Session) GenerateVideo(ctx context.Context) (Snapshot, error) {
	run, err := s.startVideo(ctx)
	if err != nil {
		return s.Snapshot(), err
	}
	return run()
}

// RequestVideo validates and starts a video generation in the background and
// returns the GeneratingVideo snapshot right away.
func (s *Session) RequestVideo(ctx context.Context) (Snapshot, error) {
	run, err := s.startVideo(ctx)
	if err != nil {
		return s.Snapshot(), err
	}
	snap := s.Snapshot()
	go func() {
		_, _ = run()
	}()
	return snap, nil
}

func (s *Session) startVideo(ctx context.Context) (func() (Snapshot, error), error) {
	s.mu.Lock()
	ok := s.canGenerateLocked()
	s.mu.Unlock()
	if !ok {
		return nil, ErrInvalidTransition
	}

	s.ensureKey(ctx)

	s.mu.Lock()
	if !s.canGenerateLocked() {
		s.mu.Unlock()
		return nil, ErrInvalidTransition
	}
	if s.state == StateGeneratingVideo {
		s.log.Info("video_request_superseding", "project_id", s.project.ID)
	}
	// The run outlives an HTTP request, so it only inherits ctx values.
	runCtx, mySeq := s.beginLocked(context.WithoutCancel(ctx))
	style := s.project.Style
	plan := s.project.Package.VideoConcept.VisualPlan
	s.project.IsGeneratingVideo = true
	s.project.UpdatedAt = time.Now().UTC()
	s.state = StateGeneratingVideo
	s.status = video.InitialStatus
	s.lastErr = nil
	s.persistLocked()
	s.emitState()
	s.mu.Unlock()

	return func() (Snapshot, error) {
		return s.runVideo(runCtx, mySeq, style, plan)
	}, nil
}

func (s *Session) canGenerateLocked() bool {
	if s.project == nil || s.project.Package == nil {
		return false
	}
	switch s.state {
	case StateReady, StateVideoReady, StateGeneratingVideo:
		return true
	}
	return false
}

func (s *Session) runVideo(ctx context.Context, mySeq uint64, style model.VideoStyle, plan string) (Snapshot, error) {
	res, err := s.deps.Videos.Generate(ctx, style, plan, func(msg string) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.seq != mySeq {
			return
		}
		s.status = msg
		s.emit(model.EventVideoStatus, map[string]any{"message": msg})
	})

	s.mu.Lock()
	if s.seq != mySeq {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.log.Info("video_result_discarded", "error", err)
		return snap, ErrSuperseded
	}
	s.endLocked()
	s.project.IsGeneratingVideo = false
	s.project.UpdatedAt = time.Now().UTC()
	s.status = ""

	if err != nil {
		s.state = StateReady
		if len(s.project.VideoClips) > 0 {
			s.state = StateVideoReady
		}
		s.fail(err)
		s.persistLocked()
		s.emitState()
		snap := s.snapshotLocked()
		s.mu.Unlock()
		if provider.CodeOf(err) == provider.CodeEntitlement && s.deps.Keys != nil {
			if kerr := s.deps.Keys.SelectKey(context.WithoutCancel(ctx)); kerr != nil {
				s.log.Warn("key_selection_failed", "error", kerr)
			}
		}
		return snap, err
	}

	clip := model.VideoClip{
		ID:       uuid.NewString(),
		URL:      res.Media.URL,
		Prompt:   plan,
		Duration: clipDurationSeconds,
		Media:    res.Media,
	}
	s.project.VideoClips = append([]model.VideoClip{clip}, s.project.VideoClips...)
	s.project.ActiveVideoURL = clip.URL
	s.state = StateVideoReady
	s.persistLocked()
	s.emit(model.EventClipReady, map[string]any{"clip_id": clip.ID, "url": clip.URL})
	s.emitState()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.log.Info("clip_ready", "project_id", snap.Project.ID, "clip_id", clip.ID, "clips", len(snap.Project.VideoClips))
	return snap, nil
}

// SetActiveClip switches playback to an earlier clip.
func (s *Session) SetActiveClip(clipID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return s.snapshotLocked(), ErrInvalidTransition
	}
	for _, c := range s.project.VideoClips {
		if c.ID == clipID {
			s.project.ActiveVideoURL = c.URL
			s.project.UpdatedAt = time.Now().UTC()
			s.persistLocked()
			s.emitState()
			return s.snapshotLocked(), nil
		}
	}
	return s.snapshotLocked(), store.ErrNotFound
}

// Reset abandons the active project and any in-flight request.
func (s *Session) Reset() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.endLocked()
	s.state = StateEmpty
	s.project = nil
	s.status = ""
	s.lastErr = nil
	if s.deps.Store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := s.deps.Store.DeleteProject(ctx, s.deps.UserID); err != nil {
			s.log.Warn("project_delete_failed", "error", err)
		}
		cancel()
	}
	s.emitState()
	return s.snapshotLocked()
}

// Close cancels in-flight work without touching persisted state.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.endLocked()
}

func (s *Session) ensureKey(ctx context.Context) {
	if s.deps.Keys == nil {
		return
	}
	ok, err := s.deps.Keys.HasSelectedKey(ctx)
	if err != nil {
		s.log.Warn("key_check_failed", "error", err)
		return
	}
	if ok {
		return
	}
	if err := s.deps.Keys.SelectKey(ctx); err != nil {
		s.log.Warn("key_selection_failed", "error", err)
	}
}

func (s *Session) beginLocked(ctx context.Context) (context.Context, uint64) {
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return runCtx, s.seq
}

func (s *Session) endLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) fail(err error) {
	s.lastErr = errorInfo(err)
	s.log.Warn("project_error", "state", s.state, "code", s.lastErr.Code, "error", err)
	s.emit(model.EventError, map[string]any{
		"code":      s.lastErr.Code,
		"message":   s.lastErr.Message,
		"retryable": s.lastErr.Retryable,
	})
}

func errorInfo(err error) *ErrorInfo {
	var pErr *provider.Error
	if errors.As(err, &pErr) {
		return &ErrorInfo{Code: pErr.Code, Message: pErr.UserMessage, Retryable: pErr.Retryable}
	}
	return &ErrorInfo{Code: "INTERNAL", Message: err.Error()}
}

func (s *Session) persistLocked() {
	if s.deps.Store == nil || s.project == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.deps.Store.SaveProject(ctx, s.deps.UserID, *s.project); err != nil {
		s.log.Warn("project_persist_failed", "project_id", s.project.ID, "error", err)
	}
}

func (s *Session) emitState() {
	payload := map[string]any{"state": s.state}
	if s.project != nil {
		payload["active_video_url"] = s.project.ActiveVideoURL
		payload["clips"] = len(s.project.VideoClips)
	}
	s.emit(model.EventStateChanged, payload)
}

func (s *Session) emit(typ model.EventType, payload map[string]any) {
	if s.deps.Events == nil {
		return
	}
	evt := model.ProjectEvent{
		EventID: uuid.NewString(),
		UserID:  s.deps.UserID,
		Type:    typ,
		TS:      time.Now().UTC(),
		Payload: payload,
	}
	if s.project != nil {
		evt.ProjectID = s.project.ID
	}
	s.deps.Events(evt)
}
