package capture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sk88studiosinc-maker/Soulsound/internal/media"
	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
	"github.com/sk88studiosinc-maker/Soulsound/internal/provider"
)

type fakeTrack struct {
	kind  string
	stops atomic.Int32
}

func (t *fakeTrack) Kind() string { return t.kind }
func (t *fakeTrack) Stop()        { t.stops.Add(1) }

type fakeStream struct{ tracks []Track }

func (s *fakeStream) Tracks() []Track { return s.tracks }

type fakeDevice struct {
	err      error
	acquires atomic.Int32
	stream   *fakeStream
	video    *fakeTrack
	audio    *fakeTrack
	last     Constraints
}

func newFakeDevice() *fakeDevice {
	d := &fakeDevice{video: &fakeTrack{kind: "video"}, audio: &fakeTrack{kind: "audio"}}
	d.stream = &fakeStream{tracks: []Track{d.video, d.audio}}
	return d
}

func (d *fakeDevice) Acquire(_ context.Context, c Constraints) (Stream, error) {
	d.acquires.Add(1)
	d.last = c
	if d.err != nil {
		return nil, d.err
	}
	return d.stream, nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	onChunk func([]byte)
	filter  Filter
	stopped bool
}

func (r *fakeRecorder) Start(onChunk func([]byte)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChunk = onChunk
	onChunk([]byte("webm-head."))
	return nil
}

func (r *fakeRecorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.stopped {
		r.onChunk([]byte("tail"))
	}
	r.stopped = true
	return nil
}

func (r *fakeRecorder) SetFilter(f Filter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filter = f
}

type fakeFactory struct {
	mu        sync.Mutex
	recorders []*fakeRecorder
	streams   []Stream
}

func (f *fakeFactory) NewRecorder(stream Stream, mimeType string, filter Filter) (Recorder, error) {
	if mimeType != RecordingMimeType {
		return nil, errors.New("bad mime")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r := &fakeRecorder{filter: filter}
	f.recorders = append(f.recorders, r)
	f.streams = append(f.streams, stream)
	return r, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func open(t *testing.T, dev *fakeDevice, f *fakeFactory) *Session {
	t.Helper()
	s, err := Open(context.Background(), dev, f, Options{Tick: 5 * time.Millisecond, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestOpenUsesPortraitFrontCamera(t *testing.T) {
	dev := newFakeDevice()
	s := open(t, dev, &fakeFactory{})
	if s.State() != StatePreviewing {
		t.Fatalf("state=%s", s.State())
	}
	if dev.last != DefaultConstraints() || dev.last.FacingMode != "user" || dev.last.IdealWidth != 1080 || !dev.last.Audio {
		t.Fatalf("constraints=%+v", dev.last)
	}
}

func TestRecordStopElapsedWithinWallClock(t *testing.T) {
	dev := newFakeDevice()
	f := &fakeFactory{}
	s := open(t, dev, f)

	start := time.Now()
	if err := s.StartRecording(); err != nil {
		t.Fatalf("start: %v", err)
	}
	rec, err := s.StopRecording()
	wall := time.Since(start)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if rec.Elapsed < 0 || rec.Elapsed > wall {
		t.Fatalf("elapsed=%s wall=%s", rec.Elapsed, wall)
	}
	if string(rec.Data) != "webm-head.tail" || rec.MimeType != "video/webm" {
		t.Fatalf("recording=%q %s", rec.Data, rec.MimeType)
	}
	if s.State() != StateReviewing {
		t.Fatalf("state=%s", s.State())
	}
	if s.Stream() == nil {
		t.Fatalf("stream released after stop; it must stay open for a retake")
	}
}

func TestElapsedCounterTicks(t *testing.T) {
	dev := newFakeDevice()
	s := open(t, dev, &fakeFactory{})
	if err := s.StartRecording(); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for s.Elapsed() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("counter did not advance")
		}
		time.Sleep(time.Millisecond)
	}
	rec, err := s.StopRecording()
	if err != nil {
		t.Fatal(err)
	}
	frozen := s.Elapsed()
	time.Sleep(20 * time.Millisecond)
	if s.Elapsed() != frozen {
		t.Fatalf("counter kept running after stop")
	}
	if rec.Elapsed < 2*time.Second {
		t.Fatalf("elapsed=%s", rec.Elapsed)
	}
}

func TestDiscardReturnsToPreviewWithoutReacquire(t *testing.T) {
	dev := newFakeDevice()
	f := &fakeFactory{}
	s := open(t, dev, f)

	for i := 0; i < 2; i++ {
		if err := s.StartRecording(); err != nil {
			t.Fatal(err)
		}
		if _, err := s.StopRecording(); err != nil {
			t.Fatal(err)
		}
		if err := s.Discard(); err != nil {
			t.Fatal(err)
		}
		if s.State() != StatePreviewing {
			t.Fatalf("state=%s", s.State())
		}
		if _, ok := s.Review(); ok {
			t.Fatalf("review kept after discard")
		}
	}
	if dev.acquires.Load() != 1 {
		t.Fatalf("acquires=%d want 1", dev.acquires.Load())
	}
	if f.streams[0] != f.streams[1] {
		t.Fatalf("retake used a different stream")
	}
}

func TestCameraDeniedClosesSession(t *testing.T) {
	dev := newFakeDevice()
	dev.err = errors.New("NotAllowedError: permission denied")
	s, err := Open(context.Background(), dev, &fakeFactory{}, Options{Logger: quietLogger()})
	if provider.CodeOf(err) != provider.CodeMediaAccess {
		t.Fatalf("err=%v", err)
	}
	if s.State() != StateClosed || s.Stream() != nil {
		t.Fatalf("session not closed: state=%s", s.State())
	}
	if err := s.StartRecording(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("recording on a closed session: %v", err)
	}
}

func TestCloseIsIdempotentAndStopsEverything(t *testing.T) {
	dev := newFakeDevice()
	f := &fakeFactory{}
	s, err := Open(context.Background(), dev, f, Options{Tick: time.Millisecond, Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.StartRecording(); err != nil {
		t.Fatal(err)
	}
	s.Close()
	s.Close()

	if dev.video.stops.Load() != 1 || dev.audio.stops.Load() != 1 {
		t.Fatalf("track stops video=%d audio=%d", dev.video.stops.Load(), dev.audio.stops.Load())
	}
	if !f.recorders[0].stopped {
		t.Fatalf("active recorder not stopped")
	}
	frozen := s.Elapsed()
	time.Sleep(10 * time.Millisecond)
	if s.Elapsed() != frozen {
		t.Fatalf("ticker still running after close")
	}
	if s.State() != StateClosed || s.Stream() != nil {
		t.Fatalf("state=%s", s.State())
	}
}

func TestSelectFilterReachesLiveRecorder(t *testing.T) {
	dev := newFakeDevice()
	f := &fakeFactory{}
	s := open(t, dev, f)
	if err := s.SelectFilter(FilterNoir); err != nil {
		t.Fatal(err)
	}
	if err := s.StartRecording(); err != nil {
		t.Fatal(err)
	}
	if f.recorders[0].filter != FilterNoir {
		t.Fatalf("recorder created with %s", f.recorders[0].filter)
	}
	if err := s.SelectFilter(FilterTealOrange); err != nil {
		t.Fatal(err)
	}
	f.recorders[0].mu.Lock()
	got := f.recorders[0].filter
	f.recorders[0].mu.Unlock()
	if got != FilterTealOrange {
		t.Fatalf("live recorder filter=%s", got)
	}
	if err := s.SelectFilter("Sepia Dream"); err == nil {
		t.Fatalf("unknown filter accepted")
	}
}

func TestDownloadNamesRecording(t *testing.T) {
	st, err := media.NewLocalStore(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	st.PreserveNames = true
	dev := newFakeDevice()
	s, err := Open(context.Background(), dev, &fakeFactory{}, Options{
		Logger: quietLogger(),
		Now:    func() time.Time { return time.UnixMilli(1700000000123) },
	})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, err := s.Download(context.Background(), st); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("download without a take: %v", err)
	}
	if err := s.StartRecording(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.StopRecording(); err != nil {
		t.Fatal(err)
	}
	ref, err := s.Download(context.Background(), st)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if ref.Key != "soulsound-prod-1700000000123.webm" || ref.MimeType != "video/webm" {
		t.Fatalf("ref=%+v", ref)
	}
}

func TestTeleprompterWrapsAround(t *testing.T) {
	pkg := &model.PromotionPackage{
		VoiceoverScripts: []model.VoiceoverScript{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		CameraInstructions: model.CameraInstructions{
			Angles:   "Low angle",
			Movement: "Slow push",
		},
	}
	tp := NewTeleprompter(pkg)
	tp.Previous()
	if cur, _ := tp.Current(); cur.ID != "c" {
		t.Fatalf("previous from first=%s", cur.ID)
	}
	tp.Next()
	if cur, _ := tp.Current(); cur.ID != "a" {
		t.Fatalf("next from last=%s", cur.ID)
	}
	if n := tp.Notes(); n.Angle != "Low angle" || n.Motion != "Slow push" {
		t.Fatalf("notes=%+v", n)
	}
	empty := NewTeleprompter(nil)
	empty.Next()
	if _, ok := empty.Current(); ok {
		t.Fatalf("empty teleprompter returned a script")
	}
}

func TestFiltersAreComplete(t *testing.T) {
	if len(Filters()) != 10 {
		t.Fatalf("filters=%d", len(Filters()))
	}
	for _, f := range Filters() {
		d, ok := Describe(f)
		if !ok || d.CSS == "" {
			t.Fatalf("%s has no descriptor", f)
		}
		if f != FilterNatural && len(d.FFmpeg) == 0 {
			t.Fatalf("%s has no ffmpeg steps", f)
		}
	}
	if d, _ := Describe(FilterNatural); d.Graph() != "null" {
		t.Fatalf("natural graph=%q", d.Graph())
	}
	if d, _ := Describe(FilterNoir); d.Graph() != "hue=s=0,eq=brightness=-0.05:contrast=1.2" {
		t.Fatalf("noir graph=%q", d.Graph())
	}
	if f, ok := ParseFilter("teal & orange"); !ok || f != FilterTealOrange {
		t.Fatalf("parse=%q %v", f, ok)
	}
}
