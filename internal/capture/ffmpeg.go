package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const (
	ExportWidth  = 720
	ExportHeight = 1280
)

// NoAudio disables the microphone input.
const NoAudio = "none"

type FFmpegConfig struct {
	// Input is the camera, e.g. /dev/video0 (v4l2) or "0" (avfoundation).
	Input  string
	Format string
	// AudioInput is the microphone; empty picks the platform default and
	// NoAudio records video only.
	AudioInput  string
	AudioFormat string
	Framerate   int
}

func defaultFormat() string {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation"
	case "windows":
		return "dshow"
	}
	return "v4l2"
}

func defaultAudio() (input, format string) {
	switch runtime.GOOS {
	case "darwin":
		return ":0", "avfoundation"
	case "windows":
		// dshow needs a device name; there is no portable default.
		return "", "dshow"
	}
	return "default", "alsa"
}

// FFmpegDevice records from a local camera through the ffmpeg binary. It
// implements both Device and RecorderFactory.
type FFmpegDevice struct {
	cfg FFmpegConfig
}

func NewFFmpegDevice(cfg FFmpegConfig) *FFmpegDevice {
	if cfg.Input == "" {
		cfg.Input = "/dev/video0"
	}
	if cfg.Format == "" {
		cfg.Format = defaultFormat()
	}
	input, format := defaultAudio()
	if cfg.AudioInput == "" {
		cfg.AudioInput = input
	}
	if cfg.AudioInput == NoAudio {
		cfg.AudioInput = ""
	}
	if cfg.AudioInput != "" && cfg.AudioFormat == "" {
		cfg.AudioFormat = format
	}
	if cfg.Framerate <= 0 {
		cfg.Framerate = 30
	}
	return &FFmpegDevice{cfg: cfg}
}

type ffmpegTrack struct {
	kind    string
	stopped atomic.Bool
}

func (t *ffmpegTrack) Kind() string { return t.kind }
func (t *ffmpegTrack) Stop()        { t.stopped.Store(true) }

type ffmpegStream struct {
	tracks []Track
}

func (s *ffmpegStream) Tracks() []Track { return s.tracks }

func (s *ffmpegStream) live() bool {
	for _, t := range s.tracks {
		if ft, ok := t.(*ffmpegTrack); ok && ft.stopped.Load() {
			return false
		}
	}
	return true
}

func (d *FFmpegDevice) Acquire(ctx context.Context, c Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not available: %w", err)
	}
	if strings.HasPrefix(d.cfg.Input, "/dev/") {
		f, err := os.Open(d.cfg.Input)
		if err != nil {
			return nil, fmt.Errorf("open camera %s: %w", d.cfg.Input, err)
		}
		f.Close()
	}
	return d.stream(c), nil
}

func (d *FFmpegDevice) stream(c Constraints) *ffmpegStream {
	st := &ffmpegStream{tracks: []Track{&ffmpegTrack{kind: "video"}}}
	if c.Audio && d.cfg.AudioInput != "" {
		st.tracks = append(st.tracks, &ffmpegTrack{kind: "audio"})
	}
	return st
}

func (d *FFmpegDevice) NewRecorder(stream Stream, mimeType string, f Filter) (Recorder, error) {
	st, ok := stream.(*ffmpegStream)
	if !ok {
		return nil, errors.New("stream was not acquired from this device")
	}
	if !st.live() {
		return nil, errors.New("stream already stopped")
	}
	if mimeType != RecordingMimeType {
		return nil, fmt.Errorf("unsupported recording type %q", mimeType)
	}
	return &ffmpegRecorder{dev: d, filter: f, withAudio: len(st.tracks) > 1}, nil
}

// recordStream builds the live capture pipeline: portrait crop, filter, webm on
// stdout.
func (d *FFmpegDevice) recordStream(f Filter, withAudio bool) *ffmpeg.Stream {
	desc, _ := Describe(f)
	video := ffmpeg.Input(d.cfg.Input, ffmpeg.KwArgs{
		"f":         d.cfg.Format,
		"framerate": d.cfg.Framerate,
	})
	v := video.Filter("crop", ffmpeg.Args{"ih*9/16", "ih"})
	v = applySteps(v, desc.FFmpeg)
	streams := []*ffmpeg.Stream{v}
	if withAudio {
		streams = append(streams, ffmpeg.Input(d.cfg.AudioInput, ffmpeg.KwArgs{"f": d.cfg.AudioFormat}))
	}
	return ffmpeg.Output(streams, "pipe:1", ffmpeg.KwArgs{
		"f":        "webm",
		"c:v":      "libvpx-vp9",
		"deadline": "realtime",
		"c:a":      "libopus",
	})
}

type chunkWriter func([]byte)

func (w chunkWriter) Write(p []byte) (int, error) {
	w(p)
	return len(p), nil
}

type ffmpegRecorder struct {
	dev       *FFmpegDevice
	filter    Filter
	withAudio bool

	mu     sync.Mutex
	cmd    *exec.Cmd
	done   chan error
	stderr bytes.Buffer
}

func (r *ffmpegRecorder) Start(onChunk func([]byte)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cmd != nil {
		return errors.New("recorder already started")
	}
	cmd := r.dev.recordStream(r.filter, r.withAudio).Compile()
	cmd.Stdout = chunkWriter(onChunk)
	cmd.Stderr = &r.stderr
	if err := cmd.Start(); err != nil {
		return err
	}
	r.cmd = cmd
	r.done = make(chan error, 1)
	go func() { r.done <- cmd.Wait() }()
	return nil
}

// Stop interrupts ffmpeg so it finalises the container; Wait returns only
// after stdout has been fully copied.
func (r *ffmpegRecorder) Stop() error {
	r.mu.Lock()
	cmd, done := r.cmd, r.done
	r.mu.Unlock()
	if cmd == nil {
		return nil
	}
	_ = cmd.Process.Signal(os.Interrupt)
	select {
	case <-done:
		return nil
	case <-time.After(5 * time.Second):
		_ = cmd.Process.Kill()
		<-done
		return fmt.Errorf("ffmpeg did not stop cleanly: %s", lastLine(r.stderr.String()))
	}
}

// Export transcodes a recording into a 720x1280 H.264/AAC MP4. The take
// already carries its filter, so only scaling and cropping are applied.
func Export(ctx context.Context, in, out string) error {
	cmd := exportStream(in, out).OverWriteOutput().Compile()
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := runCmd(ctx, cmd); err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, lastLine(stderr.String()))
	}
	return nil
}

func exportStream(in, out string) *ffmpeg.Stream {
	src := ffmpeg.Input(in)
	v := src.Video().
		Filter("scale", ffmpeg.Args{fmt.Sprint(ExportWidth), fmt.Sprint(ExportHeight)}, ffmpeg.KwArgs{"force_original_aspect_ratio": "increase"}).
		Filter("crop", ffmpeg.Args{fmt.Sprint(ExportWidth), fmt.Sprint(ExportHeight)})
	// "a?" keeps video-only takes exportable.
	return ffmpeg.Output([]*ffmpeg.Stream{v, src.Get("a?")}, out, ffmpeg.KwArgs{
		"c:v":      "libx264",
		"c:a":      "aac",
		"b:a":      "192k",
		"preset":   "fast",
		"pix_fmt":  "yuv420p",
		"movflags": "+faststart",
	})
}

func applySteps(s *ffmpeg.Stream, steps []FilterStep) *ffmpeg.Stream {
	for _, step := range steps {
		kw := ffmpeg.KwArgs{}
		for k, v := range step.KwArgs {
			kw[k] = v
		}
		s = s.Filter(step.Name, ffmpeg.Args(step.Args), kw)
	}
	return s
}

func runCmd(ctx context.Context, cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
