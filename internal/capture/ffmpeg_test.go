package capture

import (
	"runtime"
	"slices"
	"strings"
	"testing"
)

func recordArgs(t *testing.T, dev *FFmpegDevice, f Filter) []string {
	t.Helper()
	rec, err := dev.NewRecorder(dev.stream(DefaultConstraints()), RecordingMimeType, f)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	return dev.recordStream(f, rec.(*ffmpegRecorder).withAudio).GetArgs()
}

func inputs(args []string) []string {
	var out []string
	for i, a := range args {
		if a == "-i" && i+1 < len(args) {
			out = append(out, args[i+1])
		}
	}
	return out
}

func TestRecordCapturesMicrophone(t *testing.T) {
	dev := NewFFmpegDevice(FFmpegConfig{Input: "/dev/video2", Format: "v4l2", AudioInput: "hw:1", AudioFormat: "alsa"})
	args := recordArgs(t, dev, FilterNatural)
	if got := inputs(args); !slices.Equal(got, []string{"/dev/video2", "hw:1"}) {
		t.Fatalf("inputs=%q args=%q", got, args)
	}
	if !slices.Contains(args, "alsa") || !slices.Contains(args, "libopus") {
		t.Fatalf("audio input not encoded: %q", args)
	}
}

func TestRecordDefaultsMicrophoneOnLinux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("alsa default only applies on linux")
	}
	dev := NewFFmpegDevice(FFmpegConfig{Input: "/dev/video0"})
	args := recordArgs(t, dev, FilterNatural)
	if got := inputs(args); !slices.Equal(got, []string{"/dev/video0", "default"}) {
		t.Fatalf("inputs=%q", got)
	}
	if !slices.Contains(args, "v4l2") || !slices.Contains(args, "alsa") {
		t.Fatalf("platform formats missing: %q", args)
	}
}

func TestRecordWithoutMicrophone(t *testing.T) {
	dev := NewFFmpegDevice(FFmpegConfig{Input: "/dev/video0", Format: "v4l2", AudioInput: NoAudio})
	st := dev.stream(DefaultConstraints())
	if len(st.Tracks()) != 1 {
		t.Fatalf("tracks=%d", len(st.Tracks()))
	}
	if got := inputs(recordArgs(t, dev, FilterNatural)); !slices.Equal(got, []string{"/dev/video0"}) {
		t.Fatalf("inputs=%q", got)
	}
}

func TestExportDoesNotRegradeTake(t *testing.T) {
	dev := NewFFmpegDevice(FFmpegConfig{Input: "/dev/video0", Format: "v4l2", AudioInput: "hw:1"})
	record := strings.Join(recordArgs(t, dev, FilterNoir), " ")
	if !strings.Contains(record, "hue=s=0") {
		t.Fatalf("noir missing from live recording: %s", record)
	}

	args := exportStream("in.webm", "out.mp4").GetArgs()
	joined := strings.Join(args, " ")
	for _, want := range []string{"in.webm", "out.mp4", "libx264", "aac", "scale", "crop"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("export args missing %q: %s", want, joined)
		}
	}
	for _, f := range Filters() {
		d, _ := Describe(f)
		for _, step := range d.FFmpeg {
			if strings.Contains(joined, step.String()) {
				t.Fatalf("export applies %s step %s: %s", f, step, joined)
			}
		}
	}
}

func TestExportAudioIsOptional(t *testing.T) {
	args := exportStream("in.webm", "out.mp4").GetArgs()
	if !slices.Contains(args, "0:a?") {
		t.Fatalf("audio map is not optional: %q", args)
	}
	if slices.Contains(args, "0:a") {
		t.Fatalf("hard audio map: %q", args)
	}
}
