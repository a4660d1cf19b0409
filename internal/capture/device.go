package capture

import "context"

// Constraints mirror what the studio asks of the camera.
type Constraints struct {
	FacingMode  string
	AspectRatio float64
	IdealWidth  int
	Audio       bool
}

func DefaultConstraints() Constraints {
	return Constraints{FacingMode: "user", AspectRatio: 9.0 / 16.0, IdealWidth: 1080, Audio: true}
}

type Track interface {
	Kind() string
	Stop()
}

type Stream interface {
	Tracks() []Track
}

type Device interface {
	Acquire(ctx context.Context, c Constraints) (Stream, error)
}

// Recorder encodes a stream. Stop must deliver every pending chunk before it
// returns.
type Recorder interface {
	Start(onChunk func([]byte)) error
	Stop() error
}

// FilterSetter is implemented by recorders that can switch filters while
// recording.
type FilterSetter interface {
	SetFilter(f Filter)
}

type RecorderFactory interface {
	NewRecorder(stream Stream, mimeType string, f Filter) (Recorder, error)
}
