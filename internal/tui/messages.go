package tui

import (
	"time"

	"github.com/sk88studiosinc-maker/Soulsound/internal/capture"
	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
	"github.com/sk88studiosinc-maker/Soulsound/internal/session"
)

// ProjectMsg carries the result of a session command.
type ProjectMsg struct {
	Snapshot session.Snapshot
	Err      error
}

// EventMsg is one session event from the hub. Closed is set when the
// subscription ended.
type EventMsg struct {
	Event  model.ProjectEvent
	Closed bool
}

type NarrationMsg struct {
	ScriptID string
	Media    model.MediaRef
	Err      error
}

type StudioOpenedMsg struct {
	Session *capture.Session
	Err     error
}

type RecordingStoppedMsg struct {
	Recording capture.Recording
	Err       error
}

type TakeSavedMsg struct {
	Media model.MediaRef
	Err   error
}

type TakeExportedMsg struct {
	Path string
	Err  error
}

type TickMsg struct {
	Time time.Time
}
