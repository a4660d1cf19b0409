package tui

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sk88studiosinc-maker/Soulsound/internal/app"
	"github.com/sk88studiosinc-maker/Soulsound/internal/capture"
	"github.com/sk88studiosinc-maker/Soulsound/internal/media"
	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
	"github.com/sk88studiosinc-maker/Soulsound/internal/session"
	"github.com/sk88studiosinc-maker/Soulsound/internal/speech"
)

func submitProject(ctl *app.Controller, in session.SubmitInput) tea.Cmd {
	return func() tea.Msg {
		snap, err := ctl.Session().Submit(context.Background(), in)
		return ProjectMsg{Snapshot: snap, Err: err}
	}
}

func requestVideo(ctl *app.Controller) tea.Cmd {
	return func() tea.Msg {
		snap, err := ctl.Session().RequestVideo(context.Background())
		return ProjectMsg{Snapshot: snap, Err: err}
	}
}

// waitForEvent blocks on the next hub event; Update re-arms it.
func waitForEvent(sub <-chan model.ProjectEvent) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		evt, ok := <-sub
		return EventMsg{Event: evt, Closed: !ok}
	}
}

func narrate(synth *speech.Synthesizer, script model.VoiceoverScript, voice string) tea.Cmd {
	return func() tea.Msg {
		ref, err := synth.Synthesize(context.Background(), script.Text, voice)
		return NarrationMsg{ScriptID: script.ID, Media: ref, Err: err}
	}
}

func openStudio(open StudioOpener) tea.Cmd {
	return func() tea.Msg {
		s, err := open(context.Background())
		return StudioOpenedMsg{Session: s, Err: err}
	}
}

func stopRecording(s *capture.Session) tea.Cmd {
	return func() tea.Msg {
		rec, err := s.StopRecording()
		return RecordingStoppedMsg{Recording: rec, Err: err}
	}
}

func saveTake(s *capture.Session, st media.Store) tea.Cmd {
	return func() tea.Msg {
		ref, err := s.Download(context.Background(), st)
		return TakeSavedMsg{Media: ref, Err: err}
	}
}

// exportTake renders a saved take to a 720x1280 mp4 next to the original.
func exportTake(st *media.LocalStore, ref model.MediaRef) tea.Cmd {
	return func() tea.Msg {
		in := st.Path(ref.Key)
		out := strings.TrimSuffix(in, filepath.Ext(in)) + ".mp4"
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		err := capture.Export(ctx, in, out)
		return TakeExportedMsg{Path: out, Err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
