package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sk88studiosinc-maker/Soulsound/internal/app"
	"github.com/sk88studiosinc-maker/Soulsound/internal/auth"
	"github.com/sk88studiosinc-maker/Soulsound/internal/capture"
	"github.com/sk88studiosinc-maker/Soulsound/internal/media"
	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
	"github.com/sk88studiosinc-maker/Soulsound/internal/speech"
)

const maxLogs = 8

// StudioOpener acquires the camera for a new capture session.
type StudioOpener func(ctx context.Context) (*capture.Session, error)

type Options struct {
	Controller *app.Controller
	// Events is the artist's subscription on the hub.
	Events <-chan model.ProjectEvent
	Keys   *auth.Keyring
	Speech *speech.Synthesizer
	Media  media.Store
	Studio StudioOpener
}

// studio is the capture overlay state.
type studio struct {
	session  *capture.Session
	prompter *capture.Teleprompter
	saved    *model.MediaRef
	busy     bool
}

// Model is the terminal front end. It never mutates the project itself; it
// sends commands to the controller and renders the snapshots that come back.
type Model struct {
	ctl    *app.Controller
	events <-chan model.ProjectEvent
	keys   *auth.Keyring
	speech *speech.Synthesizer
	media  media.Store
	open   StudioOpener

	state app.State
	form  projectForm
	busy  bool
	logs  []string
	err   error

	keyPrompt bool
	keyInput  string

	studio    *studio
	voice     int
	narration map[string]model.MediaRef
}

func NewModel(opts Options) Model {
	m := Model{
		ctl:       opts.Controller,
		events:    opts.Events,
		keys:      opts.Keys,
		speech:    opts.Speech,
		media:     opts.Media,
		open:      opts.Studio,
		form:      newProjectForm(),
		narration: map[string]model.MediaRef{},
	}
	return m.refresh()
}

func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m Model) refresh() Model {
	m.state = m.ctl.State()
	return m
}

func (m Model) addLog(format string, args ...any) Model {
	line := time.Now().Format("15:04:05") + "  " + fmt.Sprintf(format, args...)
	logs := append(append([]string(nil), m.logs...), line)
	if len(logs) > maxLogs {
		logs = logs[len(logs)-maxLogs:]
	}
	m.logs = logs
	return m
}

func (m Model) project() *model.Project {
	return m.state.Project.Project
}

// Close releases the camera if the studio is still open.
func (m Model) Close() {
	if m.studio != nil {
		m.studio.session.Close()
	}
}
