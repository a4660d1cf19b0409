package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sk88studiosinc-maker/Soulsound/internal/capture"
	"github.com/sk88studiosinc-maker/Soulsound/internal/media"
	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
	"github.com/sk88studiosinc-maker/Soulsound/internal/provider"
	"github.com/sk88studiosinc-maker/Soulsound/internal/session"
	"github.com/sk88studiosinc-maker/Soulsound/internal/speech"
	"github.com/sk88studiosinc-maker/Soulsound/internal/view"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case ProjectMsg:
		return m.handleProject(msg)
	case EventMsg:
		return m.handleEvent(msg)
	case NarrationMsg:
		return m.handleNarration(msg)
	case StudioOpenedMsg:
		return m.handleStudioOpened(msg)
	case RecordingStoppedMsg:
		return m.handleRecordingStopped(msg)
	case TakeSavedMsg:
		return m.handleTakeSaved(msg)
	case TakeExportedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		return m.addLog("Exported %s", msg.Path), nil
	case TickMsg:
		if m.studio != nil && m.studio.session.State() == capture.StateRecording {
			return m, tickCmd()
		}
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.Close()
		return m, tea.Quit
	}
	if m.keyPrompt {
		return m.handleKeyPrompt(msg)
	}
	if m.studio != nil {
		return m.handleStudioKey(msg)
	}
	if m.editing() {
		return m.handleFormKey(msg)
	}

	switch m.state.Screen {
	case view.ScreenLanding:
		switch msg.String() {
		case "g", "1":
			m.ctl.ChooseMode(view.Guided)
		case "d", "2":
			m.ctl.ChooseMode(view.Direct)
		case "q":
			return m, tea.Quit
		}
		return m.refresh(), nil
	}

	switch msg.String() {
	case "q":
		m.Close()
		return m, tea.Quit
	case "v":
		if m.busy {
			return m, nil
		}
		m.err = nil
		return m.addLog("Requesting a new clip"), requestVideo(m.ctl)
	case "r":
		_ = m.ctl.Navigate(view.Reflection)
	case "b":
		_ = m.ctl.Navigate(view.Dashboard)
	case "m":
		m = m.toggleMode()
	case "n":
		m.ctl.Reset()
		m.form = newProjectForm()
		m.narration = map[string]model.MediaRef{}
		m = m.addLog("Started a new project")
	case "k":
		m.keyPrompt = true
		m.keyInput = ""
	case "c":
		m = m.cycleClip()
	case "s":
		if m.open != nil && m.project() != nil {
			m = m.addLog("Opening the studio")
			return m, openStudio(m.open)
		}
	case "t":
		m.voice = (m.voice + 1) % len(speech.Voices)
	default:
		if idx, ok := digit(msg.String()); ok {
			return m.narrateScript(idx)
		}
	}
	return m.refresh(), nil
}

// editing reports whether keystrokes go to the intake form.
func (m Model) editing() bool {
	if m.project() != nil || m.busy {
		return false
	}
	switch m.state.Screen {
	case view.ScreenGuidedWizard, view.ScreenProductionDashboard:
		return true
	}
	return false
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.busy = true
		m.err = nil
		m = m.addLog("Analyzing %s", m.form.link)
		return m, submitProject(m.ctl, m.form.input())
	case "tab", "down":
		m.form = m.form.next()
	case "shift+tab", "up":
		m.form = m.form.prev()
	case "left":
		m.form = m.form.shift(-1)
	case "right":
		m.form = m.form.shift(1)
	case "backspace":
		m.form = m.form.backspace()
	case "esc":
		_ = m.ctl.Navigate(view.Onboarding)
	case "ctrl+t":
		m = m.toggleMode()
	case " ":
		m.form = m.form.typeRunes([]rune{' '})
	default:
		if msg.Type == tea.KeyRunes {
			m.form = m.form.typeRunes(msg.Runes)
		}
	}
	return m.refresh(), nil
}

func (m Model) handleKeyPrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.keyPrompt = false
		m.keyInput = ""
	case "enter":
		if m.keys == nil {
			m.keyPrompt = false
			return m, nil
		}
		if err := m.keys.SetKey(m.keyInput); err != nil {
			m.err = err
			return m, nil
		}
		m.keyPrompt = false
		m.keyInput = ""
		m.err = nil
		m = m.addLog("API key selected")
	case "backspace":
		m.keyInput = dropLast(m.keyInput)
	default:
		if msg.Type == tea.KeyRunes {
			m.keyInput += string(msg.Runes)
		}
	}
	return m, nil
}

func (m Model) handleStudioKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.studio
	if st.busy {
		return m, nil
	}
	s := st.session
	switch msg.String() {
	case "esc", "q":
		s.Close()
		m.studio = nil
		return m.addLog("Studio closed"), nil
	case " ":
		switch s.State() {
		case capture.StatePreviewing:
			if err := s.StartRecording(); err != nil {
				m.err = err
				return m, nil
			}
			return m.addLog("Recording"), tickCmd()
		case capture.StateRecording:
			m.studio = &studio{session: s, prompter: st.prompter, saved: st.saved, busy: true}
			return m, stopRecording(s)
		}
	case "f":
		m = m.cycleFilter()
	case "x":
		if err := s.Discard(); err == nil {
			m.studio = &studio{session: s, prompter: st.prompter}
			m = m.addLog("Take discarded")
		}
	case "w":
		if s.State() == capture.StateReviewing && m.media != nil {
			m.studio = &studio{session: s, prompter: st.prompter, saved: st.saved, busy: true}
			return m, saveTake(s, m.media)
		}
	case "e":
		local, ok := m.media.(*media.LocalStore)
		if ok && st.saved != nil {
			return m.addLog("Exporting for vertical platforms"), exportTake(local, *st.saved)
		}
	case "n":
		st.prompter.Next()
	case "p":
		st.prompter.Previous()
	}
	return m, nil
}

func (m Model) handleProject(msg ProjectMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m = m.refresh()
	switch {
	case msg.Err == nil:
		if msg.Snapshot.State == session.StateReady {
			m = m.addLog("Promotion package ready")
		}
	case errors.Is(msg.Err, session.ErrSuperseded):
		m = m.addLog("Earlier request replaced")
	default:
		m.err = msg.Err
	}
	return m, nil
}

func (m Model) handleEvent(msg EventMsg) (tea.Model, tea.Cmd) {
	if msg.Closed {
		m.events = nil
		return m, nil
	}
	m = m.refresh()
	evt := msg.Event
	switch evt.Type {
	case model.EventVideoStatus:
		if s, ok := evt.Payload["message"].(string); ok {
			m = m.addLog("%s", s)
		}
	case model.EventClipReady:
		m.err = nil
		m = m.addLog("Clip ready")
	case model.EventKeyRequired:
		m.keyPrompt = true
		m = m.addLog("Select a paid API key to generate video")
	case model.EventError:
		if s, ok := evt.Payload["message"].(string); ok {
			m.err = errors.New(s)
		}
	}
	return m, waitForEvent(m.events)
}

func (m Model) handleNarration(msg NarrationMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.Err != nil {
		m.err = msg.Err
		return m, nil
	}
	next := make(map[string]model.MediaRef, len(m.narration)+1)
	for k, v := range m.narration {
		next[k] = v
	}
	next[msg.ScriptID] = msg.Media
	m.narration = next
	return m.addLog("Narration saved: %s", msg.Media.URL), nil
}

func (m Model) handleStudioOpened(msg StudioOpenedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.err = msg.Err
		if msg.Session != nil {
			msg.Session.Close()
		}
		return m, nil
	}
	var pkg *model.PromotionPackage
	if p := m.project(); p != nil {
		pkg = p.Package
	}
	m.studio = &studio{session: msg.Session, prompter: capture.NewTeleprompter(pkg)}
	return m.addLog("Studio live"), nil
}

func (m Model) handleRecordingStopped(msg RecordingStoppedMsg) (tea.Model, tea.Cmd) {
	if m.studio == nil {
		return m, nil
	}
	m.studio = &studio{session: m.studio.session, prompter: m.studio.prompter}
	if msg.Err != nil {
		m.err = msg.Err
		return m, nil
	}
	return m.addLog("Take captured: %ds, %d bytes", int(msg.Recording.Elapsed.Seconds()), len(msg.Recording.Data)), nil
}

func (m Model) handleTakeSaved(msg TakeSavedMsg) (tea.Model, tea.Cmd) {
	if m.studio == nil {
		return m, nil
	}
	st := &studio{session: m.studio.session, prompter: m.studio.prompter}
	if msg.Err != nil {
		m.studio = st
		m.err = msg.Err
		return m, nil
	}
	saved := msg.Media
	st.saved = &saved
	m.studio = st
	return m.addLog("Take saved: %s", saved.URL), nil
}

func (m Model) toggleMode() Model {
	if m.state.Mode == view.Direct {
		m.ctl.SetMode(view.Guided)
	} else {
		m.ctl.SetMode(view.Direct)
	}
	return m.refresh()
}

func (m Model) cycleClip() Model {
	p := m.project()
	if p == nil || len(p.VideoClips) < 2 {
		return m
	}
	next := 0
	for i, c := range p.VideoClips {
		if c.URL == p.ActiveVideoURL {
			next = (i + 1) % len(p.VideoClips)
			break
		}
	}
	if _, err := m.ctl.Session().SetActiveClip(p.VideoClips[next].ID); err != nil {
		m.err = err
	}
	return m.refresh()
}

func (m Model) cycleFilter() Model {
	filters := capture.Filters()
	cur := m.studio.session.Filter()
	next := filters[0]
	for i, f := range filters {
		if f == cur {
			next = filters[(i+1)%len(filters)]
			break
		}
	}
	if err := m.studio.session.SelectFilter(next); err != nil {
		m.err = err
	}
	return m
}

func (m Model) narrateScript(idx int) (tea.Model, tea.Cmd) {
	p := m.project()
	if m.speech == nil || p == nil || p.Package == nil || idx >= len(p.Package.VoiceoverScripts) || m.busy {
		return m, nil
	}
	script := p.Package.VoiceoverScripts[idx]
	m.busy = true
	voice := speech.Voices[m.voice]
	return m.addLog("Narrating %q with %s", script.Type, voice), narrate(m.speech, script, voice)
}

func digit(s string) (int, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '1'), true
}

func errorText(err error) string {
	var pErr *provider.Error
	if errors.As(err, &pErr) {
		return pErr.UserMessage
	}
	if errors.Is(err, session.ErrInvalidTransition) {
		return "That action is not available right now."
	}
	return fmt.Sprint(err)
}
