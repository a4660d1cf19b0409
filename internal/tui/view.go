package tui

import (
	"fmt"
	"strings"

	"github.com/sk88studiosinc-maker/Soulsound/internal/capture"
	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
	"github.com/sk88studiosinc-maker/Soulsound/internal/platform"
	"github.com/sk88studiosinc-maker/Soulsound/internal/session"
	"github.com/sk88studiosinc-maker/Soulsound/internal/speech"
	"github.com/sk88studiosinc-maker/Soulsound/internal/view"
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("SoulSound"))
	b.WriteString("\n")

	switch {
	case m.keyPrompt:
		b.WriteString(m.keyPromptView())
	case m.studio != nil:
		b.WriteString(m.studioView())
	default:
		b.WriteString(m.screenView())
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render("! " + errorText(m.err)))
		b.WriteString("\n")
	}
	if len(m.logs) > 0 {
		b.WriteString("\n")
		for _, l := range m.logs {
			b.WriteString(InfoStyle.Render("  " + l))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render(m.help()))
	return b.String()
}

func (m Model) screenView() string {
	switch m.state.Screen {
	case view.ScreenLanding:
		return "Turn a track link into a full promotion package.\n\n" +
			HighlightStyle.Render("g") + " Guided (beginner)   " +
			HighlightStyle.Render("d") + " Direct (advanced)\n"
	case view.ScreenGuidedWizard:
		return SectionStyle.Render("Step 1: your track") + "\n\n" + m.formView()
	case view.ScreenGuidedResult:
		return m.statusLine() + m.packageView(false) + m.clipsView()
	case view.ScreenProductionDashboard:
		if m.project() == nil {
			return SectionStyle.Render("New production") + "\n\n" + m.formView()
		}
		return m.statusLine() + m.packageView(true) + m.clipsView()
	case view.ScreenReflection:
		return m.reflectionView()
	}
	return ""
}

func (m Model) statusLine() string {
	snap := m.state.Project
	switch snap.State {
	case session.StateAnalyzing:
		return StatusStyle.Render("Listening to your track...") + "\n\n"
	case session.StateGeneratingVideo:
		return StatusStyle.Render(snap.StatusMessage) + "\n\n"
	}
	return ""
}

func (m Model) formView() string {
	f := m.form
	var b strings.Builder
	row := func(fld field, label, value string) {
		if f.focus == fld {
			label = FocusStyle.Render(label)
		}
		fmt.Fprintf(&b, "%s  %s\n", label, value)
	}
	detected := platform.Detect(f.link)
	link := f.link
	if detected != model.MusicUnknown {
		link += InfoStyle.Render("  (" + string(detected) + ")")
	}
	row(fieldLink, "Track link ", link)
	row(fieldMood, "Mood       ", f.mood)
	row(fieldStyle, "Style      ", "< "+string(platform.VideoStyles()[f.style])+" >")

	var ps []string
	for i, p := range platform.SocialPlatforms() {
		mark := "[ ]"
		if f.platforms[p] {
			mark = "[x]"
		}
		item := mark + " " + string(p)
		if f.focus == fieldPlatforms && i == f.cursor {
			item = FocusStyle.Render(item)
		}
		ps = append(ps, item)
	}
	row(fieldPlatforms, "Platforms  ", strings.Join(ps, "  "))
	if m.state.Project.State == session.StateAnalyzing {
		b.WriteString("\n" + StatusStyle.Render("Listening to your track..."))
	}
	return b.String()
}

func (m Model) packageView(full bool) string {
	p := m.project()
	if p == nil || p.Package == nil {
		return ""
	}
	pkg := p.Package
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s · %s · %s energy\n\n", SectionStyle.Render("Analysis"),
		pkg.Analysis.Genre, pkg.Analysis.Vibe, pkg.Analysis.Energy)
	fmt.Fprintf(&b, "%s\n%s\n", SectionStyle.Render("Video concept"), pkg.VideoConcept.VisualPlan)
	if full {
		fmt.Fprintf(&b, "Motion: %s\nGrade: %s\nTransitions: %s\nLoop: %s\n",
			pkg.VideoConcept.MotionStyle, pkg.VideoConcept.ColorGrading,
			pkg.VideoConcept.Transitions, pkg.VideoConcept.LoopEnding)
		if len(pkg.VideoConcept.TextOverlays) > 0 {
			fmt.Fprintf(&b, "Overlays: %s\n", strings.Join(pkg.VideoConcept.TextOverlays, " / "))
		}
		fmt.Fprintf(&b, "\n%s\nAngles: %s\nLighting: %s\nMovement: %s\nEffects: %s\n",
			SectionStyle.Render("Camera"), pkg.CameraInstructions.Angles, pkg.CameraInstructions.Lighting,
			pkg.CameraInstructions.Movement, pkg.CameraInstructions.FiltersAndEffects)
	}
	b.WriteString("\n" + SectionStyle.Render("Voiceover") + InfoStyle.Render("  voice: "+speech.Voices[m.voice]) + "\n")
	for i, s := range pkg.VoiceoverScripts {
		line := fmt.Sprintf("%d. [%s %s] %s", i+1, s.Type, s.Duration, s.Text)
		if ref, ok := m.narration[s.ID]; ok {
			line += InfoStyle.Render("  ♪ " + ref.URL)
		}
		b.WriteString(line + "\n")
	}
	return BoxStyle.Render(b.String()) + "\n"
}

func (m Model) clipsView() string {
	p := m.project()
	if p == nil || len(p.VideoClips) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(SectionStyle.Render("Clips") + "\n")
	for _, c := range p.VideoClips {
		mark := "  "
		if c.URL == p.ActiveVideoURL {
			mark = "▶ "
		}
		fmt.Fprintf(&b, "%s%s (%ds)\n", mark, c.URL, c.Duration)
	}
	return b.String()
}

func (m Model) reflectionView() string {
	p := m.project()
	if p == nil || p.Package == nil {
		return ""
	}
	pkg := p.Package
	var b strings.Builder
	b.WriteString(SectionStyle.Render("Reflection") + "\n\n")
	fmt.Fprintf(&b, "%s for %s\n\n", p.MusicLink, joinPlatforms(p.TargetPlatforms))
	b.WriteString(SectionStyle.Render("Captions") + "\n")
	for _, c := range pkg.Captions {
		fmt.Fprintf(&b, "%s %s  %s\n", c.Emoji, InfoStyle.Render(string(c.Type)), c.Text)
	}
	fmt.Fprintf(&b, "\n%s\n%s\n", SectionStyle.Render("Hashtags"), pkg.Hashtags)
	fmt.Fprintf(&b, "\n%s %s\n", SectionStyle.Render("Lengths"), strings.Join(pkg.RecommendedLengths, ", "))
	fmt.Fprintf(&b, "\n%s\n%s\n", SectionStyle.Render("Posting tips"), pkg.PostingTips)
	return BoxStyle.Render(b.String()) + "\n"
}

func (m Model) studioView() string {
	st := m.studio
	s := st.session
	var b strings.Builder
	b.WriteString(SectionStyle.Render("Studio") + "  ")
	switch s.State() {
	case capture.StateRecording:
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("● REC %02d:%02d", s.Elapsed()/60, s.Elapsed()%60)))
	case capture.StateReviewing:
		b.WriteString(StatusStyle.Render("Reviewing take"))
	default:
		b.WriteString(StatusStyle.Render("Live preview"))
	}
	fmt.Fprintf(&b, "\nFilter: %s\n\n", HighlightStyle.Render(string(s.Filter())))

	notes := st.prompter.Notes()
	fmt.Fprintf(&b, "Angle: %s\nMotion: %s\nLighting: %s\n\n", notes.Angle, notes.Motion, notes.Lighting)
	if script, ok := st.prompter.Current(); ok {
		i, n := st.prompter.Position()
		fmt.Fprintf(&b, "%s\n%s\n", InfoStyle.Render(fmt.Sprintf("Script %d/%d · %s", i+1, n, script.Type)), script.Text)
	}
	if st.saved != nil {
		fmt.Fprintf(&b, "\nSaved: %s\n", st.saved.URL)
	}
	return BoxStyle.Render(b.String()) + "\n"
}

func (m Model) keyPromptView() string {
	masked := strings.Repeat("•", len([]rune(m.keyInput)))
	return BoxStyle.Render(SectionStyle.Render("Select a paid API key") +
		"\nVideo generation needs a key attached to a billed project.\n\n> " + masked) + "\n"
}

func (m Model) help() string {
	switch {
	case m.keyPrompt:
		return "enter confirm · esc cancel"
	case m.studio != nil:
		return "space record/stop · f filter · n/p script · x discard · w save · e export · esc close"
	case m.state.Screen == view.ScreenLanding:
		return "g guided · d direct · q quit"
	case m.editing():
		return "type to edit · tab next field · ←/→ choose · space toggle · enter analyze · ctrl+t mode · esc back"
	}
	return "v video · 1-9 narrate · t voice · c clip · s studio · r reflect · b back · m mode · k key · n new · q quit"
}

func joinPlatforms(ps []model.SocialPlatform) string {
	if len(ps) == 0 {
		return "all platforms"
	}
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return strings.Join(out, ", ")
}
