package capture

import "github.com/sk88studiosinc-maker/Soulsound/internal/model"

// DirectorNotes are shown over the live preview.
type DirectorNotes struct {
	Angle    string
	Motion   string
	Lighting string
}

// Teleprompter cycles through a package's voiceover scripts with
// wrap-around in both directions.
type Teleprompter struct {
	scripts []model.VoiceoverScript
	notes   DirectorNotes
	idx     int
}

func NewTeleprompter(pkg *model.PromotionPackage) *Teleprompter {
	if pkg == nil {
		return &Teleprompter{}
	}
	return &Teleprompter{
		scripts: append([]model.VoiceoverScript(nil), pkg.VoiceoverScripts...),
		notes: DirectorNotes{
			Angle:    pkg.CameraInstructions.Angles,
			Motion:   pkg.CameraInstructions.Movement,
			Lighting: pkg.CameraInstructions.Lighting,
		},
	}
}

func (t *Teleprompter) Current() (model.VoiceoverScript, bool) {
	if len(t.scripts) == 0 {
		return model.VoiceoverScript{}, false
	}
	return t.scripts[t.idx], true
}

func (t *Teleprompter) Next() {
	if n := len(t.scripts); n > 0 {
		t.idx = (t.idx + 1) % n
	}
}

func (t *Teleprompter) Previous() {
	if n := len(t.scripts); n > 0 {
		t.idx = (t.idx - 1 + n) % n
	}
}

func (t *Teleprompter) Position() (int, int) { return t.idx, len(t.scripts) }

func (t *Teleprompter) Notes() DirectorNotes { return t.notes }
