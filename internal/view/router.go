package view

import "strings"

type View string

const (
	Onboarding View = "onboarding"
	Dashboard  View = "dashboard"
	Reflection View = "reflection"
)

// Mode is the artist's experience level.
type Mode string

const (
	Guided Mode = "beginner"
	Direct Mode = "advanced"
)

type Screen string

const (
	ScreenLanding             Screen = "landing"
	ScreenGuidedWizard        Screen = "guided_wizard"
	ScreenGuidedResult        Screen = "guided_result"
	ScreenProductionDashboard Screen = "production_dashboard"
	ScreenReflection          Screen = "reflection"
)

// Route picks the top-level screen. Reflection needs a project; without one
// the artist lands on the dashboard for their mode.
func Route(v View, m Mode, hasProject bool) Screen {
	switch v {
	case Onboarding:
		return ScreenLanding
	case Reflection:
		if hasProject {
			return ScreenReflection
		}
	}
	if m == Direct {
		return ScreenProductionDashboard
	}
	if hasProject {
		return ScreenGuidedResult
	}
	return ScreenGuidedWizard
}

func ParseView(v string) (View, bool) {
	switch View(strings.ToLower(strings.TrimSpace(v))) {
	case Onboarding:
		return Onboarding, true
	case Dashboard:
		return Dashboard, true
	case Reflection:
		return Reflection, true
	}
	return "", false
}

// ParseMode accepts both the stored names and their aliases.
func ParseMode(v string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "beginner", "guided":
		return Guided, true
	case "advanced", "direct":
		return Direct, true
	}
	return "", false
}
