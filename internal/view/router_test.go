package view

import "testing"

func TestRoute(t *testing.T) {
	cases := []struct {
		view       View
		mode       Mode
		hasProject bool
		want       Screen
	}{
		{Onboarding, Guided, false, ScreenLanding},
		{Onboarding, Direct, true, ScreenLanding},
		{Dashboard, Guided, false, ScreenGuidedWizard},
		{Dashboard, Guided, true, ScreenGuidedResult},
		{Dashboard, Direct, false, ScreenProductionDashboard},
		{Dashboard, Direct, true, ScreenProductionDashboard},
		{Reflection, Guided, true, ScreenReflection},
		{Reflection, Direct, true, ScreenReflection},
		{Reflection, Guided, false, ScreenGuidedWizard},
		{Reflection, Direct, false, ScreenProductionDashboard},
	}
	for _, tc := range cases {
		if got := Route(tc.view, tc.mode, tc.hasProject); got != tc.want {
			t.Errorf("Route(%s,%s,%v)=%s want %s", tc.view, tc.mode, tc.hasProject, got, tc.want)
		}
	}
}

func TestParse(t *testing.T) {
	if m, ok := ParseMode("Guided"); !ok || m != Guided {
		t.Fatalf("mode=%q ok=%v", m, ok)
	}
	if m, ok := ParseMode("advanced"); !ok || m != Direct {
		t.Fatalf("mode=%q ok=%v", m, ok)
	}
	if _, ok := ParseMode("expert"); ok {
		t.Fatalf("unknown mode accepted")
	}
	if v, ok := ParseView(" Reflection "); !ok || v != Reflection {
		t.Fatalf("view=%q ok=%v", v, ok)
	}
}
