package promo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
	"github.com/sk88studiosinc-maker/Soulsound/internal/provider"
)

type cannedText struct {
	raw   string
	err   error
	calls []provider.JSONRequest
}

func (c *cannedText) GenerateJSON(_ context.Context, req provider.JSONRequest) (string, error) {
	c.calls = append(c.calls, req)
	return c.raw, c.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validPackage() map[string]any {
	return map[string]any{
		"analysis":           map[string]any{"genre": "Neo Soul", "vibe": "Warm", "energy": "Low"},
		"videoConcept":       map[string]any{"visualPlan": "Candles in a dark room", "motionStyle": "Slow", "colorGrading": "Amber", "textOverlays": []any{"out now"}, "transitions": "Fades", "loopEnding": "Match cut"},
		"cameraInstructions": map[string]any{"angles": "Low", "lighting": "Candle", "movement": "Still", "filtersAndEffects": "Grain"},
		"voiceoverScripts":   []any{map[string]any{"id": "v1", "type": "Poetic", "text": "Hold on", "duration": "5s"}},
		"captions":           []any{map[string]any{"id": "c1", "type": "Poetic", "text": "For you", "emoji": "🕯️"}},
		"hashtags":           "#neosoul",
		"recommendedLengths": []any{"15s"},
		"postingTips":        "Post at night",
	}
}

func encode(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}

func TestBuildDecodesValidPackage(t *testing.T) {
	text := &cannedText{raw: encode(t, validPackage())}
	b := NewBuilder(text, "", quietLogger())

	pkg, err := b.Build(context.Background(), Request{
		Link:            "https://soundcloud.com/x/y",
		Platform:        model.MusicSoundCloud,
		TargetPlatforms: []model.SocialPlatform{model.SocialInstagram},
		Style:           model.StyleCinematic,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(text.calls) != 1 {
		t.Fatalf("calls=%d want 1", len(text.calls))
	}
	if pkg.Analysis.Genre != "Neo Soul" || pkg.VideoConcept.VisualPlan != "Candles in a dark room" {
		t.Fatalf("unexpected package: %+v", pkg)
	}
	if len(pkg.Captions) != 1 || pkg.Captions[0].Emoji != "🕯️" {
		t.Fatalf("captions not decoded: %+v", pkg.Captions)
	}
	call := text.calls[0]
	if call.Model != DefaultModel {
		t.Fatalf("model=%q", call.Model)
	}
	if call.Schema == nil || len(call.Schema.Required) != 8 {
		t.Fatalf("schema not attached: %+v", call.Schema)
	}
	if !strings.Contains(call.SystemInstruction, "TARGET PLATFORMS: Instagram.") ||
		!strings.Contains(call.SystemInstruction, "VISUAL STYLE: Cinematic.") ||
		!strings.Contains(call.SystemInstruction, toneDirective) {
		t.Fatalf("instruction missing parameters:\n%s", call.SystemInstruction)
	}
	if !strings.Contains(call.Prompt, "https://soundcloud.com/x/y") {
		t.Fatalf("prompt missing link:\n%s", call.Prompt)
	}
}

func TestBuildRejectsIncompletePayloads(t *testing.T) {
	missingTips := validPackage()
	delete(missingTips, "postingTips")

	missingNested := validPackage()
	delete(missingNested["cameraInstructions"].(map[string]any), "lighting")

	wrongKind := validPackage()
	wrongKind["recommendedLengths"] = "15s"

	badItem := validPackage()
	badItem["captions"] = []any{map[string]any{"id": "c1", "type": "Poetic", "text": "x"}}

	cases := map[string]string{
		"missing top-level":  encode(t, missingTips),
		"missing nested":     encode(t, missingNested),
		"wrong kind":         encode(t, wrongKind),
		"incomplete item":    encode(t, badItem),
		"not json":           "Sorry, I cannot help with that.",
		"null":               "null",
		"truncated document": `{"analysis": {"genre": "x"`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			b := NewBuilder(&cannedText{raw: raw}, "", quietLogger())
			_, err := b.Build(context.Background(), Request{Link: "https://suno.com/song/1"})
			if provider.CodeOf(err) != provider.CodeGenerationFailed {
				t.Fatalf("expected %s, got %v", provider.CodeGenerationFailed, err)
			}
		})
	}
}

func TestBuildUpstreamError(t *testing.T) {
	b := NewBuilder(&cannedText{err: errors.New("503 overloaded")}, "", quietLogger())
	_, err := b.Build(context.Background(), Request{Link: "https://suno.com/song/1"})
	var pErr *provider.Error
	if !errors.As(err, &pErr) || pErr.Code != provider.CodeGenerationFailed || !pErr.Retryable {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuildEmptyLinkSendsNothing(t *testing.T) {
	text := &cannedText{raw: encode(t, validPackage())}
	b := NewBuilder(text, "", quietLogger())
	_, err := b.Build(context.Background(), Request{Link: "   "})
	if provider.CodeOf(err) != provider.CodeInputInvalid {
		t.Fatalf("expected input error, got %v", err)
	}
	if len(text.calls) != 0 {
		t.Fatalf("calls=%d want 0", len(text.calls))
	}
}

func TestBuildAcceptsEmptyStrings(t *testing.T) {
	pkg := validPackage()
	pkg["hashtags"] = ""
	b := NewBuilder(&cannedText{raw: encode(t, pkg)}, "", quietLogger())
	got, err := b.Build(context.Background(), Request{Link: "https://suno.com/song/1"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got.Hashtags != "" {
		t.Fatalf("hashtags=%q", got.Hashtags)
	}
}

func TestBuildWithMockAdapter(t *testing.T) {
	mock := provider.NewMockAdapter()
	mock.Latency = 0
	b := NewBuilder(mock, "", quietLogger())
	pkg, err := b.Build(context.Background(), Request{Link: "https://youtu.be/abc", Style: model.StyleNoir})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if pkg.VideoConcept.VisualPlan == "" || len(pkg.VoiceoverScripts) == 0 {
		t.Fatalf("mock package incomplete: %+v", pkg)
	}
}

func TestValidateReportsEmptyStrings(t *testing.T) {
	pkg := validPackage()
	pkg["postingTips"] = ""
	var tree any
	if err := json.Unmarshal([]byte(encode(t, pkg)), &tree); err != nil {
		t.Fatal(err)
	}
	empties, err := Validate(tree, ResponseSchema())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(empties) != 1 || empties[0] != "$.postingTips" {
		t.Fatalf("empties=%v", empties)
	}
}
