package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockAdapter stands in for the generation service in development and tests.
// Video operations complete after PollsToDone polls.
type MockAdapter struct {
	Latency     time.Duration
	PollsToDone int

	mu    sync.Mutex
	rng   *rand.Rand
	polls map[string]int
	clips map[string][]byte
}

func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		Latency:     300 * time.Millisecond,
		PollsToDone: 2,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		polls:       map[string]int{},
		clips:       map[string][]byte{},
	}
}

func (m *MockAdapter) work(ctx context.Context) error {
	if m.Latency <= 0 {
		return ctx.Err()
	}
	m.mu.Lock()
	jitter := time.Duration(m.rng.Int63n(int64(m.Latency/5) + 1))
	m.mu.Unlock()
	return waitCancelable(ctx, m.Latency+jitter)
}

func (m *MockAdapter) GenerateJSON(ctx context.Context, req JSONRequest) (string, error) {
	if err := m.work(ctx); err != nil {
		return "", err
	}
	if strings.Contains(req.Prompt, "simulate_error") {
		return "", errors.New("mock upstream timeout")
	}
	raw, err := json.Marshal(samplePackage(req.Prompt))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (m *MockAdapter) StartVideo(ctx context.Context, req VideoRequest) (Operation, error) {
	if err := m.work(ctx); err != nil {
		return Operation{}, err
	}
	if strings.Contains(req.Prompt, "simulate_entitlement") {
		return Operation{}, fmt.Errorf("mock: %s", EntitlementFragment)
	}
	name := "operations/mock-" + uuid.NewString()
	m.mu.Lock()
	m.polls[name] = 0
	m.mu.Unlock()
	return Operation{Name: name}, nil
}

func (m *MockAdapter) PollVideo(ctx context.Context, op Operation) (Operation, error) {
	if err := ctx.Err(); err != nil {
		return op, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.polls[op.Name]
	if !ok {
		return op, fmt.Errorf("mock: %s: %s", EntitlementFragment, op.Name)
	}
	n++
	m.polls[op.Name] = n
	if n < m.PollsToDone {
		return op, nil
	}
	uri := "mock://files/" + strings.TrimPrefix(op.Name, "operations/") + ".mp4?alt=media"
	m.clips[uri] = mockMP4(op.Name)
	op.Done = true
	op.URI = uri
	return op, nil
}

func (m *MockAdapter) Fetch(ctx context.Context, uri string) (io.ReadCloser, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	m.mu.Lock()
	data, ok := m.clips[uri]
	m.mu.Unlock()
	if !ok {
		return nil, "", fmt.Errorf("mock: no resource at %s", uri)
	}
	return io.NopCloser(bytes.NewReader(data)), "video/mp4", nil
}

func (m *MockAdapter) Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error) {
	if err := m.work(ctx); err != nil {
		return nil, err
	}
	// One second of silence at 24 kHz.
	return make([]byte, 24000*2), nil
}

func mockMP4(name string) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0x18})
	buf.WriteString("ftypmp42")
	buf.WriteString(name)
	return buf.Bytes()
}

func samplePackage(prompt string) map[string]any {
	return map[string]any{
		"analysis": map[string]any{
			"genre":  "Alt R&B",
			"vibe":   "Late-night introspection",
			"energy": "Medium",
		},
		"videoConcept": map[string]any{
			"visualPlan":   "Slow push-in on a lone figure under a sodium streetlight, rain haze, city bokeh.",
			"motionStyle":  "Slow dolly with subtle handheld drift",
			"colorGrading": "Teal shadows, amber highlights",
			"textOverlays": []string{"this one is for the 3am thinkers", "out now"},
			"transitions":  "Light-leak dissolves on the downbeat",
			"loopEnding":   "Return to the opening frame for a seamless loop",
		},
		"cameraInstructions": map[string]any{
			"angles":            "Eye level, slightly off-center",
			"lighting":          "Single practical lamp as key light",
			"movement":          "Slow walk toward the lens",
			"filtersAndEffects": "Soft diffusion, light grain",
		},
		"voiceoverScripts": []map[string]any{
			{"id": "vo-1", "type": "Poetic", "text": "Some songs are written in the dark so you can find them there.", "duration": "6s"},
			{"id": "vo-2", "type": "Hook", "text": "If you have ever missed someone at 3am, this is yours.", "duration": "5s"},
		},
		"captions": []map[string]any{
			{"id": "cap-1", "type": "Punchy Hook", "text": "3am thoughts, set to music.", "emoji": "🌙"},
			{"id": "cap-2", "type": "Poetic", "text": "Written in the quiet hours.", "emoji": "🕯️"},
		},
		"hashtags":           "#newmusic #altrnb #3amthoughts #indieartist",
		"recommendedLengths": []string{"15s", "30s"},
		"postingTips":        "Post between 8pm and 11pm local time; pin the hook caption. " + summarize(prompt),
	}
}

func summarize(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if len(prompt) > 40 {
		prompt = prompt[:40]
	}
	return strings.Join(strings.Fields(prompt), " ")
}
