package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sk88studiosinc-maker/Soulsound/internal/app"
	"github.com/sk88studiosinc-maker/Soulsound/internal/auth"
	"github.com/sk88studiosinc-maker/Soulsound/internal/events"
	"github.com/sk88studiosinc-maker/Soulsound/internal/media"
	"github.com/sk88studiosinc-maker/Soulsound/internal/promo"
	"github.com/sk88studiosinc-maker/Soulsound/internal/provider"
	"github.com/sk88studiosinc-maker/Soulsound/internal/session"
	"github.com/sk88studiosinc-maker/Soulsound/internal/speech"
	"github.com/sk88studiosinc-maker/Soulsound/internal/store"
	"github.com/sk88studiosinc-maker/Soulsound/internal/video"
)

type testEnv struct {
	handler http.Handler
	srv     *httptest.Server
	keys    *auth.Keyring
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	st := store.NewMemoryStore()
	authSvc := auth.NewService(st, "test-secret", 15*time.Minute, 24*time.Hour)
	if err := authSvc.SeedArtist("artist@soulsound.local", "demo123456"); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	mediaStore, err := media.NewLocalStore(t.TempDir(), "/api/v1/media")
	if err != nil {
		t.Fatal(err)
	}
	mock := provider.NewMockAdapter()
	mock.Latency = 0
	keys := auth.NewKeyring("test-key", false)
	hub := events.NewHub()
	logger := slog.Default()

	services := app.Services{
		Packages: promo.NewBuilder(mock, "", logger),
		Videos:   video.NewBuilder(mock, mediaStore, logger, video.Options{PollInterval: time.Millisecond}),
		Keys:     keys,
		Store:    st,
		Log:      st,
		Hub:      hub,
		Logger:   logger,
	}
	registry := app.NewRegistry(services.SessionFactory(), logger)
	t.Cleanup(registry.Close)

	s := NewServer(Deps{
		Auth:     authSvc,
		Accounts: st,
		Sessions: registry,
		Hub:      hub,
		Keys:     keys,
		Speech:   speech.NewSynthesizer(mock, mediaStore, "", logger),
		Media:    mediaStore,
		Logger:   logger,

		AllowedOrigins: []string{"http://localhost:5173"},
	})
	env := &testEnv{handler: s.Handler(), keys: keys}
	env.srv = httptest.NewServer(env.handler)
	t.Cleanup(env.srv.Close)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		r = bytes.NewReader(raw)
	} else {
		r = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "artist@soulsound.local",
		"password": "demo123456",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Data.AccessToken == "" {
		t.Fatalf("empty access token")
	}
	return resp.Data.AccessToken
}

type snapshotEnvelope struct {
	Data  session.Snapshot `json:"data"`
	Error *APIError        `json:"error"`
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) snapshotEnvelope {
	t.Helper()
	var env snapshotEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v body=%s", err, rec.Body.String())
	}
	return env
}

func TestLoginAndSubmitProject(t *testing.T) {
	env := setupTestServer(t)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/v1/project", token, map[string]any{
		"link":             "https://soundcloud.com/artist/track",
		"mood":             "hopeful",
		"target_platforms": []string{"TikTok", "Instagram"},
		"style":            "Neon",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status=%d body=%s", rec.Code, rec.Body.String())
	}
	snap := decodeSnapshot(t, rec).Data
	if snap.State != session.StateReady || snap.Project == nil || snap.Project.Package == nil {
		t.Fatalf("snapshot=%+v", snap)
	}
	if snap.Project.Platform != "SoundCloud" {
		t.Fatalf("platform=%q", snap.Project.Platform)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/project", token, map[string]any{"link": "https://suno.com/song/2"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second submit status=%d", rec.Code)
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/project", token, nil)
	if rec.Code != http.StatusOK || decodeSnapshot(t, rec).Data.State != session.StateEmpty {
		t.Fatalf("reset status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestSubmitValidation(t *testing.T) {
	env := setupTestServer(t)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/v1/project", token, map[string]any{"link": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty link status=%d", rec.Code)
	}
	if e := decodeSnapshot(t, rec).Error; e == nil || e.Code != provider.CodeInputInvalid {
		t.Fatalf("error=%+v", e)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/project", token, map[string]any{"link": "https://suno.com/x", "style": "Baroque"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad style status=%d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/project", token, map[string]any{"link": "simulate_error"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("upstream failure status=%d body=%s", rec.Code, rec.Body.String())
	}
	if env := decodeSnapshot(t, rec); env.Error == nil || !env.Error.Retryable {
		t.Fatalf("error=%+v", env.Error)
	}
}

func TestUnauthorized(t *testing.T) {
	env := setupTestServer(t)
	rec := env.do(t, http.MethodGet, "/api/v1/project", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestVideoGenerationStreamsEvents(t *testing.T) {
	env := setupTestServer(t)
	token := env.login(t)

	if rec := env.do(t, http.MethodPost, "/api/v1/project", token, map[string]any{"link": "https://suno.com/song/1"}); rec.Code != http.StatusCreated {
		t.Fatalf("submit status=%d", rec.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, env.srv.URL+"/api/v1/project/events", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Last-Event-ID", "2")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content-type=%q", ct)
	}

	rec := env.do(t, http.MethodPost, "/api/v1/project/videos", token, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("start video status=%d body=%s", rec.Code, rec.Body.String())
	}
	if snap := decodeSnapshot(t, rec).Data; snap.State != session.StateGeneratingVideo {
		t.Fatalf("state=%s", snap.State)
	}

	scanner := bufio.NewScanner(resp.Body)
	var clipURL string
	for clipURL == "" && scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var evt struct {
			Seq     int64          `json:"seq"`
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &evt); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if evt.Seq <= 2 {
			t.Fatalf("replayed event %d at or before Last-Event-ID", evt.Seq)
		}
		if evt.Type == "clip_ready" {
			clipURL, _ = evt.Payload["url"].(string)
		}
	}
	if clipURL == "" {
		t.Fatalf("stream ended without clip_ready: %v", scanner.Err())
	}

	rec = env.do(t, http.MethodGet, clipURL, "", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "video/mp4" {
		t.Fatalf("media status=%d type=%q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !bytes.Contains(rec.Body.Bytes()[:12], []byte("ftyp")) {
		t.Fatalf("served bytes are not an mp4")
	}

	snap := decodeSnapshot(t, env.do(t, http.MethodGet, "/api/v1/project", token, nil)).Data
	if snap.State != session.StateVideoReady || len(snap.Project.VideoClips) != 1 || snap.Project.ActiveVideoURL != clipURL {
		t.Fatalf("snapshot=%+v", snap)
	}
}

func TestVideoRequiresProject(t *testing.T) {
	env := setupTestServer(t)
	token := env.login(t)
	rec := env.do(t, http.MethodPost, "/api/v1/project/videos", token, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status=%d", rec.Code)
	}
	if e := decodeSnapshot(t, rec).Error; e == nil || e.Code != "INVALID_STATE" {
		t.Fatalf("error=%+v", e)
	}
}

func TestSpeechAndCredentials(t *testing.T) {
	env := setupTestServer(t)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/v1/project/scripts/vo-1/speech", token, map[string]any{"voice": "Kore"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("speech without project status=%d", rec.Code)
	}
	env.do(t, http.MethodPost, "/api/v1/project", token, map[string]any{"link": "https://suno.com/song/1"})

	rec = env.do(t, http.MethodPost, "/api/v1/project/scripts/vo-1/speech", token, map[string]any{"voice": "Kore"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("speech status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPost, "/api/v1/project/scripts/missing/speech", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing script status=%d", rec.Code)
	}

	rec = env.do(t, http.MethodPut, "/api/v1/credentials", token, map[string]any{"api_key": "AIzaNewKey9876"})
	if rec.Code != http.StatusOK {
		t.Fatalf("put credentials status=%d", rec.Code)
	}
	if env.keys.APIKey() != "AIzaNewKey9876" {
		t.Fatalf("key=%q", env.keys.APIKey())
	}
	rec = env.do(t, http.MethodGet, "/api/v1/credentials", token, nil)
	if !strings.Contains(rec.Body.String(), `"hint":"****9876"`) {
		t.Fatalf("credentials body=%s", rec.Body.String())
	}
}

func TestClientNavigation(t *testing.T) {
	env := setupTestServer(t)
	token := env.login(t)

	rec := env.do(t, http.MethodGet, "/api/v1/client/state", token, nil)
	if !strings.Contains(rec.Body.String(), `"screen":"landing"`) {
		t.Fatalf("initial state=%s", rec.Body.String())
	}
	rec = env.do(t, http.MethodPut, "/api/v1/client/mode", token, map[string]any{"mode": "advanced", "choose": true})
	if !strings.Contains(rec.Body.String(), `"screen":"production_dashboard"`) {
		t.Fatalf("after mode=%s", rec.Body.String())
	}
	rec = env.do(t, http.MethodPut, "/api/v1/client/view", token, map[string]any{"view": "reflection"})
	if !strings.Contains(rec.Body.String(), `"screen":"production_dashboard"`) {
		t.Fatalf("reflection without project=%s", rec.Body.String())
	}
	rec = env.do(t, http.MethodPut, "/api/v1/client/view", token, map[string]any{"view": "settings"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown view status=%d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/platforms/detect?url=https://youtu.be/x", token, nil)
	if !strings.Contains(rec.Body.String(), `"platform":"YouTube"`) {
		t.Fatalf("detect=%s", rec.Body.String())
	}
}

func TestEventStreamAcceptsQueryToken(t *testing.T) {
	env := setupTestServer(t)
	token := env.login(t)

	if rec := env.do(t, http.MethodGet, "/api/v1/project?access_token="+token, "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("query token outside the event stream: status=%d", rec.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, env.srv.URL+"/api/v1/project/events?access_token="+token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

func TestMeIncludesClientState(t *testing.T) {
	env := setupTestServer(t)
	token := env.login(t)

	rec := env.do(t, http.MethodGet, "/api/v1/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data struct {
			Email  string `json:"email"`
			Client struct {
				Screen string `json:"screen"`
			} `json:"client"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Email != "artist@soulsound.local" || resp.Data.Client.Screen != "landing" {
		t.Fatalf("me=%+v", resp.Data)
	}
}

func TestCORS(t *testing.T) {
	env := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow-origin=%q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("foreign origin allowed: %q", got)
	}
}
