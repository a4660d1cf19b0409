package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"google.golang.org/genai"
)

var ErrNoAPIKey = errors.New("no API key selected")

// KeySource yields the credential currently selected by the artist.
type KeySource interface {
	APIKey() string
}

type GeminiConfig struct {
	Keys       KeySource
	UseVertex  bool
	Project    string
	Location   string
	HTTPClient *http.Client
}

// GeminiAdapter implements TextModel, VideoModel and SpeechModel on top of the
// Gemini / Veo SDK. Clients are cached per API key because the key can be
// reselected at runtime.
type GeminiAdapter struct {
	cfg GeminiConfig

	mu      sync.Mutex
	clients map[string]*genai.Client
}

func NewGeminiAdapter(cfg GeminiConfig) *GeminiAdapter {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &GeminiAdapter{cfg: cfg, clients: map[string]*genai.Client{}}
}

func (g *GeminiAdapter) currentKey() string {
	if g.cfg.Keys == nil {
		return ""
	}
	return g.cfg.Keys.APIKey()
}

func (g *GeminiAdapter) client(ctx context.Context) (*genai.Client, error) {
	key := g.currentKey()
	if !g.cfg.UseVertex && key == "" {
		return nil, ErrNoAPIKey
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.clients[key]; ok {
		return c, nil
	}
	cc := &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.cfg.HTTPClient,
	}
	if g.cfg.UseVertex {
		cc = &genai.ClientConfig{
			Backend:    genai.BackendVertexAI,
			Project:    g.cfg.Project,
			Location:   g.cfg.Location,
			HTTPClient: g.cfg.HTTPClient,
		}
	}
	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	g.clients[key] = c
	return c, nil
}

func (g *GeminiAdapter) GenerateJSON(ctx context.Context, req JSONRequest) (string, error) {
	c, err := g.client(ctx)
	if err != nil {
		return "", err
	}
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   toGenaiSchema(req.Schema),
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	resp, err := c.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

func (g *GeminiAdapter) StartVideo(ctx context.Context, req VideoRequest) (Operation, error) {
	c, err := g.client(ctx)
	if err != nil {
		return Operation{}, err
	}
	op, err := c.Models.GenerateVideos(ctx, req.Model, req.Prompt, nil, &genai.GenerateVideosConfig{
		NumberOfVideos: int32(req.NumberOfVideos),
		AspectRatio:    req.AspectRatio,
		Resolution:     req.Resolution,
	})
	if err != nil {
		return Operation{}, fmt.Errorf("generate videos: %w", err)
	}
	return fromVideosOperation(op), nil
}

func (g *GeminiAdapter) PollVideo(ctx context.Context, op Operation) (Operation, error) {
	handle, ok := op.Handle.(*genai.GenerateVideosOperation)
	if !ok || handle == nil {
		return op, fmt.Errorf("poll video: operation %q has no SDK handle", op.Name)
	}
	c, err := g.client(ctx)
	if err != nil {
		return op, err
	}
	next, err := c.Operations.GetVideosOperation(ctx, handle, nil)
	if err != nil {
		return op, fmt.Errorf("get videos operation: %w", err)
	}
	return fromVideosOperation(next), nil
}

func (g *GeminiAdapter) Fetch(ctx context.Context, uri string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, appendKey(uri, g.currentKey()), nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := g.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch video: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, "", fmt.Errorf("fetch video: status %d: %s", resp.StatusCode, string(body))
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "video/mp4"
	}
	return resp.Body, mime, nil
}

func (g *GeminiAdapter) Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error) {
	c, err := g.client(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := c.Models.GenerateContent(ctx, req.Model, genai.Text(req.Text), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: req.Voice},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generate speech: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("generate speech: empty response")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, nil
		}
	}
	return nil, errors.New("generate speech: no inline audio")
}

func fromVideosOperation(op *genai.GenerateVideosOperation) Operation {
	out := Operation{Name: op.Name, Done: op.Done, Handle: op}
	if len(op.Error) > 0 {
		out.Err = fmt.Errorf("video operation failed: %v", op.Error["message"])
	}
	if op.Response != nil && len(op.Response.GeneratedVideos) > 0 {
		if v := op.Response.GeneratedVideos[0].Video; v != nil {
			out.URI = v.URI
			out.Inline = v.VideoBytes
		}
	}
	return out
}

func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:     genai.Type(s.Type),
		Required: append([]string(nil), s.Required...),
		Items:    toGenaiSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = toGenaiSchema(v)
		}
	}
	return out
}
