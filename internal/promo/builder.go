package promo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
	"github.com/sk88studiosinc-maker/Soulsound/internal/provider"
)

const DefaultModel = "gemini-3-pro-preview"

const toneDirective = "Emotional, Spiritual, Raw, Deep, Artist-first"

type Request struct {
	Link            string
	Mood            string
	Platform        model.MusicPlatform
	TargetPlatforms []model.SocialPlatform
	Style           model.VideoStyle
}

// Builder turns a track link into a PromotionPackage with a single
// structured-output call. It does not retry or cache.
type Builder struct {
	text  provider.TextModel
	model string
	log   *slog.Logger
}

func NewBuilder(text provider.TextModel, modelName string, logger *slog.Logger) *Builder {
	if modelName == "" {
		modelName = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{text: text, model: modelName, log: logger}
}

func Instruction(req Request) string {
	targets := make([]string, 0, len(req.TargetPlatforms))
	for _, p := range req.TargetPlatforms {
		targets = append(targets, string(p))
	}
	var b strings.Builder
	b.WriteString("You are \"SoulSound AI\", a senior creative engine for independent musicians.\n")
	b.WriteString("Analyze the provided music link and create a high-conversion promotion package.\n\n")
	fmt.Fprintf(&b, "TONE: %s.\n", toneDirective)
	fmt.Fprintf(&b, "TARGET PLATFORMS: %s.\n", strings.Join(targets, ", "))
	fmt.Fprintf(&b, "VISUAL STYLE: %s.\n", req.Style)
	return b.String()
}

func Prompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this track: %s.\n", req.Link)
	if req.Platform != "" && req.Platform != model.MusicUnknown {
		fmt.Fprintf(&b, "Source: %s.\n", req.Platform)
	}
	fmt.Fprintf(&b, "Mood Context: %s.\n\n", req.Mood)
	b.WriteString("1. EXTRACT Analysis: Genre, Vibe, Energy level.\n")
	b.WriteString("2. VIDEO CONCEPT: Scene-by-scene moving visual plan.\n")
	b.WriteString("3. CAMERA MODE: Filming instructions for the artist.\n")
	b.WriteString("4. AI VOICEOVER SCRIPTS: Poetic and atmospheric.\n")
	b.WriteString("5. CAPTIONS: platform-optimized.\n")
	b.WriteString("6. HASHTAGS: Niche and trending.\n")
	b.WriteString("7. POSTING TIPS: Algorithmic advice.\n")
	return b.String()
}

func (b *Builder) Build(ctx context.Context, req Request) (model.PromotionPackage, error) {
	if strings.TrimSpace(req.Link) == "" {
		return model.PromotionPackage{}, provider.InputInvalid("Paste a track link to begin.")
	}
	schema := ResponseSchema()
	raw, err := b.text.GenerateJSON(ctx, provider.JSONRequest{
		Model:             b.model,
		SystemInstruction: Instruction(req),
		Prompt:            Prompt(req),
		Schema:            schema,
	})
	if err != nil {
		if ctx.Err() != nil {
			return model.PromotionPackage{}, provider.Canceled(err)
		}
		b.log.Error("package_request_failed", "link", req.Link, "error", err)
		return model.PromotionPackage{}, provider.GenerationFailure(err)
	}
	pkg, empties, err := decode(raw, schema)
	if err != nil {
		b.log.Error("package_response_invalid", "link", req.Link, "error", err)
		return model.PromotionPackage{}, provider.GenerationFailure(err)
	}
	if len(empties) > 0 {
		b.log.Warn("package_fields_empty", "link", req.Link, "fields", empties)
	}
	b.log.Info("package_ready", "link", req.Link, "genre", pkg.Analysis.Genre,
		"scripts", len(pkg.VoiceoverScripts), "captions", len(pkg.Captions))
	return pkg, nil
}

func decode(raw string, schema *provider.Schema) (model.PromotionPackage, []string, error) {
	var tree any
	if err := json.Unmarshal([]byte(raw), &tree); err != nil {
		return model.PromotionPackage{}, nil, fmt.Errorf("decode package: %w", err)
	}
	empties, err := Validate(tree, schema)
	if err != nil {
		return model.PromotionPackage{}, nil, fmt.Errorf("validate package: %w", err)
	}
	var pkg model.PromotionPackage
	if err := json.Unmarshal([]byte(raw), &pkg); err != nil {
		return model.PromotionPackage{}, nil, fmt.Errorf("decode package: %w", err)
	}
	return pkg, empties, nil
}
