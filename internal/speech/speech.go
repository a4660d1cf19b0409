package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"log/slog"
	"strings"

	"github.com/sk88studiosinc-maker/Soulsound/internal/media"
	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
	"github.com/sk88studiosinc-maker/Soulsound/internal/provider"
)

const (
	DefaultModel = "gemini-2.5-flash-preview-tts"
	DefaultVoice = "Zephyr"

	SampleRate    = 24000
	Channels      = 1
	BitsPerSample = 16
)

// Voices lists the prebuilt narration voices offered to artists.
var Voices = []string{"Zephyr", "Puck", "Charon", "Kore", "Fenrir", "Aoede"}

type Synthesizer struct {
	speech provider.SpeechModel
	media  media.Store
	model  string
	log    *slog.Logger
}

func NewSynthesizer(sp provider.SpeechModel, st media.Store, modelName string, logger *slog.Logger) *Synthesizer {
	if modelName == "" {
		modelName = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{speech: sp, media: st, model: modelName, log: logger}
}

func Prompt(text string) string {
	return "Say naturally and with emotional depth: " + text
}

// Synthesize narrates text and stores it as a WAV file.
func (s *Synthesizer) Synthesize(ctx context.Context, text, voice string) (model.MediaRef, error) {
	if strings.TrimSpace(text) == "" {
		return model.MediaRef{}, provider.InputInvalid("Nothing to narrate.")
	}
	if voice == "" {
		voice = DefaultVoice
	}
	pcm, err := s.speech.Synthesize(ctx, provider.SpeechRequest{Model: s.model, Text: Prompt(text), Voice: voice})
	if err != nil {
		if ctx.Err() != nil {
			return model.MediaRef{}, provider.Canceled(err)
		}
		s.log.Error("speech_failed", "voice", voice, "error", err)
		return model.MediaRef{}, provider.SpeechFailure(err)
	}
	if len(pcm) == 0 {
		return model.MediaRef{}, provider.SpeechFailure(errors.New("empty audio payload"))
	}
	ref, err := s.media.Put(ctx, "narration.wav", "audio/wav", bytes.NewReader(WAV(pcm)))
	if err != nil {
		return model.MediaRef{}, provider.SpeechFailure(err)
	}
	s.log.Info("speech_ready", "voice", voice, "key", ref.Key, "bytes", ref.SizeBytes)
	return ref, nil
}

// WAV wraps raw 16-bit little-endian mono PCM at SampleRate in a RIFF header.
func WAV(pcm []byte) []byte {
	const headerLen = 44
	blockAlign := Channels * BitsPerSample / 8
	byteRate := SampleRate * blockAlign

	buf := bytes.NewBuffer(make([]byte, 0, headerLen+len(pcm)))
	le := binary.LittleEndian
	buf.WriteString("RIFF")
	binary.Write(buf, le, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, le, uint32(16))
	binary.Write(buf, le, uint16(1)) // PCM
	binary.Write(buf, le, uint16(Channels))
	binary.Write(buf, le, uint32(SampleRate))
	binary.Write(buf, le, uint32(byteRate))
	binary.Write(buf, le, uint16(blockAlign))
	binary.Write(buf, le, uint16(BitsPerSample))
	buf.WriteString("data")
	binary.Write(buf, le, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}
