// Package gateway talks to the hosted models behind the companion. Every call
// fails soft: a broken or unreachable model yields a fixed fallback rather
// than an error, and callers take whatever comes back as the answer.
package gateway

import (
	"context"

	"github.com/oliverisaac/clarity/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	FallbackAffirmation = "Peace comes from within. Breathe deeply."
	EmptyAffirmation    = "You are stronger than you know, and you are not alone."
	FallbackChat        = "I'm having a little trouble connecting right now, but I'm still listening."
	EmptyChat           = "I'm here for you."
	FallbackImage       = "I couldn't analyze the image just yet. Please try again."
	EmptyImage          = "I see the image, but I can't quite describe it right now."
	DefaultImagePrompt  = "Describe this image gently."
	SpeechSampleRate    = 24000
	SpeechChannels      = 1
)

type Reply struct {
	Text    string         `json:"text"`
	Sources []types.Source `json:"sources"`
}

type Gateway interface {
	GenerateAffirmation(ctx context.Context) string
	SendMessage(ctx context.Context, text string, history []types.Turn) Reply
	AnalyzeImage(ctx context.Context, image []byte, mimeType, prompt string) string
	// SynthesizeSpeech returns 16-bit little-endian PCM at SpeechSampleRate,
	// or nil when no audio could be produced.
	SynthesizeSpeech(ctx context.Context, text string) []byte
}

var fallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "clarity",
	Subsystem: "gateway",
	Name:      "fallbacks_total",
	Help:      "Model calls that were answered with a fallback.",
}, []string{"call"})

// Offline answers every call with its fallback. It stands in for the real
// gateway when no API key is configured.
type Offline struct{}

func (Offline) GenerateAffirmation(context.Context) string {
	fallbacks.WithLabelValues("affirmation").Inc()
	return FallbackAffirmation
}

func (Offline) SendMessage(context.Context, string, []types.Turn) Reply {
	fallbacks.WithLabelValues("chat").Inc()
	return Reply{Text: FallbackChat, Sources: []types.Source{}}
}

func (Offline) AnalyzeImage(context.Context, []byte, string, string) string {
	fallbacks.WithLabelValues("image").Inc()
	return FallbackImage
}

func (Offline) SynthesizeSpeech(context.Context, string) []byte {
	fallbacks.WithLabelValues("speech").Inc()
	return nil
}
