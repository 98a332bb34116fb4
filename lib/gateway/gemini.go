package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/oliverisaac/clarity/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const (
	affirmationPrompt = "Give me a short, gentle, and very comforting positive affirmation for someone going through a very hard time with family and legal issues. Keep it under 20 words."
	companionPersona  = "You are a warm, empathetic, and supportive sisterly companion. You are helping a user who is dealing with CPS and foster care issues. Be gentle, non-judgmental, and clear. If the user asks about legal or factual things, use the search tool to provide accurate information but deliver it with kindness. Keep responses concise unless asked for detail."
	speechVoice       = "Kore"
)

type Models struct {
	Text   string
	Vision string
	Speech string
}

var DefaultModels = Models{
	Text:   "gemini-2.5-flash",
	Vision: "gemini-3-pro-preview",
	Speech: "gemini-2.5-flash-preview-tts",
}

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Gemini is the Gateway backed by Google's Gemini API.
type Gemini struct {
	generate generateFunc
	models   Models
	timeout  time.Duration
}

func NewGemini(ctx context.Context, apiKey string, timeout time.Duration) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating genai client")
	}
	return newGemini(client.Models.GenerateContent, DefaultModels, timeout), nil
}

func newGemini(generate generateFunc, models Models, timeout time.Duration) *Gemini {
	return &Gemini{generate: generate, models: models, timeout: timeout}
}

func (g *Gemini) call(ctx context.Context, name, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.generate(ctx, model, contents, config)
	log := logrus.WithFields(logrus.Fields{"call": name, "model": model, "took": time.Since(start)})
	if err != nil {
		fallbacks.WithLabelValues(name).Inc()
		log.Error(errors.Wrap(err, "model call failed"))
		return nil, err
	}
	log.Debug("model call finished")
	return resp, nil
}

func (g *Gemini) GenerateAffirmation(ctx context.Context) string {
	resp, err := g.call(ctx, "affirmation", g.models.Text, genai.Text(affirmationPrompt), nil)
	if err != nil {
		return FallbackAffirmation
	}
	if text := textOf(resp); text != "" {
		return text
	}
	return EmptyAffirmation
}

func (g *Gemini) SendMessage(ctx context.Context, text string, history []types.Turn) Reply {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		switch turn.Role {
		case types.RoleUser:
			contents = append(contents, genai.NewContentFromText(turn.Text, genai.RoleUser))
		case types.RoleModel:
			contents = append(contents, genai.NewContentFromText(turn.Text, genai.RoleModel))
		}
	}
	contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))

	resp, err := g.call(ctx, "chat", g.models.Text, contents, &genai.GenerateContentConfig{
		Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		SystemInstruction: genai.NewContentFromText(companionPersona, genai.RoleUser),
	})
	if err != nil {
		return Reply{Text: FallbackChat, Sources: []types.Source{}}
	}

	reply := Reply{Text: textOf(resp), Sources: sourcesOf(resp)}
	if reply.Text == "" {
		reply.Text = EmptyChat
	}
	return reply
}

func (g *Gemini) AnalyzeImage(ctx context.Context, image []byte, mimeType, prompt string) string {
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultImagePrompt
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	resp, err := g.call(ctx, "image", g.models.Vision, contents, nil)
	if err != nil {
		return FallbackImage
	}
	if text := textOf(resp); text != "" {
		return text
	}
	return EmptyImage
}

func (g *Gemini) SynthesizeSpeech(ctx context.Context, text string) []byte {
	resp, err := g.call(ctx, "speech", g.models.Speech, genai.Text(text), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: speechVoice},
			},
		},
	})
	if err != nil {
		return nil
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data
		}
	}
	logrus.Warn("speech response carried no audio")
	return nil
}

func textOf(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String())
}

// sourcesOf keeps the web grounding chunks that have both a title and a uri.
func sourcesOf(resp *genai.GenerateContentResponse) []types.Source {
	ret := []types.Source{}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return ret
	}
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" || chunk.Web.Title == "" {
			continue
		}
		ret = append(ret, types.Source{Title: chunk.Web.Title, URI: chunk.Web.URI})
	}
	return ret
}
