// Package companion keeps each user's chat with the companion model. Chats
// live in memory only and are gone after a restart or once idle for the
// configured TTL.
package companion

import (
	"context"
	"encoding/base64"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/oliverisaac/clarity/lib/audio"
	"github.com/oliverisaac/clarity/lib/gateway"
	"github.com/oliverisaac/clarity/types"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const Greeting = "Hi there. I'm here to listen, help you organize your thoughts, or just chat. How are you holding up today?"

var (
	ErrEmptyMessage    = errors.New("say something or attach a photo")
	ErrUnknownMessage  = errors.New("no such message")
	ErrAlreadySpeaking = errors.New("message is already being read aloud")
	ErrNotAnImage      = errors.New("attachment is not an image")
)

type Attachment struct {
	Data []byte
}

type conversation struct {
	mu       sync.Mutex
	messages []types.ChatMessage
}

type Service struct {
	gateway gateway.Gateway
	chats   *cache.Cache
	create  sync.Mutex
}

func NewService(gw gateway.Gateway, ttl time.Duration) *Service {
	return &Service{
		gateway: gw,
		chats:   cache.New(ttl, ttl/2+time.Minute),
	}
}

func (s *Service) conversation(owner string) *conversation {
	s.create.Lock()
	defer s.create.Unlock()

	if c, ok := s.chats.Get(owner); ok {
		s.chats.SetDefault(owner, c)
		return c.(*conversation)
	}
	c := &conversation{messages: []types.ChatMessage{types.NewChatMessage(types.RoleModel, Greeting)}}
	s.chats.SetDefault(owner, c)
	return c
}

// Messages returns a snapshot of the owner's conversation.
func (s *Service) Messages(owner string) []types.ChatMessage {
	c := s.conversation(owner)
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.messages)
}

// Send records the user's turn, asks the model and records its answer. A
// message with a photo goes to image understanding instead of the grounded
// chat.
func (s *Service) Send(ctx context.Context, owner, text string, image *Attachment) (types.ChatMessage, error) {
	if strings.TrimSpace(text) == "" && (image == nil || len(image.Data) == 0) {
		return types.ChatMessage{}, ErrEmptyMessage
	}

	userMsg := types.NewChatMessage(types.RoleUser, text)
	var mimeType string
	if image != nil && len(image.Data) > 0 {
		mimeType = mimetype.Detect(image.Data).String()
		if !strings.HasPrefix(mimeType, "image/") {
			return types.ChatMessage{}, errors.Wrapf(ErrNotAnImage, "got %s", mimeType)
		}
		userMsg.ImageURL = "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image.Data)
	}

	c := s.conversation(owner)
	c.mu.Lock()
	history := make([]types.Turn, 0, len(c.messages))
	for _, m := range c.messages {
		history = append(history, types.Turn{Role: m.Role, Text: m.Text})
	}
	c.messages = append(c.messages, userMsg)
	c.mu.Unlock()

	modelMsg := types.NewChatMessage(types.RoleModel, "")
	if userMsg.ImageURL != "" {
		modelMsg.Text = s.gateway.AnalyzeImage(ctx, image.Data, mimeType, text)
		modelMsg.Sources = []types.Source{}
	} else {
		reply := s.gateway.SendMessage(ctx, text, history)
		modelMsg.Text, modelMsg.Sources = reply.Text, reply.Sources
	}

	c.mu.Lock()
	c.messages = append(c.messages, modelMsg)
	c.mu.Unlock()

	logrus.WithFields(logrus.Fields{"owner": owner, "sources": len(modelMsg.Sources)}).Debug("Companion replied")
	return modelMsg, nil
}

func (s *Service) setSpeaking(c *conversation, id string, speaking bool) (types.ChatMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.IndexFunc(c.messages, func(m types.ChatMessage) bool { return m.ID == id })
	if i < 0 {
		return types.ChatMessage{}, ErrUnknownMessage
	}
	if speaking && c.messages[i].Speaking {
		return types.ChatMessage{}, ErrAlreadySpeaking
	}
	c.messages[i].Speaking = speaking
	return c.messages[i], nil
}

// Speak reads a message aloud through player. The message is flagged as
// speaking until playback ends or fails.
func (s *Service) Speak(ctx context.Context, owner, id string, player audio.Player) error {
	c := s.conversation(owner)
	msg, err := s.setSpeaking(c, id, true)
	if err != nil {
		return err
	}

	clip := audio.Clip{
		PCM:        s.gateway.SynthesizeSpeech(ctx, msg.Text),
		SampleRate: gateway.SpeechSampleRate,
		Channels:   gateway.SpeechChannels,
	}
	logrus.WithFields(logrus.Fields{"owner": owner, "seconds": clip.Duration()}).Debug("Reading message aloud")
	done, err := player.Play(ctx, clip)
	if err != nil {
		_, _ = s.setSpeaking(c, id, false)
		return errors.Wrap(err, "playing message")
	}

	<-done
	_, _ = s.setSpeaking(c, id, false)
	return nil
}

// Reset forgets the owner's conversation.
func (s *Service) Reset(owner string) {
	s.chats.Delete(owner)
}
