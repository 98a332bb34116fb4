package types

import "github.com/google/uuid"

type Role string

const (
	RoleUser   Role = "user"
	RoleModel  Role = "model"
	RoleSystem Role = "system"
)

type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// ChatMessage only lives in memory for the length of a conversation.
type ChatMessage struct {
	ID       string   `json:"id"`
	Role     Role     `json:"role"`
	Text     string   `json:"text"`
	ImageURL string   `json:"imageUrl,omitempty"`
	Sources  []Source `json:"sources,omitempty"`
	Speaking bool     `json:"isAudioPlaying"`
}

func NewChatMessage(role Role, text string) ChatMessage {
	return ChatMessage{
		ID:   uuid.NewString(),
		Role: role,
		Text: text,
	}
}

// Turn is one prior exchange handed to the companion model as history.
type Turn struct {
	Role Role
	Text string
}
