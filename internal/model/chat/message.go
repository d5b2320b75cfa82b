package chat

import (
	"time"

	"github.com/google/uuid"
)

// Sender 标识消息来源。
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
	SenderSystem    Sender = "system"
)

// Language 是回复语言偏好。
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageChinese Language = "zh"
)

// DefaultUsername is shown for user turns sent without a username.
const DefaultUsername = "Anonymous"

// timestampLayout matches the HH:MM clock rendered by the chat panel.
const timestampLayout = "15:04"

// ParseLanguage 解析语言参数，空值回落到英文。
func ParseLanguage(raw string) (Language, bool) {
	switch Language(raw) {
	case "":
		return LanguageEnglish, true
	case LanguageEnglish, LanguageChinese:
		return Language(raw), true
	default:
		return "", false
	}
}

// Message is one chat turn as rendered by the client. It lives only for a
// single HTTP exchange.
type Message struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	Sender      Sender `json:"sender"`
	Username    string `json:"username,omitempty"`
	Timestamp   string `json:"timestamp"`
	Emotion     string `json:"emotion,omitempty"`
	AudioBase64 string `json:"audioBase64,omitempty"`
}

// NewUserMessage echoes the inbound text as a user turn.
func NewUserMessage(text, username string, at time.Time) Message {
	if username == "" {
		username = DefaultUsername
	}
	return Message{
		ID:        uuid.NewString(),
		Message:   text,
		Sender:    SenderUser,
		Username:  username,
		Timestamp: at.Format(timestampLayout),
	}
}

// NewAssistantMessage builds the generated assistant turn.
func NewAssistantMessage(text, emotion, audioBase64 string, at time.Time) Message {
	return Message{
		ID:          uuid.NewString(),
		Message:     text,
		Sender:      SenderAssistant,
		Timestamp:   at.Format(timestampLayout),
		Emotion:     emotion,
		AudioBase64: audioBase64,
	}
}
