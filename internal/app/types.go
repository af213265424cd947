package app

import (
	"strings"
	"time"
	"unicode/utf8"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Part is one fragment of a message: either prose or an attached file.
// Exactly one of Text/File is set; the JSON shape matches the stored
// sessions and the /chat wire contract.
type Part struct {
	Text string    `json:"text,omitempty"`
	File *FilePart `json:"file,omitempty"`
}

// FilePart is an attachment encoded as a data URI.
type FilePart struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
	Name     string `json:"name"`
}

// Message is one turn in a conversation. ID is the creation timestamp in
// milliseconds; it is monotonically non-decreasing within a session but not
// guaranteed unique across rapid sends.
type Message struct {
	ID    int64  `json:"id"`
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// Session is one persisted conversation.
type Session struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
}

// Settings are the user-tunable knobs persisted alongside sessions.
// DarkTheme is presentation-only and never sent to the backend.
type Settings struct {
	Model             string `json:"model"`
	SystemInstruction string `json:"systemInstruction"`
	Grounding         bool   `json:"grounding"`
	DarkTheme         bool   `json:"darkTheme"`
}

const (
	DefaultModel = "gemini-2.0-flash"

	// DefaultSystemInstruction is the Elaina persona shipped with the app.
	DefaultSystemInstruction = "Kamu adalah asisten AI bernama Elaina Chan. Kamu sangat baik hati, imut, dan selalu ceria. Gaya bicaramu santai dan ramah. Jika menjawab pertanyaan detail, berikan jawaban yang terstruktur dengan baik, tapi kalau hanya ngobrol biasa, jawab dengan singkat dan lucu yaa~"
)

func DefaultSettings() Settings {
	return Settings{
		Model:             DefaultModel,
		SystemInstruction: DefaultSystemInstruction,
	}
}

// GroundingMetadata is the citation evidence the backend returns with a
// grounded response: chunks are sources, supports link text spans to them.
type GroundingMetadata struct {
	GroundingChunks   []GroundingChunk   `json:"groundingChunks,omitempty"`
	GroundingSupports []GroundingSupport `json:"groundingSupports,omitempty"`
}

type GroundingChunk struct {
	URI string `json:"uri"`
}

type GroundingSupport struct {
	Segment               *GroundingSegment `json:"segment,omitempty"`
	GroundingChunkIndices []int             `json:"groundingChunkIndices,omitempty"`
}

// GroundingSegment carries the byte offset in the response text that the
// supporting chunks apply to.
type GroundingSegment struct {
	EndIndex int `json:"endIndex"`
}

// ChatResponse is the success payload of the /chat endpoint.
type ChatResponse struct {
	Text              string             `json:"text"`
	GroundingMetadata *GroundingMetadata `json:"groundingMetadata,omitempty"`
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// NewUserMessage builds a user turn: the typed text first, then the
// attachments, in that order. Parts are copied; the caller keeps no
// aliasing handle into the message.
func NewUserMessage(text string, files []FilePart) Message {
	msg := Message{ID: nowMillis(), Role: RoleUser}
	if text != "" {
		msg.Parts = append(msg.Parts, Part{Text: text})
	}
	for _, f := range files {
		file := f
		msg.Parts = append(msg.Parts, Part{File: &file})
	}
	return msg
}

func NewModelMessage(text string) Message {
	return Message{
		ID:    nowMillis(),
		Role:  RoleModel,
		Parts: []Part{{Text: text}},
	}
}

const (
	titleMaxLen       = 30
	titleFileFallback = "Chat dengan File"
)

// DeriveTitle picks a session title from the first user message: its first
// text part truncated to 30 characters, or a fixed fallback when the first
// message carries only files. The title is derived once and never
// recomputed.
func DeriveTitle(messages []Message) string {
	for _, msg := range messages {
		if msg.Role != RoleUser {
			continue
		}
		for _, part := range msg.Parts {
			if strings.TrimSpace(part.Text) == "" {
				continue
			}
			return truncateRunes(part.Text, titleMaxLen)
		}
		return titleFileFallback
	}
	return titleFileFallback
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
