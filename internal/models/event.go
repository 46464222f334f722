package models

import "encoding/json"

// Event envelope and message payloads for the Feishu webhook.

// EventEnvelope is the outer body Feishu POSTs to /webhook.
type EventEnvelope struct {
	Type      string          `json:"type"`
	Challenge string          `json:"challenge"`
	Token     string          `json:"token"`
	Event     json.RawMessage `json:"event"`
}

// EventHeader carries the event type inside the envelope.
type EventHeader struct {
	Type string `json:"type"`
}

// MessageEvent is the im.message.receive_v1 event payload.
type MessageEvent struct {
	Type    string  `json:"type"`
	Message Message `json:"message"`
	Sender  Sender  `json:"sender"`
}

// Message is the inbound chat message.
type Message struct {
	MessageID string `json:"message_id"`
	ChatID    string `json:"chat_id"`
	ChatType  string `json:"chat_type"` // "group" or "p2p"
	Content   string `json:"content"`   // JSON string, e.g. {"text":"..."}
}

// Sender identifies who sent the message.
type Sender struct {
	SenderID SenderID `json:"sender_id"`
}

// SenderID holds the platform identifiers for a sender.
type SenderID struct {
	UserID string `json:"user_id"`
	OpenID string `json:"open_id"`
}

// TextContent is the decoded content of a text message.
type TextContent struct {
	Text string `json:"text"`
}

// Text decodes the message content and returns the plain text, or "" when
// the content is not a text payload.
func (m *Message) Text() string {
	var tc TextContent
	if err := json.Unmarshal([]byte(m.Content), &tc); err != nil {
		return ""
	}
	return tc.Text
}
