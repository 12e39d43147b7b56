package core

import (
	"time"

	"pkt.systems/lumina/schema"
)

const (
	// ChatEmptyReply replaces an empty assistant answer.
	ChatEmptyReply = "I'm sorry, I couldn't process that."
	// ChatFailureReply replaces an answer that could not be fetched.
	ChatFailureReply = "Error connecting to Lumina intelligence. Please check your network and API key settings."
)

// chatLog is the local assistant conversation. At most one request is in flight.
type chatLog struct {
	messages []schema.ChatMessage
	busy     bool
}

func (c *chatLog) append(role schema.ChatRole, text string, now time.Time) schema.ChatMessage {
	msg := schema.ChatMessage{
		ID:        schema.EntryID(newID()),
		Role:      role,
		Text:      text,
		Timestamp: now,
	}
	c.messages = append(c.messages, msg)
	return msg
}

func (c *chatLog) Messages() []schema.ChatMessage {
	return append([]schema.ChatMessage(nil), c.messages...)
}
