// Package events defines the topics and payloads flowing over the event bus.
//
// The three platform message topics are the inbound surface the gateway
// adapter publishes into; the scoring module consumes them.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// Topic names for inbound platform events.
const (
	PlatformMessageCreated = "platform.message.created"
	PlatformMessageUpdated = "platform.message.updated"
	PlatformMessageDeleted = "platform.message.deleted"
)

// CorrelationIDKey is the metadata key carrying the correlation ID.
const CorrelationIDKey = "correlation_id"

// MessageCreatedPayload is published when a message appears in any channel
// the bot can see. Week resolution happens in the scoring module, so the
// payload carries the raw channel ID.
type MessageCreatedPayload struct {
	GuildID   sharedtypes.GuildID   `json:"guild_id"`
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	MessageID sharedtypes.MessageID `json:"message_id"`
	UserID    sharedtypes.UserID    `json:"user_id"`
	Content   string                `json:"content"`
}

// MessageUpdatedPayload is published on message edits.
type MessageUpdatedPayload struct {
	GuildID   sharedtypes.GuildID   `json:"guild_id"`
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	MessageID sharedtypes.MessageID `json:"message_id"`
	Content   string                `json:"content"`
}

// MessageDeletedPayload is published on message deletions.
type MessageDeletedPayload struct {
	GuildID   sharedtypes.GuildID   `json:"guild_id"`
	ChannelID sharedtypes.ChannelID `json:"channel_id"`
	MessageID sharedtypes.MessageID `json:"message_id"`
}

// NewMessage marshals a payload into a watermill message with a fresh
// UUID and correlation ID.
func NewMessage(payload interface{}) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	msg := message.NewMessage(uuid.New().String(), data)
	msg.Metadata.Set(CorrelationIDKey, uuid.New().String())
	return msg, nil
}
