// Package platform defines the chat-platform gateway port.
//
// The real Discord client lives outside this repository; the core only
// depends on this interface. Every method is a blocking platform call and
// honors the passed context.
package platform

import (
	"context"
	"time"

	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// ThreadInfo describes a thread under a channel.
type ThreadInfo struct {
	ID        sharedtypes.ThreadID
	Name      string
	ParentID  sharedtypes.ChannelID
	CreatedAt time.Time
	Archived  bool
}

// ChannelMessage is a message as fetched from the platform, either live
// (event payload) or via history pagination.
type ChannelMessage struct {
	ID        sharedtypes.MessageID
	UserID    sharedtypes.UserID
	Content   string
	Timestamp time.Time
}

// Gateway is the outbound platform surface consumed by the core.
type Gateway interface {
	// CreateThread creates a thread under the given channel and returns
	// its ID.
	CreateThread(ctx context.Context, channelID sharedtypes.ChannelID, name string) (sharedtypes.ThreadID, error)

	// SendMessage posts plain text to a channel or thread.
	SendMessage(ctx context.Context, channelID sharedtypes.ChannelID, content string) error

	// SendFile posts a file attachment (chart PNGs, exports) with an
	// accompanying text.
	SendFile(ctx context.Context, channelID sharedtypes.ChannelID, content, filename string, data []byte) error

	// ListThreads returns all threads under the channel, active and
	// archived.
	ListThreads(ctx context.Context, channelID sharedtypes.ChannelID) ([]ThreadInfo, error)

	// FetchMessages pages through a thread's history oldest-to-newest.
	// afterID is exclusive; an empty afterID starts from the beginning.
	// Returns at most limit messages; an empty slice means the history is
	// exhausted.
	FetchMessages(ctx context.Context, threadID sharedtypes.ThreadID, afterID sharedtypes.MessageID, limit int) ([]ChannelMessage, error)
}
