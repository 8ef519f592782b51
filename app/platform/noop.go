package platform

import (
	"context"
	"errors"

	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// ErrNoAdapter is returned by the disconnected gateway.
var ErrNoAdapter = errors.New("no platform adapter configured")

// Disconnected is a Gateway for deployments without a chat adapter
// attached, such as running only the ops API against an imported
// dataset. Every outbound call fails with ErrNoAdapter.
type Disconnected struct{}

func (Disconnected) CreateThread(context.Context, sharedtypes.ChannelID, string) (sharedtypes.ThreadID, error) {
	return "", ErrNoAdapter
}

func (Disconnected) SendMessage(context.Context, sharedtypes.ChannelID, string) error {
	return ErrNoAdapter
}

func (Disconnected) SendFile(context.Context, sharedtypes.ChannelID, string, string, []byte) error {
	return ErrNoAdapter
}

func (Disconnected) ListThreads(context.Context, sharedtypes.ChannelID) ([]ThreadInfo, error) {
	return nil, ErrNoAdapter
}

func (Disconnected) FetchMessages(context.Context, sharedtypes.ThreadID, sharedtypes.MessageID, int) ([]ChannelMessage, error) {
	return nil, ErrNoAdapter
}
