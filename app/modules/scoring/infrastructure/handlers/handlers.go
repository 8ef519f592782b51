// Package scoringhandlers consumes the three platform message events and
// feeds them into the ledger.
package scoringhandlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/focus-guild/pomo-bot/app/events"
	scoringservice "github.com/focus-guild/pomo-bot/app/modules/scoring/application"
	"github.com/focus-guild/pomo-bot/internal/results"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// Service is the slice of the scoring service the handlers use.
type Service interface {
	ProcessMessage(ctx context.Context, input scoringservice.ProcessInput) (results.OperationResult, error)
	UpdateMessage(ctx context.Context, messageID sharedtypes.MessageID, newContent string) (results.OperationResult, error)
	DeleteMessage(ctx context.Context, messageID sharedtypes.MessageID) (results.OperationResult, error)
}

// ScoringHandlers wires the event topics to the ledger.
type ScoringHandlers struct {
	service Service
	logger  *slog.Logger
}

// NewScoringHandlers creates the handler set.
func NewScoringHandlers(service Service, logger *slog.Logger) *ScoringHandlers {
	return &ScoringHandlers{service: service, logger: logger}
}

// Registrar is the piece of the event bus handlers attach to.
type Registrar interface {
	AddHandler(name, topic string, fn message.NoPublishHandlerFunc)
}

// Register attaches all scoring handlers to the bus.
func (h *ScoringHandlers) Register(bus Registrar) {
	bus.AddHandler("scoring.message_created", events.PlatformMessageCreated, h.HandleMessageCreated)
	bus.AddHandler("scoring.message_updated", events.PlatformMessageUpdated, h.HandleMessageUpdated)
	bus.AddHandler("scoring.message_deleted", events.PlatformMessageDeleted, h.HandleMessageDeleted)
}

// HandleMessageCreated processes a new message. Skips (no active week,
// already processed, no emoji) are acked quietly; only infrastructure
// errors are returned for retry.
func (h *ScoringHandlers) HandleMessageCreated(msg *message.Message) error {
	var payload events.MessageCreatedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.logger.Error("Dropping malformed message-created event", slog.Any("error", err))
		return nil
	}

	result, err := h.service.ProcessMessage(msg.Context(), scoringservice.ProcessInput{
		ChannelID: payload.ChannelID,
		MessageID: payload.MessageID,
		UserID:    payload.UserID,
		Content:   payload.Content,
	})
	if err != nil {
		return fmt.Errorf("message created %s: %w", payload.MessageID, err)
	}
	h.logSkip(msg, "created", result)
	return nil
}

// HandleMessageUpdated recomputes an edited message.
func (h *ScoringHandlers) HandleMessageUpdated(msg *message.Message) error {
	var payload events.MessageUpdatedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.logger.Error("Dropping malformed message-updated event", slog.Any("error", err))
		return nil
	}

	result, err := h.service.UpdateMessage(msg.Context(), payload.MessageID, payload.Content)
	if err != nil {
		return fmt.Errorf("message updated %s: %w", payload.MessageID, err)
	}
	h.logSkip(msg, "updated", result)
	return nil
}

// HandleMessageDeleted drops the ledger row, if any.
func (h *ScoringHandlers) HandleMessageDeleted(msg *message.Message) error {
	var payload events.MessageDeletedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.logger.Error("Dropping malformed message-deleted event", slog.Any("error", err))
		return nil
	}

	if _, err := h.service.DeleteMessage(msg.Context(), payload.MessageID); err != nil {
		return fmt.Errorf("message deleted %s: %w", payload.MessageID, err)
	}
	return nil
}

func (h *ScoringHandlers) logSkip(msg *message.Message, event string, result results.OperationResult) {
	skipped, ok := result.Failure.(*scoringservice.MessageSkippedPayload)
	if !ok {
		return
	}
	h.logger.Debug("Message event not applied",
		slog.String("event", event),
		slog.String("message_id", string(skipped.MessageID)),
		slog.String("reason", string(skipped.Reason)),
		slog.String("correlation_id", msg.Metadata.Get(events.CorrelationIDKey)),
	)
}
