package scoringservice

import (
	"context"
	"errors"

	scoringdomain "github.com/focus-guild/pomo-bot/app/modules/scoring/domain"
	scoringdb "github.com/focus-guild/pomo-bot/app/modules/scoring/infrastructure/repositories"
	"github.com/focus-guild/pomo-bot/internal/results"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// EmojiConfiguredPayload reports an emoji configuration change.
type EmojiConfiguredPayload struct {
	Emoji *scoringdomain.Emoji
}

// EmojiFailurePayload carries a business-failure reason.
type EmojiFailurePayload struct {
	GuildID sharedtypes.GuildID
	Reason  string
}

// AddEmoji configures a scoring emoji. The (guild, scope, code)
// active-uniqueness is enforced by storage; a duplicate is a business
// failure, not an error.
func (s *ScoringService) AddEmoji(ctx context.Context, emoji *scoringdomain.Emoji) (results.OperationResult, error) {
	return s.withTelemetry(ctx, "AddEmoji", "", func(ctx context.Context) (results.OperationResult, error) {
		if err := emoji.Validate(); err != nil {
			return results.FailureResult(&EmojiFailurePayload{
				GuildID: emoji.GuildID,
				Reason:  err.Error(),
			}), nil
		}
		created, err := s.emojis.AddEmoji(ctx, emoji)
		if errors.Is(err, scoringdb.ErrDuplicateEmoji) {
			return results.FailureResult(&EmojiFailurePayload{
				GuildID: emoji.GuildID,
				Reason:  err.Error(),
			}), nil
		}
		if err != nil {
			return results.OperationResult{}, err
		}
		return results.SuccessResult(&EmojiConfiguredPayload{Emoji: created}), nil
	})
}

// DeactivateEmoji soft-deletes a configured emoji.
func (s *ScoringService) DeactivateEmoji(ctx context.Context, guildID sharedtypes.GuildID, emojiID int64) (results.OperationResult, error) {
	return s.withTelemetry(ctx, "DeactivateEmoji", "", func(ctx context.Context) (results.OperationResult, error) {
		ok, err := s.emojis.DeactivateEmoji(ctx, guildID, emojiID)
		if err != nil {
			return results.OperationResult{}, err
		}
		if !ok {
			return results.FailureResult(&EmojiFailurePayload{
				GuildID: guildID,
				Reason:  "no active emoji with that ID",
			}), nil
		}
		return results.SuccessResult(&EmojiConfiguredPayload{}), nil
	})
}

// ListEmojis returns the full emoji configuration of a guild, active and
// inactive.
func (s *ScoringService) ListEmojis(ctx context.Context, guildID sharedtypes.GuildID) ([]scoringdomain.Emoji, error) {
	return s.emojis.ListAll(ctx, guildID)
}

// ActiveEmojiConfig returns the configuration applying to one challenge.
// The leaderboard uses it to pick reward emoji for rendering.
func (s *ScoringService) ActiveEmojiConfig(ctx context.Context, guildID sharedtypes.GuildID, challengeID int64) ([]scoringdomain.Emoji, error) {
	return s.emojis.ListActive(ctx, guildID, challengeID)
}
