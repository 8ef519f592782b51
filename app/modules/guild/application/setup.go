package guildservice

import (
	"context"
	"errors"
	"time"

	guilddomain "github.com/focus-guild/pomo-bot/app/modules/guild/domain"
	guilddb "github.com/focus-guild/pomo-bot/app/modules/guild/infrastructure/repositories"
	"github.com/focus-guild/pomo-bot/internal/results"
	"github.com/focus-guild/pomo-bot/internal/sharedtypes"
)

// ErrInvalidGuildID rejects an empty guild ID.
var ErrInvalidGuildID = errors.New("invalid guild ID")

// GuildSetupPayload reports a successful setup.
type GuildSetupPayload struct {
	Guild   *guilddomain.Guild
	Existed bool
}

// GuildFailurePayload carries a business failure reason.
type GuildFailurePayload struct {
	GuildID sharedtypes.GuildID
	Reason  string
}

// SetupGuild creates the guild row on first setup. Re-running setup for an
// existing guild returns the existing row; the command surface treats that
// as success.
func (s *GuildService) SetupGuild(ctx context.Context, guild *guilddomain.Guild) (results.OperationResult, error) {
	if guild == nil || guild.GuildID == "" {
		return results.FailureResult(&GuildFailurePayload{Reason: ErrInvalidGuildID.Error()}), nil
	}
	return s.withTelemetry(ctx, "SetupGuild", guild.GuildID, func(ctx context.Context) (results.OperationResult, error) {
		if guild.Language == "" {
			guild.Language = "en"
		}
		if guild.Timezone == "" {
			guild.Timezone = "Europe/Berlin"
		}
		if _, err := time.LoadLocation(guild.Timezone); err != nil {
			return results.FailureResult(&GuildFailurePayload{
				GuildID: guild.GuildID,
				Reason:  "unknown timezone: " + guild.Timezone,
			}), nil
		}

		err := s.repo.SaveGuild(ctx, guild)
		if errors.Is(err, guilddb.ErrAlreadyExists) {
			existing, getErr := s.repo.GetGuild(ctx, guild.GuildID)
			if getErr != nil {
				return results.OperationResult{}, getErr
			}
			return results.SuccessResult(&GuildSetupPayload{Guild: existing, Existed: true}), nil
		}
		if err != nil {
			return results.OperationResult{}, err
		}
		return results.SuccessResult(&GuildSetupPayload{Guild: guild}), nil
	})
}

// GetGuild returns the guild configuration.
func (s *GuildService) GetGuild(ctx context.Context, guildID sharedtypes.GuildID) (*guilddomain.Guild, error) {
	return s.repo.GetGuild(ctx, guildID)
}

// UpdateGuildConfig applies config-command changes.
func (s *GuildService) UpdateGuildConfig(ctx context.Context, guildID sharedtypes.GuildID, updates *guilddb.UpdateFields) (results.OperationResult, error) {
	return s.withTelemetry(ctx, "UpdateGuildConfig", guildID, func(ctx context.Context) (results.OperationResult, error) {
		if updates.Timezone != nil {
			if _, err := time.LoadLocation(*updates.Timezone); err != nil {
				return results.FailureResult(&GuildFailurePayload{
					GuildID: guildID,
					Reason:  "unknown timezone: " + *updates.Timezone,
				}), nil
			}
		}
		err := s.repo.UpdateGuild(ctx, guildID, updates)
		if errors.Is(err, guilddb.ErrNotFound) {
			return results.FailureResult(&GuildFailurePayload{
				GuildID: guildID,
				Reason:  "guild is not set up",
			}), nil
		}
		if err != nil {
			return results.OperationResult{}, err
		}
		guild, err := s.repo.GetGuild(ctx, guildID)
		if err != nil {
			return results.OperationResult{}, err
		}
		return results.SuccessResult(&GuildSetupPayload{Guild: guild, Existed: true}), nil
	})
}
