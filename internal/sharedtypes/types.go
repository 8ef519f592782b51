// Package sharedtypes holds the ID newtypes shared across modules.
// Platform identifiers are Discord snowflakes carried as strings.
package sharedtypes

// GuildID identifies a Discord server.
type GuildID string

// UserID identifies a Discord user.
type UserID string

// ChannelID identifies a channel (including thread parents).
type ChannelID string

// ThreadID identifies a thread. Threads are channels on the wire, but the
// core keeps them as a distinct type so a week's thread cannot be confused
// with its parent channel.
type ThreadID string

// MessageID identifies a single message. Globally unique per platform;
// the message ledger keys on it.
type MessageID string

// RoleID identifies a guild role.
type RoleID string
