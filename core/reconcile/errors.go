package reconcile

import "errors"

var (
	// ErrPermissionDenied is returned by platforms when the bot may not perform a mutation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnknownRole means the role no longer exists in the guild.
	ErrUnknownRole = errors.New("unknown role")

	// ErrUnknownMember means the member left the guild.
	ErrUnknownMember = errors.New("unknown member")

	// ErrNotConfigured means the guild has no usable group configuration.
	ErrNotConfigured = errors.New("group integration not configured")

	// ErrBotMember is returned when a single-member pass targets a bot account.
	ErrBotMember = errors.New("member is a bot")
)
