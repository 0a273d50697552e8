// Package discord adapts a discordgo session to the reconcile.Platform interface.
//
// It lists guilds, members and roles, renames members and grants or revokes roles.
// Discord REST errors are mapped onto the reconcile sentinels (ErrPermissionDenied,
// ErrUnknownRole, ErrUnknownMember) so outcomes can classify them.
//
// The gateway connection is tracked in a ConnectionState owned by the Client and
// passed explicitly to whoever needs it.
package discord
