package discord

import (
	"errors"
	"fmt"
	"net/http"

	"rank-sync/core/reconcile"

	"github.com/bwmarrin/discordgo"
)

// mapError translates Discord REST errors into reconcile sentinels.
// The original error stays in the chain.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}

	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeMissingPermissions, discordgo.ErrCodeMissingAccess:
			return fmt.Errorf("%w: %w", reconcile.ErrPermissionDenied, err)
		case discordgo.ErrCodeUnknownRole:
			return fmt.Errorf("%w: %w", reconcile.ErrUnknownRole, err)
		case discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownUser:
			return fmt.Errorf("%w: %w", reconcile.ErrUnknownMember, err)
		}
	}

	if restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %w", reconcile.ErrPermissionDenied, err)
	}
	return err
}
