// Package roblox is a small client for the public Roblox web APIs.
//
// It answers the group questions reconciliation needs (membership and rank of a
// user in a group) and the lookups the verification flow needs (username to user
// id, profile description).
//
// All requests share one token-bucket rate limiter. A user's group roles are
// cached for a short TTL and concurrent lookups for the same user are
// deduplicated, so IsMember followed by GetRank costs one request.
//
// # Usage
//
//	client := roblox.NewClient(cfg.Roblox)
//	rank, err := client.GetRank(ctx, userID, groupID)
//	if errors.Is(err, roblox.ErrNotFound) {
//	    // unknown user
//	}
package roblox
