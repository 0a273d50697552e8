// Package grouproles manages a guild's link to an external group and the mapping
// of group ranks to guild roles.
//
// Settings live in guild_group_settings (group id, enabled flag, fallback role
// name) and mappings in guild_rank_roles, keyed by (guild, rank) so each rank maps
// to at most one role.
//
// # Operations
//
//   - Setup: links a group after validating it against its rank list.
//   - SetEnabled: toggles integration; requires a group.
//   - MapRank / UnmapRank: maintain rank to role mappings; the rank must exist in the group.
//   - SetFallbackRole: names the role given to members without a group role.
//   - View: settings, mappings and the group's available ranks.
//
// The Store also implements reconcile.MappingSource. Changes made while a pass is
// running apply to later passes.
package grouproles
