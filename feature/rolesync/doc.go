// Package rolesync dispatches the triggers that keep guild members' nicknames
// and roles aligned with their external group rank.
//
// A member joining, finishing verification, the periodic sweep and an
// administrator resync all end in a reconcile.Coordinator pass. Every
// reconciled member is recorded in the guild_users ledger and counted in
// Prometheus; full passes are also archived as JSON reports when object
// storage is enabled.
//
// HTTP routes:
//
//	GET  /sync/status
//	POST /sync/:guild                    (NDJSON progress stream)
//	POST /sync/:guild/members/:member
//	GET  /sync/:guild/members/:member
//	GET  /sync/:guild/reports
//	GET  /sync/:guild/reports/:pass
//	GET  /metrics
package rolesync
