// Package verification proves that a Discord member owns a Roblox account.
//
// The flow follows the code-in-profile pattern:
//
//  1. Start resolves the Roblox username and issues an 8 character code [A-Z0-9].
//  2. The member adds the code to their Roblox "About" description.
//  3. Confirm reads the description, commits the identity to verified_users and
//     immediately syncs the member's roles through the Completer.
//
// A failed role sync never undoes a verification; it is reported as a note.
//
// The Store implements reconcile.IdentityStore.
package verification
