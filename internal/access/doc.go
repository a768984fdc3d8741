// Package access decides who may see and change which contacts.
//
// Every decision is a pure function of a Requester, an Operation and, when
// the operation targets one record, the stored Contact. Nothing here performs
// I/O; the service layer loads the target, asks for a decision, and only then
// writes to the store.
//
// # Requesters
//
// A Requester is exactly one of three kinds: anonymous, user or admin. The
// kinds are matched exhaustively so a new kind cannot slip through a missing
// branch unnoticed.
//
// # Reading
//
//	anonymous  nothing
//	admin      every contact
//	user       own contacts, plus contacts that are public and admin-visible
//
// # Changing
//
// Checks run in a fixed order: identity, existence, privilege, state. A
// contact the requester cannot read is reported as not found, so a user can
// never tell a private contact of someone else from a missing one.
//
// # Visibility
//
// A contact is private, public-visible or public-hidden. Only the owner moves
// it between private and public; only an administrator moves a public contact
// between visible and hidden. Making a contact private leaves the
// administrator's switch untouched, so publishing it again restores the last
// moderation decision.
package access
