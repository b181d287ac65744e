// Package starterauth implements the session and credential lifecycle for an
// application backend: JWT access/refresh token issuance, a
// Redis-backed registry of live sessions per user, and a generic single-use
// hashed-operation protocol reused for email confirmation, password reset,
// and email-change confirmation.
//
// The package is the orchestration core only. User storage, mail delivery,
// HTTP routing, and file handling are collaborators supplied by the host
// application through [UserProvider], [MailSender], and cleanup hooks.
//
// Construction goes through [Builder]; after [Builder.Build] an [Engine] is
// safe for concurrent use. Every Engine method that touches the store takes a
// context.Context and performs at least one Redis round-trip.
//
// # Consistency model
//
// The store gives per-key atomicity only. Session creation's three writes are
// not transactional; a crash in between leaves a half-open session that
// self-heals when its TTLs lapse. Hash consumption uses an atomic
// compare-and-delete, so a single-use hash can never be consumed twice even
// under concurrent verification.
package starterauth
