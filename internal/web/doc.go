// ABOUTME: Package documentation for the web request pipeline
// ABOUTME: Describes the middleware ordering, session model, and CSRF scheme

// Package web implements the jobtrack HTTP surface: session lifecycle,
// CSRF protection, authentication, flash messages, and the job CRUD
// handlers, rendered through embedded html/template views.
//
// # Pipeline
//
// Every request passes through two middleware layers before reaching a
// handler:
//
//	withSession -> csrfProtect -> mux -> (requireUser ->) handler
//
// withSession resolves the session named by the signed cookie, creating a
// fresh anonymous session when the cookie is missing, tampered with, or
// expired, and attaches it to the request context. csrfProtect validates
// the token on protected requests before any handler can mutate state.
// requireUser wraps the authenticated routes and resolves the session's
// user for ownership checks.
//
// # Sessions
//
// Sessions are server-side rows keyed by a random 256-bit identifier. The
// cookie carries only "<id>.<hmac>", signed with the configured cookie
// secret; a bad signature reads as no cookie at all. Lifetime is a fixed
// TTL from creation. The session identifier is rotated when a user
// registers or logs on, so an identifier handed out before authentication
// never names an authenticated session.
//
// # CSRF
//
// Each session lazily receives a random secret that never leaves the
// server. Rendered forms embed a token derived as HMAC-SHA256(secret,
// session id), and protected requests must present it via the _csrf form
// field or the X-CSRF-Token header. Because the derivation is keyed by the
// session's own secret and bound to its identifier, a token issued for one
// session never validates against another.
//
// # Flash messages
//
// Handlers queue one-shot messages on the session; the next rendered page
// drains the queue atomically, so each message is shown at most once.
package web
