// ABOUTME: Flash relay helpers bridging handlers and the session's message queue
// ABOUTME: Push queues a message; drain consumes the queue for exactly one render

package web

import (
	"net/http"

	"jobtrack/internal/store"
)

// flash queues a one-shot message on the current session for the next render.
func (a *App) flash(r *http.Request, category, text string) {
	sess := sessionFromContext(r.Context())
	if sess == nil {
		return
	}
	if err := a.store.PushFlash(r.Context(), sess.ID, store.FlashMessage{Category: category, Text: text}); err != nil {
		a.logger.Error("flash push failed", "session", hashedSessionID(r.Context()), "error", err)
	}
}

// drainFlash consumes and returns the session's queued messages in push
// order. A message pushed in one request is visible to exactly the next
// render that drains, and absent afterward.
func (a *App) drainFlash(r *http.Request) []store.FlashMessage {
	sess := sessionFromContext(r.Context())
	if sess == nil {
		return nil
	}
	msgs, err := a.store.DrainFlash(r.Context(), sess.ID)
	if err != nil {
		a.logger.Error("flash drain failed", "session", hashedSessionID(r.Context()), "error", err)
		return nil
	}
	return msgs
}
