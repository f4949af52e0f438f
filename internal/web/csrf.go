// ABOUTME: CSRF guard with a server-side per-session secret
// ABOUTME: Issues derived tokens per render and validates them on protected requests

package web

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"mime"
	"net/http"
	"strings"
)

// CSRFFieldName is the hidden form field carrying the derived token.
const CSRFFieldName = "_csrf"

// CSRFHeaderName is the request header alternative to the form field,
// for JSON and script-driven submissions.
const CSRFHeaderName = "X-CSRF-Token"

// csrfToken returns the derived token for the current session, generating
// and persisting the session's secret on first use. The secret itself never
// crosses the wire; only this derivation does, embedded in rendered pages.
func (a *App) csrfToken(r *http.Request) (string, error) {
	sess := sessionFromContext(r.Context())

	if sess.CSRFSecret == "" {
		secret, err := generateSecureToken(32)
		if err != nil {
			return "", err
		}
		if err := a.store.SetSessionCSRFSecret(r.Context(), sess.ID, secret); err != nil {
			return "", err
		}
		sess.CSRFSecret = secret
	}

	return deriveCSRFToken(sess.CSRFSecret, sess.ID), nil
}

// deriveCSRFToken binds the token to both the secret and the session
// identifier, so a token issued for one session can never validate against
// another session's secret.
func deriveCSRFToken(secret, sessionID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sessionID))
	return hex.EncodeToString(mac.Sum(nil))
}

// csrfProtect rejects protected requests whose token does not match the
// current session's secret. It runs before any handler, so a rejected
// request mutates nothing.
//
// The token is derived from a stable per-session secret, so two requests
// in flight at once both validate; that at-least-once window is accepted
// by design rather than serializing renders.
func (a *App) csrfProtect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.csrfProtected(r) {
			next.ServeHTTP(w, r)
			return
		}

		sess := sessionFromContext(r.Context())
		if sess == nil || sess.CSRFSecret == "" {
			// No secret has ever been issued to this session, so no
			// token can be valid.
			a.rejectCSRF(w, r, "no secret issued")
			return
		}

		presented := a.presentedToken(r)
		if presented == "" {
			a.rejectCSRF(w, r, "no token presented")
			return
		}

		expected := deriveCSRFToken(sess.CSRFSecret, sess.ID)
		if !hmac.Equal([]byte(presented), []byte(expected)) {
			a.rejectCSRF(w, r, "token mismatch")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// csrfProtected reports whether the request's method and content type both
// fall in the configured protected set.
func (a *App) csrfProtected(r *http.Request) bool {
	method := false
	for _, m := range a.config.CSRFMethods {
		if r.Method == m {
			method = true
			break
		}
	}
	if !method {
		return false
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		// A bodyless state-changing request is still protected.
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}

	for _, ct := range a.config.CSRFContentTypes {
		if mediaType == ct {
			return true
		}
	}
	return false
}

// presentedToken extracts the inbound token from the header or, for form
// bodies, from the hidden field.
func (a *App) presentedToken(r *http.Request) string {
	if token := r.Header.Get(CSRFHeaderName); token != "" {
		return token
	}
	if err := r.ParseForm(); err != nil {
		return ""
	}
	return r.PostFormValue(CSRFFieldName)
}

func (a *App) rejectCSRF(w http.ResponseWriter, r *http.Request, reason string) {
	a.logger.Warn("rejected request without valid CSRF token",
		"route", r.URL.Path,
		"method", r.Method,
		"session", hashedSessionID(r.Context()),
		"reason", reason,
	)
	http.Error(w, "Invalid request. Please reload the page and try again.", http.StatusForbidden)
}
