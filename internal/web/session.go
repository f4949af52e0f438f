// ABOUTME: Session lifecycle middleware and signed cookie handling
// ABOUTME: Resolves or creates a session per request and rotates IDs after authentication

package web

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"jobtrack/internal/store"
)

// SessionCookieName is the name of the session cookie
const SessionCookieName = "jobtrack_session"

// withSession resolves the request's session from its signed cookie, creating
// a fresh one when the cookie is missing, tampered with, or expired, and
// attaches it to the request context. Handlers persist any session mutation
// through the store before the response is written.
//
// Two concurrent requests carrying the same cookie race with last-write-wins
// semantics at the store; the pipeline takes no cross-request locks.
func (a *App) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := a.resolveSession(r)
		if sess == nil {
			var err error
			sess, err = a.createSession(w, r)
			if err != nil {
				a.logger.Error("session creation failed", "route", r.URL.Path, "error", err)
				http.Error(w, "Something went wrong. Please try again later.", http.StatusInternalServerError)
				return
			}
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolveSession returns the live session named by a validly signed cookie,
// or nil when there is no usable session.
func (a *App) resolveSession(r *http.Request) *store.Session {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}

	id, ok := a.verifyCookieValue(cookie.Value)
	if !ok {
		return nil
	}

	sess, err := a.store.GetSession(r.Context(), id)
	if err != nil {
		// Expired and missing sessions both read as not found; anything
		// else is a storage fault, and falling back to a fresh session
		// keeps the request serviceable.
		if !errors.Is(err, store.ErrSessionNotFound) {
			a.logger.Warn("session lookup failed", "error", err)
		}
		return nil
	}

	return sess
}

// createSession makes a new anonymous session and hands its signed cookie
// to the client.
func (a *App) createSession(w http.ResponseWriter, r *http.Request) (*store.Session, error) {
	id, err := generateSecureToken(32)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sess := &store.Session{
		ID:        id,
		CreatedAt: now,
		ExpiresAt: now.Add(a.config.SessionTTL),
	}

	if err := a.store.CreateSession(r.Context(), sess); err != nil {
		return nil, err
	}

	a.setSessionCookie(w, r, sess)
	return sess, nil
}

// rotateSession re-keys the current session under a fresh identifier and
// reissues the cookie. Called on logon and registration so a session ID
// fixated before authentication never names an authenticated session.
func (a *App) rotateSession(w http.ResponseWriter, r *http.Request, sess *store.Session) error {
	newID, err := generateSecureToken(32)
	if err != nil {
		return err
	}

	if err := a.store.RotateSession(r.Context(), sess.ID, newID); err != nil {
		return err
	}

	sess.ID = newID
	a.setSessionCookie(w, r, sess)
	return nil
}

// destroySession deletes the session row and clears the cookie. Idempotent.
func (a *App) destroySession(w http.ResponseWriter, r *http.Request, sess *store.Session) error {
	if err := a.store.DeleteSession(r.Context(), sess.ID); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return nil
}

func (a *App) setSessionCookie(w http.ResponseWriter, r *http.Request, sess *store.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    a.signCookieValue(sess.ID),
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   a.config.SecureCookies || r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

// signCookieValue produces "<id>.<hex hmac>" so the identifier is opaque to
// the client but tamper-evident to the server.
func (a *App) signCookieValue(id string) string {
	return id + "." + a.cookieSignature(id)
}

// verifyCookieValue splits and checks a signed cookie value, returning the
// session ID it names. A bad signature is treated exactly like no cookie.
func (a *App) verifyCookieValue(value string) (string, bool) {
	id, sig, found := strings.Cut(value, ".")
	if !found || id == "" {
		return "", false
	}

	expected := a.cookieSignature(id)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", false
	}

	return id, true
}

func (a *App) cookieSignature(id string) string {
	mac := hmac.New(sha256.New, []byte(a.config.CookieSecret))
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
