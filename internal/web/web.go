// ABOUTME: Web application assembly for jobtrack
// ABOUTME: Builds the middleware pipeline (session, CSRF, auth gate) and route table

package web

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"time"

	"jobtrack/internal/store"
)

// Store combines the persistence interfaces the pipeline depends on.
type Store interface {
	store.UserStore
	store.SessionStore
	store.JobStore
}

// Config holds the pipeline configuration. It is passed explicitly into New
// at process startup; there is no ambient global state.
type Config struct {
	// CookieSecret signs session cookie values.
	CookieSecret string

	// SessionTTL is the fixed session lifetime, counted from creation.
	SessionTTL time.Duration

	// SecureCookies forces the Secure flag on all cookies. Enabled in
	// production; requests over TLS get Secure cookies regardless.
	SecureCookies bool

	// CSRFMethods and CSRFContentTypes enumerate the request shapes that
	// require a valid CSRF token. A request is protected when its method
	// and its content type each appear in these sets.
	CSRFMethods      []string
	CSRFContentTypes []string
}

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const sessionContextKey contextKey = "session"
const userContextKey contextKey = "user"

// App handles all web routes and the request pipeline
type App struct {
	store  Store
	config Config
	logger *slog.Logger
}

// New creates a new App
func New(st Store, cfg Config) *App {
	return &App{
		store:  st,
		config: cfg,
		logger: slog.Default().With("component", "web"),
	}
}

// Handler returns the complete request pipeline: session resolution wraps
// CSRF validation, which wraps the route table.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	a.RegisterRoutes(mux)
	return a.withSession(a.csrfProtect(mux))
}

// RegisterRoutes registers all routes on the given mux
func (a *App) RegisterRoutes(mux *http.ServeMux) {
	// Public routes (no auth required)
	mux.HandleFunc("GET /{$}", a.handleIndex)
	mux.HandleFunc("GET /multiply", a.handleMultiply)
	mux.HandleFunc("GET /session/register", a.handleRegisterPage)
	mux.HandleFunc("POST /session/register", a.handleRegister)
	mux.HandleFunc("GET /sessions/logon", a.handleLogonPage)
	mux.HandleFunc("POST /sessions/logon", a.handleLogon)
	mux.HandleFunc("GET /sessions/logoff", a.handleLogoff)

	// Protected routes (auth required)
	mux.HandleFunc("GET /secretWord", a.requireUser(a.handleSecretWordPage))
	mux.HandleFunc("POST /secretWord", a.requireUser(a.handleSecretWordChange))

	mux.HandleFunc("GET /jobs", a.requireUser(a.handleJobsList))
	mux.HandleFunc("GET /jobs/new", a.requireUser(a.handleJobNewForm))
	mux.HandleFunc("POST /jobs", a.requireUser(a.handleJobCreate))
	mux.HandleFunc("GET /jobs/{id}", a.requireUser(a.handleJobDetail))
	mux.HandleFunc("GET /jobs/{id}/edit", a.requireUser(a.handleJobEditForm))
	mux.HandleFunc("POST /jobs/{id}", a.requireUser(a.handleJobUpdate))
	mux.HandleFunc("POST /jobs/{id}/delete", a.requireUser(a.handleJobDelete))

	// Everything else
	mux.HandleFunc("/", a.handleNotFound)

	a.logger.Info("routes registered")
}

// requireUser wraps a handler to require an authenticated session. The
// resolved user is placed in the request context for ownership checks.
func (a *App) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromContext(r.Context())
		if sess == nil || sess.UserID == "" {
			a.flash(r, store.FlashError, "You must be logged on to access that page.")
			http.Redirect(w, r, "/sessions/logon", http.StatusSeeOther)
			return
		}

		user, err := a.store.GetUser(r.Context(), sess.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Account deleted underneath a live session
				_ = a.store.ClearSessionUser(r.Context(), sess.ID)
				http.Redirect(w, r, "/sessions/logon", http.StatusSeeOther)
				return
			}
			a.serverError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// userFromContext retrieves the authenticated user from the request context
func userFromContext(ctx context.Context) *store.User {
	user, _ := ctx.Value(userContextKey).(*store.User)
	return user
}

// sessionFromContext retrieves the current session from the request context
func sessionFromContext(ctx context.Context) *store.Session {
	sess, _ := ctx.Value(sessionContextKey).(*store.Session)
	return sess
}

// serverError logs the failure with enough context to diagnose it and sends
// a generic 500. Internal error text is never echoed to the client.
func (a *App) serverError(w http.ResponseWriter, r *http.Request, err error) {
	kind := "internal"
	if errors.Is(err, store.ErrTimeout) {
		kind = "store_timeout"
	}

	a.logger.Error("request failed",
		"route", r.URL.Path,
		"method", r.Method,
		"session", hashedSessionID(r.Context()),
		"kind", kind,
		"error", err,
	)

	http.Error(w, "Something went wrong. Please try again later.", http.StatusInternalServerError)
}

// hashedSessionID returns a short hash of the current session ID for log
// correlation without exposing the identifier itself.
func hashedSessionID(ctx context.Context) string {
	sess := sessionFromContext(ctx)
	if sess == nil {
		return "none"
	}
	sum := sha256.Sum256([]byte(sess.ID))
	return hex.EncodeToString(sum[:4])
}

// handleNotFound answers every route the table doesn't know.
func (a *App) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprintf(w, "That page (%s) was not found.", html.EscapeString(r.URL.Path))
}
