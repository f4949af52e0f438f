// ABOUTME: Registration, logon, and logoff handlers (the credential verifier)
// ABOUTME: bcrypt verification with a dummy-hash path so timing never reveals whether an email exists

package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"jobtrack/internal/store"
)

// dummyHash is compared against when the email is unknown, so the failure
// path costs the same as a real hash comparison.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// handleRegisterPage renders the registration form
func (a *App) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if sess := sessionFromContext(r.Context()); sess.UserID != "" {
		http.Redirect(w, r, "/jobs", http.StatusSeeOther)
		return
	}
	a.renderRegisterPage(w, r)
}

// handleRegister processes the registration form submission
func (a *App) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.flash(r, store.FlashError, "Invalid form data.")
		a.renderRegisterPage(w, r)
		return
	}

	name := strings.TrimSpace(r.PostFormValue("name"))
	email := strings.ToLower(strings.TrimSpace(r.PostFormValue("email")))
	password := r.PostFormValue("password")
	confirmation := r.PostFormValue("password1")

	if name == "" || email == "" || password == "" {
		a.flash(r, store.FlashError, "Name, email, and password are all required.")
		a.renderRegisterPage(w, r)
		return
	}

	if password != confirmation {
		a.flash(r, store.FlashError, "The passwords entered do not match.")
		a.renderRegisterPage(w, r)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		a.serverError(w, r, err)
		return
	}

	user := &store.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := a.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			a.flash(r, store.FlashError, "That email address is already registered.")
			a.renderRegisterPage(w, r)
			return
		}
		a.serverError(w, r, err)
		return
	}

	if err := a.attachUser(w, r, user); err != nil {
		a.serverError(w, r, err)
		return
	}

	a.logger.Info("user registered", "email", email)
	http.Redirect(w, r, "/jobs", http.StatusSeeOther)
}

// handleLogonPage renders the logon form
func (a *App) handleLogonPage(w http.ResponseWriter, r *http.Request) {
	if sess := sessionFromContext(r.Context()); sess.UserID != "" {
		http.Redirect(w, r, "/jobs", http.StatusSeeOther)
		return
	}
	a.renderLogonPage(w, r)
}

// handleLogon processes the logon form submission. The flash and redirect
// are identical whether the email is unknown or the password is wrong.
func (a *App) handleLogon(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.flash(r, store.FlashError, "Invalid form data.")
		http.Redirect(w, r, "/sessions/logon", http.StatusSeeOther)
		return
	}

	email := strings.ToLower(strings.TrimSpace(r.PostFormValue("email")))
	password := r.PostFormValue("password")

	user, err := a.store.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a comparison so timing matches the known-email path
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			a.flash(r, store.FlashError, "Invalid email or password.")
			http.Redirect(w, r, "/sessions/logon", http.StatusSeeOther)
			return
		}
		a.serverError(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		a.flash(r, store.FlashError, "Invalid email or password.")
		http.Redirect(w, r, "/sessions/logon", http.StatusSeeOther)
		return
	}

	if err := a.attachUser(w, r, user); err != nil {
		a.serverError(w, r, err)
		return
	}

	a.logger.Info("logon successful", "email", email)
	http.Redirect(w, r, "/jobs", http.StatusSeeOther)
}

// attachUser rotates the session identifier and binds the user to it.
// Rotation happens first so a session ID handed out before authentication
// never names an authenticated session (fixation hardening).
func (a *App) attachUser(w http.ResponseWriter, r *http.Request, user *store.User) error {
	sess := sessionFromContext(r.Context())

	if err := a.rotateSession(w, r, sess); err != nil {
		return err
	}

	if err := a.store.SetSessionUser(r.Context(), sess.ID, user.ID); err != nil {
		return err
	}
	sess.UserID = user.ID

	return nil
}

// handleLogoff destroys the session and clears the cookie. Idempotent:
// logging off without a user attached is fine.
func (a *App) handleLogoff(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	if err := a.destroySession(w, r, sess); err != nil {
		a.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
