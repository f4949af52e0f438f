// ABOUTME: Secret word handlers, session-scoped application state
// ABOUTME: The word lives on the session row and survives across requests until logoff

package web

import (
	"net/http"
	"strings"

	"jobtrack/internal/store"
)

const defaultSecretWord = "syzygy"

// handleSecretWordPage shows the session's secret word
func (a *App) handleSecretWordPage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	word := sess.SecretWord
	if word == "" {
		word = defaultSecretWord
	}

	a.renderSecretWordPage(w, r, word)
}

// handleSecretWordChange updates the session's secret word. Words starting
// with a capital P are refused.
func (a *App) handleSecretWordChange(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.flash(r, store.FlashError, "Invalid form data.")
		http.Redirect(w, r, "/secretWord", http.StatusSeeOther)
		return
	}

	word := strings.TrimSpace(r.PostFormValue("secretWord"))
	if word == "" {
		a.flash(r, store.FlashError, "The secret word cannot be empty.")
		http.Redirect(w, r, "/secretWord", http.StatusSeeOther)
		return
	}

	if strings.HasPrefix(word, "P") {
		a.flash(r, store.FlashError, "That word won't work! You can't use words that start with P.")
		http.Redirect(w, r, "/secretWord", http.StatusSeeOther)
		return
	}

	sess := sessionFromContext(r.Context())
	if err := a.store.SetSessionSecretWord(r.Context(), sess.ID, word); err != nil {
		a.serverError(w, r, err)
		return
	}
	sess.SecretWord = word

	a.flash(r, store.FlashInfo, "The secret word was changed.")
	http.Redirect(w, r, "/secretWord", http.StatusSeeOther)
}
