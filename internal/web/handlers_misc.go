// ABOUTME: Landing page and the multiply JSON endpoint
// ABOUTME: Multiply answers {"result": first*second}, or "NaN" when inputs do not parse

package web

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// handleIndex renders the landing page
func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.renderIndexPage(w, r)
}

// handleMultiply multiplies the first and second query parameters and
// answers JSON. Unparseable input yields the string "NaN" rather than an
// error status.
func (a *App) handleMultiply(w http.ResponseWriter, r *http.Request) {
	first, err1 := strconv.ParseFloat(r.URL.Query().Get("first"), 64)
	second, err2 := strconv.ParseFloat(r.URL.Query().Get("second"), 64)

	var result any
	if err1 != nil || err2 != nil {
		result = "NaN"
	} else {
		result = first * second
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"result": result}); err != nil {
		a.logger.Error("encoding multiply response", "error", err)
	}
}
