// ABOUTME: Job CRUD handlers with per-user ownership enforcement
// ABOUTME: Every query is scoped to the authenticated user; user_id never comes from the client

package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobtrack/internal/store"
)

// handleJobsList shows the authenticated user's jobs, newest first.
func (a *App) handleJobsList(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	jobs, err := a.store.ListJobsByUser(r.Context(), user.ID)
	if err != nil {
		a.serverError(w, r, err)
		return
	}

	a.renderJobsList(w, r, jobs)
}

// handleJobNewForm renders a blank job form
func (a *App) handleJobNewForm(w http.ResponseWriter, r *http.Request) {
	a.renderJobForm(w, r, &store.Job{Status: store.JobStatusPending}, false)
}

// handleJobCreate creates a job owned by the authenticated user
func (a *App) handleJobCreate(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	job, ok := a.jobFromForm(w, r, nil)
	if !ok {
		return
	}

	now := time.Now().UTC()
	job.ID = uuid.NewString()
	job.UserID = user.ID
	job.CreatedAt = now
	job.UpdatedAt = now

	if err := a.store.CreateJob(r.Context(), job); err != nil {
		a.serverError(w, r, err)
		return
	}

	a.flash(r, store.FlashInfo, "Job added.")
	http.Redirect(w, r, "/jobs", http.StatusSeeOther)
}

// handleJobDetail shows one job, with its notes rendered as Markdown.
func (a *App) handleJobDetail(w http.ResponseWriter, r *http.Request) {
	job, ok := a.ownedJob(w, r)
	if !ok {
		return
	}
	a.renderJobDetail(w, r, job)
}

// handleJobEditForm renders the edit form for an owned job
func (a *App) handleJobEditForm(w http.ResponseWriter, r *http.Request) {
	job, ok := a.ownedJob(w, r)
	if !ok {
		return
	}
	a.renderJobForm(w, r, job, true)
}

// handleJobUpdate applies form changes to an owned job. The UPDATE itself is
// scoped to the owner, so even a racing ownership change cannot leak a write.
func (a *App) handleJobUpdate(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	current, ok := a.ownedJob(w, r)
	if !ok {
		return
	}

	job, ok := a.jobFromForm(w, r, current)
	if !ok {
		return
	}
	job.UserID = user.ID

	if err := a.store.UpdateJob(r.Context(), job); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			a.missingJob(w, r)
			return
		}
		a.serverError(w, r, err)
		return
	}

	a.flash(r, store.FlashInfo, "Job updated.")
	http.Redirect(w, r, "/jobs", http.StatusSeeOther)
}

// handleJobDelete removes an owned job. Deleting a job that is missing or
// not yours responds identically.
func (a *App) handleJobDelete(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	if err := a.store.DeleteJob(r.Context(), r.PathValue("id"), user.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			a.missingJob(w, r)
			return
		}
		a.serverError(w, r, err)
		return
	}

	a.flash(r, store.FlashInfo, "Job deleted.")
	http.Redirect(w, r, "/jobs", http.StatusSeeOther)
}

// ownedJob fetches the job named in the path and checks it belongs to the
// authenticated user. A job that is missing and a job owned by someone else
// produce the same response, so existence is never disclosed.
func (a *App) ownedJob(w http.ResponseWriter, r *http.Request) (*store.Job, bool) {
	user := userFromContext(r.Context())

	job, err := a.store.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			a.missingJob(w, r)
			return nil, false
		}
		a.serverError(w, r, err)
		return nil, false
	}

	if job.UserID != user.ID {
		a.missingJob(w, r)
		return nil, false
	}

	return job, true
}

func (a *App) missingJob(w http.ResponseWriter, r *http.Request) {
	a.flash(r, store.FlashError, "That job was not found.")
	http.Redirect(w, r, "/jobs", http.StatusSeeOther)
}

// jobFromForm parses and validates the job form. On a validation failure it
// re-renders the form with a flash and reports false. When base is non-nil
// its identity fields carry over (edit path).
func (a *App) jobFromForm(w http.ResponseWriter, r *http.Request, base *store.Job) (*store.Job, bool) {
	editing := base != nil

	if err := r.ParseForm(); err != nil {
		a.flash(r, store.FlashError, "Invalid form data.")
		a.renderJobForm(w, r, &store.Job{Status: store.JobStatusPending}, editing)
		return nil, false
	}

	job := &store.Job{
		Company:  strings.TrimSpace(r.PostFormValue("company")),
		Position: strings.TrimSpace(r.PostFormValue("position")),
		Status:   r.PostFormValue("status"),
		Notes:    r.PostFormValue("notes"),
	}
	if editing {
		job.ID = base.ID
		job.UserID = base.UserID
		job.CreatedAt = base.CreatedAt
	}
	if job.Status == "" {
		job.Status = store.JobStatusPending
	}

	if job.Company == "" || job.Position == "" {
		a.flash(r, store.FlashError, "Company and position are both required.")
		a.renderJobForm(w, r, job, editing)
		return nil, false
	}

	if !validJobStatus(job.Status) {
		a.flash(r, store.FlashError, "That is not a valid status.")
		a.renderJobForm(w, r, job, editing)
		return nil, false
	}

	return job, true
}

func validJobStatus(status string) bool {
	for _, s := range store.JobStatuses {
		if status == s {
			return true
		}
	}
	return false
}
