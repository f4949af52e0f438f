// ABOUTME: Template rendering functions for the jobtrack UI
// ABOUTME: Loads templates from the embedded filesystem and renders them

package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"

	"jobtrack/internal/store"
)

// Template data types
type pageData struct {
	Title     string
	User      *store.User
	Flashes   []store.FlashMessage
	CSRFToken string
}

type indexData struct {
	pageData
}

type registerData struct {
	pageData
	Name  string
	Email string
}

type logonData struct {
	pageData
	Email string
}

type jobsListData struct {
	pageData
	Jobs []*store.Job
}

type jobFormData struct {
	pageData
	Job      *store.Job
	Statuses []string
	Editing  bool
}

type jobDetailData struct {
	pageData
	Job       *store.Job
	NotesHTML template.HTML
}

type secretWordData struct {
	pageData
	SecretWord string
}

// page assembles the fields every view shares: the drained flash queue, the
// authenticated user (if any), and a CSRF token for forms. Draining here
// keeps the at-most-once rule in one place.
func (a *App) page(r *http.Request, title string) pageData {
	token, err := a.csrfToken(r)
	if err != nil {
		a.logger.Error("issuing CSRF token failed", "session", hashedSessionID(r.Context()), "error", err)
	}

	return pageData{
		Title:     title,
		User:      userFromContext(r.Context()),
		Flashes:   a.drainFlash(r),
		CSRFToken: token,
	}
}

func (a *App) render(w http.ResponseWriter, name string, data any) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/"+name))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		a.logger.Error("failed to render page", "template", name, "error", err)
	}
}

// renderIndexPage renders the landing page
func (a *App) renderIndexPage(w http.ResponseWriter, r *http.Request) {
	a.render(w, "index.html", indexData{pageData: a.page(r, "Jobs EJS")})
}

// renderRegisterPage renders the registration form
func (a *App) renderRegisterPage(w http.ResponseWriter, r *http.Request) {
	a.render(w, "register.html", registerData{
		pageData: a.page(r, "Register"),
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
	})
}

// renderLogonPage renders the logon form
func (a *App) renderLogonPage(w http.ResponseWriter, r *http.Request) {
	a.render(w, "logon.html", logonData{
		pageData: a.page(r, "Logon"),
		Email:    r.PostFormValue("email"),
	})
}

// renderJobsList renders the job listing for the authenticated user
func (a *App) renderJobsList(w http.ResponseWriter, r *http.Request, jobs []*store.Job) {
	a.render(w, "jobs.html", jobsListData{
		pageData: a.page(r, "Jobs List"),
		Jobs:     jobs,
	})
}

// renderJobForm renders the create or edit form for a job
func (a *App) renderJobForm(w http.ResponseWriter, r *http.Request, job *store.Job, editing bool) {
	title := "New Job"
	if editing {
		title = "Edit Job"
	}
	a.render(w, "job_form.html", jobFormData{
		pageData: a.page(r, title),
		Job:      job,
		Statuses: store.JobStatuses,
		Editing:  editing,
	})
}

// renderJobDetail renders a single job with its notes as Markdown
func (a *App) renderJobDetail(w http.ResponseWriter, r *http.Request, job *store.Job) {
	a.render(w, "job_detail.html", jobDetailData{
		pageData:  a.page(r, job.Company),
		Job:       job,
		NotesHTML: renderMarkdown(job.Notes),
	})
}

// renderSecretWordPage renders the secret word page
func (a *App) renderSecretWordPage(w http.ResponseWriter, r *http.Request, word string) {
	a.render(w, "secret_word.html", secretWordData{
		pageData:   a.page(r, "Secret Word"),
		SecretWord: word,
	})
}

// renderMarkdown converts job notes to HTML. goldmark escapes raw HTML by
// default, so user notes cannot inject markup.
func renderMarkdown(src string) template.HTML {
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}
