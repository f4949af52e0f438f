// ABOUTME: Tests for registration, logon, logoff, and the flash queue
// ABOUTME: Drives the full browser flow including session rotation checks

package web

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sessionIDFor reads the current session identifier out of the client's
// cookie jar (the part before the signature).
func sessionIDFor(t *testing.T, c *http.Client, base string) string {
	t.Helper()
	u, err := url.Parse(base)
	require.NoError(t, err)
	for _, cookie := range c.Jar.Cookies(u) {
		if cookie.Name == SessionCookieName {
			id, _, _ := strings.Cut(cookie.Value, ".")
			return id
		}
	}
	return ""
}

func TestRegisterLogonFullFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t)
	base := srv.URL

	registerUser(t, c, base, "Ada", "ada@example.com", "correct horse")
	createJob(t, c, base, "Acme", "Engineer", "")

	body := getBody(t, c, base+"/jobs")
	assert.Contains(t, body, "Jobs List")
	assert.Contains(t, body, "Acme")

	// Log off, then log back on: the job is still there.
	resp, err := c.Get(base + "/sessions/logoff")
	require.NoError(t, err)
	resp.Body.Close()

	nr := noRedirect(c)
	resp, err = nr.Get(base + "/jobs")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = logonUser(t, c, base, "ada@example.com", "correct horse")
	body2, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body2), "Acme")
}

func TestRegisterPasswordMismatch(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t)
	base := srv.URL

	token := scrapeCSRF(t, c, base+"/session/register")
	resp, err := c.PostForm(base+"/session/register", url.Values{
		"_csrf":     {token},
		"name":      {"Ada"},
		"email":     {"ada@example.com"},
		"password":  {"one"},
		"password1": {"two"},
	})
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "do not match")
	assert.Contains(t, string(body), "Enter your name")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL

	registerUser(t, newTestClient(t), base, "Ada", "ada@example.com", "correct horse")

	c := newTestClient(t)
	token := scrapeCSRF(t, c, base+"/session/register")
	resp, err := c.PostForm(base+"/session/register", url.Values{
		"_csrf":     {token},
		"name":      {"Imposter"},
		"email":     {"ada@example.com"},
		"password":  {"something"},
		"password1": {"something"},
	})
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "already registered")
}

func TestLogonFailureIsUniform(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL

	registerUser(t, newTestClient(t), base, "Ada", "ada@example.com", "correct horse")

	// Unknown email and wrong password must produce the same page.
	cases := map[string]url.Values{
		"unknown email":  {"email": {"nobody@example.com"}, "password": {"whatever"}},
		"wrong password": {"email": {"ada@example.com"}, "password": {"wrong"}},
	}

	for name, form := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t)
			form.Set("_csrf", scrapeCSRF(t, c, base+"/sessions/logon"))
			resp, err := c.PostForm(base+"/sessions/logon", form)
			require.NoError(t, err)
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()

			assert.Contains(t, string(body), "Invalid email or password.")
			assert.NotContains(t, string(body), "Jobs List")
		})
	}
}

func TestSessionRotatesOnLogon(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t)
	base := srv.URL

	registerUser(t, c, base, "Ada", "ada@example.com", "correct horse")
	resp, err := c.Get(base + "/sessions/logoff")
	require.NoError(t, err)
	resp.Body.Close()

	// Prime an anonymous session by loading the logon page.
	before := ""
	_ = getBody(t, c, base+"/sessions/logon")
	before = sessionIDFor(t, c, base)
	require.NotEmpty(t, before)

	resp = logonUser(t, c, base, "ada@example.com", "correct horse")
	resp.Body.Close()

	after := sessionIDFor(t, c, base)
	require.NotEmpty(t, after)
	assert.NotEqual(t, before, after, "session ID must rotate at logon")
}

func TestLogoffIsIdempotent(t *testing.T) {
	srv, _ := newTestServer(t)
	c := noRedirect(newTestClient(t))
	base := srv.URL

	for i := 0; i < 2; i++ {
		resp, err := c.Get(base + "/sessions/logoff")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))
	}
}

func TestFlashShownAtMostOnce(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t)
	base := srv.URL

	// A failed logon queues exactly one flash.
	form := url.Values{
		"_csrf":    {scrapeCSRF(t, c, base+"/sessions/logon")},
		"email":    {"nobody@example.com"},
		"password": {"x"},
	}
	resp, err := c.PostForm(base+"/sessions/logon", form)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "Invalid email or password.")

	// The next render must not repeat it.
	body2 := getBody(t, c, base+"/sessions/logon")
	assert.NotContains(t, body2, "Invalid email or password.")
}
