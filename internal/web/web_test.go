// ABOUTME: Test harness and page-level tests for the web pipeline
// ABOUTME: Spins up a real server over a temp SQLite store with a cookie-aware client

package web

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtrack/internal/store"
)

var csrfTokenRe = regexp.MustCompile(`_csrf" value="([^"]+)"`)

func testConfig() Config {
	return Config{
		CookieSecret: "test-cookie-secret-0123456789abcdef",
		SessionTTL:   time.Hour,
		CSRFMethods:  []string{"POST", "PUT", "PATCH", "DELETE"},
		CSRFContentTypes: []string{
			"application/x-www-form-urlencoded",
			"multipart/form-data",
			"application/json",
		},
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *store.SQLiteStore) {
	t.Helper()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	app := New(st, testConfig())
	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	return srv, st
}

// newTestClient returns a client with a cookie jar that follows redirects,
// like a browser.
func newTestClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

// noRedirect stops the client at the first response so tests can assert on
// redirect statuses directly.
func noRedirect(c *http.Client) *http.Client {
	return &http.Client{
		Jar: c.Jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func getBody(t *testing.T, c *http.Client, url string) string {
	t.Helper()
	resp, err := c.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

// scrapeCSRF fetches a page and pulls the hidden token out of its form,
// the same way the original browser tests did.
func scrapeCSRF(t *testing.T, c *http.Client, url string) string {
	t.Helper()
	body := getBody(t, c, url)
	m := csrfTokenRe.FindStringSubmatch(body)
	require.NotNil(t, m, "no CSRF token found in %s", url)
	return m[1]
}

func registerUser(t *testing.T, c *http.Client, base, name, email, password string) {
	t.Helper()
	token := scrapeCSRF(t, c, base+"/session/register")
	resp, err := c.PostForm(base+"/session/register", url.Values{
		"_csrf":     {token},
		"name":      {name},
		"email":     {email},
		"password":  {password},
		"password1": {password},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	require.Contains(t, string(body), "Jobs List", "registration should land on the jobs page")
}

func logonUser(t *testing.T, c *http.Client, base, email, password string) *http.Response {
	t.Helper()
	token := scrapeCSRF(t, c, base+"/sessions/logon")
	resp, err := c.PostForm(base+"/sessions/logon", url.Values{
		"_csrf":    {token},
		"email":    {email},
		"password": {password},
	})
	require.NoError(t, err)
	return resp
}

func createJob(t *testing.T, c *http.Client, base, company, position, notes string) {
	t.Helper()
	token := scrapeCSRF(t, c, base+"/jobs/new")
	resp, err := c.PostForm(base+"/jobs", url.Values{
		"_csrf":    {token},
		"company":  {company},
		"position": {position},
		"status":   {store.JobStatusPending},
		"notes":    {notes},
	})
	require.NoError(t, err)
	resp.Body.Close()
}

func TestIndexPage(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t)

	body := getBody(t, c, srv.URL+"/")
	assert.Contains(t, body, "Jobs EJS")
	assert.Contains(t, body, "/sessions/logon")
}

func TestNotFoundNamesPath(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t)

	resp, err := c.Get(srv.URL + "/no/such/page")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "/no/such/page")
}

func TestMultiply(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t)

	body := getBody(t, c, srv.URL+"/multiply?first=6&second=7")
	assert.Contains(t, body, "42")

	body = getBody(t, c, srv.URL+"/multiply?first=six&second=7")
	assert.Contains(t, body, `"NaN"`)
}

func TestSecretWord(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t)
	base := srv.URL

	registerUser(t, c, base, "Sam", "sam@example.com", "hunter22")

	body := getBody(t, c, base+"/secretWord")
	assert.Contains(t, body, "syzygy")

	token := scrapeCSRF(t, c, base+"/secretWord")
	resp, err := c.PostForm(base+"/secretWord", url.Values{
		"_csrf":      {token},
		"secretWord": {"quasar"},
	})
	require.NoError(t, err)
	resp.Body.Close()

	body = getBody(t, c, base+"/secretWord")
	assert.Contains(t, body, "quasar")
	assert.NotContains(t, body, "syzygy")
}

func TestSecretWordRejectsCapitalP(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t)
	base := srv.URL

	registerUser(t, c, base, "Sam", "sam@example.com", "hunter22")

	token := scrapeCSRF(t, c, base+"/secretWord")
	resp, err := c.PostForm(base+"/secretWord", url.Values{
		"_csrf":      {token},
		"secretWord": {"Porcupine"},
	})
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	// html/template escapes the apostrophes in the flash text, so match
	// on a quote-free fragment.
	assert.Contains(t, string(body), "words that start with P")
	assert.Contains(t, getBody(t, c, base+"/secretWord"), "syzygy")
}

func TestSecretWordRequiresLogon(t *testing.T) {
	srv, _ := newTestServer(t)
	c := noRedirect(newTestClient(t))

	resp, err := c.Get(srv.URL + "/secretWord")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/sessions/logon", resp.Header.Get("Location"))
}

func TestTamperedCookieTreatedAsAnonymous(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t)
	base := srv.URL

	registerUser(t, c, base, "Sam", "sam@example.com", "hunter22")

	// Flip the signature half of the cookie
	u, _ := url.Parse(base)
	for _, cookie := range c.Jar.Cookies(u) {
		if cookie.Name == SessionCookieName {
			id, _, _ := strings.Cut(cookie.Value, ".")
			c.Jar.SetCookies(u, []*http.Cookie{{
				Name:  SessionCookieName,
				Value: id + "." + strings.Repeat("0", 64),
			}})
		}
	}

	nr := noRedirect(c)
	resp, err := nr.Get(base + "/jobs")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/sessions/logon", resp.Header.Get("Location"))
}
