// Package httpsession implements the per-project HTTP session cache with
// CSRF-aware login and silent auto-re-login (§4.8). Sessions live in a
// TTL-LRU (cap 50, TTL 24h) keyed by project ID, grounded on
// internal/cache.TTLLRU; re-login throttling is grounded on
// steveyegge-vc's use of golang.org/x/time/rate to bound retry storms.
package httpsession

import (
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kodestack/chainguard/internal/cache"
	"github.com/kodestack/chainguard/internal/config"
)

// Credentials holds the scope-local login form fields. Never persisted
// to disk outside the scope's lifetime.
type Credentials struct {
	Username     string
	Password     string
	UsernameField string
	PasswordField string
}

// Session is one project's cached HTTP session state.
type Session struct {
	BaseURL     string
	CSRFToken   string
	LoggedIn    bool
	LastUsed    time.Time
	Credentials Credentials

	jar    http.CookieJar
	client *http.Client
	limiter *rate.Limiter
}

// Manager caches sessions per project in a TTL-LRU.
type Manager struct {
	sessions *cache.TTLLRU[*Session]
}

// NewManager creates a Manager with the spec'd cap (50) and TTL (24h).
func NewManager() *Manager {
	return &Manager{sessions: cache.NewTTLLRU[*Session](config.HTTPSessionLRUCap, config.HTTPSessionTTL)}
}

var csrfFieldNames = []string{"csrf_token", "_token", "authenticity_token", "csrfmiddlewaretoken", "__RequestVerificationToken"}

var csrfInputPattern = regexp.MustCompile(`(?i)<input[^>]+name=["'](` + csrfNameAlternation() + `)["'][^>]+value=["']([^"']+)["']`)

func csrfNameAlternation() string {
	return strings.Join(csrfFieldNames, "|")
}

func sessionFor(m *Manager, projectID, baseURL string) *Session {
	if s, ok := m.sessions.Get(projectID); ok {
		return s
	}
	jar, _ := cookiejar.New(nil)
	s := &Session{
		BaseURL: baseURL,
		jar:     jar,
		client:  &http.Client{Jar: jar, Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Every(config.HTTPReloginInterval), 1),
	}
	m.sessions.Put(projectID, s)
	return s
}

// SetBaseURL updates (or creates) a project's session base URL.
func (m *Manager) SetBaseURL(projectID, baseURL string) {
	s := sessionFor(m, projectID, baseURL)
	s.BaseURL = baseURL
}

// ClearSession drops a project's cached session.
func (m *Manager) ClearSession(projectID string) {
	m.sessions.Remove(projectID)
}

// Login performs a GET of loginPath to extract a CSRF token, then POSTs
// the credential fields plus any extracted token.
func (m *Manager) Login(projectID, loginPath string, creds Credentials) error {
	s := sessionFor(m, projectID, "")
	s.Credentials = creds
	s.LastUsed = time.Now()

	loginURL, err := resolveURL(s.BaseURL, loginPath)
	if err != nil {
		return fmt.Errorf("httpsession: resolve login url: %w", err)
	}

	resp, err := s.client.Get(loginURL)
	if err != nil {
		return fmt.Errorf("httpsession: fetch login page: %w", err)
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, config.HTTPBodySampleCap))
	resp.Body.Close()

	csrfField, csrfValue := "", ""
	if m := csrfInputPattern.FindSubmatch(body); m != nil {
		csrfField, csrfValue = string(m[1]), string(m[2])
	}
	s.CSRFToken = csrfValue

	form := url.Values{}
	uf := creds.UsernameField
	if uf == "" {
		uf = "username"
	}
	pf := creds.PasswordField
	if pf == "" {
		pf = "password"
	}
	form.Set(uf, creds.Username)
	form.Set(pf, creds.Password)
	if csrfField != "" {
		form.Set(csrfField, csrfValue)
	}

	postResp, err := s.client.PostForm(loginURL, form)
	if err != nil {
		return fmt.Errorf("httpsession: post login form: %w", err)
	}
	defer postResp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(postResp.Body, config.HTTPBodySampleCap))

	s.LoggedIn = postResp.StatusCode < 400
	return nil
}

// Probe is the outcome of a test_endpoint call.
type Probe struct {
	StatusCode int
	AuthNeeded bool
}

// TestEndpoint requests path with the current session and classifies
// whether authentication appears to be required.
func (m *Manager) TestEndpoint(projectID, method, path string) (Probe, error) {
	s := sessionFor(m, projectID, "")
	s.LastUsed = time.Now()

	target, err := resolveURL(s.BaseURL, path)
	if err != nil {
		return Probe{}, fmt.Errorf("httpsession: resolve url: %w", err)
	}

	req, err := http.NewRequest(method, target, nil)
	if err != nil {
		return Probe{}, fmt.Errorf("httpsession: build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return Probe{}, fmt.Errorf("httpsession: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, config.HTTPBodySampleCap))

	return Probe{StatusCode: resp.StatusCode, AuthNeeded: looksUnauthenticated(resp, body)}, nil
}

// looksUnauthenticated implements the §4.8 heuristic: 401/403, a 3xx
// redirect whose Location contains "login", or a 200 body containing
// both "login" and "form".
func looksUnauthenticated(resp *http.Response, body []byte) bool {
	if resp.StatusCode == 401 || resp.StatusCode == 403 {
		return true
	}
	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		loc := resp.Header.Get("Location")
		if strings.Contains(strings.ToLower(loc), "login") {
			return true
		}
	}
	if resp.StatusCode == 200 {
		lower := strings.ToLower(string(body))
		if strings.Contains(lower, "login") && strings.Contains(lower, "form") {
			return true
		}
	}
	return false
}

// EnsureSession silently re-logs in from stored credentials when a prior
// probe looked unauthenticated despite LoggedIn having been true,
// throttled by the session's rate limiter.
func (m *Manager) EnsureSession(projectID, loginPath string) error {
	s := sessionFor(m, projectID, "")
	if !s.LoggedIn {
		return nil
	}
	if s.Credentials.Username == "" {
		return fmt.Errorf("httpsession: no stored credentials for silent re-login")
	}
	if !s.limiter.Allow() {
		return fmt.Errorf("httpsession: re-login throttled")
	}
	return m.Login(projectID, loginPath, s.Credentials)
}

func resolveURL(base, path string) (string, error) {
	if base == "" {
		return "", fmt.Errorf("no base_url configured for project")
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	p, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(p).String(), nil
}
