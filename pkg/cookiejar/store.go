package cookiejar

import (
	"fmt"
	"net/http"
	httpjar "net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

// SessionCookieName is the cookie the session identifier is derived from.
const SessionCookieName = "sessionid"

// Store is a cookie jar scoped to one base URL.
// Zero value is not usable; use New or MustNew to create instances.
type Store struct {
	mu        sync.RWMutex
	jar       *httpjar.Jar
	base      *url.URL
	sessionID string
}

// New creates an empty store for the given base URL. A bare hostname is
// accepted and treated as https.
func New(rawBaseURL string) (*Store, error) {
	base, err := parseBaseURL(rawBaseURL)
	if err != nil {
		return nil, err
	}

	jar, err := httpjar.New(&httpjar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &Store{jar: jar, base: base}, nil
}

// MustNew works like New but panics on an invalid base URL.
// Intended for compile-time constant hosts where failure is a programming error.
func MustNew(rawBaseURL string) *Store {
	s, err := New(rawBaseURL)
	if err != nil {
		panic(fmt.Sprintf("cookiejar: %v", err))
	}
	return s
}

// Apply parses each raw cookie string against the store's base URL and
// inserts it into the jar. Strings that fail to parse are skipped.
// A "sessionid" cookie with an alphanumeric value replaces the session id;
// an expired one removes it.
func (s *Store) Apply(cookies []string) {
	parsed := make([]*http.Cookie, 0, len(cookies))
	for _, raw := range cookies {
		c, err := http.ParseSetCookie(strings.TrimSpace(raw))
		if err != nil {
			// One bad string must not drop the rest of a login's cookie set
			continue
		}
		parsed = append(parsed, c)
	}
	s.SetCookies(s.base, parsed)
}

// SessionID returns the value of the "sessionid" cookie the jar currently
// holds for the base URL, if any.
func (s *Store) SessionID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sessionID, s.sessionID != ""
}

// SetCookies implements http.CookieJar. It is called by http.Client for every
// response carrying Set-Cookie headers.
func (s *Store) SetCookies(u *url.URL, cookies []*http.Cookie) {
	cookies = filterSessionCookies(cookies)
	if len(cookies) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.jar.SetCookies(u, cookies)
	// Only the API host's own sessionid identifies this client's session
	if strings.EqualFold(u.Hostname(), s.base.Hostname()) && hasSessionCookie(cookies) {
		s.syncSessionID(u)
	}
}

// Cookies implements http.CookieJar.
func (s *Store) Cookies(u *url.URL) []*http.Cookie {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.jar.Cookies(u)
}

// Values returns the name/value pairs that would be sent to the base URL.
func (s *Store) Values() map[string]string {
	cookies := s.Cookies(s.base)
	values := make(map[string]string, len(cookies))
	for _, c := range cookies {
		values[c.Name] = c.Value
	}
	return values
}

// URL returns a copy of the base URL the store is scoped to.
func (s *Store) URL() *url.URL {
	u := *s.base
	return &u
}

// syncSessionID reads the session id back from the jar after u, a URL on the
// base host, set a "sessionid" cookie. Cookies the jar rejected (domain
// mismatch) or dropped (expired) therefore never become the session.
// Must be called with the write lock held.
func (s *Store) syncSessionID(u *url.URL) {
	s.sessionID = ""
	// The jar orders cookies of equal path oldest first; the newest one wins.
	for _, c := range s.jar.Cookies(u) {
		if c.Name == SessionCookieName {
			s.sessionID = c.Value
		}
	}
}

func hasSessionCookie(cookies []*http.Cookie) bool {
	for _, c := range cookies {
		if c.Name == SessionCookieName {
			return true
		}
	}
	return false
}

// filterSessionCookies drops "sessionid" cookies whose value is not
// alphanumeric. Deletions are kept whatever their value so a logout
// Set-Cookie still clears the session.
func filterSessionCookies(cookies []*http.Cookie) []*http.Cookie {
	kept := cookies[:0:0]
	for _, c := range cookies {
		if c.Name == SessionCookieName && !isAlphanumeric(c.Value) && !expired(c) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// expired reports whether c asks the jar to delete the cookie.
func expired(c *http.Cookie) bool {
	if c.MaxAge < 0 {
		return true
	}
	return c.MaxAge == 0 && !c.Expires.IsZero() && !c.Expires.After(time.Now())
}

func isAlphanumeric(v string) bool {
	if v == "" {
		return false
	}
	for i := 0; i < len(v); i++ {
		b := v[i]
		if (b < '0' || b > '9') && (b < 'a' || b > 'z') && (b < 'A' || b > 'Z') {
			return false
		}
	}
	return true
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrNoHost
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, ErrNoHost
	}

	// Cookies are applied at the root so they cover every endpoint path.
	u.Path = "/"
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
