// Package cookiejar provides a thread-safe cookie jar bound to a single host
// that also tracks the current session identifier.
//
// # Overview
//
// A Store wraps net/http/cookiejar (with the public suffix list from
// golang.org/x/net/publicsuffix) and adds two things the standard jar does not
// have: bulk ingestion of raw cookie strings against a fixed base URL, and a
// session identifier read back from the jar whenever the base host sets a
// "sessionid" cookie. A sessionid cookie that expires or that the jar
// rejects clears or keeps the identifier exactly as it does the jar entry.
//
// Store implements http.CookieJar, so it can be attached directly to an
// http.Client. Cookies received through Set-Cookie headers are absorbed under
// the same write lock as Apply, one response at a time.
//
// # Usage
//
//	store, err := cookiejar.New("https://api.steampowered.com")
//	if err != nil {
//	    return err
//	}
//
//	store.Apply([]string{"sessionid=0123456789abcdef01234567", "steamLogin=..."})
//
//	if id, ok := store.SessionID(); ok {
//	    // id == "0123456789abcdef01234567"
//	}
//
//	client := &http.Client{Jar: store}
//
// # Concurrency
//
// Reads (Cookies, SessionID) take a read lock. Apply and SetCookies take the
// write lock for their whole duration, so a reader never observes a session id
// that does not match the jar contents.
package cookiejar
