package steamapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	steamapi "github.com/juliarose/steam-api"
	"github.com/juliarose/steam-api/pkg/metrics"
	"github.com/juliarose/steam-api/pkg/transport"
)

const (
	testSteamID      uint64 = 76561197960287930
	authenticatePath        = "/ISteamUserAuth/AuthenticateUser/v1"
)

var (
	testSessionKey = []byte{0x01, 0x02, 0xab}
	testLoginKey   = []byte{0xff, 0x00}
	sessionIDRe    = regexp.MustCompile(`^[0-9a-f]{24}$`)
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...steamapi.Option) *steamapi.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]steamapi.Option{
		steamapi.WithBaseURL(server.URL),
		steamapi.WithMaxRetries(2),
		steamapi.WithBackoff(time.Millisecond, 5*time.Millisecond),
	}, opts...)

	client, err := steamapi.New(opts...)
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestClient_AuthenticateUser_Success(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, authenticatePath, r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "steamid=76561197960287930&sessionkey=%01%02%ab&encrypted_loginkey=%ff%00", string(raw))
		assert.Equal(t, int64(len(raw)), r.ContentLength)

		writeJSON(w, http.StatusOK, `{"authenticateuser":{"token":"T","tokensecure":"S"}}`)
	})

	sessionID, cookies, err := client.AuthenticateUser(context.Background(), testSteamID, testSessionKey, testLoginKey)

	require.NoError(t, err)
	assert.Regexp(t, sessionIDRe, sessionID)
	assert.Equal(t, []string{"sessionid=" + sessionID, "steamLogin=T", "steamLoginSecure=S"}, cookies)
}

func TestClient_AuthenticateUser_FormDecodesToOriginalBytes(t *testing.T) {
	t.Parallel()

	key := make([]byte, 256)
	for i := range key {
		key[i] = byte(i)
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "76561197960287930", r.PostForm.Get("steamid"))
		assert.Equal(t, string(key), r.PostForm.Get("sessionkey"))
		assert.Equal(t, string(testLoginKey), r.PostForm.Get("encrypted_loginkey"))

		writeJSON(w, http.StatusOK, `{"authenticateuser":{"token":"T","tokensecure":"S"}}`)
	})

	_, _, err := client.AuthenticateUser(context.Background(), testSteamID, key, testLoginKey)
	require.NoError(t, err)
}

func TestClient_AuthenticateUser_DoesNotAdoptSession(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"authenticateuser":{"token":"T","tokensecure":"S"}}`)
	})

	sessionID, cookies, err := client.AuthenticateUser(context.Background(), testSteamID, testSessionKey, testLoginKey)
	require.NoError(t, err)

	_, ok := client.SessionID()
	assert.False(t, ok, "the exchange must not mutate the store on its own")

	client.SetCookies(cookies)
	got, ok := client.SessionID()
	require.True(t, ok)
	assert.Equal(t, sessionID, got)
}

func TestClient_AuthenticateUser_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantKind steamapi.Kind
		wantErr  error
	}{
		{"forbidden", http.StatusForbidden, `{}`, steamapi.KindHTTP, &steamapi.Error{Kind: steamapi.KindHTTP, StatusCode: 403}},
		{"unauthorized", http.StatusUnauthorized, ``, steamapi.KindHTTP, &steamapi.Error{Kind: steamapi.KindHTTP, StatusCode: 401}},
		{"missing token", http.StatusOK, `{"authenticateuser":{"tokensecure":"S"}}`, steamapi.KindParse, steamapi.ErrParse},
		{"missing tokensecure", http.StatusOK, `{"authenticateuser":{"token":"T"}}`, steamapi.KindParse, steamapi.ErrParse},
		{"missing envelope", http.StatusOK, `{"response":{}}`, steamapi.KindParse, steamapi.ErrParse},
		{"null envelope", http.StatusOK, `{"authenticateuser":null}`, steamapi.KindParse, steamapi.ErrParse},
		{"wrong type", http.StatusOK, `{"authenticateuser":{"token":1,"tokensecure":"S"}}`, steamapi.KindParse, steamapi.ErrParse},
		{"not json", http.StatusOK, `<html>error</html>`, steamapi.KindParse, steamapi.ErrParse},
		{"empty body", http.StatusOK, ``, steamapi.KindParse, steamapi.ErrParse},
		{"empty token", http.StatusOK, `{"authenticateuser":{"token":"","tokensecure":"S"}}`, steamapi.KindResponse, steamapi.ErrResponse},
		{"empty tokensecure", http.StatusOK, `{"authenticateuser":{"token":"T","tokensecure":""}}`, steamapi.KindResponse, steamapi.ErrResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var attempts int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&attempts, 1)
				writeJSON(w, tt.status, tt.body)
			})
			client.SetCookies([]string{"sessionid=abc123", "steamLogin=old"})
			before := client.CookieStore().Values()

			sessionID, cookies, err := client.AuthenticateUser(context.Background(), testSteamID, testSessionKey, testLoginKey)

			require.Error(t, err)
			assert.Empty(t, sessionID)
			assert.Nil(t, cookies)
			assert.Equal(t, tt.wantKind, steamapi.KindOf(err))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, int32(1), atomic.LoadInt32(&attempts), "non-network failures are never retried")

			id, ok := client.SessionID()
			require.True(t, ok)
			assert.Equal(t, "abc123", id)
			assert.Equal(t, before, client.CookieStore().Values())
		})
	}
}

func TestClient_AuthenticateUser_HTTPErrorStatus(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, _, err := client.AuthenticateUser(context.Background(), testSteamID, testSessionKey, testLoginKey)

	assert.ErrorIs(t, err, steamapi.ErrHTTP)
	assert.NotErrorIs(t, err, &steamapi.Error{Kind: steamapi.KindHTTP, StatusCode: 404})
	assert.Equal(t, http.StatusForbidden, steamapi.StatusCode(err))
}

func TestClient_AuthenticateUser_ParameterErrors(t *testing.T) {
	t.Parallel()

	var attempts int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
	})

	tests := []struct {
		name       string
		steamID    uint64
		sessionKey []byte
		loginKey   []byte
	}{
		{"zero steamid", 0, testSessionKey, testLoginKey},
		{"empty sessionkey", testSteamID, nil, testLoginKey},
		{"empty loginkey", testSteamID, testSessionKey, []byte{}},
	}

	for _, tt := range tests {
		_, _, err := client.AuthenticateUser(context.Background(), tt.steamID, tt.sessionKey, tt.loginKey)
		assert.ErrorIs(t, err, steamapi.ErrParameter, tt.name)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&attempts))
}

func TestClient_AuthenticateUser_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var attempts int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, `{"authenticateuser":{"token":"T","tokensecure":"S"}}`)
	})

	_, cookies, err := client.AuthenticateUser(context.Background(), testSteamID, testSessionKey, testLoginKey)

	require.NoError(t, err)
	assert.Equal(t, "steamLogin=T", cookies[1])
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestClient_AuthenticateUser_ServerErrorsExhausted(t *testing.T) {
	t.Parallel()

	var attempts int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, _, err := client.AuthenticateUser(context.Background(), testSteamID, testSessionKey, testLoginKey)

	assert.ErrorIs(t, err, &steamapi.Error{Kind: steamapi.KindHTTP, StatusCode: http.StatusServiceUnavailable})
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestClient_AuthenticateUser_NetworkFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := steamapi.New(
		steamapi.WithBaseURL(url),
		steamapi.WithMaxRetries(1),
		steamapi.WithBackoff(time.Millisecond, time.Millisecond),
	)
	require.NoError(t, err)

	_, _, err = client.AuthenticateUser(context.Background(), testSteamID, testSessionKey, testLoginKey)

	assert.ErrorIs(t, err, steamapi.ErrTransport)
	assert.Equal(t, steamapi.KindTransport, steamapi.KindOf(err))
}

func TestClient_AuthenticateUser_TruncatedResponseIsNotResent(t *testing.T) {
	t.Parallel()

	var attempts int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)

		hj, ok := w.(http.Hijacker)
		if !assert.True(t, ok) {
			return
		}
		conn, buf, err := hj.Hijack()
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()

		_, _ = buf.WriteString("HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nContent-Length: 100\r\n\r\n")
		_, _ = buf.WriteString(`{"authenticateuser":{"tok`)
		_ = buf.Flush()
	})

	_, _, err := client.AuthenticateUser(context.Background(), testSteamID, testSessionKey, testLoginKey)

	assert.ErrorIs(t, err, steamapi.ErrTransport)
	assert.ErrorIs(t, err, transport.ErrBodyRead)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestClient_AuthenticateUser_Canceled(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	})
	client.SetCookies([]string{"sessionid=abc123"})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, _, err := client.AuthenticateUser(ctx, testSteamID, testSessionKey, testLoginKey)

	assert.ErrorIs(t, err, steamapi.ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)

	id, _ := client.SessionID()
	assert.Equal(t, "abc123", id)
}

func TestClient_AuthenticateUser_SendsStoredCookies(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("steamLoginSecure")
		if assert.NoError(t, err) {
			assert.Equal(t, "prior", c.Value)
		}
		writeJSON(w, http.StatusOK, `{"authenticateuser":{"token":"T","tokensecure":"S"}}`)
	})
	client.SetCookies([]string{"steamLoginSecure=prior"})

	_, _, err := client.AuthenticateUser(context.Background(), testSteamID, testSessionKey, testLoginKey)
	require.NoError(t, err)
}

func TestClient_AuthenticateUser_Concurrent(t *testing.T) {
	t.Parallel()

	var n int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		i := atomic.AddInt32(&n, 1)
		body, _ := json.Marshal(map[string]any{
			"authenticateuser": map[string]string{
				"token":       "T" + string(rune('a'+i%26)),
				"tokensecure": "S",
			},
		})
		writeJSON(w, http.StatusOK, string(body))
	})

	const calls = 20
	ids := make([]string, calls)
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, cookies, err := client.AuthenticateUser(context.Background(), testSteamID, testSessionKey, testLoginKey)
			if assert.NoError(t, err) {
				ids[i] = id
				client.SetCookies(cookies)
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, id := range ids {
		assert.Regexp(t, sessionIDRe, id)
		assert.False(t, seen[id], "session ids must be unique")
		seen[id] = true
	}

	current, ok := client.SessionID()
	require.True(t, ok)
	assert.True(t, seen[current], "store must hold one of the adopted ids")
}

func TestClient_AuthenticateUser_Metrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheusRecorderWithRegistry(reg)

	var attempts int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, `{"authenticateuser":{"token":"T","tokensecure":"S"}}`)
	}, steamapi.WithMetrics(rec))

	_, _, err := client.AuthenticateUser(context.Background(), testSteamID, testSessionKey, testLoginKey)
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "steamapi_http_attempts_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series for http_error, one for success")

	n, err = testutil.GatherAndCount(reg, "steamapi_authentications_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestClient_AuthenticateUser_ErrorIsNotRawTransportType(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, _, err := client.AuthenticateUser(context.Background(), testSteamID, testSessionKey, testLoginKey)

	var apiErr *steamapi.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, steamapi.KindHTTP, apiErr.Kind)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}
