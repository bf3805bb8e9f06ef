// Package steamapi is a client for the Steam Web API legacy session login.
//
// The client exchanges a session key and an encrypted login key for the
// cookie set a steamcommunity.com session needs. Every call goes through a
// shared transport that retries network failures and 5xx responses with
// jittered exponential backoff, and every failure is reported as an *Error
// classified by Kind.
//
// Basic Usage:
//
//	client, err := steamapi.New(steamapi.WithLogger(logger.New()))
//	if err != nil {
//		return err
//	}
//
//	sessionID, cookies, err := client.AuthenticateUser(ctx, steamID, sessionKey, encryptedLoginKey)
//	switch {
//	case errors.Is(err, &steamapi.Error{Kind: steamapi.KindHTTP, StatusCode: http.StatusForbidden}):
//		// credentials rejected
//	case err != nil:
//		return err
//	}
//
//	client.SetCookies(cookies)
//
// Configuration:
//
// LoadConfig reads STEAM_API_* variables (and an optional .env file) and
// NewFromConfig turns them into a client:
//
//	cfg, err := steamapi.LoadConfig()
//	if err != nil {
//		return err
//	}
//	client, err := steamapi.NewFromConfig(cfg, steamapi.WithMetrics(metrics.NewPrometheusRecorder()))
//
// Sub-packages:
//
//   - pkg/cookiejar: session cookie store tied to the API host
//   - pkg/transport: retrying HTTP execution with an optional circuit breaker
//   - pkg/logger: slog construction and shared attributes
//   - pkg/metrics: Prometheus instrumentation for attempts and logins
package steamapi
