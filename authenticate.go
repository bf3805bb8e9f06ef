package steamapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/juliarose/steam-api/pkg/logger"
	"github.com/juliarose/steam-api/pkg/transport"
)

const formContentType = "application/x-www-form-urlencoded"

// AuthenticateUser exchanges a SteamID64 and the session key pair produced by
// the login key exchange for web session cookies.
//
// Both keys are sent percent-hex encoded ("%xx" per byte). On success it
// returns a freshly generated session id and the cookie set
//
//	sessionid=<id>
//	steamLogin=<token>
//	steamLoginSecure=<tokensecure>
//
// The client's own session is not modified; pass the cookies to SetCookies to
// adopt them. The endpoint mints new tokens on every call, so only network
// failures and 5xx responses are retried.
func (c *Client) AuthenticateUser(ctx context.Context, steamID uint64, sessionKey, encryptedLoginKey []byte) (string, []string, error) {
	log := c.logger.With(logger.RequestID(uuid.NewString()), logger.SteamID(steamID))
	start := time.Now()

	sessionID, cookies, err := c.authenticateUser(ctx, steamID, sessionKey, encryptedLoginKey)
	if err != nil {
		c.metrics.ObserveAuthentication(KindOf(err).String())
		log.LogAttrs(ctx, slog.LevelWarn, "authenticate user failed",
			logger.ErrorKind(KindOf(err).String()),
			logger.StatusCode(StatusCode(err)),
			logger.Duration(time.Since(start)),
			logger.Error(err),
		)
		return "", nil, err
	}

	c.metrics.ObserveAuthentication("success")
	log.LogAttrs(ctx, slog.LevelInfo, "authenticated user", logger.Duration(time.Since(start)))
	return sessionID, cookies, nil
}

func (c *Client) authenticateUser(ctx context.Context, steamID uint64, sessionKey, encryptedLoginKey []byte) (string, []string, error) {
	switch {
	case steamID == 0:
		return "", nil, parameterError("steamid is required", nil)
	case len(sessionKey) == 0:
		return "", nil, parameterError("sessionkey is required", nil)
	case len(encryptedLoginKey) == 0:
		return "", nil, parameterError("encrypted_loginkey is required", nil)
	}

	body, err := encodeForm([]formField{
		{name: "steamid", value: strconv.FormatUint(steamID, 10)},
		{name: "sessionkey", value: PercentHexEncode(sessionKey)},
		{name: "encrypted_loginkey", value: PercentHexEncode(encryptedLoginKey)},
	})
	if err != nil {
		return "", nil, queryParameterError(err)
	}

	resp, err := c.transport.Do(ctx, transport.Request{
		Method:      http.MethodPost,
		URL:         c.APIURL("ISteamUserAuth", "AuthenticateUser", 1),
		Body:        body,
		ContentType: formContentType,
	})
	if err != nil {
		return "", nil, transportError(err)
	}

	envelope, err := decodeResponse[authenticateUserEnvelope](resp)
	if err != nil {
		return "", nil, err
	}
	auth := envelope.result()

	sessionID, err := GenerateSessionID()
	if err != nil {
		return "", nil, parameterError("generate session id", err)
	}

	return sessionID, []string{
		"sessionid=" + sessionID,
		"steamLogin=" + auth.Token,
		"steamLoginSecure=" + auth.TokenSecure,
	}, nil
}
