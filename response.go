package steamapi

// AuthenticateUser holds the bearer tokens returned by
// ISteamUserAuth/AuthenticateUser.
type AuthenticateUser struct {
	Token       string `json:"token"`
	TokenSecure string `json:"tokensecure"`
}

// authenticateUserEnvelope uses pointers so a missing field can be told
// apart from an empty one.
type authenticateUserEnvelope struct {
	AuthenticateUser *struct {
		Token       *string `json:"token"`
		TokenSecure *string `json:"tokensecure"`
	} `json:"authenticateuser"`
}

func (e *authenticateUserEnvelope) validate() error {
	switch {
	case e.AuthenticateUser == nil:
		return parseError("missing field authenticateuser", nil)
	case e.AuthenticateUser.Token == nil:
		return parseError("missing field authenticateuser.token", nil)
	case e.AuthenticateUser.TokenSecure == nil:
		return parseError("missing field authenticateuser.tokensecure", nil)
	case *e.AuthenticateUser.Token == "":
		return responseError("empty token")
	case *e.AuthenticateUser.TokenSecure == "":
		return responseError("empty tokensecure")
	}
	return nil
}

func (e *authenticateUserEnvelope) result() AuthenticateUser {
	return AuthenticateUser{
		Token:       *e.AuthenticateUser.Token,
		TokenSecure: *e.AuthenticateUser.TokenSecure,
	}
}
