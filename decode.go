package steamapi

import (
	"bytes"
	"encoding/json"

	"github.com/juliarose/steam-api/pkg/transport"
)

// validator is implemented by response envelopes that check field presence
// and values after unmarshalling. It must return a taxonomy *Error.
type validator interface {
	validate() error
}

// decodeResponse maps a final transport response into T. Non-2xx statuses
// become HttpError, undecodable bodies ParseError, and envelope validation
// failures whatever the envelope reports.
func decodeResponse[T any](resp *transport.Response) (T, error) {
	var out T

	if !resp.Success() {
		return out, httpError(resp.StatusCode)
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return out, parseError("empty response body", nil)
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return out, parseError("decode response body", err)
	}
	if v, ok := any(&out).(validator); ok {
		if err := v.validate(); err != nil {
			return out, err
		}
	}

	return out, nil
}
