package steamapi

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// sessionIDBytes is the amount of randomness in a generated session id.
const sessionIDBytes = 12

var errInvalidFieldName = errors.New("invalid form field name")

const lowerHex = "0123456789abcdef"

// PercentHexEncode renders every byte of b as "%xx" with lowercase hex digits.
// The result is 3*len(b) bytes long and is a valid form-urlencoded value.
func PercentHexEncode(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 3)
	for _, c := range b {
		sb.WriteByte('%')
		sb.WriteByte(lowerHex[c>>4])
		sb.WriteByte(lowerHex[c&0x0f])
	}
	return sb.String()
}

// GenerateSessionID returns 12 random bytes as 24 lowercase hex characters.
func GenerateSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// formField is one name/value pair of a form body. Values must already be
// encoded; they are written verbatim.
type formField struct {
	name  string
	value string
}

// encodeForm joins fields as name=value pairs separated by "&", preserving
// order so request bodies are byte-for-byte reproducible.
func encodeForm(fields []formField) ([]byte, error) {
	var sb strings.Builder
	for i, f := range fields {
		if !validFieldName(f.name) {
			return nil, fmt.Errorf("%w: %q", errInvalidFieldName, f.name)
		}
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(f.name)
		sb.WriteByte('=')
		sb.WriteString(f.value)
	}
	return []byte(sb.String()), nil
}

func validFieldName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-', c == '.':
		default:
			return false
		}
	}
	return true
}
