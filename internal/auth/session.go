package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/ficai/signal-server/internal/domain"
)

// NewSessionID generates a fresh random session identifier.
func NewSessionID() ([]byte, error) {
	id := make([]byte, domain.SessionIDLength)
	if _, err := rand.Read(id); err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}
	return id, nil
}

// EncodeSessionID renders a session id in the unpadded base64 form carried
// by the session cookie.
func EncodeSessionID(id []byte) string {
	return base64.RawStdEncoding.EncodeToString(id)
}

// DecodeSessionID parses a cookie value back into a raw session id. It
// rejects anything that is not exactly a well-formed encoding of
// domain.SessionIDLength bytes.
func DecodeSessionID(value string) ([]byte, error) {
	id, err := base64.RawStdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid session id encoding: %w", err)
	}
	if len(id) != domain.SessionIDLength {
		return nil, fmt.Errorf("invalid session id length: %d", len(id))
	}
	return id, nil
}
