package domain

import "time"

// SessionIDLength is the size of a session identifier in bytes.
// https://cheatsheetseries.owasp.org/cheatsheets/Session_Management_Cheat_Sheet.html#session-id-length
const SessionIDLength = 16

// Session binds a random bearer credential to an account. The raw id bytes
// are the credential; they reach the client only in transport encoding.
// One account may hold any number of concurrent sessions.
type Session struct {
	ID        []byte
	AccountID int64
	CreatedAt time.Time
}
