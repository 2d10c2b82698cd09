package models

import "time"

// Session is a server-side record of one token issuance. A session is live
// iff its row exists and ExpiresAt is in the future; logout deletes the row.
type Session struct {
	ID        string
	UserID    string
	TokenID   string
	ExpiresAt time.Time
	CreatedAt time.Time
}
