// file: model/token.go

package model

import "time"

// RefreshToken is one entry of a user's active refresh-token set. A user may
// hold several at once (one per device); each entry is removed on logout or
// replaced on rotation.
type RefreshToken struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Token     string    `json:"-"` // The signed token string is not exposed in JSON responses.
	CreatedAt time.Time `json:"created_at"`
}
