package entity

import "time"

// AccessToken sesión emitida en login; RevokedAt se fija en logout.
type AccessToken struct {
	ID        string // jti del JWT
	UserID    int64
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
