package entities

import "time"

// TokenClaims is what a verified bearer token says about its holder.
type TokenClaims struct {
	Actor     Actor
	TokenID   string
	ExpiresAt time.Time
}

// Session is an issued token together with the account it belongs to.
type Session struct {
	User      User
	Token     string
	ExpiresAt time.Time
}
