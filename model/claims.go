package model

import "github.com/golang-jwt/jwt/v5"

type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// AppClaims is the payload of both token kinds. Access and refresh tokens are
// signed with the same secret; the Kind claim keeps one from being replayed
// in place of the other.
type AppClaims struct {
	UserID int       `json:"user_id"`
	Kind   TokenKind `json:"kind"`
	jwt.RegisteredClaims
}
