package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User represents a member of a shared space
type User struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password_hash"` // Never return password in JSON
	SpaceID   string    `json:"spaceId" db:"space_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// PublicUser is the user shape returned to clients after register/login
type PublicUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	SpaceID string `json:"spaceId"`
}

// Public returns the client-facing view of the user
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:      u.ID,
		Name:    u.Name,
		SpaceID: u.SpaceID,
	}
}

// RegisterRequest represents the request payload for user registration.
// InviteCode, when present, joins an existing space instead of creating one.
type RegisterRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	InviteCode string `json:"inviteCode,omitempty"`
}

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents the response payload for register/login
type AuthResponse struct {
	Token string      `json:"token"`
	User  *PublicUser `json:"user"`
}

// Identity 从已验证令牌解析出的租户身份
// 所有数据访问只信任这里的SpaceID，不信任请求中携带的任何空间字段
type Identity struct {
	UserID  string
	SpaceID string
}

// TokenClaims represents the JWT token claims carrying the tenant identity
type TokenClaims struct {
	UserID  string `json:"userId"`
	SpaceID string `json:"spaceId"`
	Exp     int64  `json:"exp"`
	Iat     int64  `json:"iat"`
}

// GetExpirationTime implements jwt.Claims interface
func (c *TokenClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Exp, 0)), nil
}

// GetIssuedAt implements jwt.Claims interface
func (c *TokenClaims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Iat, 0)), nil
}

// GetNotBefore implements jwt.Claims interface
func (c *TokenClaims) GetNotBefore() (*jwt.NumericDate, error) {
	return nil, nil
}

// GetIssuer implements jwt.Claims interface
func (c *TokenClaims) GetIssuer() (string, error) {
	return "", nil
}

// GetSubject implements jwt.Claims interface
func (c *TokenClaims) GetSubject() (string, error) {
	return c.UserID, nil
}

// GetAudience implements jwt.Claims interface
func (c *TokenClaims) GetAudience() (jwt.ClaimStrings, error) {
	return nil, nil
}
