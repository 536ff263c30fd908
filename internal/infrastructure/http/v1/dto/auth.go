package dto

import (
	"time"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/id"
	"fleettrack/internal/domain/auth"
)

// --- Request DTOs ---

// RegisterRequest for user registration.
type RegisterRequest struct {
	OrgID    string `json:"orgId" binding:"required,uuid"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"fullName,omitempty"`
}

// ToAuthRequest converts to the domain request.
func (r *RegisterRequest) ToAuthRequest() (auth.RegisterRequest, error) {
	orgID, err := id.Parse(r.OrgID)
	if err != nil {
		return auth.RegisterRequest{}, apperror.NewValidation("invalid organization id").
			WithDetail("field", "orgId")
	}
	return auth.RegisterRequest{
		OrgID:    orgID,
		Email:    r.Email,
		Password: r.Password,
		FullName: r.FullName,
	}, nil
}

// LoginRequest for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts to domain credentials.
func (r *LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{
		Email:    r.Email,
		Password: r.Password,
	}
}

// --- Response DTOs ---

// TokenResponse represents the issued access token.
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	TokenType   string    `json:"tokenType"`
}

// FromToken creates a response from the domain token.
func FromToken(t *auth.Token) *TokenResponse {
	return &TokenResponse{
		AccessToken: t.AccessToken,
		ExpiresAt:   t.ExpiresAt,
		TokenType:   t.TokenType,
	}
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID          string     `json:"id"`
	OrgID       string     `json:"orgId"`
	Email       string     `json:"email"`
	FullName    string     `json:"fullName,omitempty"`
	IsActive    bool       `json:"isActive"`
	IsAdmin     bool       `json:"isAdmin"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// FromUser creates a response from the domain user.
func FromUser(u *auth.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		OrgID:       u.OrgID.String(),
		Email:       u.Email,
		FullName:    u.FullName,
		IsActive:    u.IsActive,
		IsAdmin:     u.IsAdmin,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// LoginResponse bundles the token with the authenticated user.
type LoginResponse struct {
	Token *TokenResponse `json:"token"`
	User  UserResponse   `json:"user"`
}
