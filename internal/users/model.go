package users

import (
	"strings"
	"time"

	"gateway-service/internal/auth"
)

// User is a persisted account record for a social login.
type User struct {
	ID           int64
	Email        string
	Name         string
	Provider     auth.Provider
	ProviderID   string
	ProfileImage string
	PhoneNumber  string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

// updateProfile applies non-blank values only.
func (u *User) updateProfile(name, profileImage string) {
	if strings.TrimSpace(name) != "" {
		u.Name = name
	}
	if strings.TrimSpace(profileImage) != "" {
		u.ProfileImage = profileImage
	}
}

type Response struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Provider     string     `json:"provider"`
	ProfileImage string     `json:"profileImage,omitempty"`
	PhoneNumber  string     `json:"phoneNumber,omitempty"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

func toResponse(u *User) Response {
	return Response{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Provider:     strings.ToUpper(u.Provider.String()),
		ProfileImage: u.ProfileImage,
		PhoneNumber:  u.PhoneNumber,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		LastLoginAt:  u.LastLoginAt,
	}
}

// SocialLoginRequest is the upsert input sent after a provider login.
type SocialLoginRequest struct {
	Provider     string `json:"provider" validate:"required"`
	ProviderID   string `json:"providerId" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Name         string `json:"name" validate:"required"`
	ProfileImage string `json:"profileImage"`
	PhoneNumber  string `json:"phoneNumber"`
}
