package dto

import (
	"time"

	"github.com/spec-kit/workorder-service/internal/domain"
)

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=6"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,max=32"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest payload for profile changes. Only present fields are applied.
type UpdateProfileRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=120"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Password        *string `json:"password" validate:"omitempty,min=6"`
	CurrentPassword string  `json:"currentPassword" validate:"required,min=6"`
	PhoneNumber     *string `json:"phoneNumber" validate:"omitempty,max=32"`
}

// Patch converts the request into a domain patch.
func (r UpdateProfileRequest) Patch() domain.UserPatch {
	return domain.UserPatch{
		Name:        r.Name,
		Email:       r.Email,
		Password:    r.Password,
		PhoneNumber: r.PhoneNumber,
	}
}

// AuthResponse standard response for login.
type AuthResponse struct {
	AccessToken string            `json:"access_token"`
	ExpiresAt   time.Time         `json:"expires_at"`
	User        domain.PublicUser `json:"user"`
}

// MessageResponse carries a human readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}
