package dto

import (
	"cineteca/internal/entity"
)

type SignupRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Password  string `json:"password" validate:"required"`
	Role      string `json:"role" validate:"required"`
}

type LoginRequest struct {
	// Name accepts either the username or the email.
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RecoverPasswordRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

// UpdateUserRequest is the self-service profile update. Every field except
// the current password is optional; empty means "keep".
type UpdateUserRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email" validate:"omitempty,email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
}

// UpdateAnyUserRequest is the admin-only update. It deliberately skips the
// current-password check and email re-confirmation.
type UpdateAnyUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" validate:"omitempty,email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

type AuthResponse struct {
	Token     string   `json:"token"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
}

type UserResponse struct {
	ID             string   `json:"id"`
	Username       string   `json:"username,omitempty"`
	Email          string   `json:"email,omitempty"`
	FirstName      string   `json:"firstName,omitempty"`
	LastName       string   `json:"lastName,omitempty"`
	Roles          []string `json:"roles,omitempty"`
	Enabled        bool     `json:"enabled"`
	EmailConfirmed bool     `json:"emailConfirmed"`
}

type RoleResponse struct {
	Name string `json:"name"`
}

func UserResponseFromEntity(user *entity.User) UserResponse {
	return UserResponse{
		ID:             user.ID.String(),
		Username:       user.Username,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Roles:          user.RoleNames(),
		Enabled:        user.Enabled,
		EmailConfirmed: user.EmailConfirmed,
	}
}

func UserResponsesFromEntities(users []entity.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, UserResponseFromEntity(&users[i]))
	}
	return responses
}
