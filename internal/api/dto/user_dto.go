package dto

import "time"

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest payload for password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// ResetPasswordRequest payload for setting a managed user's password.
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// CreateUserRequest payload for new directory entries.
type CreateUserRequest struct {
	Name              string `json:"name" validate:"required,max=120"`
	Email             string `json:"email" validate:"required,email"`
	Phone             string `json:"phone" validate:"omitempty,max=32"`
	Password          string `json:"password" validate:"required,min=6"`
	Role              string `json:"role" validate:"required,oneof=senior_manager manager floor_manager team_leader counselor"`
	ReportsTo         string `json:"reports_to"`
	Department        string `json:"department" validate:"omitempty,max=120"`
	Branch            string `json:"branch" validate:"omitempty,oneof=Hyderabad Delhi Kashmir"`
	PreferredLanguage string `json:"preferred_language" validate:"omitempty,max=32"`
	WhatsAppNumber    string `json:"whatsapp_number" validate:"omitempty,max=32"`
}

// UpdateUserRequest payload. Omitted fields are left unchanged.
type UpdateUserRequest struct {
	Name              *string `json:"name" validate:"omitempty,min=1,max=120"`
	Phone             *string `json:"phone" validate:"omitempty,max=32"`
	Role              *string `json:"role" validate:"omitempty,oneof=senior_manager manager floor_manager team_leader counselor"`
	ReportsTo         *string `json:"reports_to"`
	Department        *string `json:"department" validate:"omitempty,max=120"`
	Branch            *string `json:"branch" validate:"omitempty,oneof=Hyderabad Delhi Kashmir"`
	PreferredLanguage *string `json:"preferred_language" validate:"omitempty,max=32"`
	WhatsAppNumber    *string `json:"whatsapp_number" validate:"omitempty,max=32"`
}

// UserResponse is the public view of a directory entry.
type UserResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone,omitempty"`
	Role              string    `json:"role"`
	RoleLabel         string    `json:"role_label"`
	ReportsTo         *string   `json:"reports_to"`
	Department        string    `json:"department,omitempty"`
	Branch            string    `json:"branch,omitempty"`
	IsActive          bool      `json:"is_active"`
	PreferredLanguage string    `json:"preferred_language,omitempty"`
	WhatsAppNumber    string    `json:"whatsapp_number,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// RoleOption is a role value with its display label.
type RoleOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// RolesResponse lists the roles the caller may add and assign leads to.
type RolesResponse struct {
	Addable    []RoleOption `json:"addable"`
	Assignable []RoleOption `json:"assignable"`
}
