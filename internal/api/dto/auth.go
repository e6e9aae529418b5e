package dto

import "strings"

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
}

func (r *RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !strings.Contains(r.Email, "@") {
		errors["email"] = "Invalid email format"
	}

	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < 8 {
		errors["password"] = "Password must be at least 8 characters"
	}

	if r.Name == "" {
		errors["name"] = "Name is required"
	}

	return errors
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

func (r *ResetPasswordRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.NewPassword == "" {
		errors["new_password"] = "New password is required"
	} else if len(r.NewPassword) < 8 {
		errors["new_password"] = "Password must be at least 8 characters"
	}

	return errors
}

type OAuthExchangeRequest struct {
	Code string `json:"code"`
}

func (r *OAuthExchangeRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Code == "" {
		errors["code"] = "Authorization code is required"
	}

	return errors
}
