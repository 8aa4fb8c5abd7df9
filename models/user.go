package models

import "strings"

type User struct {
	ID            int    `json:"id" goqu:"skipinsert"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password_Hash string `json:"-"`
	Created_At    string `json:"created_at"`
}

// SessionUser is the identity carried in a session token and returned by the auth endpoints.
type SessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AuthResponse struct {
	SessionUser
	Token string `json:"token"`
}

type UserSignup struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserLogin struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (u *UserSignup) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
}

func (u UserSignup) Validate() []string {
	var details []string
	if u.Name == "" {
		details = append(details, "name is required")
	}
	if !strings.Contains(u.Email, "@") {
		details = append(details, "email is invalid")
	}
	if len(u.Password) < 8 {
		details = append(details, "password must be at least 8 characters")
	}
	return details
}

func (u *UserLogin) Normalize() {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
}

func (u UserLogin) Validate() []string {
	var details []string
	if !strings.Contains(u.Email, "@") {
		details = append(details, "email is invalid")
	}
	if u.Password == "" {
		details = append(details, "password is required")
	}
	return details
}

// AdminUserUpdate leaves a field unchanged when it is absent from the body.
type AdminUserUpdate struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type LoginEvent struct {
	ID         int    `json:"id" goqu:"skipinsert"`
	User_ID    *int   `json:"user_id"`
	Email      string `json:"email"`
	Event_Type string `json:"event_type"`
	Created_At string `json:"created_at"`
}

const (
	LoginEventRegister = "register"
	LoginEventLogin    = "login"
)
