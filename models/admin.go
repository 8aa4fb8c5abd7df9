package models

const AdminRole = "admin"

type AdminLogin struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AdminSession struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AdminStats struct {
	Users        int64 `json:"users"`
	Listings     int64 `json:"listings"`
	Applications int64 `json:"applications"`
	Threads      int64 `json:"threads"`
	Messages     int64 `json:"messages"`
}
