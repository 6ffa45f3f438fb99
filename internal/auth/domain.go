package auth

import "time"

// Role names stored in the roles table.
const (
	RoleAdmin   = "ADMIN"
	RoleCashier = "CASHIER"
)

// User represents an authenticated user account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	FullName     string
	Role         string
	CreatedAt    time.Time
}

// UserView is the public projection returned to clients.
type UserView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	FullName string `json:"fullName"`
}

// View projects the user for API responses.
func (u User) View() UserView {
	return UserView{ID: u.ID, Username: u.Username, Role: u.Role, FullName: u.FullName}
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserView  `json:"user"`
}

// LoginRequest is the POST /auth/login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
}
