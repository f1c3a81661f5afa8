package model

// User represents a stored user record. Email is the primary key and is
// immutable once set. Password holds a bcrypt hash after the save path,
// never plaintext.
type User struct {
	Email    string
	Username string
	Password string
	Role     string
	Address1 string
	Address2 string
}

// RegisterRequest represents a user registration request. The password
// arrives in plaintext and is hashed before persistence.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the signed token returned on successful login.
type LoginResponse struct {
	Token string `json:"token"`
}

// UpdateUserRequest is a full-replace update of a user record, keyed by
// email. There is no partial patch.
type UpdateUserRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
}

// UserResponse represents user data safe for API responses (no password hash).
type UserResponse struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
}

// ToResponse converts a stored user into its API-safe representation.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		Email:    u.Email,
		Username: u.Username,
		Role:     u.Role,
		Address1: u.Address1,
		Address2: u.Address2,
	}
}
