package user

import (
	"time"

	"github.com/google/uuid"
)

// Roles gate the broadcast control surface. Editors manage the news desk;
// admins also control the live stream.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// User represents an operator account (pure domain model).
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Password    string    `json:"-"` // Never expose in JSON
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateUserRequest represents the data needed to create a new operator.
type CreateUserRequest struct {
	DisplayName string `json:"displayName" binding:"required,min=2,max=100"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	Role        string `json:"role,omitempty" binding:"omitempty,oneof=admin editor"`
}

// LoginRequest represents login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse represents a user without sensitive information.
type UserResponse struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToResponse converts a User to UserResponse (removes sensitive data).
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// NewUser creates a new user with generated ID.
func NewUser(req CreateUserRequest, hashedPassword string) *User {
	role := req.Role
	if role == "" {
		role = RoleEditor
	}
	return &User{
		ID:          uuid.New().String(),
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Role:        role,
		Password:    hashedPassword,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(user *User) error
	GetByID(id string) (*User, error)
	GetByEmail(email string) (*User, error)
	List(offset, limit int) ([]User, int64, error)
	EmailExists(email string) (bool, error)
}
