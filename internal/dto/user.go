package dto

import (
	"time"

	"github.com/portuna85/kraft/internal/models"
)

type UserProfileResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type SignupResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type LoginResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func UserProfileFrom(u models.User) UserProfileResponse {
	return UserProfileResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
