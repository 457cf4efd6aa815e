package httpapi

import (
	"time"

	"portfolio-backend-go/internal/models"
)

type UserDTO struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CreatedAt *time.Time  `json:"created_at,omitempty"`
}

// SessionUserDTO is the user echoed back with a fresh token.
type SessionUserDTO struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

func toUserDTO(user models.User) UserDTO {
	dto := UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
	if !user.CreatedAt.IsZero() {
		createdAt := user.CreatedAt
		dto.CreatedAt = &createdAt
	}
	return dto
}

func toUserDTOs(users []models.User) []UserDTO {
	items := make([]UserDTO, 0, len(users))
	for _, user := range users {
		items = append(items, toUserDTO(user))
	}
	return items
}
