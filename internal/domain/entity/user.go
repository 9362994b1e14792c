package entity

import "agromarket/internal/domain/value"

type User struct {
	ID       int64          `json:"id"`
	FullName string         `json:"fullName"`
	Email    string         `json:"email"`
	Role     value.UserRole `json:"role"`
}

func (u User) IsAdmin() bool {
	return u.Role == value.UserRoleAdmin
}
