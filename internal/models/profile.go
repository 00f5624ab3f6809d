package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
