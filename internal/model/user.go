package model

import "time"

type Role string

const (
	RoleProfessor Role = "professor"
	RoleStudent   Role = "student"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Actor — проверенная личность вызывающего, извлечённая из токена.
// Сервисы доверяют ей полностью и не перепроверяют учётные данные.
type Actor struct {
	ID   string
	Role Role
}
