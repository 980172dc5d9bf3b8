package entity

import "time"

// User representa un usuario de la API (operario de bodega).
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string // "admin" | "bodeguero"
	CreatedAt    time.Time
}
