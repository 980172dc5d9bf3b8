package entity

import "time"

// Location representa una ubicación física donde se almacena inventario.
// La gestión de ubicaciones es un colaborador externo; aquí solo se modela
// lo mínimo que el motor de reservas consume.
type Location struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
