package entity

import "time"

// Inventory representa una unidad física de un producto en una ubicación.
// RemovedAt marca la unidad como consumida (soft remove): deja de ser
// emparejable pero la fila sigue consultable para auditoría y ubicación.
type Inventory struct {
	ID         string
	LocationID string
	Gtin       string
	CreatedAt  time.Time
	RemovedAt  *time.Time
}

// IsRemoved indica si la unidad fue retirada (soft remove).
func (i *Inventory) IsRemoved() bool {
	return i != nil && i.RemovedAt != nil
}
