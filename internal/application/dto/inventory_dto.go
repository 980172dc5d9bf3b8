package dto

import "time"

// RegisterInventoryRequest registra una unidad física en una ubicación.
type RegisterInventoryRequest struct {
	Gtin string `json:"gtin"`
}

// InventoryResponse unidad de inventario.
type InventoryResponse struct {
	ID         string     `json:"id"`
	LocationID string     `json:"location_id"`
	Gtin       string     `json:"gtin"`
	Reserved   bool       `json:"reserved"`
	CreatedAt  time.Time  `json:"created_at"`
	RemovedAt  *time.Time `json:"removed_at,omitempty"`
}

// InventoryListResponse listado de unidades en una ubicación.
type InventoryListResponse struct {
	Items []InventoryResponse `json:"items"`
	Total int                 `json:"total"`
}
