package dto

import "time"

// CreateOrderRequest crea un pedido, opcionalmente con líneas iniciales.
type CreateOrderRequest struct {
	Lines []string `json:"lines"` // gtins de las líneas iniciales
}

// AddLineRequest añade una línea de demanda a un pedido.
type AddLineRequest struct {
	Gtin string `json:"gtin"`
}

// UpdateLineRequest intenta modificar una línea. gtin y order_id son
// inmutables: cualquier cambio se rechaza antes de escribir.
type UpdateLineRequest struct {
	Gtin    *string `json:"gtin"`
	OrderID *string `json:"order_id"`
}

// OrderLineResponse línea de pedido con su estado de reserva.
type OrderLineResponse struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	Gtin        string    `json:"gtin"`
	Fulfilled   bool      `json:"fulfilled"`
	InventoryID *string   `json:"inventory_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// OrderResponse pedido con sus líneas.
type OrderResponse struct {
	ID        string              `json:"id"`
	Status    string              `json:"status"`
	Lines     []OrderLineResponse `json:"lines"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	DeletedAt *time.Time          `json:"deleted_at,omitempty"`
}

// OrderListResponse listado paginado de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Total int             `json:"total"`
}
