package entity

import "time"

// OrderLine representa una unidad de demanda dentro de un pedido.
// OrderID y Gtin son inmutables después de la creación; la línea se elimina
// físicamente al liberarse o reemplazarse.
type OrderLine struct {
	ID        string
	OrderID   string
	Gtin      string
	CreatedAt time.Time
}
