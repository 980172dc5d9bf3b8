package dto

import "time"

// CreateLocationRequest crea una ubicación.
type CreateLocationRequest struct {
	Name string `json:"name"`
}

// LocationResponse ubicación.
type LocationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LocationListResponse listado de ubicaciones.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
}
