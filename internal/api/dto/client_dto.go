package dto

import "time"

// ClientRequest payload for create or update.
type ClientRequest struct {
	Name         string `json:"name" validate:"required"`
	Address      string `json:"address"`
	Locality     string `json:"locality"`
	Phone        string `json:"phone"`
	Sector       string `json:"sector" validate:"required"`
	Plan         string `json:"plan"`
	SealNumber   string `json:"seal_number"`
	Observations string `json:"observations"`
}

// ClientResponse representation.
type ClientResponse struct {
	Number       string    `json:"number"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	Locality     string    `json:"locality"`
	Phone        string    `json:"phone"`
	Sector       string    `json:"sector"`
	Plan         string    `json:"plan"`
	SealNumber   string    `json:"seal_number"`
	Observations string    `json:"observations"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
