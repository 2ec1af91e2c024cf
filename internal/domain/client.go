package domain

import "time"

// Client is a registry record keyed by client number. Records are never
// deleted, only superseded by updates.
type Client struct {
	Number       string
	Name         string
	Address      string
	Locality     string
	Phone        string
	Sector       string
	Plan         string
	SealNumber   string
	Observations string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
