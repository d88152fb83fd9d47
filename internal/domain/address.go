package domain

import "time"

const (
	DefaultCountry = "Mexico"
	DefaultState   = "Nuevo Leon"
)

// Address is a physical location that venues are attached to.
type Address struct {
	ID             int64
	OwnerID        int64
	Country        string
	State          string
	City           string
	Street         string
	Zip            string
	ExteriorNumber string
	InteriorNumber string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AddressInput is the writable part of an address.
type AddressInput struct {
	Country        string
	State          string
	City           string
	Street         string
	Zip            string
	ExteriorNumber string
	InteriorNumber string
}

// ApplyDefaults fills country and state when they were left blank.
func (in AddressInput) ApplyDefaults() AddressInput {
	if in.Country == "" {
		in.Country = DefaultCountry
	}
	if in.State == "" {
		in.State = DefaultState
	}
	return in
}
