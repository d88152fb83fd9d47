package dto

import (
	"time"

	"github.com/ereignis/ereignis-api/internal/domain"
	"github.com/ereignis/ereignis-api/internal/service"
)

// AddressInput is the writable part of an address. Street and zip rules live
// in validate.Address.
type AddressInput struct {
	Country        string `json:"country" validate:"max=64"`
	State          string `json:"state" validate:"max=64"`
	City           string `json:"city" validate:"max=128"`
	Street         string `json:"street" validate:"max=255"`
	Zip            string `json:"zip" validate:"max=16"`
	ExteriorNumber string `json:"exteriorNumber" validate:"max=16"`
	InteriorNumber string `json:"interiorNumber" validate:"max=16"`
}

// Domain converts the input.
func (in AddressInput) Domain() domain.AddressInput {
	return domain.AddressInput{
		Country:        in.Country,
		State:          in.State,
		City:           in.City,
		Street:         in.Street,
		Zip:            in.Zip,
		ExteriorNumber: in.ExteriorNumber,
		InteriorNumber: in.InteriorNumber,
	}
}

// CreateAddressVariables payload for createAddress.
type CreateAddressVariables struct {
	Input AddressInput `json:"input"`
}

// UpdateAddressVariables payload for updateAddress.
type UpdateAddressVariables struct {
	ID    int64        `json:"id" validate:"required,gt=0"`
	Input AddressInput `json:"input"`
}

// Address is the externally visible shape of an address.
type Address struct {
	ID             int64     `json:"id"`
	OwnerID        int64     `json:"ownerId"`
	Country        string    `json:"country"`
	State          string    `json:"state"`
	City           string    `json:"city"`
	Street         string    `json:"street"`
	Zip            string    `json:"zip"`
	ExteriorNumber string    `json:"exteriorNumber"`
	InteriorNumber string    `json:"interiorNumber"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func newAddress(a *domain.Address) *Address {
	if a == nil {
		return nil
	}
	return &Address{
		ID:             a.ID,
		OwnerID:        a.OwnerID,
		Country:        a.Country,
		State:          a.State,
		City:           a.City,
		Street:         a.Street,
		Zip:            a.Zip,
		ExteriorNumber: a.ExteriorNumber,
		InteriorNumber: a.InteriorNumber,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AddressResponse is the payload of operations returning a single address.
type AddressResponse struct {
	Errors  []domain.FieldError `json:"errors"`
	Address *Address            `json:"address"`
}

// HasFieldErrors reports whether the payload carries business errors.
func (r AddressResponse) HasFieldErrors() bool { return len(r.Errors) > 0 }

// NewAddressResponse converts a service result.
func NewAddressResponse(resp service.AddressResponse) AddressResponse {
	return AddressResponse{Errors: resp.Errors, Address: newAddress(resp.Address)}
}

// PaginatedAddresses is one page of the addresses listing.
type PaginatedAddresses struct {
	Addresses  []Address `json:"addresses"`
	HasMore    bool      `json:"hasMore"`
	NextCursor string    `json:"nextCursor,omitempty"`
}

// NewPaginatedAddresses converts a service page.
func NewPaginatedAddresses(page service.AddressPage) PaginatedAddresses {
	out := PaginatedAddresses{Addresses: make([]Address, 0, len(page.Addresses)), HasMore: page.HasMore, NextCursor: page.NextCursor}
	for i := range page.Addresses {
		out.Addresses = append(out.Addresses, *newAddress(&page.Addresses[i]))
	}
	return out
}
