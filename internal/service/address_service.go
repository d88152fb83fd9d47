package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ereignis/ereignis-api/internal/auth"
	"github.com/ereignis/ereignis-api/internal/domain"
	"github.com/ereignis/ereignis-api/internal/repository"
	"github.com/ereignis/ereignis-api/internal/validate"
	apperrors "github.com/ereignis/ereignis-api/pkg/util/errorutil"
)

const MsgAddressNotFound = "address not found"

// AddressResponse carries either field errors or an address.
type AddressResponse struct {
	Errors  []domain.FieldError
	Address *domain.Address
}

// AddressPage is one page of addresses, newest first.
type AddressPage struct {
	Addresses  []domain.Address
	HasMore    bool
	NextCursor string
}

// AddressService orchestrates address operations.
type AddressService struct {
	addresses repository.AddressRepository
	logger    *zap.Logger
}

// NewAddressService builds the service.
func NewAddressService(addresses repository.AddressRepository, logger *zap.Logger) *AddressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AddressService{addresses: addresses, logger: logger}
}

func addressErrors(field, message string) AddressResponse {
	return AddressResponse{Errors: []domain.FieldError{{Field: field, Message: message}}}
}

// Create validates and stores an address owned by the actor.
func (s *AddressService) Create(ctx context.Context, in domain.AddressInput) (AddressResponse, error) {
	if errs := validate.Address(in); errs != nil {
		return AddressResponse{Errors: errs}, nil
	}

	actor := auth.ActorFromContext(ctx)
	if actor == nil {
		return AddressResponse{}, apperrors.NewUnauthorized("not authenticated")
	}

	in = in.ApplyDefaults()
	address := &domain.Address{
		OwnerID:        actor.ID,
		Country:        in.Country,
		State:          in.State,
		City:           in.City,
		Street:         in.Street,
		Zip:            in.Zip,
		ExteriorNumber: in.ExteriorNumber,
		InteriorNumber: in.InteriorNumber,
	}
	if err := s.addresses.Insert(ctx, address); err != nil {
		s.logger.Error("insert address", zap.Error(err))
		return AddressResponse{}, err
	}
	return AddressResponse{Address: address}, nil
}

// List pages through addresses the same way users are paged.
func (s *AddressService) List(ctx context.Context, limit int, cursor string) (AddressPage, error) {
	before, err := domain.DecodeCursor(cursor)
	if err != nil {
		return AddressPage{}, apperrors.NewValidationError("invalid cursor", nil)
	}
	size := domain.PageSize(limit)

	rows, err := s.addresses.List(ctx, domain.PageRequest{Before: before, Limit: size + 1})
	if err != nil {
		return AddressPage{}, err
	}

	page := AddressPage{HasMore: len(rows) > size}
	if page.HasMore {
		rows = rows[:size]
		page.NextCursor = domain.EncodeCursor(rows[len(rows)-1].CreatedAt)
	}
	page.Addresses = rows
	return page, nil
}

// Get fetches one address.
func (s *AddressService) Get(ctx context.Context, id int64) (AddressResponse, error) {
	address, err := s.addresses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return addressErrors("", MsgAddressNotFound), nil
		}
		return AddressResponse{}, err
	}
	return AddressResponse{Address: address}, nil
}

// Update rewrites an address. Only its owner or an admin may do so.
func (s *AddressService) Update(ctx context.Context, id int64, in domain.AddressInput) (AddressResponse, error) {
	actor := auth.ActorFromContext(ctx)

	current, err := s.addresses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return addressErrors("", MsgInvalidOperation), nil
		}
		return AddressResponse{}, err
	}
	if !auth.OwnerOrAdmin(actor, current.OwnerID) {
		return addressErrors("", MsgInvalidOperation), nil
	}

	if errs := validate.Address(in); errs != nil {
		return AddressResponse{Errors: errs}, nil
	}

	updated, err := s.addresses.Update(ctx, id, in.ApplyDefaults())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return addressErrors("", MsgInvalidOperation), nil
		}
		return AddressResponse{}, err
	}
	return AddressResponse{Address: updated}, nil
}

// Delete removes an address; false covers both missing and forbidden.
func (s *AddressService) Delete(ctx context.Context, id int64) (bool, error) {
	actor := auth.ActorFromContext(ctx)

	current, err := s.addresses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if !auth.OwnerOrAdmin(actor, current.OwnerID) {
		return false, nil
	}

	if err := s.addresses.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
