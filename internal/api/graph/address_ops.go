package graph

import (
	"context"
	"encoding/json"

	"github.com/ereignis/ereignis-api/internal/api/dto"
	"github.com/ereignis/ereignis-api/internal/auth"
	"github.com/ereignis/ereignis-api/internal/domain"
	"github.com/ereignis/ereignis-api/internal/service"
)

type addressOps struct {
	addresses *service.AddressService
	binder    *dto.Binder
}

// RegisterAddressOperations adds the address operations to r. All of them
// are reserved to admins and providers.
func RegisterAddressOperations(r *Registry, addresses *service.AddressService, binder *dto.Binder) {
	ops := &addressOps{addresses: addresses, binder: binder}
	staff := auth.RequireRoles(domain.RoleAdmin, domain.RoleProvider)

	r.Register(Operation{Name: "createAddress", Kind: Mutation, Requires: staff, Resolve: ops.create})
	r.Register(Operation{Name: "addresses", Kind: Query, Requires: staff, Resolve: ops.list})
	r.Register(Operation{Name: "address", Kind: Query, Requires: staff, Resolve: ops.get})
	r.Register(Operation{Name: "updateAddress", Kind: Mutation, Requires: staff, Resolve: ops.update})
	r.Register(Operation{Name: "deleteAddress", Kind: Mutation, Requires: staff, Resolve: ops.delete})
}

func (o *addressOps) create(ctx context.Context, raw json.RawMessage) (any, error) {
	var vars dto.CreateAddressVariables
	if err := o.binder.Bind(raw, &vars); err != nil {
		return nil, err
	}
	resp, err := o.addresses.Create(ctx, vars.Input.Domain())
	if err != nil {
		return nil, err
	}
	return dto.NewAddressResponse(resp), nil
}

func (o *addressOps) list(ctx context.Context, raw json.RawMessage) (any, error) {
	var vars dto.PageVariables
	if err := o.binder.Bind(raw, &vars); err != nil {
		return nil, err
	}
	page, err := o.addresses.List(ctx, vars.Limit, vars.CursorValue())
	if err != nil {
		return nil, err
	}
	return dto.NewPaginatedAddresses(page), nil
}

func (o *addressOps) get(ctx context.Context, raw json.RawMessage) (any, error) {
	var vars dto.IDVariables
	if err := o.binder.Bind(raw, &vars); err != nil {
		return nil, err
	}
	resp, err := o.addresses.Get(ctx, vars.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewAddressResponse(resp), nil
}

func (o *addressOps) update(ctx context.Context, raw json.RawMessage) (any, error) {
	var vars dto.UpdateAddressVariables
	if err := o.binder.Bind(raw, &vars); err != nil {
		return nil, err
	}
	resp, err := o.addresses.Update(ctx, vars.ID, vars.Input.Domain())
	if err != nil {
		return nil, err
	}
	return dto.NewAddressResponse(resp), nil
}

func (o *addressOps) delete(ctx context.Context, raw json.RawMessage) (any, error) {
	var vars dto.IDVariables
	if err := o.binder.Bind(raw, &vars); err != nil {
		return nil, err
	}
	return o.addresses.Delete(ctx, vars.ID)
}
