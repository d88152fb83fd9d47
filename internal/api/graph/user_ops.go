package graph

import (
	"context"
	"encoding/json"

	"github.com/ereignis/ereignis-api/internal/api/dto"
	"github.com/ereignis/ereignis-api/internal/auth"
	"github.com/ereignis/ereignis-api/internal/domain"
	"github.com/ereignis/ereignis-api/internal/service"
)

type userOps struct {
	users  *service.UserService
	binder *dto.Binder
}

// RegisterUserOperations adds the account operations to r.
func RegisterUserOperations(r *Registry, users *service.UserService, binder *dto.Binder) {
	ops := &userOps{users: users, binder: binder}
	admin := auth.RequireRoles(domain.RoleAdmin)

	r.Register(Operation{Name: "register", Kind: Mutation, Requires: auth.Public(), Resolve: ops.register})
	r.Register(Operation{Name: "login", Kind: Mutation, Requires: auth.Public(), Resolve: ops.login})
	r.Register(Operation{Name: "logout", Kind: Mutation, Requires: auth.Authenticated(), Resolve: ops.logout})
	r.Register(Operation{Name: "me", Kind: Query, Requires: auth.Public(), Resolve: ops.me})
	r.Register(Operation{Name: "users", Kind: Query, Requires: admin, Resolve: ops.list})
	r.Register(Operation{Name: "user", Kind: Query, Requires: auth.Public(), Resolve: ops.get})
	r.Register(Operation{Name: "updateProfile", Kind: Mutation, Requires: auth.Authenticated(), Resolve: ops.updateProfile})
	r.Register(Operation{Name: "addProviderRole", Kind: Mutation, Requires: admin, Resolve: ops.addProviderRole})
	r.Register(Operation{Name: "removeProviderRole", Kind: Mutation, Requires: admin, Resolve: ops.removeProviderRole})
	r.Register(Operation{Name: "deleteUser", Kind: Mutation, Requires: auth.Authenticated(), Resolve: ops.deleteUser})
	r.Register(Operation{Name: "sendConfirmation", Kind: Mutation, Requires: auth.Authenticated(), Resolve: ops.sendConfirmation})
	r.Register(Operation{Name: "confirmAccount", Kind: Mutation, Requires: auth.Public(), Resolve: ops.confirmAccount})
}

// register and login answer to the account they just bound to the session,
// so the caller sees its own email.
func (o *userOps) register(ctx context.Context, raw json.RawMessage) (any, error) {
	var vars dto.RegisterVariables
	if err := o.binder.Bind(raw, &vars); err != nil {
		return nil, err
	}
	resp, err := o.users.Register(ctx, vars.Options.Input())
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(resp.User, resp), nil
}

func (o *userOps) login(ctx context.Context, raw json.RawMessage) (any, error) {
	var vars dto.LoginVariables
	if err := o.binder.Bind(raw, &vars); err != nil {
		return nil, err
	}
	resp, err := o.users.Login(ctx, vars.UsernameOrEmail, vars.Password)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(resp.User, resp), nil
}

func (o *userOps) logout(ctx context.Context, _ json.RawMessage) (any, error) {
	return o.users.Logout(ctx)
}

func (o *userOps) me(ctx context.Context, _ json.RawMessage) (any, error) {
	actor := o.users.Me(ctx)
	return dto.NewUser(actor, actor), nil
}

func (o *userOps) list(ctx context.Context, raw json.RawMessage) (any, error) {
	var vars dto.PageVariables
	if err := o.binder.Bind(raw, &vars); err != nil {
		return nil, err
	}
	page, err := o.users.Users(ctx, vars.Limit, vars.CursorValue())
	if err != nil {
		return nil, err
	}
	return dto.NewPaginatedUsers(auth.ActorFromContext(ctx), page), nil
}

func (o *userOps) get(ctx context.Context, raw json.RawMessage) (any, error) {
	var vars dto.IDVariables
	if err := o.binder.Bind(raw, &vars); err != nil {
		return nil, err
	}
	resp, err := o.users.User(ctx, vars.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(auth.ActorFromContext(ctx), resp), nil
}

func (o *userOps) updateProfile(ctx context.Context, raw json.RawMessage) (any, error) {
	var vars dto.UpdateProfileVariables
	if err := o.binder.Bind(raw, &vars); err != nil {
		return nil, err
	}
	resp, err := o.users.UpdateProfile(ctx, vars.ID, vars.Profile())
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(auth.ActorFromContext(ctx), resp), nil
}

func (o *userOps) addProviderRole(ctx context.Context, raw json.RawMessage) (any, error) {
	return o.roleChange(ctx, raw, o.users.AddProviderRole)
}

func (o *userOps) removeProviderRole(ctx context.Context, raw json.RawMessage) (any, error) {
	return o.roleChange(ctx, raw, o.users.RemoveProviderRole)
}

func (o *userOps) roleChange(ctx context.Context, raw json.RawMessage, change func(context.Context, int64) (service.UserResponse, error)) (any, error) {
	var vars dto.IDVariables
	if err := o.binder.Bind(raw, &vars); err != nil {
		return nil, err
	}
	resp, err := change(ctx, vars.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(auth.ActorFromContext(ctx), resp), nil
}

// deleteUser answers false for malformed variables, unknown ids and callers
// that may not delete the account. Store failures surface as errors.
func (o *userOps) deleteUser(ctx context.Context, raw json.RawMessage) (any, error) {
	var vars dto.IDVariables
	if err := o.binder.Bind(raw, &vars); err != nil {
		return false, nil
	}
	return o.users.DeleteUser(ctx, vars.ID)
}

func (o *userOps) sendConfirmation(ctx context.Context, _ json.RawMessage) (any, error) {
	return o.users.SendConfirmation(ctx)
}

func (o *userOps) confirmAccount(ctx context.Context, raw json.RawMessage) (any, error) {
	var vars dto.ConfirmAccountVariables
	if err := o.binder.Bind(raw, &vars); err != nil {
		return nil, err
	}
	resp, err := o.users.ConfirmAccount(ctx, vars.Token)
	if err != nil {
		return nil, err
	}
	viewer := auth.ActorFromContext(ctx)
	if viewer == nil {
		viewer = resp.User
	}
	return dto.NewUserResponse(viewer, resp), nil
}
