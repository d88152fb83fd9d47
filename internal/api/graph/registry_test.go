package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ereignis/ereignis-api/internal/api/dto"
	"github.com/ereignis/ereignis-api/internal/auth"
	"github.com/ereignis/ereignis-api/internal/domain"
	"github.com/ereignis/ereignis-api/internal/observability"
	"github.com/ereignis/ereignis-api/internal/repository/memory"
	"github.com/ereignis/ereignis-api/internal/service"
	"github.com/ereignis/ereignis-api/internal/session"
	apperrors "github.com/ereignis/ereignis-api/pkg/util/errorutil"
)

type harness struct {
	registry *Registry
	users    *memory.UserStore
	seq      int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	users := memory.NewUserStore(nil)
	addresses := memory.NewAddressStore(nil)
	sessions := session.NewManager(session.NewMemoryStore(), time.Hour, nil)

	userSvc := service.NewUserService(service.UserDependencies{
		Users:    users,
		Sessions: sessions,
		Hasher:   auth.NewHasher(bcrypt.MinCost),
		Tokens:   auth.NewConfirmationTokens("secret", time.Hour),
	})
	addressSvc := service.NewAddressService(addresses, nil)

	r := NewRegistry(nil, observability.NewMetrics())
	binder := dto.NewBinder()
	RegisterUserOperations(r, userSvc, binder)
	RegisterAddressOperations(r, addressSvc, binder)
	return &harness{registry: r, users: users}
}

func (h *harness) actor(roles ...domain.Role) *domain.User {
	h.seq++
	name := fmt.Sprintf("member%d", h.seq)
	u := h.users.Put(domain.User{
		Username:  name,
		Email:     name + "@example.com",
		Phone:     fmt.Sprintf("555-%04d", h.seq),
		Confirmed: true,
		Roles:     roles,
	})
	return &u
}

func ctxFor(actor *domain.User) context.Context {
	return session.WithHandle(auth.WithActor(context.Background(), actor), session.NewHandle(""))
}

const validAddress = `{"input":{"city":"Monterrey","street":"Av. Juarez","zip":"64000","exteriorNumber":"12"}}`

func TestExecute_UnknownOperation(t *testing.T) {
	h := newHarness(t)
	_, err := h.registry.Execute(context.Background(), "dropTables", nil)
	require.Error(t, err)
	assert.Equal(t, "UNKNOWN_OPERATION", apperrors.ToDomainError(err).Code)
}

func TestCreateAddress_RoleGuard(t *testing.T) {
	h := newHarness(t)

	cases := []struct {
		name     string
		actor    *domain.User
		wantCode string
	}{
		{name: "admin", actor: h.actor(domain.RoleAdmin)},
		{name: "provider", actor: h.actor(domain.RoleProvider)},
		{name: "regular", actor: h.actor(domain.RoleRegular), wantCode: "FORBIDDEN"},
		{name: "anonymous", actor: nil, wantCode: "UNAUTHORIZED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := h.registry.Execute(ctxFor(tc.actor), "createAddress", json.RawMessage(validAddress))
			if tc.wantCode != "" {
				require.Error(t, err)
				assert.True(t, apperrors.IsAuthorization(err))
				assert.Equal(t, tc.wantCode, apperrors.ToDomainError(err).Code)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			resp := result.(dto.AddressResponse)
			assert.Nil(t, resp.Errors)
			require.NotNil(t, resp.Address)
			assert.Equal(t, domain.DefaultCountry, resp.Address.Country)
		})
	}
}

func TestDenialPrecedesValidation(t *testing.T) {
	h := newHarness(t)
	regular := h.actor(domain.RoleRegular)

	_, err := h.registry.Execute(ctxFor(regular), "createAddress", json.RawMessage(`{"input":{"street":"","zip":"1"}}`))
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	_, err = h.registry.Execute(ctxFor(regular), "users", json.RawMessage(`{"limit":0}`))
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestCreateAddress_FieldErrorsAreNotFatal(t *testing.T) {
	h := newHarness(t)
	result, err := h.registry.Execute(ctxFor(h.actor(domain.RoleProvider)), "createAddress", json.RawMessage(`{"input":{"street":"","zip":"123"}}`))
	require.NoError(t, err)

	resp := result.(dto.AddressResponse)
	assert.Nil(t, resp.Address)
	assert.Len(t, resp.Errors, 2)
	assert.True(t, resp.HasFieldErrors())
}

func TestAdminOnlyOperations(t *testing.T) {
	h := newHarness(t)
	target := h.actor(domain.RoleRegular)
	vars := json.RawMessage(fmt.Sprintf(`{"id":%d}`, target.ID))

	for _, name := range []string{"addProviderRole", "removeProviderRole"} {
		_, err := h.registry.Execute(ctxFor(h.actor(domain.RoleProvider)), name, vars)
		assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code, name)
	}

	result, err := h.registry.Execute(ctxFor(h.actor(domain.RoleAdmin)), "addProviderRole", vars)
	require.NoError(t, err)
	resp := result.(dto.UserResponse)
	assert.Contains(t, resp.User.Roles, domain.RoleProvider)
}

func TestAuthenticatedOperationsRejectAnonymous(t *testing.T) {
	h := newHarness(t)
	for _, name := range []string{"logout", "updateProfile", "deleteUser", "sendConfirmation"} {
		_, err := h.registry.Execute(ctxFor(nil), name, json.RawMessage(`{"id":1}`))
		assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code, name)
	}
}

func TestMe(t *testing.T) {
	h := newHarness(t)

	result, err := h.registry.Execute(ctxFor(nil), "me", nil)
	require.NoError(t, err)
	assert.Nil(t, result.(*dto.User))

	actor := h.actor(domain.RoleRegular)
	result, err = h.registry.Execute(ctxFor(actor), "me", nil)
	require.NoError(t, err)
	me := result.(*dto.User)
	assert.Equal(t, actor.Email, me.Email)
	assert.Nil(t, me.Roles)
}

func TestDeleteUser_MalformedVariablesAnswerFalse(t *testing.T) {
	h := newHarness(t)
	result, err := h.registry.Execute(ctxFor(h.actor(domain.RoleAdmin)), "deleteUser", json.RawMessage(`{"id":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, false, result)
}

type failingDeleteStore struct {
	*memory.UserStore
}

func (failingDeleteStore) Delete(context.Context, int64) error {
	return errors.New("connection reset")
}

func TestDeleteUser_StoreFailureSurfaces(t *testing.T) {
	users := memory.NewUserStore(nil)
	userSvc := service.NewUserService(service.UserDependencies{
		Users:    failingDeleteStore{UserStore: users},
		Sessions: session.NewManager(session.NewMemoryStore(), time.Hour, nil),
		Hasher:   auth.NewHasher(bcrypt.MinCost),
		Tokens:   auth.NewConfirmationTokens("secret", time.Hour),
	})
	r := NewRegistry(nil, nil)
	RegisterUserOperations(r, userSvc, dto.NewBinder())

	admin := users.Put(domain.User{Username: "root", Email: "root@example.com", Phone: "1", Roles: []domain.Role{domain.RoleAdmin}})
	target := users.Put(domain.User{Username: "gone", Email: "gone@example.com", Phone: "2", Roles: []domain.Role{domain.RoleRegular}})

	result, err := r.Execute(ctxFor(&admin), "deleteUser", json.RawMessage(fmt.Sprintf(`{"id":%d}`, target.ID)))
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, "INTERNAL_ERROR", apperrors.ToDomainError(err).Code)
}

func TestDeleteUser_ExpectedFailuresAnswerFalse(t *testing.T) {
	h := newHarness(t)
	regular := h.actor(domain.RoleRegular)
	other := h.actor(domain.RoleRegular)

	result, err := h.registry.Execute(ctxFor(regular), "deleteUser", json.RawMessage(fmt.Sprintf(`{"id":%d}`, other.ID)))
	require.NoError(t, err)
	assert.Equal(t, false, result)

	result, err = h.registry.Execute(ctxFor(h.actor(domain.RoleAdmin)), "deleteUser", json.RawMessage(`{"id":9999}`))
	require.NoError(t, err)
	assert.Equal(t, false, result)
}

func TestNames(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, []string{
		"addProviderRole", "address", "addresses", "confirmAccount", "createAddress",
		"deleteAddress", "deleteUser", "login", "logout", "me", "register",
		"removeProviderRole", "sendConfirmation", "updateAddress", "updateProfile",
		"user", "users",
	}, h.registry.Names())
}

func TestRegister_DuplicatePanics(t *testing.T) {
	r := NewRegistry(nil, nil)
	op := Operation{Name: "me", Resolve: func(context.Context, json.RawMessage) (any, error) { return nil, nil }}
	r.Register(op)
	assert.Panics(t, func() { r.Register(op) })
}
