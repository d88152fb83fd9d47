package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ereignis/ereignis-api/internal/api/dto"
	"github.com/ereignis/ereignis-api/internal/api/graph"
	httptransport "github.com/ereignis/ereignis-api/internal/api/http"
	"github.com/ereignis/ereignis-api/internal/api/http/handlers"
	"github.com/ereignis/ereignis-api/internal/auth"
	"github.com/ereignis/ereignis-api/internal/domain"
	"github.com/ereignis/ereignis-api/internal/observability"
	"github.com/ereignis/ereignis-api/internal/persistence"
	"github.com/ereignis/ereignis-api/internal/repository/memory"
	"github.com/ereignis/ereignis-api/internal/service"
	"github.com/ereignis/ereignis-api/internal/session"
)

type testServer struct {
	app      *fiber.App
	users    *memory.UserStore
	sessions *session.MemoryStore
	hasher   *auth.Hasher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	users := memory.NewUserStore(nil)
	addresses := memory.NewAddressStore(nil)
	store := session.NewMemoryStore()
	manager := session.NewManager(store, time.Hour, nil)
	hasher := auth.NewHasher(bcrypt.MinCost)
	metrics := observability.NewMetrics()

	userSvc := service.NewUserService(service.UserDependencies{
		Users:    users,
		Sessions: manager,
		Hasher:   hasher,
		Tokens:   auth.NewConfirmationTokens("secret", time.Hour),
	})
	binder := dto.NewBinder()
	registry := graph.NewRegistry(nil, metrics)
	graph.RegisterUserOperations(registry, userSvc, binder)
	graph.RegisterAddressOperations(registry, service.NewAddressService(addresses, nil), binder)

	app := httptransport.NewApp(httptransport.ServerConfig{Name: "test"}, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler("test", "dev", map[string]handlers.Probe{
			"postgres": (&persistence.Postgres{}).Ping,
		}),
		Graph: handlers.NewGraphHandler(registry, binder),
		Session: auth.NewSessionMiddleware(manager, users, auth.CookieConfig{
			Name:   "qid",
			MaxAge: 365 * 24 * time.Hour,
		}, nil),
		Metrics:      metrics,
		CookieSecret: "cookie-secret",
		CORSOrigin:   "http://localhost:3000",
	})
	return &testServer{app: app, users: users, sessions: store, hasher: hasher}
}

type envelope struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"errors"`
}

func (s *testServer) call(t *testing.T, cookie *http.Cookie, operation, variables string) (*http.Response, envelope) {
	t.Helper()
	body := `{"operationName":"` + operation + `","variables":` + variables + `}`
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp, env
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "qid" {
			return c
		}
	}
	return nil
}

func TestRegisterSetsEncryptedSessionCookie(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.call(t, nil, "register", `{"options":{"email":"ana@example.com","username":"ana","phone":"8110000000","password":"secret","confirmation":"secret"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload dto.UserResponse
	require.NoError(t, json.Unmarshal(env.Data["register"], &payload))
	require.NotNil(t, payload.User)
	assert.Nil(t, payload.Errors)
	assert.Equal(t, "ana@example.com", payload.User.Email)
	assert.Nil(t, payload.User.Roles)

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, 1, s.sessions.Len())

	resp, env = s.call(t, cookie, "me", `{}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me dto.User
	require.NoError(t, json.Unmarshal(env.Data["me"], &me))
	assert.Equal(t, payload.User.ID, me.ID)
}

func TestTamperedCookieIsAnonymous(t *testing.T) {
	s := newTestServer(t)
	_, env := s.call(t, &http.Cookie{Name: "qid", Value: "not-a-session"}, "me", `{}`)
	assert.Equal(t, "null", string(env.Data["me"]))
}

func TestRegularUserDeniedAddressCreation(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.call(t, nil, "register", `{"options":{"email":"reg@example.com","username":"reg","phone":"1","password":"secret","confirmation":"secret"}}`)
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)

	resp, env := s.call(t, cookie, "createAddress", `{"input":{"street":"","zip":"1"}}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "FORBIDDEN", env.Errors[0].Code)
	assert.Nil(t, env.Data)
}

func TestProviderCreatesAddress(t *testing.T) {
	s := newTestServer(t)
	hash, err := s.hasher.Hash("secret")
	require.NoError(t, err)
	s.users.Put(domain.User{
		Username: "vendor", Email: "vendor@example.com", Phone: "2",
		PasswordHash: hash, Confirmed: true, Roles: []domain.Role{domain.RoleProvider},
	})

	resp, _ := s.call(t, nil, "login", `{"usernameOrEmail":"vendor@example.com","password":"secret"}`)
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)

	resp, env := s.call(t, cookie, "createAddress", `{"input":{"city":"Monterrey","street":"Av. Juarez","zip":"64000"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var payload dto.AddressResponse
	require.NoError(t, json.Unmarshal(env.Data["createAddress"], &payload))
	require.NotNil(t, payload.Address)
	assert.Equal(t, "Nuevo Leon", payload.Address.State)
}

func TestLogoutClearsCookie(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.call(t, nil, "register", `{"options":{"email":"out@example.com","username":"out","phone":"3","password":"secret","confirmation":"secret"}}`)
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)

	resp, env := s.call(t, cookie, "logout", `{}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", string(env.Data["logout"]))
	assert.Equal(t, 0, s.sessions.Len())

	cleared := sessionCookie(resp)
	require.NotNil(t, cleared)
	assert.True(t, cleared.Expires.Before(time.Now()))

	_, env = s.call(t, cookie, "me", `{}`)
	assert.Equal(t, "null", string(env.Data["me"]))
}

func TestLoginFieldErrors(t *testing.T) {
	s := newTestServer(t)
	resp, env := s.call(t, nil, "login", `{"usernameOrEmail":"ghost","password":"x"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, sessionCookie(resp))

	var payload dto.UserResponse
	require.NoError(t, json.Unmarshal(env.Data["login"], &payload))
	assert.Nil(t, payload.User)
	assert.Equal(t, []domain.FieldError{{Field: "usernameOrEmail", Message: service.MsgUserMissing}}, payload.Errors)
}

func TestRequestErrors(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.call(t, nil, "nope", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "UNKNOWN_OPERATION", env.Errors[0].Code)

	resp, env = s.call(t, nil, "", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", env.Errors[0].Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "in-memory")

	s.call(t, nil, "me", `{}`)
	resp, err = s.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), `ereignis_operations_total{operation="me",outcome="ok"} 1`)
}
