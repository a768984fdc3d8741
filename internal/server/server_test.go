package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"agenda/internal/config"
	"agenda/internal/events"
	"agenda/internal/logger"
	"agenda/internal/model"
	"agenda/internal/ratelimit"
	"agenda/internal/repository/repotest"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields"`
	Data    json.RawMessage   `json:"data"`
}

type testApp struct {
	t        *testing.T
	cfg      *config.Config
	router   *gin.Engine
	users    *repotest.Users
	contacts *repotest.Contacts
	services *Services
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{CORSOrigins: []string{"http://localhost:5173"}},
		Mongo:  config.MongoConfig{Timeout: time.Second, EnsureIndexes: true},
		Auth: config.AuthConfig{
			JWTSecret:  "test-secret",
			Issuer:     "agenda",
			TokenTTL:   time.Hour,
			BcryptCost: bcrypt.MinCost,
		},
		Admin: config.AdminConfig{
			Name:     config.DefaultAdminName,
			Surname:  config.DefaultAdminSurname,
			Email:    config.DefaultAdminEmail,
			Password: config.DefaultAdminPassword,
		},
		RateLimit: config.RateLimitConfig{LoginAttempts: 5, LoginWindow: time.Minute},
	}
}

func newTestApp(t *testing.T, mutate ...func(*config.Config)) *testApp {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}
	log := logger.Discard()
	repos := &Repositories{Users: repotest.NewUsers(), Contacts: repotest.NewContacts()}
	services := InitServices(cfg, log, repos)
	handlers := InitHandlers(cfg, log, services, nil)
	PopulateInitialData(context.Background(), cfg, log, repos, services)

	limiter := ratelimit.NewMemoryLimiter(cfg.RateLimit.LoginAttempts, cfg.RateLimit.LoginWindow)
	t.Cleanup(limiter.Stop)

	return &testApp{
		t:        t,
		cfg:      cfg,
		router:   NewRouter(cfg, log, handlers, services, limiter),
		users:    repos.Users.(*repotest.Users),
		contacts: repos.Contacts.(*repotest.Contacts),
		services: services,
	}
}

func (a *testApp) do(method, path, token string, body any) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (a *testApp) register(name string) string {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "surname": "Test", "email": name + "@example.com", "password": "secret1",
	})
	require.Equal(a.t, http.StatusCreated, status, env.Message)
	var auth model.AuthResponse
	require.NoError(a.t, json.Unmarshal(env.Data, &auth))
	return auth.Token
}

func (a *testApp) loginAdmin() string {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": a.cfg.Admin.Email, "password": a.cfg.Admin.Password,
	})
	require.Equal(a.t, http.StatusOK, status)
	var auth model.AuthResponse
	require.NoError(a.t, json.Unmarshal(env.Data, &auth))
	require.True(a.t, auth.User.IsAdmin)
	return auth.Token
}

func (a *testApp) createContact(token, name, surname string) model.ContactResponse {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/api/contacts", token, map[string]any{
		"name": name, "surname": surname, "email": strings.ToLower(name) + "@example.com",
	})
	require.Equal(a.t, http.StatusCreated, status, env.Message)
	var c model.ContactResponse
	require.NoError(a.t, json.Unmarshal(env.Data, &c))
	return c
}

func (a *testApp) list(token string) []model.ContactResponse {
	a.t.Helper()
	status, env := a.do(http.MethodGet, "/api/contacts", token, nil)
	require.Equal(a.t, http.StatusOK, status)
	var out []model.ContactResponse
	require.NoError(a.t, json.Unmarshal(env.Data, &out))
	return out
}

func ids(list []model.ContactResponse) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.ID)
	}
	return out
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "agenda_http_requests_total")
}

func TestRegisterAndLogin(t *testing.T) {
	app := newTestApp(t)
	app.register("ana")

	status, env := app.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ana", "surname": "Other", "email": "ana@example.com", "password": "secret2",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "DuplicateEmail", env.Code)

	status, env = app.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ana@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, string(env.Data), "password")

	status, wrong := app.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ana@example.com", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, status)
	status, unknown := app.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ghost@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, wrong, unknown)
}

func TestRegister_Validation(t *testing.T) {
	app := newTestApp(t)

	status, env := app.do(http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Ana", "email": "bad"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ValidationError", env.Code)
	assert.Contains(t, env.Fields, "surname")
	assert.Contains(t, env.Fields, "email")
	assert.Contains(t, env.Fields, "password")
}

func TestRegister_CannotBecomeAdmin(t *testing.T) {
	app := newTestApp(t)

	status, env := app.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Eve", "surname": "Test", "email": "eve@example.com", "password": "secret1", "isAdmin": true,
	})
	require.Equal(t, http.StatusCreated, status)
	var auth model.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	assert.False(t, auth.User.IsAdmin)
}

func TestMeAndProfile(t *testing.T) {
	app := newTestApp(t)
	token := app.register("ana")

	status, _ := app.do(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env := app.do(http.MethodPut, "/api/auth/profile", token, map[string]any{
		"company": "ACME", "email": "changed@example.com", "isAdmin": true,
	})
	require.Equal(t, http.StatusOK, status)
	var user model.UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "ACME", user.Company)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.False(t, user.IsAdmin)

	status, env = app.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "ACME", user.Company)
}

func TestInvalidTokenIsRejected(t *testing.T) {
	app := newTestApp(t)

	status, env := app.do(http.MethodGet, "/api/contacts", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthenticated", env.Code)
}

func TestAnonymousAccess(t *testing.T) {
	app := newTestApp(t)
	token := app.register("ana")
	c := app.createContact(token, "Luis", "Pérez")
	status, _ := app.do(http.MethodPatch, "/api/contacts/"+c.ID+"/visibility", token, nil)
	require.Equal(t, http.StatusOK, status)

	assert.Empty(t, app.list(""))

	status, _ = app.do(http.MethodPost, "/api/contacts", "", map[string]string{"name": "X", "surname": "Y", "email": "x@example.com"})
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = app.do(http.MethodDelete, "/api/contacts/"+c.ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, 1, app.contacts.Len())
}

func TestCreateIgnoresClientControlledFields(t *testing.T) {
	app := newTestApp(t)
	token := app.register("ana")
	app.register("bob")

	status, env := app.do(http.MethodPost, "/api/contacts", token, map[string]any{
		"name": "Luis", "surname": "Pérez", "email": "luis@example.com",
		"public": true, "adminVisible": false, "ownerId": "000000000000000000000000", "id": "111111111111111111111111",
	})
	require.Equal(t, http.StatusCreated, status)
	var c model.ContactResponse
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.False(t, c.Public)
	assert.True(t, c.AdminVisible)
	assert.NotEqual(t, "000000000000000000000000", c.OwnerID)
	assert.NotEqual(t, "111111111111111111111111", c.ID)
	require.NotNil(t, c.Owner)
	assert.Equal(t, "ana", c.Owner.Name)
}

func TestMutationErrors(t *testing.T) {
	app := newTestApp(t)
	owner := app.register("ana")
	other := app.register("bob")
	admin := app.loginAdmin()
	private := app.createContact(owner, "Luis", "Pérez")
	public := app.createContact(owner, "Eva", "Ruiz")
	status, _ := app.do(http.MethodPatch, "/api/contacts/"+public.ID+"/visibility", owner, nil)
	require.Equal(t, http.StatusOK, status)
	body := map[string]string{"name": "X", "surname": "Y", "email": "x@example.com"}

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
		code   string
	}{
		{"other updates private", http.MethodPut, "/api/contacts/" + private.ID, other, http.StatusNotFound, "NotFound"},
		{"other updates public", http.MethodPut, "/api/contacts/" + public.ID, other, http.StatusForbidden, "Forbidden"},
		{"other deletes public", http.MethodDelete, "/api/contacts/" + public.ID, other, http.StatusForbidden, "Forbidden"},
		{"missing id", http.MethodPut, "/api/contacts/64b000000000000000000000", other, http.StatusNotFound, "NotFound"},
		{"malformed id", http.MethodDelete, "/api/contacts/nope", owner, http.StatusNotFound, "NotFound"},
		{"admin toggles public", http.MethodPatch, "/api/contacts/" + private.ID + "/visibility", admin, http.StatusForbidden, "Forbidden"},
		{"owner moderates", http.MethodPatch, "/api/contacts/" + public.ID + "/admin-visibility", owner, http.StatusForbidden, "Forbidden"},
		{"admin moderates private", http.MethodPatch, "/api/contacts/" + private.ID + "/admin-visibility", admin, http.StatusConflict, "InvalidState"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload any
			if tt.method == http.MethodPut {
				payload = body
			}
			status, env := app.do(tt.method, tt.path, tt.token, payload)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, env.Code)
		})
	}

	// non-owner probing a private id and a missing id sees the same answer
	_, a := app.do(http.MethodDelete, "/api/contacts/"+private.ID, other, nil)
	_, b := app.do(http.MethodDelete, "/api/contacts/64b000000000000000000000", other, nil)
	assert.Equal(t, a, b)
	assert.Equal(t, 2, app.contacts.Len())
}

func TestAdminManagesEveryContact(t *testing.T) {
	app := newTestApp(t)
	owner := app.register("ana")
	admin := app.loginAdmin()
	c := app.createContact(owner, "Luis", "Pérez")

	assert.Equal(t, []string{c.ID}, ids(app.list(admin)))

	status, env := app.do(http.MethodPut, "/api/contacts/"+c.ID, admin, map[string]string{
		"name": "Luis", "surname": "Gómez", "email": "luis@example.com",
	})
	require.Equal(t, http.StatusOK, status)
	var updated model.ContactResponse
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Gómez", updated.Surname)
	assert.Equal(t, c.OwnerID, updated.OwnerID)

	status, _ = app.do(http.MethodDelete, "/api/contacts/"+c.ID, admin, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, app.list(owner))
}

func TestListOrder(t *testing.T) {
	app := newTestApp(t)
	token := app.register("ana")
	z := app.createContact(token, "Zoe", "Pérez")
	a := app.createContact(token, "Ana", "Pérez")
	l := app.createContact(token, "Luis", "Alonso")

	assert.Equal(t, []string{l.ID, a.ID, z.ID}, ids(app.list(token)))
}

// User A creates X. B does not see it. A publishes it and B sees it. The
// admin hides it and B loses it while A still sees it.
func TestVisibilityScenario(t *testing.T) {
	app := newTestApp(t)
	a := app.register("a")
	b := app.register("b")
	admin := app.loginAdmin()

	x := app.createContact(a, "Xavier", "Equis")
	assert.Empty(t, app.list(b))

	status, _ := app.do(http.MethodPatch, "/api/contacts/"+x.ID+"/visibility", a, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{x.ID}, ids(app.list(b)))

	status, env := app.do(http.MethodPatch, "/api/contacts/"+x.ID+"/admin-visibility", admin, nil)
	require.Equal(t, http.StatusOK, status)
	var moderated model.ContactResponse
	require.NoError(t, json.Unmarshal(env.Data, &moderated))
	assert.True(t, moderated.Public)
	assert.False(t, moderated.AdminVisible)

	assert.Empty(t, app.list(b))
	assert.Equal(t, []string{x.ID}, ids(app.list(a)))
	assert.Equal(t, []string{x.ID}, ids(app.list(admin)))
}

func TestLoginThrottling(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.RateLimit.LoginAttempts = 2 })
	creds := map[string]string{"email": "ghost@example.com", "password": "whatever"}

	for i := 0; i < 2; i++ {
		status, _ := app.do(http.MethodPost, "/api/auth/login", "", creds)
		assert.Equal(t, http.StatusBadRequest, status)
	}
	status, env := app.do(http.MethodPost, "/api/auth/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "TooManyRequests", env.Code)

	// a different email from the same address is counted separately
	status, _ = app.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "other@example.com", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUnknownRoutes(t *testing.T) {
	app := newTestApp(t)

	status, env := app.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NotFound", env.Code)
}

func TestStaticClient(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>agenda</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))
	app := newTestApp(t, func(c *config.Config) { c.Server.StaticDir = dir })

	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app.js", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "console.log")

	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/contacts/123", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "agenda")

	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContactEventsStream(t *testing.T) {
	app := newTestApp(t)
	owner := app.register("ana")
	reader := app.register("bob")
	srv := httptest.NewServer(app.router)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/contacts/events?token=" + reader
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_ = resp.Body.Close()
	require.Eventually(t, func() bool { return app.services.Hub.Len() == 1 }, time.Second, 10*time.Millisecond)

	// private contacts of others are not announced
	c := app.createContact(owner, "Luis", "Pérez")
	status, _ := app.do(http.MethodPatch, "/api/contacts/"+c.ID+"/visibility", owner, nil)
	require.Equal(t, http.StatusOK, status)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev events.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, events.Visibility, ev.Type)
	assert.Equal(t, c.ID, ev.Contact.ID)
	assert.True(t, ev.Contact.Public)
}

func TestContactEventsRequireAuth(t *testing.T) {
	app := newTestApp(t)
	srv := httptest.NewServer(app.router)
	t.Cleanup(srv.Close)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/contacts/events", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}
