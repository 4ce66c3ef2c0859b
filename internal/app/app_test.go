package app_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskManager/internal/app"
	"taskManager/internal/config"
	"taskManager/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "correct horse"
)

func TestMain(m *testing.M) {
	logger.InitNop()
	m.Run()
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:         "0",
			MaxBodyBytes: 1 << 20,
		},
		Repository: config.RepositoryConfig{Type: config.BackendInMemory},
		Sessions: config.SessionsConfig{
			Type:       config.BackendInMemory,
			TTL:        time.Hour,
			CookieName: "sid",
		},
		Auth: config.AuthConfig{
			BcryptCost: bcrypt.MinCost,
			Bootstrap: config.BootstrapUser{
				Email:    adminEmail,
				Password: adminPassword,
				Name:     "Ada",
				Role:     "admin",
			},
		},
		Database: config.DatabaseConfig{QueryTimeout: 5 * time.Second},
	}
}

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T) *client {
	t.Helper()

	a, err := app.New(testConfig()).Init(context.Background())
	require.NoError(t, err)

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = a.Shutdown(context.Background())
	})

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: srv.URL, http: &http.Client{Jar: jar}}
}

func (c *client) do(method, path, body string) (int, []byte) {
	c.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, data
}

func (c *client) login() {
	c.t.Helper()
	code, _ := c.do(http.MethodPost, "/api/login", `{"email":"`+adminEmail+`","password":"`+adminPassword+`"}`)
	require.Equal(c.t, http.StatusOK, code)
}

func (c *client) tasks() []map[string]any {
	c.t.Helper()
	code, body := c.do(http.MethodGet, "/api/tasks", "")
	require.Equal(c.t, http.StatusOK, code)

	var out []map[string]any
	require.NoError(c.t, json.Unmarshal(body, &out))
	return out
}

func TestHealth(t *testing.T) {
	c := newClient(t)

	code, body := c.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestAnonymousCanReadButNotWrite(t *testing.T) {
	c := newClient(t)

	assert.Empty(t, c.tasks())

	code, body := c.do(http.MethodPost, "/api/tasks", `{"title":"Sneaky"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, string(body))

	code, _ = c.do(http.MethodPut, "/api/tasks/some-id", `{"title":"Sneaky"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = c.do(http.MethodDelete, "/api/tasks/some-id", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	assert.Empty(t, c.tasks(), "rejected writes must not leave records behind")
}

func TestTaskLifecycle(t *testing.T) {
	c := newClient(t)
	c.login()

	code, body := c.do(http.MethodPost, "/api/tasks",
		`{"title":"Write report","priority":"high","dueDate":"2030-01-15","category":"work","tags":"a, b, a"}`)
	require.Equal(t, http.StatusCreated, code, string(body))

	var created map[string]any
	require.NoError(t, json.Unmarshal(body, &created))
	id, _ := created["_id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "Write report", created["title"])
	assert.Equal(t, "pending", created["status"])
	assert.Equal(t, "high", created["priority"])
	assert.Equal(t, []any{"a", "b"}, created["tags"])

	listed := c.tasks()
	require.Len(t, listed, 1)
	assert.Equal(t, id, listed[0]["_id"])

	code, body = c.do(http.MethodPut, "/api/tasks/"+id, `{"title":"Report v2","status":"done"}`)
	require.Equal(t, http.StatusOK, code, string(body))

	var updated map[string]any
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "Report v2", updated["title"])
	assert.Equal(t, "done", updated["status"])
	assert.Equal(t, "medium", updated["priority"], "omitted fields fall back to defaults")
	assert.NotContains(t, updated, "dueDate")
	assert.Empty(t, updated["category"])
	assert.Equal(t, created["createdAt"], updated["createdAt"])

	code, _ = c.do(http.MethodDelete, "/api/tasks/"+id, "")
	assert.Equal(t, http.StatusNoContent, code)
	assert.Empty(t, c.tasks())
}

func TestUnknownTask(t *testing.T) {
	c := newClient(t)
	c.login()

	code, body := c.do(http.MethodDelete, "/api/tasks/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"error":"Task not found"}`, string(body))

	code, _ = c.do(http.MethodPut, "/api/tasks/does-not-exist", `{"title":"Ghost"}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestValidationErrorsListEveryProblem(t *testing.T) {
	c := newClient(t)
	c.login()

	code, body := c.do(http.MethodPost, "/api/tasks", `{"title":"x","status":"later","priority":"urgent"}`)
	require.Equal(t, http.StatusBadRequest, code)

	var resp struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Len(t, resp.Details, 3)
	assert.Empty(t, c.tasks())
}

func TestOutOfRangeDueDateNeverReachesTheStore(t *testing.T) {
	c := newClient(t)
	c.login()

	for _, due := range []string{"0000-01-01T00:00:00+01:00", "9999-12-31T23:00:00-05:00"} {
		code, body := c.do(http.MethodPost, "/api/tasks", `{"title":"Edge","dueDate":"`+due+`"}`)
		assert.Equal(t, http.StatusBadRequest, code, due)
		assert.Contains(t, string(body), "Due date must be a valid date", due)
	}

	code, body := c.do(http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(body))
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	c := newClient(t)

	code1, body1 := c.do(http.MethodPost, "/api/login", `{"email":"nobody@example.com","password":"whatever"}`)
	code2, body2 := c.do(http.MethodPost, "/api/login", `{"email":"`+adminEmail+`","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, code1)
	assert.Equal(t, code1, code2)
	assert.Equal(t, string(body1), string(body2))

	code, _ := c.do(http.MethodPost, "/api/tasks", `{"title":"Still anonymous"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestMeAndLogout(t *testing.T) {
	c := newClient(t)

	code, body := c.do(http.MethodGet, "/api/me", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"user":null}`, string(body))

	c.login()
	_, body = c.do(http.MethodGet, "/api/me", "")
	assert.JSONEq(t, `{"user":{"email":"admin@example.com","role":"admin","name":"Ada"}}`, string(body))

	code, _ = c.do(http.MethodPost, "/api/logout", "")
	assert.Equal(t, http.StatusNoContent, code)

	_, body = c.do(http.MethodGet, "/api/me", "")
	assert.JSONEq(t, `{"user":null}`, string(body))

	code, _ = c.do(http.MethodPost, "/api/tasks", `{"title":"After logout"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestInitRejectsBadBootstrap(t *testing.T) {
	logger.InitNop()
	cfg := testConfig()
	cfg.Auth.Bootstrap.Role = "superuser"

	_, err := app.New(cfg).Init(context.Background())
	assert.Error(t, err)
}
