package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brightnest/daycare/internal/config"
	"github.com/brightnest/daycare/internal/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "admin@daycare.test"
	adminPassword = "admin-pass-123"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"error"`
}

type testApp struct {
	t      *testing.T
	router *gin.Engine
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth.BcryptCost = bcrypt.MinCost
	t.Cleanup(func() { auth.BcryptCost = 12 })

	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "integration-secret")
	t.Setenv("SERVER_STORAGE_PATH", t.TempDir())
	t.Setenv("SERVER_MODE", "test")
	t.Setenv("AUTH_ADMIN_EMAIL", adminEmail)
	t.Setenv("AUTH_ADMIN_PASSWORD", adminPassword)

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	lgr := zerolog.Nop()
	database, repos, err := SetupDatabase(ctx, cfg, lgr)
	if err != nil {
		t.Fatal(err)
	}
	if database != nil {
		t.Fatal("memory driver should not open a database")
	}
	deps, err := BuildDependencies(ctx, cfg, database, repos, lgr)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = deps.Close() })

	return &testApp{t: t, router: SetupRouter(cfg, deps, lgr)}
}

func (a *testApp) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		a.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
	}
	return w.Code, env
}

func (a *testApp) decode(env envelope, v interface{}) {
	a.t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		a.t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func (a *testApp) login(email, password string) string {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/v1/auth/token", "", map[string]string{"email": email, "password": password})
	if code != http.StatusOK {
		a.t.Fatalf("login %s = %d %+v", email, code, env.Error)
	}
	var resp struct {
		Token struct {
			AccessToken string `json:"accessToken"`
		} `json:"token"`
	}
	a.decode(env, &resp)
	return resp.Token.AccessToken
}

func wantError(t *testing.T, code int, env envelope, status int, errCode string) {
	t.Helper()
	if code != status || env.Success || env.Error == nil || env.Error.Code != errCode {
		t.Errorf("got %d %+v, want %d %s", code, env.Error, status, errCode)
	}
}

func TestRegisterLoginCreateChildOverHTTP(t *testing.T) {
	app := newTestApp(t)

	code, env := app.do(http.MethodPost, "/api/v1/users", "", map[string]string{
		"email": "Parent@Example.com", "password": "password123", "firstName": "Pat", "lastName": "Lee",
	})
	if code != http.StatusCreated {
		t.Fatalf("createUser = %d %+v", code, env.Error)
	}
	var user struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	app.decode(env, &user)
	if user.Email != "parent@example.com" || user.Role != "PARENT" {
		t.Errorf("created user = %+v", user)
	}

	token := app.login("parent@example.com", "password123")

	code, env = app.do(http.MethodPost, "/api/v1/children", token, map[string]interface{}{
		"parentId": user.ID, "firstName": "Sam", "lastName": "Lee", "dateOfBirth": "2023-01-15",
	})
	if code != http.StatusCreated {
		t.Fatalf("createChild = %d %+v", code, env.Error)
	}

	code, env = app.do(http.MethodGet, "/api/v1/children", token, nil)
	var children []struct {
		ParentID int64 `json:"parentId"`
	}
	app.decode(env, &children)
	if code != http.StatusOK || len(children) != 1 || children[0].ParentID != user.ID {
		t.Errorf("children = %d %s", code, env.Data)
	}

	code, env = app.do(http.MethodGet, "/api/v1/me", token, nil)
	if code != http.StatusOK || !strings.Contains(string(env.Data), "parent@example.com") {
		t.Errorf("me = %d %s", code, env.Data)
	}
}

func TestErrorEnvelopes(t *testing.T) {
	app := newTestApp(t)
	app.do(http.MethodPost, "/api/v1/users", "", map[string]string{
		"email": "p@example.com", "password": "password123", "firstName": "P",
	})
	parent := app.login("p@example.com", "password123")

	code, env := app.do(http.MethodPost, "/api/v1/children", "", map[string]interface{}{
		"parentId": 1, "firstName": "A", "lastName": "B", "dateOfBirth": "2023-01-01",
	})
	wantError(t, code, env, http.StatusUnauthorized, "AUTH_008")

	code, env = app.do(http.MethodPost, "/api/v1/newsletters", parent, map[string]string{"title": "T", "content": "C"})
	wantError(t, code, env, http.StatusForbidden, "FORBIDDEN")

	code, env = app.do(http.MethodGet, "/api/v1/newsletters/999", "", nil)
	wantError(t, code, env, http.StatusNotFound, "RES_001")

	code, env = app.do(http.MethodPost, "/api/v1/users", "", map[string]string{
		"email": "P@example.com", "password": "password123", "firstName": "Dup",
	})
	wantError(t, code, env, http.StatusConflict, "RES_002")

	code, env = app.do(http.MethodPost, "/api/v1/auth/token", "", map[string]string{"email": "not-an-email"})
	wantError(t, code, env, http.StatusBadRequest, "VAL_001")

	code, env = app.do(http.MethodPost, "/api/v1/auth/token", "", map[string]string{"email": "p@example.com", "password": "nope"})
	wantError(t, code, env, http.StatusUnauthorized, "AUTH_001")

	code, env = app.do(http.MethodGet, "/api/v1/children/abc", parent, nil)
	wantError(t, code, env, http.StatusBadRequest, "VAL_001")
}

func TestPublishFanOutOverHTTP(t *testing.T) {
	app := newTestApp(t)
	app.do(http.MethodPost, "/api/v1/users", "", map[string]string{
		"email": "fam@example.com", "password": "password123", "firstName": "Fam",
	})
	parent := app.login("fam@example.com", "password123")
	admin := app.login(adminEmail, adminPassword)

	if code, env := app.do(http.MethodGet, "/api/v1/subscription", parent, nil); code != http.StatusOK {
		t.Fatalf("mySubscription = %d %+v", code, env.Error)
	}

	code, env := app.do(http.MethodPost, "/api/v1/newsletters", admin, map[string]string{"title": "March news", "content": "Hello"})
	if code != http.StatusCreated {
		t.Fatalf("createNewsletter = %d %+v", code, env.Error)
	}
	var created struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	app.decode(env, &created)
	if created.Status != "DRAFT" {
		t.Errorf("new newsletter status = %s", created.Status)
	}

	code, env = app.do(http.MethodGet, "/api/v1/newsletters", "", nil)
	if code != http.StatusOK || string(env.Data) != "[]" {
		t.Errorf("drafts must not be listed publicly: %s", env.Data)
	}

	path := fmt.Sprintf("/api/v1/newsletters/%d", created.ID)
	for i, want := range []int64{1, 0} {
		code, env = app.do(http.MethodPost, path+"/publish", admin, map[string]bool{"sendToAll": true})
		var published struct {
			RecipientsAdded int64 `json:"recipientsAdded"`
		}
		app.decode(env, &published)
		if code != http.StatusOK || published.RecipientsAdded != want {
			t.Errorf("publish #%d = %d, recipients %d, want %d", i+1, code, published.RecipientsAdded, want)
		}
	}

	if code, env = app.do(http.MethodPost, path+"/opened", parent, nil); code != http.StatusOK {
		t.Errorf("markOpened = %d %+v", code, env.Error)
	}
	code, env = app.do(http.MethodPost, path+"/opened", admin, nil)
	wantError(t, code, env, http.StatusNotFound, "RES_001")

	code, env = app.do(http.MethodGet, "/api/v1/newsletters", "", nil)
	if code != http.StatusOK || !strings.Contains(string(env.Data), "March news") {
		t.Errorf("published newsletter missing from list: %s", env.Data)
	}
}

func TestSeededDataAndProbes(t *testing.T) {
	app := newTestApp(t)

	code, env := app.do(http.MethodGet, "/api/v1/categories", "", nil)
	var categories []json.RawMessage
	app.decode(env, &categories)
	if code != http.StatusOK || len(categories) == 0 {
		t.Errorf("seeded categories = %d %s", code, env.Data)
	}

	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"UP"`) {
		t.Errorf("ready = %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "daycare_http_requests_total") {
		t.Errorf("metrics = %d, missing request counter", w.Code)
	}

	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/newsletters/{id}/publish") {
		t.Errorf("swagger doc = %d", w.Code)
	}
}
