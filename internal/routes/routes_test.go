package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/rms-templui/internal/app/backend"
	"github.com/FACorreiaa/rms-templui/internal/app/client"
	"github.com/FACorreiaa/rms-templui/internal/pkg/config"
	"github.com/FACorreiaa/rms-templui/internal/pkg/storage"
)

type account struct {
	password string
	role     string
}

// fakeBackend is a minimal stand-in for the REST backend.
type fakeBackend struct {
	mu        sync.Mutex
	accounts  map[string]*account
	byID      map[string]string
	calls     []string
	phoneCode int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		accounts: map[string]*account{
			"otieno": {password: "landlord-pass", role: "landlord"},
			"amina":  {password: "tenant-pass", role: "tenant"},
		},
		byID:      map[string]string{},
		phoneCode: http.StatusOK,
	}
}

func (f *fakeBackend) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+strings.TrimPrefix(r.URL.Path, "/api"))

	reply := func(status int, body any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			_ = json.NewEncoder(w).Encode(body)
		}
	}
	var in map[string]any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&in)
	}
	str := func(k string) string { s, _ := in[k].(string); return s }

	switch path := strings.TrimPrefix(r.URL.Path, "/api/"); {
	case path == "auth/token/":
		if str("username") == "revoked" {
			reply(http.StatusUnauthorized, map[string]string{"detail": "Invalid token."})
			return
		}
		acc, ok := f.accounts[str("username")]
		if !ok || acc.password != str("password") {
			reply(http.StatusBadRequest, map[string]any{"non_field_errors": []string{"Unable to log in with provided credentials."}})
			return
		}
		reply(http.StatusOK, map[string]any{"token": "tok-" + str("username"), "user": map[string]any{"username": str("username"), "role": acc.role}})
	case path == "auth/logout/":
		reply(http.StatusNoContent, nil)
	case path == "landlords/check-phone/":
		reply(f.phoneCode, map[string]bool{"exists": false})
	case path == "users/":
		if _, taken := f.accounts[str("username")]; taken {
			reply(http.StatusBadRequest, map[string]any{"username": []string{"A user with that username already exists."}})
			return
		}
		f.accounts[str("username")] = &account{password: str("password")}
		f.byID["7"] = str("username")
		reply(http.StatusCreated, map[string]any{"id": 7})
	case path == "users/7/assign_role/":
		f.accounts[f.byID["7"]].role = str("role")
		reply(http.StatusOK, map[string]string{"status": "ok"})
	case path == "landlords/", path == "tenants/":
		reply(http.StatusCreated, map[string]any{"id": 1})
	default:
		reply(http.StatusNotFound, map[string]string{"detail": "Not found."})
	}
}

func newApp(t *testing.T, fake *fakeBackend, roleSwitch bool) *gin.Engine {
	t.Helper()
	return newAppIn(t, fake, roleSwitch, config.EnvDevelopment)
}

func newAppIn(t *testing.T, fake *fakeBackend, roleSwitch bool, env string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	api, err := backend.New(srv.URL+"/api/", 2*time.Second, zap.NewNop())
	require.NoError(t, err)
	mem, err := storage.NewMemory("", zap.NewNop())
	require.NoError(t, err)

	cfg := &config.Config{
		AppEnv:          env,
		DebugRoleSwitch: roleSwitch,
		Client:          config.ClientConfig{CookieName: "rms_client", RememberMeTTL: time.Hour},
	}
	reg := client.NewRegistry(mem, api, client.Options{IdleTTL: time.Minute, RoleSwitch: roleSwitch}, zap.NewNop())

	r := gin.New()
	store := cookie.NewStore([]byte("test-session-secret-0123456789ab"))
	store.Options(client.CookieOptions(!cfg.IsDevelopment()))
	r.Use(sessions.Sessions(cfg.Client.CookieName, store))
	Setup(r, reg, cfg, zap.NewNop())
	return r
}

// browser keeps cookies between requests like a real user agent.
type browser struct {
	t       *testing.T
	app     *gin.Engine
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, app *gin.Engine) *browser {
	return &browser{t: t, app: app, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(method, path string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	b.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	b.app.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return w
}

func (b *browser) get(path string) *httptest.ResponseRecorder { return b.do(http.MethodGet, path, nil, false) }

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return b.do(http.MethodPost, path, form, false)
}

func (b *browser) login(username, password string) *httptest.ResponseRecorder {
	return b.post("/login", url.Values{"username": {username}, "password": {password}})
}

func document(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	return doc
}

func TestProtectedRouteRedirectsToLogin(t *testing.T) {
	b := newBrowser(t, newApp(t, newFakeBackend(), false))

	w := b.get("/houses")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?next=%2Fhouses", w.Header().Get("Location"))

	w = b.do(http.MethodGet, "/profile", nil, true)
	assert.Equal(t, "/login?next=%2Fprofile", w.Header().Get("HX-Redirect"))
}

func TestLoginRoutesByRole(t *testing.T) {
	tests := []struct {
		name        string
		username    string
		password    string
		home        string
		allowed     string
		forbidden   string
		forbiddenTo string
	}{
		{"landlord", "otieno", "landlord-pass", "/landlord/dashboard", "/houses", "/my-house", "/landlord/dashboard"},
		{"tenant", "amina", "tenant-pass", "/tenant/dashboard", "/my-house", "/invoices", "/tenant/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBrowser(t, newApp(t, newFakeBackend(), false))

			w := b.login(tt.username, tt.password)
			require.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, tt.home, w.Header().Get("Location"))

			assert.Equal(t, http.StatusOK, b.get(tt.allowed).Code)
			w = b.get(tt.forbidden)
			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, tt.forbiddenTo, w.Header().Get("Location"))

			w = b.get("/dashboard")
			assert.Equal(t, tt.home, w.Header().Get("Location"))

			w = b.get("/login")
			assert.Equal(t, tt.home, w.Header().Get("Location"), "signed-in users skip the login form")
		})
	}
}

func TestLoginHonoursLocalNext(t *testing.T) {
	b := newBrowser(t, newApp(t, newFakeBackend(), false))

	w := b.post("/login", url.Values{"username": {"otieno"}, "password": {"landlord-pass"}, "next": {"/invoices"}})
	assert.Equal(t, "/invoices", w.Header().Get("Location"))

	b = newBrowser(t, newApp(t, newFakeBackend(), false))
	w = b.post("/login", url.Values{"username": {"otieno"}, "password": {"landlord-pass"}, "next": {"//evil.example"}})
	assert.Equal(t, "/landlord/dashboard", w.Header().Get("Location"))
}

func TestLoginFailure(t *testing.T) {
	b := newBrowser(t, newApp(t, newFakeBackend(), false))

	w := b.login("otieno", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	doc := document(t, w)
	assert.Contains(t, doc.Find("[data-banner='error']").Text(), "Unable to log in")
	assert.Equal(t, "otieno", doc.Find("input[name='username']").AttrOr("value", ""))

	w = b.do(http.MethodPost, "/login", url.Values{"username": {""}, "password": {""}}, true)
	assert.Equal(t, http.StatusOK, w.Code, "htmx fragments are always swappable")
	doc = document(t, w)
	assert.Equal(t, 1, doc.Find("#login-form").Length())
	assert.Zero(t, doc.Find("html nav").Length())
	assert.NotEmpty(t, doc.Find("[data-field-error='username']").Text())

	assert.Equal(t, http.StatusSeeOther, b.get("/houses").Code)
}

func TestRememberMeExtendsCookie(t *testing.T) {
	b := newBrowser(t, newApp(t, newFakeBackend(), false))
	b.post("/login", url.Values{"username": {"amina"}, "password": {"tenant-pass"}, "remember_me": {"false", "true"}})
	assert.Equal(t, int(time.Hour.Seconds()), b.cookies["rms_client"].MaxAge)
}

func TestFailedLoginSession(t *testing.T) {
	t.Run("rejected credentials keep the current session", func(t *testing.T) {
		b := newBrowser(t, newApp(t, newFakeBackend(), false))
		b.login("amina", "tenant-pass")

		b.login("amina", "wrong")
		assert.Equal(t, http.StatusOK, b.get("/my-house").Code)
	})

	t.Run("a 401 from the token endpoint expires it", func(t *testing.T) {
		b := newBrowser(t, newApp(t, newFakeBackend(), false))
		b.login("amina", "tenant-pass")

		b.login("revoked", "whatever")
		w := b.get("/my-house")
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login?next=%2Fmy-house", w.Header().Get("Location"))
	})
}

func TestLoginKeepsSecureCookieOutsideDevelopment(t *testing.T) {
	b := newBrowser(t, newAppIn(t, newFakeBackend(), false, config.EnvProduction))

	b.get("/login")
	require.True(t, b.cookies["rms_client"].Secure)

	b.post("/login", url.Values{"username": {"amina"}, "password": {"tenant-pass"}, "remember_me": {"false", "true"}})
	c := b.cookies["rms_client"]
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, int(time.Hour.Seconds()), c.MaxAge)

	b.post("/logout", nil)
	assert.True(t, b.cookies["rms_client"].Secure)
}

func TestLogout(t *testing.T) {
	fake := newFakeBackend()
	b := newBrowser(t, newApp(t, fake, false))
	b.login("amina", "tenant-pass")

	w := b.post("/logout", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Contains(t, fake.called(), "POST /auth/logout/")

	assert.Equal(t, "/login?next=%2Fmy-house", b.get("/my-house").Header().Get("Location"))

	w = b.post("/logout", nil)
	assert.Equal(t, "/", w.Header().Get("Location"), "logout while signed out still lands on the public page")
}

func TestBrowsersAreIsolated(t *testing.T) {
	app := newApp(t, newFakeBackend(), false)
	landlord := newBrowser(t, app)
	visitor := newBrowser(t, app)

	landlord.login("otieno", "landlord-pass")
	assert.Equal(t, http.StatusOK, landlord.get("/houses").Code)
	assert.Equal(t, http.StatusSeeOther, visitor.get("/houses").Code)
}

func fillAccountStep(accountType, username string) url.Values {
	return url.Values{
		"username":        {username},
		"email":           {username + "@example.com"},
		"password":        {"correct-horse"},
		"confirmPassword": {"correct-horse"},
		"accountType":     {accountType},
	}
}

func TestRegisterTenantEndToEnd(t *testing.T) {
	fake := newFakeBackend()
	b := newBrowser(t, newApp(t, fake, false))

	require.Equal(t, http.StatusOK, b.get("/register").Code)

	w := b.post("/register/next", url.Values{"username": {"wanjiru"}})
	doc := document(t, w)
	assert.Equal(t, "0", doc.Find("#wizard").AttrOr("data-step", ""))
	assert.NotEmpty(t, doc.Find("[data-field-error='email']").Text())

	doc = document(t, b.post("/register/next", fillAccountStep("tenant", "wanjiru")))
	require.Equal(t, "1", doc.Find("#wizard").AttrOr("data-step", ""))

	doc = document(t, b.post("/register/next", url.Values{
		"phoneNumber":           {"0712345678"},
		"physicalAddress":       {"Nairobi"},
		"idNumber":              {"12345678"},
		"occupation":            {"Nurse"},
		"emergencyContactName":  {"Baraka"},
		"emergencyContactPhone": {"0722000000"},
	}))
	require.Equal(t, "2", doc.Find("#wizard").AttrOr("data-step", ""))
	assert.Contains(t, doc.Find("#review").Text(), "Nurse")

	doc = document(t, b.post("/register/submit", url.Values{"agreedToTerms": {"false"}}))
	assert.NotEmpty(t, doc.Find("[data-field-error='agreedToTerms']").Text())

	w = b.post("/register/submit", url.Values{"agreedToTerms": {"false", "true"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/tenant/dashboard", w.Header().Get("Location"))

	doc = document(t, b.get("/tenant/dashboard"))
	assert.Contains(t, doc.Find("[data-banner='success']").Text(), "now logged in")

	assert.Equal(t, []string{
		"POST /users/",
		"POST /users/7/assign_role/",
		"POST /tenants/",
		"POST /auth/token/",
	}, fake.called())

	doc = document(t, b.get("/register"))
	assert.Equal(t, "0", doc.Find("#wizard").AttrOr("data-step", ""))
	assert.Empty(t, doc.Find("input[name='username']").AttrOr("value", ""), "the form is cleared after success")
}

func TestRegisterFieldWriteThroughSurvivesNavigation(t *testing.T) {
	b := newBrowser(t, newApp(t, newFakeBackend(), false))

	w := b.do(http.MethodPost, "/register/field", url.Values{"field": {"username"}, "username": {"kamau"}}, true)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = b.do(http.MethodPost, "/register/field", url.Values{"field": {"isAdmin"}, "isAdmin": {"true"}}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	b.get("/")
	doc := document(t, b.get("/register"))
	assert.Equal(t, "kamau", doc.Find("input[name='username']").AttrOr("value", ""))
}

func TestRegisterExitFlow(t *testing.T) {
	b := newBrowser(t, newApp(t, newFakeBackend(), false))
	b.get("/register")

	w := b.do(http.MethodPost, "/register/exit", url.Values{}, true)
	assert.Equal(t, "/", w.Header().Get("HX-Redirect"), "a clean form exits at once")

	b.get("/register")
	b.do(http.MethodPost, "/register/field", url.Values{"field": {"email"}, "email": {"a@b.co"}}, true)

	w = b.do(http.MethodPost, "/register/exit", url.Values{}, true)
	doc := document(t, w)
	require.Equal(t, 1, doc.Find("#exit-dialog").Length())

	doc = document(t, b.do(http.MethodPost, "/register/exit/cancel", url.Values{}, true))
	assert.Zero(t, doc.Find("#exit-dialog").Length())
	assert.Equal(t, "a@b.co", doc.Find("input[name='email']").AttrOr("value", ""))

	b.do(http.MethodPost, "/register/exit", url.Values{}, true)
	w = b.do(http.MethodPost, "/register/exit/confirm", url.Values{}, true)
	assert.Equal(t, "/", w.Header().Get("HX-Redirect"))

	doc = document(t, b.get("/register"))
	assert.Empty(t, doc.Find("input[name='email']").AttrOr("value", ""))
}

func TestUnauthorizedBackendResponseSignsOut(t *testing.T) {
	fake := newFakeBackend()
	fake.phoneCode = http.StatusUnauthorized
	b := newBrowser(t, newApp(t, fake, false))
	b.login("otieno", "landlord-pass")

	b.get("/register")
	b.post("/register/next", fillAccountStep("landlord", "second"))
	w := b.post("/register/next", url.Values{
		"phoneNumber":     {"0712345678"},
		"physicalAddress": {"Kisumu"},
		"idNumber":        {"99"},
	})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, "/login?next=%2Fhouses", b.get("/houses").Header().Get("Location"))
}

func TestRoleSwitchRoute(t *testing.T) {
	b := newBrowser(t, newApp(t, newFakeBackend(), false))
	b.login("amina", "tenant-pass")
	assert.Equal(t, http.StatusNotFound, b.post("/debug/role", url.Values{"role": {"admin"}}).Code)

	b = newBrowser(t, newApp(t, newFakeBackend(), true))
	b.login("amina", "tenant-pass")
	assert.Equal(t, 1, document(t, b.get("/profile")).Find("#role-switch").Length())

	w := b.post("/debug/role", url.Values{"role": {"admin"}})
	assert.Equal(t, "/admin/dashboard", w.Header().Get("Location"))
	assert.Equal(t, http.StatusOK, b.get("/admin/dashboard").Code)

	w = b.post("/debug/role", url.Values{"role": {"owner"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthzAndNotFound(t *testing.T) {
	b := newBrowser(t, newApp(t, newFakeBackend(), false))

	w := b.get("/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = b.get("/nowhere")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Page not found")
}
