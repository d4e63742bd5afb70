package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/rms-templui/internal/app/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/api", 2*time.Second, zap.NewNop())
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("localhost:8000", time.Second, nil)
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		status   int
		body     any
		wantTok  string
		wantRole string
		wantErr  error
	}{
		{
			name:     "nested user role",
			status:   http.StatusOK,
			body:     map[string]any{"token": "abc", "user": map[string]any{"username": "amina", "role": "tenant"}},
			wantTok:  "abc",
			wantRole: "tenant",
		},
		{
			name:     "top level role and access token",
			status:   http.StatusOK,
			body:     map[string]any{"access": "jwt-ish", "role": "landlord"},
			wantTok:  "jwt-ish",
			wantRole: "landlord",
		},
		{
			name:    "bad credentials",
			status:  http.StatusBadRequest,
			body:    map[string]any{"non_field_errors": []string{"Unable to log in with provided credentials."}},
			wantErr: models.ErrUnauthenticated,
		},
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    map[string]any{"detail": "Invalid credentials"},
			wantErr: models.ErrUnauthenticated,
		},
		{
			name:   "missing token",
			status: http.StatusOK,
			body:   map[string]any{"role": "tenant"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/auth/token/", r.URL.Path)
				assert.Equal(t, http.MethodPost, r.Method)
				var body map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "amina", body["username"])
				writeJSON(w, tt.status, tt.body)
			})

			resp, err := c.Login(ctx, "amina", "secret")
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantTok == "":
				var apiErr *models.APIError
				assert.ErrorAs(t, err, &apiErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantTok, resp.Token)
				assert.Equal(t, tt.wantRole, resp.Role)
			}
		})
	}
}

func TestLoginSurfacesBackendMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"non_field_errors": []string{"Unable to log in with provided credentials."}})
	})
	_, err := c.Login(context.Background(), "a", "b")
	require.Error(t, err)
	assert.Equal(t, "Unable to log in with provided credentials.", err.Error())
}

func TestSessionHeaderAndUnauthorizedHook(t *testing.T) {
	var hooked atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token tok-1", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}).WithSession(
		func(context.Context) string { return "tok-1" },
		func(_ context.Context, endpoint string) {
			assert.Equal(t, "auth/logout/", endpoint)
			hooked.Add(1)
		},
	)

	err := c.Logout(context.Background())
	assert.ErrorIs(t, err, models.ErrSessionExpired)
	assert.Equal(t, int32(1), hooked.Load())
}

func TestNoAuthorizationHeaderWithoutToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]bool{"exists": false})
	}).WithSession(func(context.Context) string { return "" }, nil)

	exists, err := c.LandlordPhoneExists(context.Background(), "0712345678")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, time.Second, zap.NewNop())
	require.NoError(t, err)
	_, err = c.LandlordPhoneExists(context.Background(), "1")
	assert.ErrorIs(t, err, models.ErrNetwork)
}

func TestRegistrationEndpoints(t *testing.T) {
	ctx := context.Background()
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		switch r.URL.Path {
		case "/api/landlords/check-phone/":
			assert.Equal(t, "+254712345678", r.URL.Query().Get("phone_number"))
			writeJSON(w, http.StatusOK, map[string]bool{"exists": true})
		case "/api/users/":
			assert.JSONEq(t, `{"username":"otieno","email":"o@example.com","password":"pw123456","first_name":"","last_name":""}`, string(raw))
			writeJSON(w, http.StatusCreated, map[string]any{"id": 42})
		case "/api/users/42/assign_role/":
			assert.JSONEq(t, `{"role":"landlord"}`, string(raw))
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		case "/api/landlords/":
			assert.JSONEq(t, `{"user":42,"phone_number":"0712","physical_address":"Kisumu","id_number":"99"}`, string(raw))
			w.WriteHeader(http.StatusCreated)
		case "/api/tenants/":
			var body map[string]any
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.Equal(t, "99", body["id_number_or_passport"])
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	exists, err := c.LandlordPhoneExists(ctx, "+254712345678")
	require.NoError(t, err)
	assert.True(t, exists)

	id, err := c.CreateUser(ctx, NewUser{Username: "otieno", Email: "o@example.com", Password: "pw123456"})
	require.NoError(t, err)
	assert.Equal(t, UserID("42"), id)

	require.NoError(t, c.AssignRole(ctx, id, models.RoleLandlord))
	require.NoError(t, c.CreateLandlordProfile(ctx, LandlordProfile{User: id, PhoneNumber: "0712", PhysicalAddress: "Kisumu", IDNumber: "99"}))
	require.NoError(t, c.CreateTenantProfile(ctx, TenantProfile{User: id, IDNumberOrPassport: "99"}))

	assert.Equal(t, []string{
		"GET /api/landlords/check-phone/",
		"POST /api/users/",
		"POST /api/users/42/assign_role/",
		"POST /api/landlords/",
		"POST /api/tenants/",
	}, seen)
}

func TestUserIDMarshal(t *testing.T) {
	b, err := json.Marshal(UserID("42"))
	require.NoError(t, err)
	assert.Equal(t, "42", string(b))

	b, err = json.Marshal(UserID("c0ffee-1"))
	require.NoError(t, err)
	assert.Equal(t, `"c0ffee-1"`, string(b))
}

func TestErrorClassification(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		contentType string
		status      int
		body        string
		wantField   string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "django integrity error page",
			contentType: "text/html; charset=utf-8",
			status:      http.StatusInternalServerError,
			body: `<html><head><title>IntegrityError at /api/landlords/</title></head>
<body><pre class="exception_value">UNIQUE constraint failed: accounts_landlord.phone_number</pre></body></html>`,
			wantField: "phoneNumber",
		},
		{
			name:        "error key",
			contentType: "application/json",
			status:      http.StatusBadRequest,
			body:        `{"error":"This phone number is already registered to another landlord"}`,
			wantField:   "phoneNumber",
		},
		{
			name:        "drf field list",
			contentType: "application/json",
			status:      http.StatusBadRequest,
			body:        `{"username":["A user with that username already exists."]}`,
			wantField:   "username",
		},
		{
			name:        "conflict status",
			contentType: "application/json",
			status:      http.StatusConflict,
			body:        `{"detail":"email taken"}`,
			wantField:   "email",
		},
		{
			name:        "plain validation error",
			contentType: "application/json",
			status:      http.StatusBadRequest,
			body:        `{"phone_number":["Enter a valid phone number."]}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "phone_number: Enter a valid phone number.",
		},
		{
			name:        "html page without exception value",
			contentType: "text/html",
			status:      http.StatusBadGateway,
			body:        `<html><head><title>Bad Gateway</title></head><body></body></html>`,
			wantStatus:  http.StatusBadGateway,
			wantMessage: "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			err := c.CreateLandlordProfile(ctx, LandlordProfile{User: "1"})
			if tt.wantField != "" {
				var conflict *models.UniquenessConflictError
				require.ErrorAs(t, err, &conflict)
				assert.Equal(t, tt.wantField, conflict.Field)
				assert.ErrorIs(t, err, models.ErrConflict)
				return
			}
			var apiErr *models.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.Status)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
		})
	}
}

func TestConflictClassifier(t *testing.T) {
	c := NewConflictClassifier()

	field, ok := c.Classify(http.StatusBadRequest, "UNIQUE constraint failed: accounts_tenant.id_number_or_passport")
	assert.True(t, ok)
	assert.Equal(t, FieldIDNumber, field)

	_, ok = c.Classify(http.StatusBadRequest, "Email is not valid")
	assert.False(t, ok, "field mention without a conflict marker")

	_, ok = c.Classify(http.StatusConflict, "something collided")
	assert.False(t, ok, "conflict without a known field")
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	msg := strings.Repeat("a", maxMessageLen-1) + "é" + "tail"

	got := truncate(msg)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", maxMessageLen-1)+"…", got)
	assert.Equal(t, "short", truncate("short"))
}
