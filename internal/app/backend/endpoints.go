package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/FACorreiaa/rms-templui/internal/app/models"
)

const (
	endpointLogin      = "auth/token/"
	endpointLogout     = "auth/logout/"
	endpointUsers      = "users/"
	endpointCheckPhone = "landlords/check-phone/"
	endpointLandlords  = "landlords/"
	endpointTenants    = "tenants/"
)

// UserID is the backend's primary key for a user. Numeric ids are sent back as JSON numbers.
type UserID string

func (id UserID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseUint(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return []byte(strconv.Quote(string(id))), nil
}

type LoginResponse struct {
	Token string
	Role  string
	User  map[string]any
}

// Login exchanges credentials for a token. Role is taken from user.role, falling back to
// a top level role.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	resp, err := c.send(ctx, http.MethodPost, endpointLogin, nil, map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		c.unauthorized(ctx, endpointLogin)
		fallthrough
	case http.StatusBadRequest:
		msg := decodeErrorMessage(resp)
		if msg == http.StatusText(resp.StatusCode) {
			msg = ""
		}
		return nil, &models.AuthenticationError{Message: msg}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, c.errorFrom(resp)
	}

	var raw struct {
		Token  string         `json:"token"`
		Access string         `json:"access"`
		Role   string         `json:"role"`
		User   map[string]any `json:"user"`
	}
	if err := decodeJSON(resp, &raw); err != nil {
		return nil, err
	}

	out := &LoginResponse{Token: raw.Token, Role: raw.Role, User: raw.User}
	if out.Token == "" {
		out.Token = raw.Access
	}
	if r, ok := raw.User["role"].(string); ok && r != "" {
		out.Role = r
	}
	if out.Token == "" {
		return nil, &models.APIError{Status: resp.StatusCode, Message: "login response carried no token"}
	}
	return out, nil
}

// Logout invalidates the token server side.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, endpointLogout, nil, nil, nil)
}

type NewUser struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (c *Client) CreateUser(ctx context.Context, user NewUser) (UserID, error) {
	var out struct {
		ID any `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, endpointUsers, nil, user, &out); err != nil {
		return "", err
	}
	switch id := out.ID.(type) {
	case float64:
		return UserID(strconv.FormatFloat(id, 'f', -1, 64)), nil
	case string:
		if id != "" {
			return UserID(id), nil
		}
	}
	return "", &models.APIError{Status: http.StatusCreated, Message: "created user has no id"}
}

func (c *Client) AssignRole(ctx context.Context, id UserID, role models.Role) error {
	endpoint := endpointUsers + url.PathEscape(string(id)) + "/assign_role/"
	return c.do(ctx, http.MethodPost, endpoint, nil, map[string]string{"role": role.String()}, nil)
}

// LandlordPhoneExists asks whether a landlord already registered phone.
func (c *Client) LandlordPhoneExists(ctx context.Context, phone string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	q := url.Values{"phone_number": {phone}}
	if err := c.do(ctx, http.MethodGet, endpointCheckPhone, q, nil, &out); err != nil {
		return false, err
	}
	return out.Exists, nil
}

type LandlordProfile struct {
	User            UserID `json:"user"`
	PhoneNumber     string `json:"phone_number"`
	PhysicalAddress string `json:"physical_address"`
	IDNumber        string `json:"id_number"`
}

func (c *Client) CreateLandlordProfile(ctx context.Context, p LandlordProfile) error {
	return c.do(ctx, http.MethodPost, endpointLandlords, nil, p, nil)
}

type TenantProfile struct {
	User                  UserID `json:"user"`
	PhoneNumber           string `json:"phone_number"`
	PhysicalAddress       string `json:"physical_address"`
	IDNumberOrPassport    string `json:"id_number_or_passport"`
	Occupation            string `json:"occupation,omitempty"`
	Workplace             string `json:"workplace,omitempty"`
	EmergencyContactName  string `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string `json:"emergency_contact_phone,omitempty"`
}

func (c *Client) CreateTenantProfile(ctx context.Context, p TenantProfile) error {
	return c.do(ctx, http.MethodPost, endpointTenants, nil, p, nil)
}

func decodeJSON(resp *http.Response, out any) error {
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return &models.APIError{Status: resp.StatusCode, Message: "unreadable response: " + err.Error()}
	}
	return nil
}
