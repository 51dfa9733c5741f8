package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"scholarshipserver/internal/auth"
	"scholarshipserver/internal/domain"
	"scholarshipserver/internal/service"
)

type stubUsersStore struct {
	t *testing.T

	createUserFunc              func(context.Context, string, string, string, domain.Role) (domain.User, error)
	getUserByIDFunc             func(context.Context, string) (domain.User, error)
	getUserByEmailFunc          func(context.Context, string) (domain.UserWithPassword, error)
	getUserByResetTokenHashFunc func(context.Context, string) (domain.UserWithPassword, error)
	setPasswordFunc             func(context.Context, string, string) error
}

func (s *stubUsersStore) CreateUser(ctx context.Context, name, email, passwordHash string, role domain.Role) (domain.User, error) {
	if s.createUserFunc != nil {
		return s.createUserFunc(ctx, name, email, passwordHash, role)
	}
	s.t.Fatalf("CreateUser called unexpectedly")
	return domain.User{}, context.Canceled
}

func (s *stubUsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	if s.getUserByIDFunc != nil {
		return s.getUserByIDFunc(ctx, id)
	}
	s.t.Fatalf("GetUserByID called unexpectedly")
	return domain.User{}, context.Canceled
}

func (s *stubUsersStore) GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error) {
	if s.getUserByEmailFunc != nil {
		return s.getUserByEmailFunc(ctx, email)
	}
	s.t.Fatalf("GetUserByEmail called unexpectedly")
	return domain.UserWithPassword{}, context.Canceled
}

func (s *stubUsersStore) GetUserByResetTokenHash(ctx context.Context, tokenHash string) (domain.UserWithPassword, error) {
	if s.getUserByResetTokenHashFunc != nil {
		return s.getUserByResetTokenHashFunc(ctx, tokenHash)
	}
	s.t.Fatalf("GetUserByResetTokenHash called unexpectedly")
	return domain.UserWithPassword{}, context.Canceled
}

func (s *stubUsersStore) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	s.t.Fatalf("SetResetToken called unexpectedly")
	return context.Canceled
}

func (s *stubUsersStore) ClearResetToken(ctx context.Context, userID string) error {
	s.t.Fatalf("ClearResetToken called unexpectedly")
	return context.Canceled
}

func (s *stubUsersStore) SetPassword(ctx context.Context, userID, passwordHash string) error {
	if s.setPasswordFunc != nil {
		return s.setPasswordFunc(ctx, userID, passwordHash)
	}
	s.t.Fatalf("SetPassword called unexpectedly")
	return context.Canceled
}

func testAPI(t *testing.T, users *stubUsersStore) *api {
	t.Helper()
	tokens := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	limiter := newKeyedLimiter(10.0/300.0, 10)
	return &api{
		authSvc: &service.AuthService{
			Users:  users,
			Tokens: tokens,
		},
		tokens:      tokens,
		credLimiter: limiter,
	}
}

func TestAuthRegisterIgnoresClientRole(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		createUserFunc: func(_ context.Context, name, email, passwordHash string, role domain.Role) (domain.User, error) {
			if role != domain.RoleUser {
				t.Fatalf("expected USER role, got %s", role)
			}
			return domain.User{ID: "user-1", UserID: 1, Name: name, Email: email, Role: role}, nil
		},
	}
	api := testAPI(t, users)

	body := `{"name":"Alice","email":"alice@example.com","password":"pw1234","role":"ADMIN"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rr := httptest.NewRecorder()
	api.handleAuthRegister(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d body=%s", rr.Code, rr.Body.String())
	}

	var resp struct {
		ID     string `json:"id"`
		UserID int64  `json:"userId"`
		Role   string `json:"role"`
		Token  string `json:"token"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Role != "USER" {
		t.Fatalf("unexpected role: %s", resp.Role)
	}
	if resp.ID != "user-1" || resp.UserID != 1 || resp.Token == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthRegisterValidation(t *testing.T) {
	api := testAPI(t, &stubUsersStore{t: t})

	cases := []struct {
		name string
		body string
	}{
		{"short password", `{"name":"Alice","email":"alice@example.com","password":"abc"}`},
		{"bad email", `{"name":"Alice","email":"not-an-email","password":"pw1234"}`},
		{"missing name", `{"email":"alice@example.com","password":"pw1234"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			api.handleAuthRegister(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("unexpected status: %d", rr.Code)
			}
			var resp errorEnvelope
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Error.Code != "validation_error" {
				t.Fatalf("unexpected error code: %s", resp.Error.Code)
			}
		})
	}
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		getUserByEmailFunc: func(context.Context, string) (domain.UserWithPassword, error) {
			return domain.UserWithPassword{}, domain.ErrNotFound
		},
	}
	api := testAPI(t, users)

	body := `{"email":"nobody@example.com","password":"pw1234"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rr := httptest.NewRecorder()
	api.handleAuthLogin(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	var resp errorEnvelope
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error.Code != "invalid_credentials" {
		t.Fatalf("unexpected error code: %s", resp.Error.Code)
	}
}

func TestAuthLoginRateLimited(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		getUserByEmailFunc: func(context.Context, string) (domain.UserWithPassword, error) {
			return domain.UserWithPassword{}, domain.ErrNotFound
		},
	}
	api := testAPI(t, users)

	body := `{"email":"nobody@example.com","password":"pw1234"}`
	last := 0
	for i := 0; i < 12; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		req.RemoteAddr = "198.51.100.7:4242"
		rr := httptest.NewRecorder()
		api.handleAuthLogin(rr, req)
		last = rr.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected rate limiting to kick in, last status %d", last)
	}
}

func TestAuthResetPasswordHandler(t *testing.T) {
	expiry := time.Now().Add(5 * time.Minute)
	var storedHash string
	users := &stubUsersStore{
		t: t,
		getUserByResetTokenHashFunc: func(_ context.Context, tokenHash string) (domain.UserWithPassword, error) {
			storedHash = tokenHash
			return domain.UserWithPassword{
				User:                domain.User{ID: "user-1"},
				ResetTokenHash:      tokenHash,
				ResetTokenExpiresAt: &expiry,
			}, nil
		},
		setPasswordFunc: func(context.Context, string, string) error { return nil },
	}
	api := testAPI(t, users)

	req := httptest.NewRequest(http.MethodPut, "/auth/reset-password/sometoken", strings.NewReader(`{"password":"new-password"}`))
	req.SetPathValue("resetToken", "sometoken")
	rr := httptest.NewRecorder()
	api.handleAuthReset(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d body=%s", rr.Code, rr.Body.String())
	}
	if storedHash == "sometoken" {
		t.Fatalf("raw token must be hashed before lookup")
	}

	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Token == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthResetPasswordExpired(t *testing.T) {
	expiry := time.Now().Add(-time.Minute)
	users := &stubUsersStore{
		t: t,
		getUserByResetTokenHashFunc: func(_ context.Context, tokenHash string) (domain.UserWithPassword, error) {
			return domain.UserWithPassword{
				User:                domain.User{ID: "user-1"},
				ResetTokenHash:      tokenHash,
				ResetTokenExpiresAt: &expiry,
			}, nil
		},
	}
	api := testAPI(t, users)

	req := httptest.NewRequest(http.MethodPut, "/auth/reset-password/sometoken", strings.NewReader(`{"password":"new-password"}`))
	req.SetPathValue("resetToken", "sometoken")
	rr := httptest.NewRecorder()
	api.handleAuthReset(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	var resp errorEnvelope
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error.Code != "reset_token_expired" {
		t.Fatalf("unexpected error code: %s", resp.Error.Code)
	}
}

func TestRequireAuthRejectsBadTokens(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		getUserByIDFunc: func(context.Context, string) (domain.User, error) {
			return domain.User{}, domain.ErrNotFound
		},
	}
	api := testAPI(t, users)

	next := api.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	})

	cases := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			next(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("unexpected status: %d", rr.Code)
			}
		})
	}
}

func TestRequireAuthDeletedUserIsUnauthorized(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		getUserByIDFunc: func(context.Context, string) (domain.User, error) {
			return domain.User{}, domain.ErrNotFound
		},
	}
	api := testAPI(t, users)

	token, err := api.tokens.Issue("gone-user")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	next := api.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	next(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestRequireAdminForbidsUsers(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		getUserByIDFunc: func(_ context.Context, id string) (domain.User, error) {
			return domain.User{ID: id, Role: domain.RoleUser}, nil
		},
	}
	api := testAPI(t, users)

	token, err := api.tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	next := api.requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/applications", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	next(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestWriteDomainErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrEmailTaken, http.StatusBadRequest, "email_taken"},
		{domain.ErrInvalidCredentials, http.StatusBadRequest, "invalid_credentials"},
		{domain.ErrResetTokenInvalid, http.StatusBadRequest, "reset_token_invalid"},
		{domain.ErrUserHasApplications, http.StatusBadRequest, "user_has_applications"},
		{domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{domain.ErrNotFound, http.StatusNotFound, "not_found"},
		{domain.ErrEmailSend, http.StatusInternalServerError, "internal_error"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		WriteDomainError(rr, tc.err)
		if rr.Code != tc.status {
			t.Fatalf("%v: unexpected status %d", tc.err, rr.Code)
		}
		var resp errorEnvelope
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Error.Code != tc.code {
			t.Fatalf("%v: unexpected code %s", tc.err, resp.Error.Code)
		}
	}
}
