package account

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/globalbuilder/tourismserver/internal/auth"
	"github.com/globalbuilder/tourismserver/internal/policy"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
	"golang.org/x/crypto/bcrypt"
)

func asCaller(caller policy.Caller) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth.SetCaller(c, caller)
		return c.Next()
	}
}

func newApp(mock pgxmock.PgxPoolIface, caller policy.Caller) *fiber.App {
	app := fiber.New()
	tokens := auth.NewService("test-secret", mock, nil)
	RegisterRoutes(app.Group("/accounts"), NewService(mock), tokens, asCaller(caller))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp
}

func TestRegisterHandler(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "alice", "", pgxmock.AnyArg(), "", "", true).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(`INSERT INTO profiles`).
		WithArgs(pgxmock.AnyArg(), "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	app := newApp(mock, policy.Caller{})
	resp := postJSON(t, app, "/accounts/register", RegisterRequest{
		Username:  "alice",
		Password1: "password123",
		Password2: "password123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var out struct {
		User   User               `json:"user"`
		Tokens auth.TokenResponse `json:"tokens"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.User.Username != "alice" || out.Tokens.AccessToken == "" {
		t.Fatalf("expected user and tokens in response")
	}
}

func TestRegisterHandlerMismatch(t *testing.T) {
	app := newApp(nil, policy.Caller{})
	resp := postJSON(t, app, "/accounts/register", RegisterRequest{
		Username:  "alice",
		Password1: "one",
		Password2: "two",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestLoginHandlerInvalidPassword(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	hash, _ := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.DefaultCost)
	mock.ExpectQuery(`SELECT id, username, email, password_hash`).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "first_name", "last_name",
			"is_staff", "is_superuser", "is_active", "is_verified", "created_at"}).
			AddRow("user-1", "alice", "", string(hash), "", "", false, false, true, false, time.Now()))

	app := newApp(mock, policy.Caller{})
	resp := postJSON(t, app, "/accounts/login", LoginRequest{Username: "alice", Password: "wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestProfileCreateConflictHandler(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	app := newApp(mock, policy.Caller{ID: "user-1"})
	resp := postJSON(t, app, "/accounts/profile", Profile{PhoneNumber: "123"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate profile, got %d", resp.StatusCode)
	}
}

func TestChangePasswordHandlerBadConfirmation(t *testing.T) {
	app := newApp(nil, policy.Caller{ID: "user-1"})

	body, _ := json.Marshal(ChangePasswordRequest{OldPassword: "old", NewPassword1: "a", NewPassword2: "b"})
	req := httptest.NewRequest(http.MethodPut, "/accounts/change-password", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v %d", err, resp.StatusCode)
	}
}

func TestUserHandlerSelf(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, username, email, password_hash`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "first_name", "last_name",
			"is_staff", "is_superuser", "is_active", "is_verified", "created_at"}).
			AddRow("user-1", "alice", "a@example.com", "hash", "", "", false, false, true, false, time.Now()))

	app := newApp(mock, policy.Caller{ID: "user-1"})
	req := httptest.NewRequest(http.MethodGet, "/accounts/user", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %v %d", err, resp.StatusCode)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestLogoutHandlerMissingToken(t *testing.T) {
	app := newApp(nil, policy.Caller{ID: "user-1"})
	resp := postJSON(t, app, "/accounts/logout", fiber.Map{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
