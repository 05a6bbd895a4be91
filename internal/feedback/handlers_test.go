package feedback

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
)

func asCaller(caller policy.Caller) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth.SetCaller(c, caller)
		return c.Next()
	}
}

func newApp(mock pgxmock.PgxPoolIface, caller policy.Caller) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app.Group("/feedback"), NewService(mock), asCaller(caller))
	return app
}

func TestCreateHandlerForcesOwner(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	expectLock(mock, "attr-1")
	mock.ExpectQuery(`INSERT INTO feedback`).
		WithArgs(pgxmock.AnyArg(), "user-1", "attr-1", 4, "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	expectRecompute(mock, "attr-1", 4.0)
	mock.ExpectCommit()

	app := newApp(mock, policy.Caller{ID: "user-1"})

	body, _ := json.Marshal(Feedback{UserID: "victim-user", AttractionID: "attr-1", Rating: 4})
	req := httptest.NewRequest(http.MethodPost, "/feedback/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %v %d", err, resp.StatusCode)
	}

	var created Feedback
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.UserID != "user-1" {
		t.Fatalf("spoofed owner should be replaced by caller, got %s", created.UserID)
	}
}

func TestCreateHandlerRatingBounds(t *testing.T) {
	app := newApp(nil, policy.Caller{ID: "user-1"})

	body, _ := json.Marshal(Feedback{AttractionID: "attr-1", Rating: 9})
	req := httptest.NewRequest(http.MethodPost, "/feedback/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v %d", err, resp.StatusCode)
	}
}

func TestUpdateHandlerCrossUserForbidden(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, user_id, attraction_id, rating`).
		WithArgs("fb-1").
		WillReturnRows(feedbackRows().AddRow("fb-1", "user-1", "attr-1", 3, "", time.Now()))

	app := newApp(mock, policy.Caller{ID: "user-2"})

	body, _ := json.Marshal(Feedback{Rating: 1})
	req := httptest.NewRequest(http.MethodPut, "/feedback/fb-1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for direct-id write on another user's row, got %v %d", err, resp.StatusCode)
	}
}

func TestGetHandlerOutOfScope(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, user_id, attraction_id, rating`).
		WithArgs("fb-1").
		WillReturnRows(feedbackRows().AddRow("fb-1", "user-1", "attr-1", 3, "", time.Now()))

	app := newApp(mock, policy.Caller{ID: "user-2"})

	req := httptest.NewRequest(http.MethodGet, "/feedback/fb-1", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("out-of-scope read should be 404, got %d", resp.StatusCode)
	}
}

func TestListHandler(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, user_id, attraction_id, rating`).
		WithArgs(false, "user-1").
		WillReturnRows(feedbackRows().AddRow("fb-1", "user-1", "attr-1", 4, "", time.Now()))

	app := newApp(mock, policy.Caller{ID: "user-1"})

	req := httptest.NewRequest(http.MethodGet, "/feedback/", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %v %d", err, resp.StatusCode)
	}

	var items []Feedback
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0].UserID != "user-1" {
		t.Fatalf("expected only the caller's rows, got %+v", items)
	}
}

func TestDeleteHandler(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, user_id, attraction_id, rating`).
		WithArgs("fb-1").
		WillReturnRows(feedbackRows().AddRow("fb-1", "user-1", "attr-1", 4, "", time.Now()))
	mock.ExpectBegin()
	expectLock(mock, "attr-1")
	mock.ExpectExec(`DELETE FROM feedback`).
		WithArgs("fb-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	expectRecompute(mock, "attr-1", 0.0)
	mock.ExpectCommit()

	app := newApp(mock, policy.Caller{ID: "user-1"})

	req := httptest.NewRequest(http.MethodDelete, "/feedback/fb-1", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %v %d", err, resp.StatusCode)
	}
}
