package policy

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestListScopeSuperuser(t *testing.T) {
	super := Caller{ID: "admin-1", IsSuperuser: true}
	for _, res := range []Resource{ResourceCategory, ResourceAttraction, ResourceFeedback, ResourceFavorite, ResourceNotification} {
		scope := ListScope(super, res)
		if !scope.All {
			t.Fatalf("superuser scope for %s should be unrestricted", res)
		}
	}
}

func TestListScopeOwnerResources(t *testing.T) {
	caller := Caller{ID: "user-1"}

	for _, res := range []Resource{ResourceFeedback, ResourceFavorite} {
		scope := ListScope(caller, res)
		if scope.All {
			t.Fatalf("%s scope should be restricted", res)
		}
		if scope.OwnerID != "user-1" {
			t.Fatalf("%s scope should be owner-only", res)
		}
		if scope.IncludeBroadcast {
			t.Fatalf("%s scope should not include broadcast", res)
		}
	}
}

func TestListScopeNotifications(t *testing.T) {
	scope := ListScope(Caller{ID: "user-1"}, ResourceNotification)
	if scope.All || scope.OwnerID != "user-1" || !scope.IncludeBroadcast {
		t.Fatalf("notification scope should be own rows plus broadcast: %+v", scope)
	}
}

func TestListScopeCatalogUnrestricted(t *testing.T) {
	for _, res := range []Resource{ResourceCategory, ResourceAttraction, ResourceMedia} {
		scope := ListScope(Caller{ID: "user-1"}, res)
		if !scope.All {
			t.Fatalf("%s reads should be unrestricted", res)
		}
	}
}

func TestCanWriteCatalogSuperuserOnly(t *testing.T) {
	user := Caller{ID: "user-1"}
	super := Caller{ID: "admin-1", IsSuperuser: true}

	for _, res := range []Resource{ResourceCategory, ResourceAttraction, ResourceNotification} {
		if err := CanWrite(user, res, ""); err != ErrForbidden {
			t.Fatalf("%s write by ordinary user should be forbidden, got %v", res, err)
		}
		if err := CanWrite(super, res, ""); err != nil {
			t.Fatalf("%s write by superuser should pass: %v", res, err)
		}
	}
}

func TestCanWriteOwnership(t *testing.T) {
	owner := Caller{ID: "user-1"}
	other := Caller{ID: "user-2"}
	super := Caller{ID: "admin-1", IsSuperuser: true}

	for _, res := range []Resource{ResourceFeedback, ResourceFavorite} {
		if err := CanWrite(owner, res, "user-1"); err != nil {
			t.Fatalf("owner write on %s should pass: %v", res, err)
		}
		if err := CanWrite(other, res, "user-1"); err != ErrForbidden {
			t.Fatalf("non-owner write on %s should be forbidden, got %v", res, err)
		}
		if err := CanWrite(super, res, "user-1"); err != nil {
			t.Fatalf("superuser write on %s should pass: %v", res, err)
		}
	}
}

func TestCanWriteStaffIsNotSuperuser(t *testing.T) {
	staff := Caller{ID: "staff-1", IsStaff: true}
	if err := CanWrite(staff, ResourceCategory, ""); err != ErrForbidden {
		t.Fatalf("staff without superuser flag should be forbidden, got %v", err)
	}
}

func TestCanCreateProfile(t *testing.T) {
	if err := CanCreateProfile(false); err != nil {
		t.Fatalf("first profile should be allowed: %v", err)
	}
	if err := CanCreateProfile(true); err != ErrProfileExists {
		t.Fatalf("second profile should conflict, got %v", err)
	}
}

func TestScopeInScope(t *testing.T) {
	all := Scope{All: true}
	if !all.InScope("anyone") || !all.InScope("") {
		t.Fatalf("unrestricted scope should admit everything")
	}

	own := Scope{OwnerID: "user-1"}
	if !own.InScope("user-1") || own.InScope("user-2") || own.InScope("") {
		t.Fatalf("owner scope should admit only the owner's rows")
	}

	notif := Scope{OwnerID: "user-1", IncludeBroadcast: true}
	if !notif.InScope("user-1") || !notif.InScope("") || notif.InScope("user-2") {
		t.Fatalf("notification scope should admit own rows and broadcast")
	}
}

func TestToHTTPError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{ErrForbidden, http.StatusForbidden},
		{ErrNotFound, http.StatusNotFound},
		{ErrProfileExists, http.StatusConflict},
	}
	for _, tc := range cases {
		if got := ToHTTPError(tc.err); got.Code != tc.status {
			t.Fatalf("expected %d for %v, got %d", tc.status, tc.err, got.Code)
		}
	}

	if got := ToHTTPError(fiber.ErrTeapot); got.Code != http.StatusInternalServerError {
		t.Fatalf("unknown errors should map to 500, got %d", got.Code)
	}
}
