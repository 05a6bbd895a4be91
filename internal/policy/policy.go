package policy

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Caller is the identity attached to a request after the bearer token is
// verified. The zero value is an anonymous caller.
type Caller struct {
	ID          string
	IsStaff     bool
	IsSuperuser bool
}

type Resource string

const (
	ResourceCategory     Resource = "category"
	ResourceAttraction   Resource = "attraction"
	ResourceFeedback     Resource = "feedback"
	ResourceFavorite     Resource = "favorite"
	ResourceNotification Resource = "notification"
	ResourceMedia        Resource = "media"
)

var (
	ErrForbidden     = errors.New("you do not have permission to perform this action")
	ErrNotFound      = errors.New("not found")
	ErrProfileExists = errors.New("profile already exists for this user")
)

// Scope describes which rows of a resource a caller may list. All wins
// over the other fields; otherwise OwnerID restricts the query to rows
// owned by that user, and IncludeBroadcast additionally admits rows with
// no recipient.
type Scope struct {
	All              bool
	OwnerID          string
	IncludeBroadcast bool
}

// ListScope returns the visibility scope for list queries. Superusers see
// everything. Ordinary callers see only their own feedback and favorites,
// their own notifications plus broadcasts, and the full read-only catalog.
func ListScope(caller Caller, res Resource) Scope {
	if caller.IsSuperuser {
		return Scope{All: true, OwnerID: caller.ID}
	}
	switch res {
	case ResourceFeedback, ResourceFavorite:
		return Scope{OwnerID: caller.ID}
	case ResourceNotification:
		return Scope{OwnerID: caller.ID, IncludeBroadcast: true}
	default:
		return Scope{All: true}
	}
}

// CanWrite decides whether the caller may create, update, or delete a row
// of the given resource owned by ownerID. Catalog and notification writes
// are superuser-only; feedback and favorites belong to their owner.
func CanWrite(caller Caller, res Resource, ownerID string) error {
	if caller.IsSuperuser {
		return nil
	}
	switch res {
	case ResourceFeedback, ResourceFavorite:
		if ownerID != "" && ownerID == caller.ID {
			return nil
		}
		return ErrForbidden
	default:
		return ErrForbidden
	}
}

// CanCreateProfile guards the one-profile-per-user invariant at the API
// boundary. The schema enforces it a second time via the primary key.
func CanCreateProfile(hasProfile bool) error {
	if hasProfile {
		return ErrProfileExists
	}
	return nil
}

// InScope reports whether a single row owned by ownerID (empty for
// broadcast) is visible under the scope.
func (s Scope) InScope(ownerID string) bool {
	if s.All {
		return true
	}
	if ownerID == "" {
		return s.IncludeBroadcast
	}
	return ownerID == s.OwnerID
}

// ToHTTPError maps policy errors onto fiber errors. Reads outside the
// caller's scope surface as 404 so row existence does not leak.
func ToHTTPError(err error) *fiber.Error {
	switch {
	case errors.Is(err, ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, ErrForbidden.Error())
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, ErrNotFound.Error())
	case errors.Is(err, ErrProfileExists):
		return fiber.NewError(fiber.StatusConflict, ErrProfileExists.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
