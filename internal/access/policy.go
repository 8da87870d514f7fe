// Package access decides whether an actor may act on a listing.
package access

import (
	"errors"

	"jeonse-ledger-backend/internal/model"
)

var (
	// ErrUnauthenticated is returned when no actor is present.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the actor does not own the listing.
	ErrForbidden = errors.New("actor is not the listing creator")
)

// Operation is an action on listings that the policy gates.
type Operation int

const (
	List Operation = iota
	Read
	Create
)

func (op Operation) String() string {
	switch op {
	case List:
		return "list"
	case Read:
		return "read"
	case Create:
		return "create"
	default:
		return "unknown"
	}
}

// CanAccess reports whether actor may perform op on listing. listing may be
// nil for List. A nil return means the operation is allowed.
func CanAccess(actor *model.Actor, listing *model.Listing, op Operation) error {
	if err := Authenticated(actor); err != nil {
		return err
	}

	switch op {
	case List:
		return nil
	case Read, Create:
		if listing == nil || !IsCreator(actor, listing) {
			return ErrForbidden
		}
		return nil
	default:
		return ErrForbidden
	}
}

// Authenticated returns ErrUnauthenticated unless actor is a stored identity.
func Authenticated(actor *model.Actor) error {
	if actor == nil || actor.ID == 0 {
		return ErrUnauthenticated
	}
	return nil
}

// IsCreator reports whether actor created listing.
func IsCreator(actor *model.Actor, listing *model.Listing) bool {
	return actor != nil && listing != nil && actor.ID != 0 && listing.CreatorID == actor.ID
}
