package cart

import (
	"strings"

	"github.com/google/uuid"
)

// Owner identifies who a cart belongs to: an authenticated user or an
// anonymous guest session. Exactly one side is set.
type Owner struct {
	UserID  *uuid.UUID
	GuestID *string
}

// UserOwner builds an owner for an authenticated user.
func UserOwner(userID uuid.UUID) Owner {
	return Owner{UserID: &userID}
}

// GuestOwner builds an owner for an anonymous guest session.
func GuestOwner(guestID string) Owner {
	guestID = strings.TrimSpace(guestID)
	return Owner{GuestID: &guestID}
}

// Valid reports whether exactly one identity is carried and it is non-empty.
func (o Owner) Valid() bool {
	hasUser := o.UserID != nil && *o.UserID != uuid.Nil
	hasGuest := o.GuestID != nil && *o.GuestID != ""
	return hasUser != hasGuest
}

// IsUser reports whether the owner is an authenticated user.
func (o Owner) IsUser() bool {
	return o.UserID != nil && *o.UserID != uuid.Nil
}
