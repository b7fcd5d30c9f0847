package checkout

import "github.com/google/uuid"

// Identity is who is checking out: an authenticated customer or a guest session, never both.
type Identity struct {
	UserID         *uuid.UUID
	GuestSessionID string
	Profile        *Contact
}

func Guest(sessionID string) Identity {
	return Identity{GuestSessionID: sessionID}
}

func Customer(userID uuid.UUID, profile *Contact) Identity {
	return Identity{UserID: &userID, Profile: profile}
}

func (i Identity) Authenticated() bool {
	return i.UserID != nil
}

// SessionKey namespaces customer and guest sessions so they can never collide.
func (i Identity) SessionKey() string {
	if i.UserID != nil {
		return "u:" + i.UserID.String()
	}
	return "g:" + i.GuestSessionID
}
