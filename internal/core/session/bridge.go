package session

import (
	"insureadmin/internal/core/domain"
)

// StateResetter is the slice of the state manager the bridge needs
type StateResetter interface {
	Reset(userID string)
}

// Bridge ties the encrypted store to the client state lifecycle so login and
// logout stay atomic from the caller's point of view.
type Bridge struct {
	store  *Store
	states StateResetter
}

// NewBridge creates a new session bridge
func NewBridge(store *Store, states StateResetter) *Bridge {
	return &Bridge{store: store, states: states}
}

// Login holds everything persisted when a sign-in succeeds
type Login struct {
	UserID       string
	Email        string
	Role         string
	AccessToken  string
	RefreshToken string
}

// SaveLogin persists the authenticated identity and both tokens in one step
func (b *Bridge) SaveLogin(login Login) error {
	return b.store.SetAll(login.UserID, map[string]string{
		KeyUserID:       login.UserID,
		KeyEmail:        login.Email,
		KeyUserRole:     login.Role,
		KeyAccessToken:  login.AccessToken,
		KeyRefreshToken: login.RefreshToken,
	})
}

// CurrentRole reads the persisted role for an owner. A missing value or one
// outside the closed role set is reported as no session.
func (b *Bridge) CurrentRole(userID string) (domain.Role, bool) {
	raw, ok := b.store.Get(userID, KeyUserRole)
	if !ok {
		return "", false
	}
	role, err := domain.ParseRole(raw)
	if err != nil {
		return "", false
	}
	return role, true
}

// Logout resets the owner's client state and clears the persisted session.
// State goes first so its final default snapshot is wiped together with the
// auth keys; after Logout every session key reads as never set.
func (b *Bridge) Logout(userID string) error {
	b.states.Reset(userID)
	return b.store.Clear(userID)
}
