// Package rental tracks delegated-use grants on unique tokens: a token
// owner can name a user who may use the token until an expiry instant.
//
// Expiry is evaluated lazily. Nothing clears a grant when its expiry
// passes; UserOf simply stops reporting the user. The raw stored values
// stay readable through UserExpires until the grant is overwritten or the
// token changes hands.
package rental

import (
	"time"

	"github.com/xraph/tenure/id"
)

// grant is one delegated-use record.
type grant struct {
	user    id.ID
	expires time.Time
}

// Tracker holds the rental state for a set of unique tokens. It is not
// safe for concurrent use on its own; the owning engine serializes access
// under its mutation lock.
type Tracker struct {
	grants map[uint64]grant
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{grants: make(map[uint64]grant)}
}

// SetUser records user as the delegated user of tokenID until expires.
// Setting the nil identity records an empty grant, which reads back as
// no user.
func (t *Tracker) SetUser(tokenID uint64, user id.ID, expires time.Time) {
	t.grants[tokenID] = grant{user: user, expires: expires}
}

// UserOf returns the active delegated user of tokenID as of now. ok is
// false when there is no grant, the grant names no user, or the grant has
// expired.
func (t *Tracker) UserOf(tokenID uint64, now time.Time) (id.ID, bool) {
	g, found := t.grants[tokenID]
	if !found || g.user.IsNil() || now.After(g.expires) {
		return id.Nil, false
	}

	return g.user, true
}

// UserExpires returns the stored expiry for tokenID, expired or not.
// The zero time means no grant has ever been recorded (or it was cleared
// by an ownership change).
func (t *Tracker) UserExpires(tokenID uint64) time.Time {
	return t.grants[tokenID].expires
}

// Clear removes all rental state for tokenID and reports whether there
// was anything to remove. Engines clear on every real ownership change
// and emit a rental-changed notification only when Clear reports true.
func (t *Tracker) Clear(tokenID uint64) bool {
	g, found := t.grants[tokenID]
	if !found {
		return false
	}

	delete(t.grants, tokenID)

	return !g.user.IsNil() || !g.expires.IsZero()
}

// Each invokes fn for every stored grant, including expired ones.
func (t *Tracker) Each(fn func(tokenID uint64, user id.ID, expires time.Time)) {
	for tokenID, g := range t.grants {
		fn(tokenID, g.user, g.expires)
	}
}

// Load restores one grant, typically from a store snapshot.
func (t *Tracker) Load(tokenID uint64, user id.ID, expires time.Time) {
	t.grants[tokenID] = grant{user: user, expires: expires}
}
