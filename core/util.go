package core

import (
	"strings"
	"time"
)

var NowFunc = time.Now // mockable

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Actor is the user on whose behalf an operation runs, and the clock they act on.
type Actor struct {
	UserID string
	At     time.Time
}

func NewActor(userID string) Actor {
	return Actor{UserID: userID, At: NowFunc().UTC()}
}

// Now returns the actor's clock, falling back to NowFunc.
func (a Actor) Now() time.Time {
	if a.At.IsZero() {
		return NowFunc().UTC()
	}
	return a.At.UTC()
}
