package session

import (
	"hakey-storefront/internal/domain"
	"hakey-storefront/internal/events"
)

// State is the signed-in user, if any, plus the hydration flag.
type State struct {
	User    *domain.UserProfile `json:"user"`
	Loading bool                `json:"isLoading"`
}

func (s State) IsAuthenticated() bool { return s.User != nil }

// IsAdmin reports whether the signed-in user carries the admin flag.
func (s State) IsAdmin() bool { return s.User != nil && s.User.IsAdmin }

func (s State) Clone() State {
	out := State{Loading: s.Loading}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return out
}

type Action interface {
	actionName() string
}

// Hydrated ends initialization with the user read from storage.
type Hydrated struct {
	User *domain.UserProfile
}

type Login struct {
	Profile domain.UserProfile
}

type Logout struct{}

type UpdateProfile struct {
	Patch domain.ProfilePatch
}

func (Hydrated) actionName() string      { return "hydrated" }
func (Login) actionName() string         { return "login" }
func (Logout) actionName() string        { return "logout" }
func (UpdateProfile) actionName() string { return "update_profile" }

type Effect interface {
	effect()
}

// PersistUser writes the profile under the "user" key.
type PersistUser struct {
	Profile domain.UserProfile
}

// DeleteUser removes the "user" record.
type DeleteUser struct{}

type Publish struct {
	Type string
	Data map[string]any
}

func (PersistUser) effect() {}
func (DeleteUser) effect()  {}
func (Publish) effect()     {}

// Reduce applies a to s without side effects.
func Reduce(s State, a Action) (State, []Effect) {
	switch a := a.(type) {
	case Hydrated:
		next := State{Loading: false}
		if a.User != nil {
			u := *a.User
			next.User = &u
		}
		return next, nil

	case Login:
		u := a.Profile
		next := State{User: &u, Loading: s.Loading}
		return next, []Effect{
			PersistUser{Profile: u},
			Publish{Type: events.SessionLoggedIn, Data: map[string]any{"email": u.Email}},
		}

	case Logout:
		next := State{Loading: s.Loading}
		effects := []Effect{DeleteUser{}}
		if s.User != nil {
			effects = append(effects, Publish{Type: events.SessionLoggedOut, Data: map[string]any{"email": s.User.Email}})
		}
		return next, effects

	case UpdateProfile:
		// No authentication guard: with no user the patch lands on an
		// empty profile, which signs that profile in.
		u := a.Patch.Merge(s.User)
		next := State{User: &u, Loading: s.Loading}
		return next, []Effect{
			PersistUser{Profile: u},
			Publish{Type: events.SessionUpdated, Data: map[string]any{"email": u.Email}},
		}
	}
	return s, nil
}
