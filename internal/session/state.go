package session

import "github.com/joseph-ayodele/edital-planner/internal/entity"

// State is the live session: exactly one of Anonymous or Authenticated.
type State interface {
	isState()
	clone() State
}

// Anonymous is guest mode. Plan is nil when no guest plan exists.
type Anonymous struct {
	Plan *entity.StudyPlan
}

// Authenticated holds the bearer token and the user's full profile.
type Authenticated struct {
	Token   string
	Profile entity.UserProfile
}

func (Anonymous) isState()     {}
func (Authenticated) isState() {}

func (a Anonymous) clone() State {
	if a.Plan == nil {
		return Anonymous{}
	}
	p := a.Plan.Clone()
	return Anonymous{Plan: &p}
}

func (a Authenticated) clone() State {
	return Authenticated{Token: a.Token, Profile: a.Profile.Clone()}
}

// sameSession reports whether next may replace cur: same kind, and for
// authenticated sessions the same token.
func sameSession(cur, next State) bool {
	switch c := cur.(type) {
	case Anonymous:
		_, ok := next.(Anonymous)
		return ok
	case Authenticated:
		n, ok := next.(Authenticated)
		return ok && n.Token == c.Token
	}
	return false
}
