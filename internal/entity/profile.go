package entity

import "sort"

// User is the account owner as exposed by the profile API.
type User struct {
	Email string `json:"email"`
}

// UserProfile is the document stored per authenticated user.
type UserProfile struct {
	User         User                 `json:"user"`
	Plans        map[string]StudyPlan `json:"plans"`
	ActivePlanID *string              `json:"activePlanId"`
}

// NewUserProfile returns an empty profile for email.
func NewUserProfile(email string) UserProfile {
	return UserProfile{User: User{Email: email}, Plans: map[string]StudyPlan{}}
}

// Active returns the active plan, if any.
func (u *UserProfile) Active() (StudyPlan, bool) {
	if u.ActivePlanID == nil {
		return StudyPlan{}, false
	}
	p, ok := u.Plans[*u.ActivePlanID]
	return p, ok
}

// SetActive points the profile at id; nil-safe for "".
func (u *UserProfile) SetActive(id string) {
	if id == "" {
		u.ActivePlanID = nil
		return
	}
	u.ActivePlanID = &id
}

// Normalize restores the invariant that ActivePlanID names a stored plan
// or is nil, fills missing tracking maps and upgrades plans still keyed by
// discipline names and positions. It reports how many plans were upgraded.
func (u *UserProfile) Normalize() int {
	if u.Plans == nil {
		u.Plans = map[string]StudyPlan{}
	}
	migrated := 0
	for id, p := range u.Plans {
		p.EnsureMaps()
		if MigrateLegacyKeys(&p) {
			migrated++
		}
		u.Plans[id] = p
	}
	if u.ActivePlanID != nil {
		if _, ok := u.Plans[*u.ActivePlanID]; ok {
			return migrated
		}
	}
	u.SetActive(u.FallbackPlanID())
	return migrated
}

// FallbackPlanID picks the most recently created plan, or "" when empty.
func (u *UserProfile) FallbackPlanID() string {
	ids := u.SortedPlanIDs()
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// SortedPlanIDs lists plan ids newest first, ties broken by id.
func (u *UserProfile) SortedPlanIDs() []string {
	ids := make([]string, 0, len(u.Plans))
	for id := range u.Plans {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := u.Plans[ids[i]], u.Plans[ids[j]]
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt > b.CreatedAt
		}
		return ids[i] < ids[j]
	})
	return ids
}

// Clone returns a deep copy.
func (u UserProfile) Clone() UserProfile {
	out := u
	if u.Plans != nil {
		out.Plans = make(map[string]StudyPlan, len(u.Plans))
		for k, v := range u.Plans {
			out.Plans[k] = v.Clone()
		}
	}
	if u.ActivePlanID != nil {
		id := *u.ActivePlanID
		out.ActivePlanID = &id
	}
	return out
}
