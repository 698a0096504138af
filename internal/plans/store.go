// Package plans creates, selects and mutates study plans on top of the live
// session. Guest sessions hold at most one plan; authenticated sessions hold
// many under the user's profile.
package plans

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/edital-planner/internal/common"
	"github.com/joseph-ayodele/edital-planner/internal/entity"
	"github.com/joseph-ayodele/edital-planner/internal/session"
)

// WritePolicy decides the order of the durable write and the in-memory commit.
type WritePolicy int

const (
	// WriteThrough writes durably first and commits in memory only on success.
	WriteThrough WritePolicy = iota
	// Optimistic commits in memory first; durable write failures are logged.
	Optimistic
)

// ParsePolicy maps the configuration value to a WritePolicy.
func ParsePolicy(s string) WritePolicy {
	if strings.EqualFold(strings.TrimSpace(s), common.Optimistic) {
		return Optimistic
	}
	return WriteThrough
}

func (p WritePolicy) String() string {
	if p == Optimistic {
		return common.Optimistic
	}
	return common.WriteThrough
}

const (
	msgNoActive   = "Nenhum plano de estudos ativo."
	msgSaveFailed = "Não foi possível salvar as alterações. Tente novamente."
)

// errNoChange short-circuits an update that has nothing to write.
var errNoChange = errors.New("no change")

// Store is the plan store for one session.
type Store struct {
	sess   *session.Manager
	policy WritePolicy
	now    func() time.Time
	logger *zap.Logger
}

// New returns a Store bound to sess.
func New(sess *session.Manager, policy WritePolicy, logger *zap.Logger) *Store {
	return &Store{
		sess:   sess,
		policy: policy,
		now:    time.Now,
		logger: common.OrNop(logger),
	}
}

// Policy returns the configured write policy.
func (s *Store) Policy() WritePolicy { return s.policy }

// Create builds a plan around edital and makes it the active one. In guest
// mode it replaces the existing guest plan. The durable write always happens
// before the plan becomes visible.
func (s *Store) Create(ctx context.Context, edital entity.Edital) (entity.StudyPlan, error) {
	e := edital.Clone()
	entity.AssignIDs(&e)
	plan := s.newPlan(e)

	var next session.State
	switch st := s.sess.State().(type) {
	case session.Anonymous:
		next = session.Anonymous{Plan: &plan}
	case session.Authenticated:
		st.Profile.Normalize()
		st.Profile.Plans[plan.ID] = plan
		st.Profile.SetActive(plan.ID)
		next = st
	}
	if err := s.apply(ctx, "create", next, WriteThrough); err != nil {
		return entity.StudyPlan{}, err
	}
	s.logger.Info("plans.create.ok",
		zap.String("plan_id", plan.ID),
		zap.String("name", plan.Name),
		zap.Int("disciplines", len(plan.Edital.Disciplines)),
		zap.Int("topics", plan.Edital.TopicCount()),
	)
	return plan.Clone(), nil
}

func (s *Store) newPlan(e entity.Edital) entity.StudyPlan {
	return entity.NewStudyPlan(e, s.now())
}

// Active returns the plan being edited.
func (s *Store) Active() (entity.StudyPlan, bool) {
	return activePlan(s.sess.State())
}

// ActiveID returns the active plan id, or "".
func (s *Store) ActiveID() string {
	if p, ok := s.Active(); ok {
		return p.ID
	}
	return ""
}

// List returns every plan of the session, newest first.
func (s *Store) List() []entity.StudyPlan {
	switch st := s.sess.State().(type) {
	case session.Anonymous:
		if st.Plan == nil {
			return nil
		}
		return []entity.StudyPlan{*st.Plan}
	case session.Authenticated:
		ids := st.Profile.SortedPlanIDs()
		out := make([]entity.StudyPlan, 0, len(ids))
		for _, id := range ids {
			out = append(out, st.Profile.Plans[id])
		}
		return out
	}
	return nil
}

// Get returns the plan with the given id.
func (s *Store) Get(id string) (entity.StudyPlan, error) {
	for _, p := range s.List() {
		if p.ID == id {
			return p, nil
		}
	}
	return entity.StudyPlan{}, unknownPlan(id)
}

// Save overwrites the active plan with plan.
func (s *Store) Save(ctx context.Context, plan entity.StudyPlan) error {
	return s.update(ctx, "save", func(st session.State) (session.State, error) {
		switch v := st.(type) {
		case session.Anonymous:
			p := plan.Clone()
			v.Plan = &p
			return v, nil
		case session.Authenticated:
			if v.Profile.ActivePlanID == nil {
				return nil, noActive()
			}
			v.Profile.Plans[*v.Profile.ActivePlanID] = plan.Clone()
			return v, nil
		}
		return nil, noActive()
	})
}

// Clear resets the tracking state of the active plan. Identity and edital
// are preserved.
func (s *Store) Clear(ctx context.Context) error {
	return s.mutate(ctx, "clear", func(p *entity.StudyPlan) error {
		p.ResetTracking()
		return nil
	})
}

// SetActive selects the plan to edit.
func (s *Store) SetActive(ctx context.Context, id string) error {
	return s.update(ctx, "set_active", func(st session.State) (session.State, error) {
		switch v := st.(type) {
		case session.Anonymous:
			if v.Plan != nil && v.Plan.ID == id {
				return nil, errNoChange
			}
			return nil, unknownPlan(id)
		case session.Authenticated:
			if _, ok := v.Profile.Plans[id]; !ok {
				return nil, unknownPlan(id)
			}
			if v.Profile.ActivePlanID != nil && *v.Profile.ActivePlanID == id {
				return nil, errNoChange
			}
			v.Profile.SetActive(id)
			return v, nil
		}
		return nil, unknownPlan(id)
	})
}

// Delete removes a plan. Deleting the active plan activates the newest
// remaining one, or none. In guest mode only the guest plan's own id is
// accepted and it clears the guest plan.
func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.update(ctx, "delete", func(st session.State) (session.State, error) {
		switch v := st.(type) {
		case session.Anonymous:
			if v.Plan == nil || v.Plan.ID != id {
				return nil, unknownPlan(id)
			}
			return session.Anonymous{}, nil
		case session.Authenticated:
			if _, ok := v.Profile.Plans[id]; !ok {
				return nil, unknownPlan(id)
			}
			delete(v.Profile.Plans, id)
			if v.Profile.ActivePlanID == nil || *v.Profile.ActivePlanID == id {
				v.Profile.SetActive(v.Profile.FallbackPlanID())
			}
			return v, nil
		}
		return nil, unknownPlan(id)
	})
	if err == nil {
		s.logger.Info("plans.delete.ok", zap.String("plan_id", id), zap.String("active", s.ActiveID()))
	}
	return err
}

// mutate applies fn to a copy of the active plan and writes the result.
func (s *Store) mutate(ctx context.Context, op string, fn func(p *entity.StudyPlan) error) error {
	return s.update(ctx, op, func(st session.State) (session.State, error) {
		switch v := st.(type) {
		case session.Anonymous:
			if v.Plan == nil {
				return nil, noActive()
			}
			v.Plan.EnsureMaps()
			if err := fn(v.Plan); err != nil {
				return nil, err
			}
			return v, nil
		case session.Authenticated:
			p, ok := v.Profile.Active()
			if !ok {
				return nil, noActive()
			}
			p.EnsureMaps()
			if err := fn(&p); err != nil {
				return nil, err
			}
			v.Profile.Plans[p.ID] = p
			return v, nil
		}
		return nil, noActive()
	})
}

// update derives the next state from a snapshot of the session and applies
// it under the store's write policy.
func (s *Store) update(ctx context.Context, op string, fn func(session.State) (session.State, error)) error {
	next, err := fn(s.sess.State())
	if errors.Is(err, errNoChange) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.apply(ctx, op, next, s.policy)
}

func (s *Store) apply(ctx context.Context, op string, next session.State, policy WritePolicy) error {
	if policy == Optimistic {
		if err := s.sess.Commit(next); err != nil {
			return err
		}
		if err := s.sess.Persist(ctx, next); err != nil {
			s.logger.Warn("plans."+op+".persist_failed", zap.Error(err))
		}
		return nil
	}

	if err := s.sess.Persist(ctx, next); err != nil {
		s.logger.Warn("plans."+op+".persist_failed", zap.Error(err), zap.String("policy", policy.String()))
		return saveError(err)
	}
	return s.sess.Commit(next)
}

func saveError(err error) error {
	if common.IsCancelled(err) {
		return err
	}
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return common.TransportError(msgSaveFailed, err)
}

func activePlan(st session.State) (entity.StudyPlan, bool) {
	switch v := st.(type) {
	case session.Anonymous:
		if v.Plan == nil {
			return entity.StudyPlan{}, false
		}
		return *v.Plan, true
	case session.Authenticated:
		return v.Profile.Active()
	}
	return entity.StudyPlan{}, false
}

func unknownPlan(id string) error {
	return common.NewAppError(common.CodeUnknownPlan, fmt.Sprintf("Plano %q não encontrado.", id), common.ErrUnknownPlan)
}

func noActive() error {
	return common.NewAppError(common.CodeNoActive, msgNoActive, common.ErrNoActivePlan)
}
