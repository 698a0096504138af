package entity

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

// StudyPlan is an edital plus the user's tracking state. Topic-scoped maps
// are keyed by topic ID and discipline-scoped maps by discipline ID.
type StudyPlan struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	CreatedAt       int64                 `json:"createdAt"`
	Edital          Edital                `json:"editalData"`
	CheckedTopics   map[string]bool       `json:"checkedTopics"`
	MockScores      map[string][]float64  `json:"mockScores"`
	SubTopics       map[string][]SubTopic `json:"subTopics"`
	DisciplineLinks map[string][]Link     `json:"disciplineLinks"`
	TopicLinks      map[string][]Link     `json:"topicLinks"`
}

// SubTopic is a user-defined checklist item under a topic.
type SubTopic struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Link is a reference URL attached to a discipline or topic.
type Link struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// NewStudyPlan builds a plan with empty tracking state around edital.
// The edital must already carry IDs (see AssignIDs).
func NewStudyPlan(edital Edital, now time.Time) StudyPlan {
	name := edital.Title
	if name == "" {
		name = fmt.Sprintf("Plano de %s", now.Format("02/01/2006"))
	}
	p := StudyPlan{
		ID:        NewPlanID(),
		Name:      name,
		CreatedAt: now.UnixMilli(),
		Edital:    edital,
	}
	p.ResetTracking()
	return p
}

// NewPlanID returns a fresh plan identifier.
func NewPlanID() string {
	return "plan_" + uuid.NewString()
}

// ResetTracking empties the tracking maps, leaving identity and edital intact.
func (p *StudyPlan) ResetTracking() {
	p.CheckedTopics = map[string]bool{}
	p.MockScores = map[string][]float64{}
	p.SubTopics = map[string][]SubTopic{}
	p.DisciplineLinks = map[string][]Link{}
	p.TopicLinks = map[string][]Link{}
}

// EnsureMaps replaces nil tracking maps with empty ones.
func (p *StudyPlan) EnsureMaps() {
	if p.CheckedTopics == nil {
		p.CheckedTopics = map[string]bool{}
	}
	if p.MockScores == nil {
		p.MockScores = map[string][]float64{}
	}
	if p.SubTopics == nil {
		p.SubTopics = map[string][]SubTopic{}
	}
	if p.DisciplineLinks == nil {
		p.DisciplineLinks = map[string][]Link{}
	}
	if p.TopicLinks == nil {
		p.TopicLinks = map[string][]Link{}
	}
}

// Clone returns a deep copy.
func (p StudyPlan) Clone() StudyPlan {
	out := p
	out.Edital = p.Edital.Clone()
	out.CheckedTopics = maps.Clone(p.CheckedTopics)
	out.MockScores = cloneLists(p.MockScores)
	out.SubTopics = cloneLists(p.SubTopics)
	out.DisciplineLinks = cloneLists(p.DisciplineLinks)
	out.TopicLinks = cloneLists(p.TopicLinks)
	return out
}

func cloneLists[T any](in map[string][]T) map[string][]T {
	if in == nil {
		return nil
	}
	out := make(map[string][]T, len(in))
	for k, v := range in {
		out[k] = slices.Clone(v)
	}
	return out
}

// Created returns CreatedAt as a time.
func (p *StudyPlan) Created() time.Time {
	return time.UnixMilli(p.CreatedAt)
}
