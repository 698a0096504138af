package entity

import (
	"fmt"

	"github.com/google/uuid"
)

// AssignIDs gives every discipline and topic without an ID a fresh one.
// Existing IDs are kept so re-running is a no-op.
func AssignIDs(e *Edital) {
	for i := range e.Disciplines {
		d := &e.Disciplines[i]
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		for j := range d.Topics {
			if d.Topics[j].ID == "" {
				d.Topics[j].ID = uuid.NewString()
			}
		}
	}
}

// LegacyTopicKey is the "<discipline>-<index>" key older plans used.
func LegacyTopicKey(discipline string, index int) string {
	return fmt.Sprintf("%s-%d", discipline, index)
}

// MigrateLegacyKeys upgrades a plan whose syllabus has no IDs: IDs are
// assigned and tracking keys built from names and positions are rewritten to
// them. Keys that match nothing are kept as orphans. It reports whether the
// plan changed.
func MigrateLegacyKeys(p *StudyPlan) bool {
	if !needsIDs(&p.Edital) {
		return false
	}
	AssignIDs(&p.Edital)
	p.EnsureMaps()

	topicKeys := map[string]string{}
	disciplineKeys := map[string]string{}
	for _, d := range p.Edital.Disciplines {
		if _, dup := disciplineKeys[d.Name]; !dup {
			disciplineKeys[d.Name] = d.ID
		}
		for j, t := range d.Topics {
			key := LegacyTopicKey(d.Name, j)
			if _, dup := topicKeys[key]; !dup {
				topicKeys[key] = t.ID
			}
		}
	}

	p.CheckedTopics = rekey(p.CheckedTopics, topicKeys)
	p.SubTopics = rekey(p.SubTopics, topicKeys)
	p.TopicLinks = rekey(p.TopicLinks, topicKeys)
	p.MockScores = rekey(p.MockScores, disciplineKeys)
	p.DisciplineLinks = rekey(p.DisciplineLinks, disciplineKeys)
	return true
}

func needsIDs(e *Edital) bool {
	for _, d := range e.Disciplines {
		if d.ID == "" {
			return true
		}
		for _, t := range d.Topics {
			if t.ID == "" {
				return true
			}
		}
	}
	return false
}

func rekey[V any](in map[string]V, mapping map[string]string) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		if id, ok := mapping[k]; ok {
			out[id] = v
			continue
		}
		out[k] = v
	}
	return out
}
