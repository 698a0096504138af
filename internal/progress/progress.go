// Package progress derives completion and score metrics from a study plan.
// Nothing here is persisted; every figure can be recomputed from the plan.
package progress

import (
	"sort"

	"github.com/joseph-ayodele/edital-planner/internal/entity"
)

// Discipline holds the metrics of one syllabus subject.
type Discipline struct {
	ID       string
	Name     string
	Topics   int
	Checked  int
	Progress float64 // checked/topics*100, 0 when there are no topics
	Scores   []float64
	Average  float64 // mean of Scores, 0 when there are none
}

// HasScores reports whether any mock score was recorded.
func (d Discipline) HasScores() bool { return len(d.Scores) > 0 }

// Report is the aggregate view of a plan.
type Report struct {
	Disciplines     []Discipline
	TotalTopics     int
	CheckedTopics   int
	OverallProgress float64
	ScoreCount      int
	OverallAverage  float64 // mean of every score across disciplines, not a mean of means
}

// Calculate walks the edital's disciplines in order. Tracking keys that do not
// match a discipline or topic of the edital are ignored.
func Calculate(e entity.Edital, checked map[string]bool, scores map[string][]float64) Report {
	var r Report
	var scoreSum float64
	for _, d := range e.Disciplines {
		m := Discipline{ID: d.ID, Name: d.Name, Topics: len(d.Topics)}
		for _, t := range d.Topics {
			if checked[t.ID] {
				m.Checked++
			}
		}
		m.Progress = percent(m.Checked, m.Topics)
		if s := scores[d.ID]; len(s) > 0 {
			m.Scores = append([]float64(nil), s...)
			var sum float64
			for _, v := range s {
				sum += v
			}
			m.Average = sum / float64(len(s))
			scoreSum += sum
			r.ScoreCount += len(s)
		}
		r.TotalTopics += m.Topics
		r.CheckedTopics += m.Checked
		r.Disciplines = append(r.Disciplines, m)
	}
	r.OverallProgress = percent(r.CheckedTopics, r.TotalTopics)
	if r.ScoreCount > 0 {
		r.OverallAverage = scoreSum / float64(r.ScoreCount)
	}
	return r
}

// ForPlan is Calculate over a plan's own data.
func ForPlan(p entity.StudyPlan) Report {
	return Calculate(p.Edital, p.CheckedTopics, p.MockScores)
}

// Ranked returns the disciplines that have scores, highest average first.
func (r Report) Ranked() []Discipline {
	out := make([]Discipline, 0, len(r.Disciplines))
	for _, d := range r.Disciplines {
		if d.HasScores() {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Average > out[j].Average })
	return out
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
