package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/edital-planner/internal/entity"
)

func edital(topicsPerDiscipline ...int) entity.Edital {
	var e entity.Edital
	for i, n := range topicsPerDiscipline {
		d := entity.Discipline{Name: string(rune('A' + i))}
		for j := 0; j < n; j++ {
			d.Topics = append(d.Topics, entity.Topic{Name: "t"})
		}
		e.Disciplines = append(e.Disciplines, d)
	}
	entity.AssignIDs(&e)
	return e
}

func TestOverallAverageIsMeanOfAllScores(t *testing.T) {
	e := edital(1, 1)
	scores := map[string][]float64{
		e.Disciplines[0].ID: {80, 90},
		e.Disciplines[1].ID: {50},
	}

	r := Calculate(e, nil, scores)
	assert.InDelta(t, 73.333, r.OverallAverage, 0.001)
	assert.Equal(t, 3, r.ScoreCount)
	assert.InDelta(t, 85, r.Disciplines[0].Average, 1e-9)
	assert.InDelta(t, 50, r.Disciplines[1].Average, 1e-9)
}

func TestDisciplineWithoutScoresAveragesZero(t *testing.T) {
	e := edital(2)
	r := Calculate(e, nil, nil)
	assert.Zero(t, r.Disciplines[0].Average)
	assert.Zero(t, r.OverallAverage)
	assert.Empty(t, r.Ranked())
}

func TestOverallProgressBounds(t *testing.T) {
	assert.Zero(t, Calculate(entity.Edital{}, nil, nil).OverallProgress)
	assert.Zero(t, Calculate(edital(0, 0), nil, nil).OverallProgress)

	e := edital(2, 1)
	all := map[string]bool{}
	for _, d := range e.Disciplines {
		for _, tp := range d.Topics {
			all[tp.ID] = true
		}
	}
	r := Calculate(e, all, nil)
	assert.Equal(t, 100.0, r.OverallProgress)
	assert.Equal(t, 100.0, r.Disciplines[0].Progress)
}

func TestOverallProgressIsMonotonic(t *testing.T) {
	e := edital(3, 4, 2)
	checked := map[string]bool{}
	prev := Calculate(e, checked, nil).OverallProgress
	for _, d := range e.Disciplines {
		for _, tp := range d.Topics {
			checked[tp.ID] = true
			cur := Calculate(e, checked, nil).OverallProgress
			require.GreaterOrEqual(t, cur, prev)
			prev = cur
		}
	}
	assert.Equal(t, 100.0, prev)
}

func TestOrphanKeysAreIgnored(t *testing.T) {
	e := edital(2)
	r := Calculate(e, map[string]bool{"Português-0": true, e.Disciplines[0].Topics[0].ID: true}, map[string][]float64{"gone": {10}})
	assert.Equal(t, 1, r.CheckedTopics)
	assert.Equal(t, 50.0, r.OverallProgress)
	assert.Zero(t, r.ScoreCount)
}

func TestRankedSortsByAverage(t *testing.T) {
	e := edital(1, 1, 1)
	r := Calculate(e, nil, map[string][]float64{
		e.Disciplines[0].ID: {40},
		e.Disciplines[2].ID: {90, 70},
	})
	ranked := r.Ranked()
	require.Len(t, ranked, 2)
	assert.Equal(t, "C", ranked[0].Name)
	assert.Equal(t, "A", ranked[1].Name)
}
