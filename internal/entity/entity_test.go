package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func samplePlan() StudyPlan {
	e := Edital{
		Title:           "Concurso TRF",
		Organization:    "Tribunal Regional Federal",
		Summary:         "Resumo",
		RegistrationFee: ptr(85.5),
		Positions: []Position{{
			Name:         "Analista",
			Slots:        &Slots{Text: "Cadastro Reserva"},
			Salary:       ptr(13994.78),
			Requirements: []string{"Nível superior"},
			WorkSchedule: "40h",
		}},
		Schedule: []ScheduleEvent{{Event: "Prova", Date: "10/10/2025"}},
		Disciplines: []Discipline{
			{Name: "Português", Topics: []Topic{{Name: "Crase"}, {Name: "Regência"}}},
			{Name: "Direito", Topics: []Topic{{Name: "Constituição"}}},
		},
	}
	AssignIDs(&e)
	p := NewStudyPlan(e, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	t0 := e.Disciplines[0].Topics[0].ID
	d0 := e.Disciplines[0].ID
	p.CheckedTopics[t0] = true
	p.MockScores[d0] = []float64{80, 90}
	p.SubTopics[t0] = []SubTopic{{ID: "s1", Text: "Casos proibidos", Completed: true}}
	p.DisciplineLinks[d0] = []Link{{ID: "l1", Title: "Gramática", URL: "https://example.com"}}
	p.TopicLinks[t0] = []Link{{ID: "l2", Title: "Vídeo", URL: "http://example.com/v"}}
	return p
}

func TestStudyPlanRoundTrip(t *testing.T) {
	p := samplePlan()

	b, err := json.Marshal(p)
	require.NoError(t, err)

	var got StudyPlan
	require.NoError(t, json.Unmarshal(b, &got))

	if diff := cmp.Diff(p, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestNewStudyPlanName(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	p := NewStudyPlan(Edital{}, now)
	assert.Equal(t, "Plano de 01/03/2025", p.Name)
	assert.Equal(t, now.UnixMilli(), p.CreatedAt)
	assert.Contains(t, p.ID, "plan_")
	assert.Empty(t, p.CheckedTopics)
	assert.NotNil(t, p.MockScores)

	p = NewStudyPlan(Edital{Title: "INSS"}, now)
	assert.Equal(t, "INSS", p.Name)
}

func TestTopicDecodesStringOrObject(t *testing.T) {
	var d Discipline
	require.NoError(t, json.Unmarshal([]byte(`{"disciplina":"X","topicos":["a",{"id":"t2","nome":"b"}]}`), &d))
	assert.Equal(t, []Topic{{Name: "a"}, {ID: "t2", Name: "b"}}, d.Topics)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"disciplina":"X","topicos":["a",{"id":"t2","nome":"b"}]}`, string(b))
}

func TestSlotsNumberOrText(t *testing.T) {
	var p Position
	require.NoError(t, json.Unmarshal([]byte(`{"vagas":12}`), &p))
	assert.Equal(t, "12", p.Slots.String())

	require.NoError(t, json.Unmarshal([]byte(`{"vagas":"CR"}`), &p))
	assert.Equal(t, "CR", p.Slots.String())

	var empty *Slots
	assert.Equal(t, "", empty.String())
}

func TestCloneIsDeep(t *testing.T) {
	p := samplePlan()
	c := p.Clone()
	require.True(t, cmp.Equal(p, c))

	d0 := p.Edital.Disciplines[0].ID
	c.MockScores[d0][0] = 1
	c.Edital.Disciplines[0].Topics[0].Name = "changed"
	*c.Edital.RegistrationFee = 1

	assert.Equal(t, 80.0, p.MockScores[d0][0])
	assert.Equal(t, "Crase", p.Edital.Disciplines[0].Topics[0].Name)
	assert.Equal(t, 85.5, *p.Edital.RegistrationFee)
}

func TestAssignIDsIsIdempotent(t *testing.T) {
	e := Edital{Disciplines: []Discipline{{Name: "A", Topics: []Topic{{Name: "1"}}}}}
	AssignIDs(&e)
	first := e.Clone()
	AssignIDs(&e)
	assert.Equal(t, first, e)
	assert.NotEmpty(t, e.Disciplines[0].ID)
	assert.NotEqual(t, e.Disciplines[0].ID, e.Disciplines[0].Topics[0].ID)
}

func TestMigrateLegacyKeys(t *testing.T) {
	p := StudyPlan{
		ID: "plan_1",
		Edital: Edital{Disciplines: []Discipline{
			{Name: "Português", Topics: []Topic{{Name: "Crase"}, {Name: "Regência"}}},
		}},
		CheckedTopics: map[string]bool{"Português-1": true, "Sumida-0": true},
		MockScores:    map[string][]float64{"Português": {70}},
		SubTopics:     map[string][]SubTopic{"Português-0": {{ID: "s", Text: "x"}}},
	}

	require.True(t, MigrateLegacyKeys(&p))
	d := p.Edital.Disciplines[0]

	assert.True(t, p.CheckedTopics[d.Topics[1].ID])
	assert.True(t, p.CheckedTopics["Sumida-0"], "orphans are kept")
	assert.Equal(t, []float64{70}, p.MockScores[d.ID])
	assert.Len(t, p.SubTopics[d.Topics[0].ID], 1)
	assert.NotNil(t, p.TopicLinks)

	assert.False(t, MigrateLegacyKeys(&p), "second pass is a no-op")
}

func TestProfileNormalize(t *testing.T) {
	older := StudyPlan{ID: "a", CreatedAt: 1}
	newer := StudyPlan{ID: "b", CreatedAt: 2}

	u := UserProfile{Plans: map[string]StudyPlan{"a": older, "b": newer}, ActivePlanID: ptr("gone")}
	u.Normalize()
	require.NotNil(t, u.ActivePlanID)
	assert.Equal(t, "b", *u.ActivePlanID)
	assert.NotNil(t, u.Plans["a"].CheckedTopics)

	u = UserProfile{}
	u.Normalize()
	assert.Nil(t, u.ActivePlanID)
	assert.NotNil(t, u.Plans)
}

func TestProfileNormalizeMigratesLegacyPlans(t *testing.T) {
	legacy := StudyPlan{
		ID: "old",
		Edital: Edital{Disciplines: []Discipline{
			{Name: "Português", Topics: []Topic{{Name: "Crase"}, {Name: "Regência"}}},
		}},
		CheckedTopics: map[string]bool{"Português-0": true},
	}
	u := UserProfile{Plans: map[string]StudyPlan{"old": legacy}}

	assert.Equal(t, 1, u.Normalize())
	d := u.Plans["old"].Edital.Disciplines[0]
	require.NotEmpty(t, d.Topics[0].ID)
	assert.True(t, u.Plans["old"].CheckedTopics[d.Topics[0].ID])
	assert.False(t, u.Plans["old"].CheckedTopics[""])

	assert.Zero(t, u.Normalize(), "already migrated")
}

func TestLookupIgnoresEmptyID(t *testing.T) {
	e := Edital{Disciplines: []Discipline{{Name: "A", Topics: []Topic{{Name: "1"}}}}}

	_, ok := e.Discipline("")
	assert.False(t, ok)
	_, _, ok = e.Topic("")
	assert.False(t, ok)
}
