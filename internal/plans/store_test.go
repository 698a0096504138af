package plans

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/edital-planner/constants"
	"github.com/joseph-ayodele/edital-planner/internal/common"
	"github.com/joseph-ayodele/edital-planner/internal/entity"
	"github.com/joseph-ayodele/edital-planner/internal/session"
	"github.com/joseph-ayodele/edital-planner/internal/session/sessiontest"
)

const email = "ana@example.com"

type fixture struct {
	guests *sessiontest.Guests
	api    *sessiontest.API
	sess   *session.Manager
	store  *Store
}

func newFixture(t *testing.T, policy WritePolicy, authenticated bool) fixture {
	t.Helper()
	f := fixture{
		guests: &sessiontest.Guests{},
		api:    sessiontest.NewAPI(email, "segredo"),
	}
	f.sess = session.NewManager(&sessiontest.Tokens{}, f.guests, f.api, nil)
	if authenticated {
		require.NoError(t, f.sess.Login(context.Background(), email, "segredo"))
	} else {
		require.NoError(t, f.sess.ContinueAsGuest(context.Background()))
	}
	f.store = New(f.sess, policy, nil)
	clock := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	f.store.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return f
}

func sampleEdital() entity.Edital {
	return entity.Edital{
		Title: "Concurso INSS",
		Disciplines: []entity.Discipline{
			{Name: "Português", Topics: []entity.Topic{{Name: "Crase"}, {Name: "Regência"}}},
			{Name: "Informática", Topics: []entity.Topic{{Name: "Redes"}}},
		},
	}
}

func TestGuestCreateReplacesPlan(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, WriteThrough, false)

	first, err := f.store.Create(ctx, sampleEdital())
	require.NoError(t, err)
	second, err := f.store.Create(ctx, entity.Edital{Title: "Outro"})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	require.Len(t, f.store.List(), 1)
	assert.Equal(t, second.ID, f.store.ActiveID())
	require.NotNil(t, f.guests.Plan)
	assert.Equal(t, second.ID, f.guests.Plan.ID)
}

func TestCreateAssignsIDs(t *testing.T) {
	f := newFixture(t, WriteThrough, false)

	p, err := f.store.Create(context.Background(), sampleEdital())
	require.NoError(t, err)
	for _, d := range p.Edital.Disciplines {
		assert.NotEmpty(t, d.ID)
		for _, tp := range d.Topics {
			assert.NotEmpty(t, tp.ID)
		}
	}
	assert.Equal(t, "Concurso INSS", p.Name)
	assert.Empty(t, p.CheckedTopics)
}

func TestAuthenticatedCreateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, WriteThrough, true)

	a, err := f.store.Create(ctx, sampleEdital())
	require.NoError(t, err)
	b, err := f.store.Create(ctx, entity.Edital{Title: "TRF"})
	require.NoError(t, err)

	assert.Equal(t, b.ID, f.store.ActiveID())
	list := f.store.List()
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID, "newest first")

	require.NoError(t, f.store.Delete(ctx, b.ID))
	require.Len(t, f.store.List(), 1)
	assert.Equal(t, a.ID, f.store.ActiveID())
	assert.NotEqual(t, b.ID, f.store.ActiveID())

	require.NoError(t, f.store.Delete(ctx, a.ID))
	assert.Empty(t, f.store.List())
	assert.Equal(t, "", f.store.ActiveID())

	stored := f.api.Stored(email)
	assert.Empty(t, stored.Plans)
	assert.Nil(t, stored.ActivePlanID)
}

func TestDeleteInactiveKeepsActive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, WriteThrough, true)

	a, err := f.store.Create(ctx, sampleEdital())
	require.NoError(t, err)
	b, err := f.store.Create(ctx, sampleEdital())
	require.NoError(t, err)

	require.NoError(t, f.store.Delete(ctx, a.ID))
	assert.Equal(t, b.ID, f.store.ActiveID())
}

func TestSetActive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, WriteThrough, true)

	a, err := f.store.Create(ctx, sampleEdital())
	require.NoError(t, err)
	_, err = f.store.Create(ctx, sampleEdital())
	require.NoError(t, err)

	require.NoError(t, f.store.SetActive(ctx, a.ID))
	assert.Equal(t, a.ID, f.store.ActiveID())

	err = f.store.SetActive(ctx, "plan_missing")
	assert.ErrorIs(t, err, common.ErrUnknownPlan)
	assert.ErrorIs(t, f.store.Delete(ctx, "plan_missing"), common.ErrUnknownPlan)
}

func TestGuestDeleteAndSetActive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, WriteThrough, false)

	p, err := f.store.Create(ctx, sampleEdital())
	require.NoError(t, err)

	require.NoError(t, f.store.SetActive(ctx, p.ID))
	assert.ErrorIs(t, f.store.SetActive(ctx, "other"), common.ErrUnknownPlan)
	assert.ErrorIs(t, f.store.Delete(ctx, "other"), common.ErrUnknownPlan)

	require.NoError(t, f.store.Delete(ctx, p.ID))
	_, ok := f.store.Active()
	assert.False(t, ok)
	assert.Nil(t, f.guests.Plan)
}

func TestClearPreservesIdentity(t *testing.T) {
	for _, auth := range []bool{false, true} {
		ctx := context.Background()
		f := newFixture(t, WriteThrough, auth)

		p, err := f.store.Create(ctx, sampleEdital())
		require.NoError(t, err)
		topic := p.Edital.Disciplines[0].Topics[0].ID
		disc := p.Edital.Disciplines[0].ID

		_, err = f.store.ToggleTopic(ctx, topic)
		require.NoError(t, err)
		require.NoError(t, f.store.AddScore(ctx, disc, 70))
		_, err = f.store.AddSubTopic(ctx, topic, "Casos facultativos")
		require.NoError(t, err)
		_, err = f.store.AddLink(ctx, constants.ScopeDiscipline, disc, "Aula", "https://example.com")
		require.NoError(t, err)

		require.NoError(t, f.store.Clear(ctx))
		got, ok := f.store.Active()
		require.True(t, ok)

		assert.Equal(t, p.ID, got.ID)
		assert.Equal(t, p.Name, got.Name)
		assert.Equal(t, p.CreatedAt, got.CreatedAt)
		if diff := cmp.Diff(p.Edital, got.Edital); diff != "" {
			t.Fatalf("edital changed (-want +got):\n%s", diff)
		}
		assert.Empty(t, got.CheckedTopics)
		assert.Empty(t, got.MockScores)
		assert.Empty(t, got.SubTopics)
		assert.Empty(t, got.DisciplineLinks)
		assert.Empty(t, got.TopicLinks)
	}
}

func TestSaveRequiresActivePlan(t *testing.T) {
	f := newFixture(t, WriteThrough, true)

	err := f.store.Save(context.Background(), entity.StudyPlan{ID: "x"})
	assert.ErrorIs(t, err, common.ErrNoActivePlan)
}

func TestSaveOverwritesActive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, WriteThrough, true)

	p, err := f.store.Create(ctx, sampleEdital())
	require.NoError(t, err)
	p.Name = "Renomeado"
	require.NoError(t, f.store.Save(ctx, p))

	got, ok := f.store.Active()
	require.True(t, ok)
	assert.Equal(t, "Renomeado", got.Name)
	assert.Equal(t, "Renomeado", f.api.Stored(email).Plans[p.ID].Name)
}

func TestWriteThroughFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, WriteThrough, false)

	p, err := f.store.Create(ctx, sampleEdital())
	require.NoError(t, err)
	topic := p.Edital.Disciplines[0].Topics[0].ID

	f.guests.Fail = errors.New("disk full")
	_, err = f.store.ToggleTopic(ctx, topic)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrTransport)
	assert.Equal(t, msgSaveFailed, common.DisplayMessage(err))

	got, _ := f.store.Active()
	assert.False(t, got.CheckedTopics[topic], "memory must not change when the write fails")
}

func TestOptimisticFailureKeepsChange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Optimistic, true)

	p, err := f.store.Create(ctx, sampleEdital())
	require.NoError(t, err)
	topic := p.Edital.Disciplines[1].Topics[0].ID

	f.api.Fail = errors.New("offline")
	checked, err := f.store.ToggleTopic(ctx, topic)
	require.NoError(t, err)
	assert.True(t, checked)

	got, _ := f.store.Active()
	assert.True(t, got.CheckedTopics[topic])
	assert.False(t, f.api.Stored(email).Plans[p.ID].CheckedTopics[topic], "durable copy diverges")
}

func TestCreateIsWriteThroughUnderOptimistic(t *testing.T) {
	f := newFixture(t, Optimistic, false)
	f.guests.Fail = errors.New("disk full")

	_, err := f.store.Create(context.Background(), sampleEdital())
	require.Error(t, err)
	assert.Empty(t, f.store.List())
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, Optimistic, ParsePolicy("optimistic"))
	assert.Equal(t, WriteThrough, ParsePolicy("write-through"))
	assert.Equal(t, WriteThrough, ParsePolicy(""))
	assert.Equal(t, "optimistic", Optimistic.String())
}
