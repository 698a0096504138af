package localstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/edital-planner/constants"
	"github.com/joseph-ayodele/edital-planner/internal/entity"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "state.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGuestPlanRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	got, err := s.LoadGuestPlan(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	e := entity.Edital{Title: "PF", Disciplines: []entity.Discipline{{Name: "Lógica", Topics: []entity.Topic{{Name: "Proposições"}}}}}
	entity.AssignIDs(&e)
	p := entity.NewStudyPlan(e, time.UnixMilli(1700000000000))
	p.MockScores[e.Disciplines[0].ID] = []float64{75}
	p.SubTopics[e.Disciplines[0].Topics[0].ID] = []entity.SubTopic{{ID: "s", Text: "tabela verdade"}}

	require.NoError(t, s.SaveGuestPlan(ctx, p))
	got, err = s.LoadGuestPlan(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	if diff := cmp.Diff(p, *got); diff != "" {
		t.Fatalf("guest plan mismatch (-want +got):\n%s", diff)
	}

	second := entity.NewStudyPlan(entity.Edital{Title: "PRF"}, time.UnixMilli(1700000001000))
	require.NoError(t, s.SaveGuestPlan(ctx, second))
	got, err = s.LoadGuestPlan(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID, "one guest plan only")

	require.NoError(t, s.ClearGuestPlan(ctx))
	got, err = s.LoadGuestPlan(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoadGuestPlanMigratesLegacyKeys(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	legacy := `{"id":"plan_1","name":"n","createdAt":1,"editalData":{"conteudo_programatico":[{"disciplina":"Direito","topicos":["Penal"]}]},"checkedTopics":{"Direito-0":true},"mockScores":{"Direito":[60]}}`
	require.NoError(t, s.Put(ctx, constants.GuestPlanKey, legacy))

	p, err := s.LoadGuestPlan(ctx)
	require.NoError(t, err)
	d := p.Edital.Disciplines[0]
	assert.NotEmpty(t, d.ID)
	assert.True(t, p.CheckedTopics[d.Topics[0].ID])
	assert.Equal(t, []float64{60}, p.MockScores[d.ID])
	assert.NotNil(t, p.TopicLinks)
}

func TestCorruptGuestPlanIsAbsent(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	require.NoError(t, s.Put(ctx, constants.GuestPlanKey, "{not json"))
	p, err := s.LoadGuestPlan(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestToken(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	tok, err := s.LoadToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.SaveToken(ctx, "abc"))
	require.NoError(t, s.SaveToken(ctx, "def"))
	tok, err = s.LoadToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "def", tok)

	require.NoError(t, s.ClearToken(ctx))
	require.NoError(t, s.ClearToken(ctx))
	tok, err = s.LoadToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}
