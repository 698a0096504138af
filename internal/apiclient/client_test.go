package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/edital-planner/internal/common"
	"github.com/joseph-ayodele/edital-planner/internal/entity"
	"github.com/joseph-ayodele/edital-planner/internal/progress"
)

func TestLoginAndProfile(t *testing.T) {
	var saved entity.UserProfile
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ana@example.com", body["email"])
		_, _ = w.Write([]byte(`{"token":"tok-1","user":{"email":"ana@example.com"}}`))
	})
	mux.HandleFunc("/api/profile", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		if r.Method == http.MethodPost {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&saved))
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(`{"user":{"email":"ana@example.com"},"plans":{"p1":{"id":"p1","name":"n","createdAt":5,"editalData":{}}},"activePlanId":"missing"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL+"/api/", nil, nil)
	ctx := context.Background()

	res, err := c.Login(ctx, "ana@example.com", "segredo")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", res.Token)
	assert.Equal(t, "ana@example.com", res.User.Email)

	prof, err := c.GetProfile(ctx, res.Token)
	require.NoError(t, err)
	require.NotNil(t, prof)
	require.NotNil(t, prof.ActivePlanID)
	assert.Equal(t, "p1", *prof.ActivePlanID, "normalized to an existing plan")
	assert.NotNil(t, prof.Plans["p1"].CheckedTopics)

	require.NoError(t, c.SaveProfile(ctx, res.Token, *prof))
	assert.Equal(t, "ana@example.com", saved.User.Email)
}

func TestGetProfileAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}))
	defer srv.Close()

	prof, err := New(srv.URL, nil, nil).GetProfile(context.Background(), "t")
	require.NoError(t, err)
	assert.Nil(t, prof)
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
		is     error
	}{
		{"server message", http.StatusUnauthorized, `{"message":"E-mail ou senha inválidos."}`, "E-mail ou senha inválidos.", common.ErrUnauthorized},
		{"unparseable body", http.StatusBadGateway, `<html>bad gateway</html>`, msgNetwork, common.ErrTransport},
		{"empty message", http.StatusConflict, `{}`, "Erro 409", common.ErrTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, nil, nil).Register(context.Background(), "a@b.c", "123456")
			require.Error(t, err)
			assert.Equal(t, tt.want, common.DisplayMessage(err))
			assert.ErrorIs(t, err, tt.is)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(url, nil, nil).Logout(context.Background(), "t")
	require.ErrorIs(t, err, common.ErrTransport)
	assert.Equal(t, msgNetwork, common.DisplayMessage(err))
}

func TestGetProfileMigratesLegacyPlans(t *testing.T) {
	doc := `{"user":{"email":"ana@example.com"},"activePlanId":"p1","plans":{"p1":{
		"id":"p1","name":"TRT","createdAt":5,
		"editalData":{"titulo_concurso":"TRT","conteudo_programatico":[{"disciplina":"Português","topicos":["Crase","Regência"]}]},
		"checkedTopics":{"Português-0":true},
		"mockScores":{"Português":[80]}}}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(doc))
	}))
	defer srv.Close()

	prof, err := New(srv.URL, nil, nil).GetProfile(context.Background(), "tok")
	require.NoError(t, err)
	require.NotNil(t, prof)

	plan := prof.Plans["p1"]
	d := plan.Edital.Disciplines[0]
	require.NotEmpty(t, d.ID)
	require.NotEmpty(t, d.Topics[0].ID)
	assert.NotEqual(t, d.Topics[0].ID, d.Topics[1].ID)
	assert.True(t, plan.CheckedTopics[d.Topics[0].ID])
	assert.Equal(t, []float64{80}, plan.MockScores[d.ID])

	r := progress.ForPlan(plan)
	assert.Equal(t, 50.0, r.OverallProgress)
	assert.Equal(t, 80.0, r.OverallAverage)
}
