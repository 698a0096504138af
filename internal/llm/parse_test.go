package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/edital-planner/internal/common"
)

const recordJSON = `{
  "titulo_concurso": "Concurso INSS",
  "organizacao": "Cebraspe",
  "taxa_inscricao": 85.0,
  "cargos": [{"nome_cargo": "Técnico", "vagas": 1000, "salario": 5905.79, "requisitos": ["Nível médio"]}],
  "cronograma": [{"evento": "Prova", "data": "05/05/2025"}],
  "conteudo_programatico": [
    {"disciplina": "Português", "topicos": ["Crase", "Regência { nominal }"]},
    {"disciplina": "Informática", "topicos": ["Redes"]}
  ]
}`

func TestParseRecoversRecordFromSurroundingProse(t *testing.T) {
	wrappers := map[string]string{
		"bare":          recordJSON,
		"prose":         "Claro! Aqui está:\n" + recordJSON + "\nBoa sorte nos estudos.",
		"fenced":        "```json\n" + recordJSON + "\n```",
		"markers":       "texto\n" + OpenMarker + "\n" + recordJSON + "\n" + CloseMarker + "\nfim",
		"fenced-marker": OpenMarker + "\n```json\n" + recordJSON + "\n```\n" + CloseMarker,
		"stray-braces":  "Use {chaves} assim.\n" + recordJSON + "\nObrigado {:}",
	}
	for name, raw := range wrappers {
		t.Run(name, func(t *testing.T) {
			e, err := Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, "Concurso INSS", e.Title)
			assert.Equal(t, 85.0, *e.RegistrationFee)
			require.Len(t, e.Disciplines, 2)
			assert.Equal(t, "Regência { nominal }", e.Disciplines[0].Topics[1].Name)
			assert.Equal(t, "1000", e.Positions[0].Slots.String())
		})
	}
}

func TestParsePrefersMarkedAnswerOverEchoedExample(t *testing.T) {
	raw := "Exemplo:\n```json\n{\"titulo_concurso\": \"Exemplo\", \"conteudo_programatico\": []}\n```\n" +
		OpenMarker + "\n" + recordJSON + "\n" + CloseMarker

	e, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Concurso INSS", e.Title)
}

func TestParseNoJSONFound(t *testing.T) {
	for _, raw := range []string{"", "sem json aqui", "} invertido {", "apenas { aberto"} {
		_, err := Parse(raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, common.ErrNoJSONFound), raw)
		assert.Equal(t, msgNoJSON, common.DisplayMessage(err))
	}
}

func TestParseMalformed(t *testing.T) {
	for _, raw := range []string{
		`{"titulo_concurso": "x",}`,
		`{ isto não é json }`,
		`resposta: {"a": [1, 2}`,
		// cut off mid-record: the inner disciplines balance, the outer object does not
		`Aqui está: {"titulo_concurso": "Concurso X", "conteudo_programatico": [{"disciplina": "Português", "topicos": ["A"]}, {"disciplina": "Direito"`,
		"```json\n{\"titulo_concurso\": \"X\", \"cargos\": [{\"nome_cargo\": \"Analista\"}, {\"nome_cargo\": \"Técnico\"\n```",
		`Use {chaves} assim: {"organizacao": "FCC", "cronograma": [{"evento": "Prova", "data": "01/01/2026"}`,
	} {
		_, err := Parse(raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, common.ErrMalformedJSON), raw)
		assert.Equal(t, msgMalformed, common.DisplayMessage(err))
	}
}

func TestParseCoercesBrazilianMoney(t *testing.T) {
	e, err := Parse(`{"taxa_inscricao": "R$ 130,00", "cargos": [{"nome_cargo": "Analista", "salario": "R$ 13.994,78", "vagas": "CR"}]}`)
	require.NoError(t, err)
	assert.Equal(t, 130.0, *e.RegistrationFee)
	assert.InDelta(t, 13994.78, *e.Positions[0].Salary, 1e-9)
	assert.Equal(t, "CR", e.Positions[0].Slots.String())
}

func TestBalancedObjectsSkipsBracesInStrings(t *testing.T) {
	objs := balancedObjects(`a {"k": "}"} b {"x": {"y": 1}}`)
	assert.Equal(t, []string{`{"x": {"y": 1}}`, `{"k": "}"}`}, objs)
}

func TestBalancedObjectsStopsAtUnclosedObject(t *testing.T) {
	objs := balancedObjects(`{"a": 1} {"b": {"c": 2}, "d": {"e": 3}`)
	assert.Equal(t, []string{`{"a": 1}`}, objs)
}

func TestParseIgnoresNestedFragmentsInProse(t *testing.T) {
	strays := []string{
		`{"disciplina": "Exemplo", "topicos": ["x"]}`,
		`{"nome_cargo": "Exemplo"}`,
		`{chaves}`,
		`{}`,
	}
	for _, stray := range strays {
		for name, raw := range map[string]string{
			"before": "Formato: " + stray + "\nResposta:\n" + recordJSON,
			"after":  recordJSON + "\nVeja também " + stray,
			"both":   stray + " " + recordJSON + " " + stray,
		} {
			t.Run(name+" "+stray, func(t *testing.T) {
				e, err := Parse(raw)
				require.NoError(t, err)
				assert.Equal(t, "Concurso INSS", e.Title)
				assert.Len(t, e.Disciplines, 2)
			})
		}
	}
}
