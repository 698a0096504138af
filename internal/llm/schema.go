package llm

// EditalSchema returns the JSON Schema of an extracted edital. Extraction
// only warns on mismatches; the record is still accepted.
func EditalSchema() map[string]any {
	str := map[string]any{"type": "string"}
	num := map[string]any{"type": "number"}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"titulo_concurso": str,
			"organizacao":     str,
			"resumo":          str,
			"taxa_inscricao":  num,
			"cargos": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"nome_cargo":       str,
						"vagas":            map[string]any{"type": []string{"number", "string"}},
						"salario":          num,
						"requisitos":       map[string]any{"type": "array", "items": str},
						"jornada_trabalho": str,
					},
				},
			},
			"cronograma": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":       "object",
					"properties": map[string]any{"evento": str, "data": str},
				},
			},
			"conteudo_programatico": map[string]any{
				"type":  "array",
				"items": disciplineSchema(),
			},
		},
	}
}

func disciplineSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":         map[string]any{"type": "string"},
			"disciplina": map[string]any{"type": "string"},
			"topicos": map[string]any{
				"type": "array",
				"items": map[string]any{
					"anyOf": []any{
						map[string]any{"type": "string"},
						map[string]any{
							"type":       "object",
							"required":   []string{"nome"},
							"properties": map[string]any{"id": map[string]any{"type": "string"}, "nome": map[string]any{"type": "string"}},
						},
					},
				},
			},
		},
	}
}

// ProfileSchema returns the JSON Schema the profile API enforces on
// POST /profile bodies. Mock scores must lie in 0..100.
func ProfileSchema() map[string]any {
	links := map[string]any{
		"type": "object",
		"additionalProperties": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"id", "title", "url"},
				"properties": map[string]any{
					"id":    map[string]any{"type": "string"},
					"title": map[string]any{"type": "string", "minLength": 1},
					"url":   map[string]any{"type": "string", "pattern": `^https?://`},
				},
			},
		},
	}
	plan := map[string]any{
		"type":     "object",
		"required": []string{"id", "name", "createdAt", "editalData"},
		"properties": map[string]any{
			"id":         map[string]any{"type": "string", "minLength": 1},
			"name":       map[string]any{"type": "string"},
			"createdAt":  map[string]any{"type": "integer"},
			"editalData": EditalSchema(),
			"checkedTopics": map[string]any{
				"type":                 []string{"object", "null"},
				"additionalProperties": map[string]any{"type": "boolean"},
			},
			"mockScores": map[string]any{
				"type": []string{"object", "null"},
				"additionalProperties": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "number", "minimum": 0, "maximum": 100},
				},
			},
			"subTopics": map[string]any{
				"type": []string{"object", "null"},
				"additionalProperties": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":     "object",
						"required": []string{"id", "text"},
						"properties": map[string]any{
							"id":        map[string]any{"type": "string"},
							"text":      map[string]any{"type": "string"},
							"completed": map[string]any{"type": "boolean"},
						},
					},
				},
			},
			"disciplineLinks": nullable(links),
			"topicLinks":      nullable(links),
		},
	}
	return map[string]any{
		"type":     "object",
		"required": []string{"plans"},
		"properties": map[string]any{
			"user": map[string]any{
				"type":       "object",
				"properties": map[string]any{"email": map[string]any{"type": "string"}},
			},
			"plans": map[string]any{
				"type":                 "object",
				"additionalProperties": plan,
			},
			"activePlanId": map[string]any{"type": []string{"string", "null"}},
		},
	}
}

func nullable(schema map[string]any) map[string]any {
	out := make(map[string]any, len(schema))
	for k, v := range schema {
		out[k] = v
	}
	out["type"] = []string{"object", "null"}
	return out
}
