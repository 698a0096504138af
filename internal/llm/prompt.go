package llm

import (
	"fmt"
	"strings"
)

// Markers delimiting the final JSON answer in the model output.
const (
	OpenMarker  = "<<<EDITAL_JSON"
	CloseMarker = "EDITAL_JSON>>>"
)

const contentHeader = "\n\n**CONTEÚDO DO EDITAL PARA ANÁLISE:**\n\n"

const instructions = `**Instrução de Sistema:**
Você analisa editais de concursos públicos brasileiros. Extraia informações estruturadas do edital enviado pelo usuário, que pode chegar como texto, imagem ou PDF.

**Esquema JSON esperado:**
{
  "titulo_concurso": "string",
  "organizacao": "string",
  "resumo": "string",
  "taxa_inscricao": "number",
  "cargos": [
    {
      "nome_cargo": "string",
      "vagas": "number | string",
      "salario": "number",
      "requisitos": ["string"],
      "jornada_trabalho": "string"
    }
  ],
  "cronograma": [
    { "evento": "string", "data": "string" }
  ],
  "conteudo_programatico": [
    { "disciplina": "string", "topicos": ["string"] }
  ]
}

**Tarefa:**
Leia o edital e preencha o esquema. Omita campos que não aparecem no documento.
Em "conteudo_programatico", cada assunto deve ser um item separado de "topicos"; não junte vários assuntos na mesma string.
Valores monetários devem ser números (4500.00), sem "R$" nem separador de milhar.

**Formato da resposta:**
Escreva o JSON final entre as linhas ` + OpenMarker + ` e ` + CloseMarker + `, sem nenhum outro texto entre elas. Não repita o exemplo abaixo.

**Exemplo de JSON (apenas ilustrativo):**
  {
    "titulo_concurso": "Concurso Público da Prefeitura de Exemplo",
    "organizacao": "Instituto Exemplo de Seleção",
    "resumo": "Vagas de nível médio e superior para a administração municipal.",
    "taxa_inscricao": 95.50,
    "cargos": [
      {
        "nome_cargo": "Analista Administrativo",
        "vagas": 5,
        "salario": 4500.00,
        "requisitos": ["Nível superior em Administração"],
        "jornada_trabalho": "40 horas semanais"
      }
    ],
    "cronograma": [
      { "evento": "Inscrições", "data": "01/10/2024 a 30/10/2024" },
      { "evento": "Prova objetiva", "data": "15/12/2024" }
    ],
    "conteudo_programatico": [
      { "disciplina": "Língua Portuguesa", "topicos": ["Interpretação de textos", "Concordância verbal e nominal", "Crase"] },
      { "disciplina": "Raciocínio Lógico", "topicos": ["Estruturas lógicas", "Diagramas lógicos"] }
    ]
  }
`

// BuildInstructions returns the fixed instructions plus the optional role focus.
func BuildInstructions(role string) string {
	role = strings.TrimSpace(role)
	if role == "" {
		return instructions
	}
	return instructions + fmt.Sprintf("\n**Foco de Análise Específico:**\n"+
		"O usuário quer o cargo de %q. Dê atenção especial a ele e priorize o conteúdo programático específico desse cargo. "+
		"Se o conteúdo for comum a todos os cargos, extraia normalmente. "+
		"Se houver conteúdos diferentes por cargo, extraia APENAS o do cargo solicitado.\n", role)
}

// BuildParts composes the ordered prompt segments for req: instructions first,
// then either the edital text or the attachment.
func BuildParts(req ExtractRequest) []Part {
	parts := []Part{{Text: BuildInstructions(req.Role)}}
	if req.Attachment != nil && len(req.Attachment.Data) > 0 {
		return append(parts, Part{Data: req.Attachment.Data, MIMEType: req.Attachment.MIMEType})
	}
	return append(parts, Part{Text: contentHeader + req.Text})
}
