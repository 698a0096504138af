package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/edital-planner/internal/common"
	"github.com/joseph-ayodele/edital-planner/internal/entity"
)

const (
	msgNoJSON    = "A resposta da IA não continha um objeto JSON válido."
	msgMalformed = "A resposta da IA não estava no formato JSON esperado."
)

var reFenced = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*\\n(.*?)```")

// Parser turns raw model output into an Edital.
type Parser struct {
	logger *zap.Logger
}

// NewParser returns a Parser; logger may be nil.
func NewParser(logger *zap.Logger) *Parser {
	return &Parser{logger: common.OrNop(logger)}
}

// Parse is Parser.Parse with no logging.
func Parse(raw string) (entity.Edital, error) {
	return NewParser(nil).Parse(raw)
}

// Parse extracts one JSON object from raw and decodes it. Candidates are tried
// in order: marker-delimited payloads (last first), fenced code blocks,
// balanced objects, and finally the span from the first '{' to the last '}'.
// The whole record decodes or the call fails; there is no partial recovery.
func (p *Parser) Parse(raw string) (entity.Edital, error) {
	first := strings.IndexByte(raw, '{')
	if first < 0 || strings.LastIndexByte(raw, '}') < first {
		return entity.Edital{}, common.NewAppError(common.CodeNoJSON, msgNoJSON, common.ErrNoJSONFound)
	}

	var lastErr error
	for _, c := range candidates(raw) {
		e, err := p.decode(c.text, c.keyed)
		if err == nil {
			p.logger.Debug("llm.parse.ok", zap.String("source", c.source), zap.Int("disciplines", len(e.Disciplines)))
			return e, nil
		}
		lastErr = err
	}
	p.logger.Warn("llm.parse.malformed", zap.Error(lastErr), zap.Int("raw_len", len(raw)))
	return entity.Edital{}, common.NewAppError(common.CodeMalformed, msgMalformed, fmt.Errorf("%w: %v", common.ErrMalformedJSON, lastErr))
}

// decode parses one candidate. A keyed candidate must carry at least one
// edital field at its top level, so a nested fragment such as a single
// discipline is never mistaken for the record.
func (p *Parser) decode(text string, keyed bool) (entity.Edital, error) {
	b := []byte(strings.TrimSpace(text))
	if len(b) == 0 || b[0] != '{' {
		return entity.Edital{}, fmt.Errorf("not an object")
	}
	if !json.Valid(b) {
		return entity.Edital{}, fmt.Errorf("invalid json")
	}
	if keyed && !hasEditalField(b) {
		return entity.Edital{}, fmt.Errorf("no edital field")
	}
	cleaned, _, err := NormalizeEditalJSON(b, p.logger)
	if err != nil {
		return entity.Edital{}, err
	}
	if vErr := ValidateJSONAgainstSchema(EditalSchema(), cleaned); vErr != nil {
		p.logger.Warn("llm.parse.schema_mismatch", zap.Error(vErr))
	}
	var e entity.Edital
	dec := json.NewDecoder(bytes.NewReader(cleaned))
	if err := dec.Decode(&e); err != nil {
		return entity.Edital{}, err
	}
	return e, nil
}

// editalFields are the top-level keys of the record.
var editalFields = []string{
	"titulo_concurso", "organizacao", "resumo", "taxa_inscricao",
	"cargos", "cronograma", "conteudo_programatico",
}

func hasEditalField(b []byte) bool {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(b, &top); err != nil {
		return false
	}
	for _, k := range editalFields {
		if _, ok := top[k]; ok {
			return true
		}
	}
	return false
}

type candidate struct {
	source string
	text   string
	keyed  bool
}

// candidates lists the spans to try. Marker payloads and the legacy span are
// taken as they are; fenced and balanced spans must look like the record.
func candidates(raw string) []candidate {
	var out []candidate
	markers := markerBlocks(raw)
	for i := len(markers) - 1; i >= 0; i-- {
		out = append(out, candidate{source: "marker", text: markers[i]})
	}
	for _, m := range reFenced.FindAllStringSubmatch(raw, -1) {
		out = append(out, candidate{source: "fence", text: m[1], keyed: true})
	}
	for _, obj := range balancedObjects(raw) {
		out = append(out, candidate{source: "balanced", text: obj, keyed: true})
	}
	first, last := strings.IndexByte(raw, '{'), strings.LastIndexByte(raw, '}')
	out = append(out, candidate{source: "span", text: raw[first : last+1]})
	return out
}

func markerBlocks(raw string) []string {
	var out []string
	rest := raw
	for {
		i := strings.Index(rest, OpenMarker)
		if i < 0 {
			return out
		}
		rest = rest[i+len(OpenMarker):]
		j := strings.Index(rest, CloseMarker)
		if j < 0 {
			return out
		}
		out = append(out, unfence(rest[:j]))
		rest = rest[j+len(CloseMarker):]
	}
}

// unfence strips a code fence wrapped around a marker payload.
func unfence(s string) string {
	s = strings.TrimSpace(s)
	if m := reFenced.FindStringSubmatch(s); m != nil && strings.HasPrefix(s, "```") {
		return m[1]
	}
	return s
}

// balancedObjects returns every top-level {...} span whose braces balance,
// ignoring braces inside JSON strings. Longer spans come first. An object that
// never closes ends the scan: every later brace is nested inside it.
func balancedObjects(raw string) []string {
	var out []string
	for start := 0; start < len(raw); {
		i := strings.IndexByte(raw[start:], '{')
		if i < 0 {
			break
		}
		i += start
		end := matchBrace(raw, i)
		if end < 0 {
			break
		}
		out = append(out, raw[i:end+1])
		start = end + 1
	}
	// prefer the largest object; the answer is normally bigger than any stray fragment
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && len(out[j]) > len(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func matchBrace(s string, open int) int {
	depth := 0
	inString, escaped := false, false
	for i := open; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
