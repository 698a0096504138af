package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/edital-planner/internal/common"
)

var (
	reThousandsDot = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
	reMoneyNoise   = regexp.MustCompile(`(?i)r\$|\s|\x{00a0}`)
	reDecimal      = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// NormalizeEditalJSON loosens common model mistakes before decoding:
//   - money fields given as "R$ 4.500,00" become numbers, unparseable ones are dropped
//   - nulls and blank strings are dropped
//   - a bare string where a list is expected becomes a one-element list
//   - list entries of the wrong type are dropped
//
// It returns the cleaned document and the paths it dropped or rewrote.
func NormalizeEditalJSON(raw []byte, logger *zap.Logger) ([]byte, []string, error) {
	logger = common.OrNop(logger)

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	n := &normalizer{}
	n.object(m, "", map[string]func(string, any) (any, bool){
		"titulo_concurso": n.str,
		"organizacao":     n.str,
		"resumo":          n.str,
		"taxa_inscricao":  n.money,
		"cargos": n.list(func(path string, v any) (any, bool) {
			return n.objectValue(path, v, map[string]func(string, any) (any, bool){
				"nome_cargo":       n.str,
				"vagas":            n.slots,
				"salario":          n.money,
				"requisitos":       n.list(n.str),
				"jornada_trabalho": n.str,
			})
		}),
		"cronograma": n.list(func(path string, v any) (any, bool) {
			return n.objectValue(path, v, map[string]func(string, any) (any, bool){
				"evento": n.str,
				"data":   n.str,
			})
		}),
		"conteudo_programatico": n.list(func(path string, v any) (any, bool) {
			return n.objectValue(path, v, map[string]func(string, any) (any, bool){
				"id":         n.str,
				"disciplina": n.str,
				"topicos":    n.list(n.topic),
			})
		}),
	})

	out, err := json.Marshal(m)
	if err != nil {
		return nil, n.changed, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(n.changed) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", zap.Strings("changed", n.changed))
	}
	return out, n.changed, nil
}

type normalizer struct {
	changed []string
}

func (n *normalizer) note(path, what string) {
	n.changed = append(n.changed, path+"("+what+")")
}

// object rewrites known keys of m in place; unknown keys are left alone.
func (n *normalizer) object(m map[string]any, prefix string, fields map[string]func(string, any) (any, bool)) {
	for k, fix := range fields {
		v, ok := m[k]
		if !ok {
			continue
		}
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if v == nil {
			delete(m, k)
			n.note(path, "null")
			continue
		}
		nv, keep := fix(path, v)
		if !keep {
			delete(m, k)
			continue
		}
		m[k] = nv
	}
}

func (n *normalizer) objectValue(path string, v any, fields map[string]func(string, any) (any, bool)) (any, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		n.note(path, "type")
		return nil, false
	}
	n.object(obj, path, fields)
	return obj, true
}

func (n *normalizer) list(item func(string, any) (any, bool)) func(string, any) (any, bool) {
	return func(path string, v any) (any, bool) {
		arr, ok := v.([]any)
		if !ok {
			if _, isStr := v.(string); !isStr {
				n.note(path, "type")
				return nil, false
			}
			n.note(path, "wrapped")
			arr = []any{v}
		}
		out := make([]any, 0, len(arr))
		for i, el := range arr {
			p := fmt.Sprintf("%s[%d]", path, i)
			if el == nil {
				n.note(p, "null")
				continue
			}
			if nv, keep := item(p, el); keep {
				out = append(out, nv)
			}
		}
		return out, true
	}
}

func (n *normalizer) str(path string, v any) (any, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			n.note(path, "empty")
			return nil, false
		}
		return s, true
	case float64:
		n.note(path, "number")
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		n.note(path, "type")
		return nil, false
	}
}

func (n *normalizer) topic(path string, v any) (any, bool) {
	if obj, ok := v.(map[string]any); ok {
		if name, ok := obj["nome"].(string); ok && strings.TrimSpace(name) != "" {
			obj["nome"] = strings.TrimSpace(name)
			return obj, true
		}
		n.note(path, "type")
		return nil, false
	}
	return n.str(path, v)
}

func (n *normalizer) money(path string, v any) (any, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, ok := ParseMoney(t)
		if !ok {
			n.note(path, "unparseable")
			return nil, false
		}
		n.note(path, "coerced")
		return f, true
	default:
		n.note(path, "type")
		return nil, false
	}
}

func (n *normalizer) slots(path string, v any) (any, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			n.note(path, "empty")
			return nil, false
		}
		if i, err := strconv.Atoi(s); err == nil {
			n.note(path, "coerced")
			return float64(i), true
		}
		return s, true
	default:
		n.note(path, "type")
		return nil, false
	}
}

// ParseMoney reads Brazilian and plain decimal amounts: "R$ 4.500,00",
// "4500.00", "1.234", "95,5".
func ParseMoney(s string) (float64, bool) {
	s = reMoneyNoise.ReplaceAllString(strings.TrimSpace(s), "")
	if s == "" {
		return 0, false
	}
	comma, dot := strings.LastIndexByte(s, ','), strings.LastIndexByte(s, '.')
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case reThousandsDot.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	}
	if !reDecimal.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
