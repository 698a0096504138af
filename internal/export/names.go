package export

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/edital-planner/internal/entity"
)

const maxSheetName = 31

// Fixed workbook sheets, in order.
const (
	SheetDashboard  = "Dashboard"
	SheetSummary    = "Resumo"
	SheetInfo       = "Infos Gerais"
	SheetPositions  = "Cargos"
	SheetSchedule   = "Cronograma"
	defaultFileBase = "edital"
)

var sheetNameReplacer = strings.NewReplacer(`\`, "", "/", "", "?", "", "*", "", "[", "", "]", "", ":", "")

// FileName returns the download name for a plan export: the lower-cased
// title with whitespace runs replaced by "_", or "edital".
func FileName(title, ext string) string {
	base := strings.ToLower(strings.Join(strings.Fields(title), "_"))
	base = strings.NewReplacer("/", "-", `\`, "-").Replace(base)
	if base == "" {
		base = defaultFileBase
	}
	return base + "." + strings.TrimPrefix(ext, ".")
}

// SheetName strips the characters spreadsheet applications reject and cuts
// the result to 31 characters.
func SheetName(name string) string {
	s := strings.Trim(sheetNameReplacer.Replace(strings.TrimSpace(name)), "'")
	return cut(strings.TrimSpace(s), maxSheetName)
}

// disciplineSheets maps each discipline with topics to a unique sheet name.
// Disciplines without topics get no sheet and are absent from the map.
func disciplineSheets(e entity.Edital) map[int]string {
	used := map[string]bool{}
	for _, fixed := range []string{SheetDashboard, SheetSummary, SheetInfo, SheetPositions, SheetSchedule} {
		used[strings.ToLower(fixed)] = true
	}
	out := map[int]string{}
	for i, d := range e.Disciplines {
		if len(d.Topics) == 0 {
			continue
		}
		base := SheetName(d.Name)
		if base == "" {
			base = fmt.Sprintf("Disciplina %d", i+1)
		}
		name := base
		for n := 2; used[strings.ToLower(name)]; n++ {
			suffix := fmt.Sprintf(" (%d)", n)
			name = cut(base, maxSheetName-len(suffix)) + suffix
		}
		used[strings.ToLower(name)] = true
		out[i] = name
	}
	return out
}

func cut(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// quoteSheet quotes a sheet name for use in a formula reference.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
