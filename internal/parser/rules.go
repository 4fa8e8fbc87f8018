package parser

import (
	"regexp"
	"strings"
	"time"

	"orcavox/internal/domain"
)

// Extraction rules are plain data so each pattern, capture behavior and
// default can be exercised independently of the extraction flow.

// budgetKeywords gates heuristic extraction: text containing none of
// these is not treated as budget content at all.
var budgetKeywords = []string{
	"orçamento", "preço", "valor", "total", "item", "equipamento", "som", "iluminação",
}

// metaRule derives one metadata field by trying patterns in order and
// returning the first match's capture; fallback supplies the default when
// nothing matches.
type metaRule struct {
	patterns []*regexp.Regexp
	fallback func() string
}

// firstMatch returns the first non-empty capture group of the first
// matching pattern, or the whole match when the pattern has no groups.
func (r metaRule) extract(text string) string {
	for _, re := range r.patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		for _, group := range m[1:] {
			if group != "" {
				return strings.TrimSpace(group)
			}
		}
		return strings.TrimSpace(m[0])
	}
	return r.fallback()
}

var clientRule = metaRule{
	patterns: []*regexp.Regexp{
		regexp.MustCompile(`(?i)cliente:?\s*([^\n]+)`),
		regexp.MustCompile(`(?i)para:?\s*([^\n]+)`),
		regexp.MustCompile(`(?i)sr\.?\s+([^\n]+)`),
		regexp.MustCompile(`(?i)sra\.?\s+([^\n]+)`),
	},
	fallback: func() string { return "Cliente" },
}

var eventRule = metaRule{
	patterns: []*regexp.Regexp{
		regexp.MustCompile(`(?i)evento:?\s*([^\n]+)`),
		regexp.MustCompile(`(?i)(casamento|festa|formatura|aniversário|corporativo)`),
		regexp.MustCompile(`(?i)para\s+(?:um|uma|o|a)?\s*(\w+)`),
	},
	fallback: func() string { return "Evento" },
}

var dateRule = metaRule{
	patterns: []*regexp.Regexp{
		regexp.MustCompile(`(?i)data:?\s*([^\n]+)`),
		regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(?i)(\d{1,2}\s+de\s+\w+)`),
	},
	fallback: func() string { return time.Now().Format("02/01/2006") },
}

var locationRule = metaRule{
	patterns: []*regexp.Regexp{
		regexp.MustCompile(`(?i)local:?\s*([^\n]+)`),
		regexp.MustCompile(`(?i)em\s+([^\n,]+)`),
		regexp.MustCompile(`(?i)endereço:?\s*([^\n]+)`),
	},
	fallback: func() string { return "A definir" },
}

// itemRule maps an equipment keyword pattern to a category and base unit
// price; every matching rule contributes one synthesized line item.
type itemRule struct {
	pattern   *regexp.Regexp
	category  domain.Category
	basePrice float64
}

var itemRules = []itemRule{
	{regexp.MustCompile(`(?i)(som|áudio|caixa|microfone)`), domain.CategorySound, 300},
	{regexp.MustCompile(`(?i)(luz|iluminação|led|refletor)`), domain.CategoryLighting, 200},
	{regexp.MustCompile(`(?i)(pista|dança)`), domain.CategoryDanceFloor, 500},
	{regexp.MustCompile(`(?i)(dj|mesa|mixer)`), domain.CategorySound, 400},
}

// defaultPackagePrice is the price of the single fallback item emitted
// when no equipment keyword matches at all.
const defaultPackagePrice = 800

var (
	attendeesRe = regexp.MustCompile(`(?i)(\d+)\s*pessoas`)
	hoursRe     = regexp.MustCompile(`(?i)(\d+)\s*horas`)
)
