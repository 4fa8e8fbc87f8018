package parser

import (
	"fmt"
	"strings"
	"time"

	"orcavox/internal/analytics"
	"orcavox/internal/domain"
)

// Extractor synthesizes a best-effort budget document from unstructured
// text. A nil result means "no budget content", not an error.
type Extractor struct {
	rec *analytics.Recorder
}

// NewExtractor creates an Extractor reporting step timings to rec.
func NewExtractor(rec *analytics.Recorder) *Extractor {
	return &Extractor{rec: rec}
}

// Extract runs the keyword gate and, when it passes, assembles a full
// document skeleton from regex rules. Each step is timed individually and
// the breakdown is forwarded to analytics.
func (e *Extractor) Extract(text string) *domain.BudgetDocument {
	steps := map[string]float64{}

	stepStart := time.Now()
	lower := strings.ToLower(text)
	hasBudgetContent := false
	for _, kw := range budgetKeywords {
		if strings.Contains(lower, kw) {
			hasBudgetContent = true
			break
		}
	}
	steps["keyword_analysis"] = millisSince(stepStart)

	if !hasBudgetContent {
		e.rec.RecordFieldEdit("text_parsing_no_keywords", nil, analytics.FallbackSample{
			Duration:   steps["keyword_analysis"],
			TextLength: len(text),
		})
		return nil
	}

	stepStart = time.Now()
	meta := domain.Meta{
		Client:       clientRule.extract(text),
		Event:        eventRule.extract(text),
		Date:         dateRule.extract(text),
		Location:     locationRule.extract(text),
		Currency:     "BRL",
		ValidityDays: 7,
	}
	steps["meta_extraction"] = millisSince(stepStart)

	stepStart = time.Now()
	assumptions := extractAssumptions(text)
	steps["assumptions_extraction"] = millisSince(stepStart)

	stepStart = time.Now()
	items := extractItems(text)
	steps["items_extraction"] = millisSince(stepStart)

	stepStart = time.Now()
	doc := &domain.BudgetDocument{
		Type:        "budget_draft",
		Meta:        meta,
		Assumptions: assumptions,
		Items:       items,
		Fees:        []domain.Fee{{Name: "Transporte", Amount: 0}},
		Discounts:   []domain.Discount{},
		Taxes:       []domain.Tax{{Name: "ISS", Percent: 5}},
		Conditions: domain.Conditions{
			PaymentTerms:      "50% entrada + 50% no evento",
			ExecutionDeadline: "Conforme agendado",
			Notes:             text,
		},
	}
	doc.RecalculateTotals()
	steps["budget_construction"] = millisSince(stepStart)

	slowestStep, slowestTime := "", 0.0
	for step, ms := range steps {
		if ms > slowestTime {
			slowestStep, slowestTime = step, ms
		}
	}

	e.rec.RecordFieldEdit("text_parsing_breakdown", nil, analytics.BreakdownSample{
		Steps:          steps,
		SlowestStep:    slowestStep,
		SlowestTime:    slowestTime,
		ItemsExtracted: len(items),
		TextLength:     len(text),
	})

	return doc
}

func extractAssumptions(text string) []string {
	var assumptions []string

	if m := attendeesRe.FindStringSubmatch(text); m != nil {
		assumptions = append(assumptions, fmt.Sprintf("Evento para %s pessoas", m[1]))
	}

	if m := hoursRe.FindStringSubmatch(text); m != nil {
		assumptions = append(assumptions, fmt.Sprintf("Duração de %s horas", m[1]))
	} else {
		assumptions = append(assumptions, "Duração padrão de 6 horas")
	}

	assumptions = append(assumptions,
		"Montagem e desmontagem incluídas",
		"Operador técnico durante todo evento",
	)
	return assumptions
}

func extractItems(text string) []domain.LineItem {
	var items []domain.LineItem

	for _, rule := range itemRules {
		if !rule.pattern.MatchString(text) {
			continue
		}
		items = append(items, domain.LineItem{
			Category:      rule.category,
			Name:          domain.ItemName(rule.category),
			Quantity:      1,
			DurationHours: 6,
			UnitPrice:     rule.basePrice,
			Subtotal:      rule.basePrice,
			PriceSource:   domain.PriceSourceEstimate,
			Notes:         "Extraído do texto",
		})
	}

	if len(items) == 0 {
		items = append(items, domain.LineItem{
			Category:      domain.CategorySound,
			Name:          "Pacote de Som Básico",
			Quantity:      1,
			DurationHours: 6,
			UnitPrice:     defaultPackagePrice,
			Subtotal:      defaultPackagePrice,
			PriceSource:   domain.PriceSourceEstimate,
			Notes:         "Pacote padrão",
		})
	}

	return items
}

func millisSince(t time.Time) float64 {
	return float64(time.Since(t)) / float64(time.Millisecond)
}
