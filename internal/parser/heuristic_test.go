package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orcavox/internal/analytics"
	"orcavox/internal/domain"
	"orcavox/internal/parser"
)

func TestExtractor_WeddingText(t *testing.T) {
	rec := analytics.NewRecorder()
	e := parser.NewExtractor(rec)

	doc := e.Extract("Orçamento para casamento, 150 pessoas, 8 horas, precisamos de som e iluminação")
	require.NotNil(t, doc)

	assert.Contains(t, doc.Assumptions, "Evento para 150 pessoas")
	assert.Contains(t, doc.Assumptions, "Duração de 8 horas")
	assert.Equal(t, "casamento", doc.Meta.Event)

	require.Len(t, doc.Items, 2)
	assert.Equal(t, domain.CategorySound, doc.Items[0].Category)
	assert.InDelta(t, 300.0, doc.Items[0].UnitPrice, 1e-6)
	assert.Equal(t, domain.CategoryLighting, doc.Items[1].Category)
	assert.InDelta(t, 200.0, doc.Items[1].UnitPrice, 1e-6)

	assert.InDelta(t, 500.0, doc.Totals.ItemsSubtotal, 1e-6)
	// zero transport fee plus 5% tax over the subtotal
	assert.InDelta(t, 525.0, doc.Totals.GrandTotal, 1e-6)
}

func TestExtractor_NoKeywords(t *testing.T) {
	rec := analytics.NewRecorder()
	e := parser.NewExtractor(rec)

	assert.Nil(t, e.Extract("Como está o tempo hoje?"))
	assert.Nil(t, e.Extract(""))
}

func TestExtractor_DefaultPackage(t *testing.T) {
	rec := analytics.NewRecorder()
	e := parser.NewExtractor(rec)

	// budget keyword present but no equipment keyword matches
	doc := e.Extract("Qual o valor para o evento de sexta?")
	require.NotNil(t, doc)

	require.Len(t, doc.Items, 1)
	assert.Equal(t, "Pacote de Som Básico", doc.Items[0].Name)
	assert.InDelta(t, 800.0, doc.Items[0].UnitPrice, 1e-6)
	assert.Equal(t, domain.PriceSourceEstimate, doc.Items[0].PriceSource)
}

func TestExtractor_DefaultAssumptions(t *testing.T) {
	rec := analytics.NewRecorder()
	e := parser.NewExtractor(rec)

	doc := e.Extract("orçamento de som para sábado")
	require.NotNil(t, doc)

	assert.Contains(t, doc.Assumptions, "Duração padrão de 6 horas")
	assert.Contains(t, doc.Assumptions, "Montagem e desmontagem incluídas")
	assert.Contains(t, doc.Assumptions, "Operador técnico durante todo evento")
	assert.NotContains(t, doc.Assumptions, "Evento para 0 pessoas")
}

func TestExtractor_MetaRules(t *testing.T) {
	rec := analytics.NewRecorder()
	e := parser.NewExtractor(rec)

	doc := e.Extract("Cliente: João Silva\nEvento: formatura\nData: 12/10/2026\nLocal: Salão Azul\nPrecisamos de um orçamento de iluminação")
	require.NotNil(t, doc)

	assert.Equal(t, "João Silva", doc.Meta.Client)
	assert.Equal(t, "formatura", doc.Meta.Event)
	assert.Equal(t, "12/10/2026", doc.Meta.Date)
	assert.Equal(t, "Salão Azul", doc.Meta.Location)
	assert.Equal(t, "BRL", doc.Meta.Currency)
	assert.Equal(t, 7, doc.Meta.ValidityDays)
}

func TestExtractor_KeepsFullTextInConditions(t *testing.T) {
	rec := analytics.NewRecorder()
	e := parser.NewExtractor(rec)

	text := "orçamento com dj e pista de dança"
	doc := e.Extract(text)
	require.NotNil(t, doc)

	assert.Equal(t, text, doc.Conditions.Notes)
	assert.Equal(t, "50% entrada + 50% no evento", doc.Conditions.PaymentTerms)

	// pista matched the dance-floor rule, dj the console rule
	require.Len(t, doc.Items, 2)
	assert.Equal(t, domain.CategoryDanceFloor, doc.Items[0].Category)
	assert.InDelta(t, 500.0, doc.Items[0].UnitPrice, 1e-6)
	assert.InDelta(t, 400.0, doc.Items[1].UnitPrice, 1e-6)
}

func TestExtractor_RecordsBreakdown(t *testing.T) {
	rec := analytics.NewRecorder()
	e := parser.NewExtractor(rec)

	require.NotNil(t, e.Extract("orçamento de som"))

	stats := rec.Stats()
	require.NotEmpty(t, stats.PipelineBreakdown["slowest_parsing_steps"])
	for step := range stats.PipelineBreakdown["slowest_parsing_steps"] {
		assert.Contains(t, stats.PerformanceMetrics, "step_"+step+"_time")
	}
}
