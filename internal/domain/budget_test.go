package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orcavox/internal/domain"
)

func sampleDocument() *domain.BudgetDocument {
	return &domain.BudgetDocument{
		Type: "budget_draft",
		Meta: domain.Meta{
			Client:       "Maria Souza",
			Event:        "Casamento",
			Currency:     "BRL",
			ValidityDays: 7,
		},
		Items: []domain.LineItem{
			{Category: domain.CategorySound, Name: "Sistema de Som Completo", Quantity: 2, UnitPrice: 300, PriceSource: domain.PriceSourceEstimate},
			{Category: domain.CategoryLighting, Name: "Iluminação Ambiente", Quantity: 1, UnitPrice: 200, PriceSource: domain.PriceSourceEstimate},
		},
		Fees:      []domain.Fee{{Name: "Transporte", Amount: 150}},
		Discounts: []domain.Discount{{Name: "À vista", Amount: 50}},
		Taxes:     []domain.Tax{{Name: "ISS", Percent: 5}},
	}
}

func TestRecalculateTotals_Invariant(t *testing.T) {
	doc := sampleDocument()
	doc.RecalculateTotals()

	// itemsSubtotal = 2*300 + 1*200
	assert.InDelta(t, 800.0, doc.Totals.ItemsSubtotal, 1e-6)
	assert.InDelta(t, 150.0, doc.Totals.Fees, 1e-6)
	assert.InDelta(t, 50.0, doc.Totals.Discounts, 1e-6)

	// taxBase = 800 + 150 - 50 = 900; taxes = 900 * 5% = 45
	assert.InDelta(t, 45.0, doc.Totals.Taxes, 1e-6)
	assert.InDelta(t, 945.0, doc.Totals.GrandTotal, 1e-6)

	// per-item subtotals are rewritten
	assert.InDelta(t, 600.0, doc.Items[0].Subtotal, 1e-6)
	assert.InDelta(t, 200.0, doc.Items[1].Subtotal, 1e-6)
}

func TestRecalculateTotals_Idempotent(t *testing.T) {
	doc := sampleDocument()
	doc.RecalculateTotals()
	first := doc.Totals

	doc.RecalculateTotals()
	assert.Equal(t, first, doc.Totals)
}

func TestRecalculateTotals_EmptyDocument(t *testing.T) {
	doc := domain.NewSkeleton()
	doc.RecalculateTotals()

	assert.Zero(t, doc.Totals.ItemsSubtotal)
	assert.Zero(t, doc.Totals.GrandTotal)
}

func TestClone_IsDeep(t *testing.T) {
	doc := sampleDocument()
	doc.RecalculateTotals()

	clone := doc.Clone()
	require.NotNil(t, clone)

	clone.Items[0].UnitPrice = 9999
	clone.Assumptions = append(clone.Assumptions, "alterado")
	clone.Meta.Client = "Outro Cliente"

	assert.InDelta(t, 300.0, doc.Items[0].UnitPrice, 1e-6)
	assert.Empty(t, doc.Assumptions)
	assert.Equal(t, "Maria Souza", doc.Meta.Client)
}

func TestAddToSection(t *testing.T) {
	doc := sampleDocument()
	doc.RecalculateTotals()
	before := doc.Totals.GrandTotal

	require.NoError(t, doc.AddToSection(domain.SectionItems))
	require.Len(t, doc.Items, 3)
	assert.Equal(t, domain.CategoryOther, doc.Items[2].Category)
	assert.Equal(t, domain.PriceSourceManual, doc.Items[2].PriceSource)

	// a zero-priced default row must not move the total
	assert.InDelta(t, before, doc.Totals.GrandTotal, 1e-6)

	require.NoError(t, doc.AddToSection(domain.SectionFees))
	require.NoError(t, doc.AddToSection(domain.SectionDiscounts))
	assert.Len(t, doc.Fees, 2)
	assert.Len(t, doc.Discounts, 2)

	assert.ErrorIs(t, doc.AddToSection(domain.Section("impostos")), domain.ErrUnknownSection)
}

func TestRemoveFromSection(t *testing.T) {
	doc := sampleDocument()
	doc.RecalculateTotals()

	require.NoError(t, doc.RemoveFromSection(domain.SectionItems, 0))
	require.Len(t, doc.Items, 1)
	assert.Equal(t, domain.CategoryLighting, doc.Items[0].Category)

	// totals follow the structural change: 200 + 150 - 50 = 300; +5% = 315
	assert.InDelta(t, 315.0, doc.Totals.GrandTotal, 1e-6)

	assert.ErrorIs(t, doc.RemoveFromSection(domain.SectionItems, 5), domain.ErrIndexOutOfRange)
	assert.ErrorIs(t, doc.RemoveFromSection(domain.Section("meta"), 0), domain.ErrUnknownSection)
}

func TestItemName(t *testing.T) {
	assert.Equal(t, "Sistema de Som Completo", domain.ItemName(domain.CategorySound))
	assert.Equal(t, "Item Personalizado", domain.ItemName(domain.CategoryOther))
}
