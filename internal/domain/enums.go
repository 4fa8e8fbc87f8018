package domain

// Category classifies a line item by equipment family. Values follow the
// wire schema emitted by the conversational model (pt-BR, no accents).
type Category string

const (
	CategorySound      Category = "Som"
	CategoryLighting   Category = "Iluminacao"
	CategoryDanceFloor Category = "Pista"
	CategoryLED        Category = "LED"
	CategoryOther      Category = "Outro"
)

// DefaultItemNames maps a category to the display name used when the
// heuristic extractor synthesizes an item for it.
var DefaultItemNames = map[Category]string{
	CategorySound:      "Sistema de Som Completo",
	CategoryLighting:   "Iluminação Ambiente",
	CategoryDanceFloor: "Pista de Dança",
	CategoryLED:        "Painel de LED",
}

// ItemName returns the display name for a synthesized item of the given
// category, or a generic name for unmapped categories.
func ItemName(c Category) string {
	if name, ok := DefaultItemNames[c]; ok {
		return name
	}
	return "Item Personalizado"
}

// PriceSource records where a line item's unit price came from.
type PriceSource string

const (
	PriceSourceHistorical PriceSource = "historico"
	PriceSourceDocument   PriceSource = "documento"
	PriceSourceMarket     PriceSource = "mercado"
	PriceSourceEstimate   PriceSource = "estimativa"
	PriceSourceManual     PriceSource = "manual"
)

// Section identifies a mutable list section of the document for structural
// add/remove operations.
type Section string

const (
	SectionItems     Section = "itens"
	SectionFees      Section = "taxas"
	SectionDiscounts Section = "descontos"
)
