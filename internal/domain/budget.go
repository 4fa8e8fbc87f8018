package domain

// BudgetDocument is the canonical in-memory representation of a quote.
// JSON tags follow the wire schema spoken by the conversational model
// (pt-BR field names), so a budget_draft payload unmarshals directly
// into this type.
type BudgetDocument struct {
	Type        string     `json:"type"`
	Meta        Meta       `json:"meta"`
	Assumptions []string   `json:"premissas"`
	Items       []LineItem `json:"itens"`
	Fees        []Fee      `json:"taxas"`
	Discounts   []Discount `json:"descontos"`
	Taxes       []Tax      `json:"impostos"`
	Totals      Totals     `json:"totais"`
	Conditions  Conditions `json:"condicoes"`
}

// Meta carries client/event metadata for the quote.
type Meta struct {
	Client       string `json:"cliente"`
	Event        string `json:"evento"`
	Date         string `json:"data"`
	Location     string `json:"local"`
	Currency     string `json:"moeda"`
	ValidityDays int    `json:"validade_dias"`
}

// LineItem is a single rented equipment entry. Subtotal is derived and is
// overwritten on every recompute.
type LineItem struct {
	Category      Category    `json:"categoria"`
	Name          string      `json:"nome"`
	Quantity      float64     `json:"quantidade"`
	DurationHours float64     `json:"duracao_h"`
	UnitPrice     float64     `json:"preco_unit"`
	Subtotal      float64     `json:"subtotal"`
	PriceSource   PriceSource `json:"fonte_preco"`
	Notes         string      `json:"observacoes"`
}

// Fee is a flat additional charge (transport, rigging, operator).
type Fee struct {
	Name   string  `json:"nome"`
	Amount float64 `json:"valor"`
}

// Discount is a flat reduction applied before taxes.
type Discount struct {
	Name   string  `json:"nome"`
	Amount float64 `json:"valor"`
}

// Tax is a percentage applied over the taxable base.
type Tax struct {
	Name    string  `json:"nome"`
	Percent float64 `json:"percentual"`
}

// Totals holds the derived financial summary. Never set directly; always
// produced by RecalculateTotals.
type Totals struct {
	ItemsSubtotal float64 `json:"subtotal_itens"`
	Fees          float64 `json:"taxas"`
	Discounts     float64 `json:"descontos"`
	Taxes         float64 `json:"impostos"`
	GrandTotal    float64 `json:"total_geral"`
}

// Conditions carries the commercial terms of the quote. Notes may hold
// rich text (the heuristic extractor stores the full original reply there).
type Conditions struct {
	PaymentTerms      string `json:"pagamento"`
	ExecutionDeadline string `json:"prazo_execucao"`
	Notes             string `json:"observacoes"`
}

// NewSkeleton returns an empty budget document ready to receive
// budget_partial merges.
func NewSkeleton() *BudgetDocument {
	return &BudgetDocument{
		Type:        "budget_draft",
		Assumptions: []string{},
		Items:       []LineItem{},
		Fees:        []Fee{},
		Discounts:   []Discount{},
		Taxes:       []Tax{},
	}
}

// Clone returns a deep copy of the document, used for baseline snapshots.
func (d *BudgetDocument) Clone() *BudgetDocument {
	if d == nil {
		return nil
	}
	c := *d
	c.Assumptions = append([]string(nil), d.Assumptions...)
	c.Items = append([]LineItem(nil), d.Items...)
	c.Fees = append([]Fee(nil), d.Fees...)
	c.Discounts = append([]Discount(nil), d.Discounts...)
	c.Taxes = append([]Tax(nil), d.Taxes...)
	return &c
}

// RecalculateTotals is the single authority for derived totals. It rewrites
// every item subtotal and the totals block in place and must run after any
// mutation to items, fees, discounts or taxes. Idempotent.
func (d *BudgetDocument) RecalculateTotals() *BudgetDocument {
	var itemsSubtotal float64
	for i := range d.Items {
		d.Items[i].Subtotal = d.Items[i].Quantity * d.Items[i].UnitPrice
		itemsSubtotal += d.Items[i].Subtotal
	}

	var totalFees float64
	for _, f := range d.Fees {
		totalFees += f.Amount
	}

	var totalDiscounts float64
	for _, disc := range d.Discounts {
		totalDiscounts += disc.Amount
	}

	taxBase := itemsSubtotal + totalFees - totalDiscounts
	var totalTaxes float64
	for _, t := range d.Taxes {
		totalTaxes += taxBase * (t.Percent / 100)
	}

	d.Totals = Totals{
		ItemsSubtotal: itemsSubtotal,
		Fees:          totalFees,
		Discounts:     totalDiscounts,
		Taxes:         totalTaxes,
		GrandTotal:    taxBase + totalTaxes,
	}
	return d
}

// DefaultLineItem is the entry appended when the user adds a row manually.
func DefaultLineItem() LineItem {
	return LineItem{
		Category:    CategoryOther,
		Name:        "Novo Item",
		Quantity:    1,
		PriceSource: PriceSourceManual,
	}
}

// AddToSection appends a default entry to the given list section.
func (d *BudgetDocument) AddToSection(s Section) error {
	switch s {
	case SectionItems:
		d.Items = append(d.Items, DefaultLineItem())
	case SectionFees:
		d.Fees = append(d.Fees, Fee{Name: "Nova Taxa/Desconto"})
	case SectionDiscounts:
		d.Discounts = append(d.Discounts, Discount{Name: "Nova Taxa/Desconto"})
	default:
		return ErrUnknownSection
	}
	d.RecalculateTotals()
	return nil
}

// RemoveFromSection deletes the entry at index from the given list section.
func (d *BudgetDocument) RemoveFromSection(s Section, index int) error {
	switch s {
	case SectionItems:
		if index < 0 || index >= len(d.Items) {
			return ErrIndexOutOfRange
		}
		d.Items = append(d.Items[:index], d.Items[index+1:]...)
	case SectionFees:
		if index < 0 || index >= len(d.Fees) {
			return ErrIndexOutOfRange
		}
		d.Fees = append(d.Fees[:index], d.Fees[index+1:]...)
	case SectionDiscounts:
		if index < 0 || index >= len(d.Discounts) {
			return ErrIndexOutOfRange
		}
		d.Discounts = append(d.Discounts[:index], d.Discounts[index+1:]...)
	default:
		return ErrUnknownSection
	}
	d.RecalculateTotals()
	return nil
}
