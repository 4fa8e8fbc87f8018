package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"orcavox/internal/domain"
)

var itemColumns = []string{
	"Categoria",
	"Item",
	"Quantidade",
	"Duração (h)",
	"Preço Unit.",
	"Subtotal",
	"Fonte",
	"Observações",
}

// Workbook renders a budget document as a single-sheet XLSX quote. Totals
// are recomputed before rendering so the sheet never shows stale values.
func Workbook(doc *domain.BudgetDocument, sheetName string) (*excelize.File, error) {
	if doc == nil {
		return nil, domain.ErrNoDraft
	}
	doc.RecalculateTotals()

	if sheetName == "" {
		sheetName = "Orçamento"
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}

	row := 1
	set := func(col string, r int, value interface{}) {
		_ = f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, r), value)
	}
	pair := func(label string, value interface{}) {
		set("A", row, label)
		set("B", row, value)
		row++
	}

	pair("Cliente", doc.Meta.Client)
	pair("Evento", doc.Meta.Event)
	pair("Data", doc.Meta.Date)
	pair("Local", doc.Meta.Location)
	pair("Moeda", doc.Meta.Currency)
	pair("Validade (dias)", doc.Meta.ValidityDays)
	row++

	if len(doc.Assumptions) > 0 {
		set("A", row, "Premissas")
		row++
		for _, a := range doc.Assumptions {
			set("A", row, a)
			row++
		}
		row++
	}

	for i, col := range itemColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return nil, fmt.Errorf("item header cell: %w", err)
		}
		_ = f.SetCellValue(sheetName, cell, col)
	}
	row++
	for _, item := range doc.Items {
		values := []interface{}{
			string(item.Category), item.Name, item.Quantity, item.DurationHours,
			item.UnitPrice, item.Subtotal, string(item.PriceSource), item.Notes,
		}
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return nil, fmt.Errorf("item cell: %w", err)
			}
			_ = f.SetCellValue(sheetName, cell, v)
		}
		row++
	}
	row++

	for _, fee := range doc.Fees {
		pair("Taxa: "+fee.Name, fee.Amount)
	}
	for _, d := range doc.Discounts {
		pair("Desconto: "+d.Name, -d.Amount)
	}
	for _, tax := range doc.Taxes {
		pair(fmt.Sprintf("Imposto: %s (%.1f%%)", tax.Name, tax.Percent), "")
	}
	row++

	pair("Subtotal Itens", doc.Totals.ItemsSubtotal)
	pair("Taxas", doc.Totals.Fees)
	pair("Descontos", doc.Totals.Discounts)
	pair("Impostos", doc.Totals.Taxes)
	pair("Total Geral", doc.Totals.GrandTotal)
	row++

	pair("Pagamento", doc.Conditions.PaymentTerms)
	pair("Prazo de Execução", doc.Conditions.ExecutionDeadline)
	if doc.Conditions.Notes != "" {
		pair("Observações", doc.Conditions.Notes)
	}

	return f, nil
}

// Bytes renders the workbook and returns the serialized XLSX contents.
func Bytes(doc *domain.BudgetDocument, sheetName string) ([]byte, error) {
	f, err := Workbook(doc, sheetName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
