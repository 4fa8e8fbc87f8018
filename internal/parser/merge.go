package parser

import (
	"encoding/json"
	"fmt"

	"orcavox/internal/domain"
)

// MergePartial folds a budget_partial payload into doc. Object-valued
// fields (meta, condicoes) overwrite only the properties present in the
// payload; array-valued fields are appended in arrival order, never
// replaced or deduplicated. Totals are recomputed before returning.
func MergePartial(doc *domain.BudgetDocument, p *PartialUpdate) error {
	if doc == nil || p == nil {
		return fmt.Errorf("merge requires a document and a partial update")
	}

	if len(p.Meta) > 0 {
		if err := json.Unmarshal(p.Meta, &doc.Meta); err != nil {
			return fmt.Errorf("merging meta: %w", err)
		}
	}

	doc.Assumptions = append(doc.Assumptions, p.Assumptions...)
	doc.Items = append(doc.Items, p.Items...)
	doc.Fees = append(doc.Fees, p.Fees...)

	if len(p.Conditions) > 0 {
		if err := json.Unmarshal(p.Conditions, &doc.Conditions); err != nil {
			return fmt.Errorf("merging conditions: %w", err)
		}
	}

	doc.RecalculateTotals()
	return nil
}
