package parser

import (
	"encoding/json"

	"orcavox/internal/domain"
)

// ResponseType tags a structured payload coming back from the
// conversational model.
type ResponseType string

const (
	TypeBudgetDraft      ResponseType = "budget_draft"
	TypeBudgetPartial    ResponseType = "budget_partial"
	TypeContractAnalysis ResponseType = "contract_analysis"
	TypePriceComparison  ResponseType = "price_comparison"
	TypeMemoryUpdate     ResponseType = "memory_update"

	// TypeUnrecognized marks a structured payload whose tag is unknown;
	// the raw payload is kept and re-routed to the free-text path.
	TypeUnrecognized ResponseType = "unrecognized"
)

// PartialUpdate is an incremental budget_partial payload. Meta and
// Conditions stay raw so that merging overwrites only the properties
// actually present in the payload.
type PartialUpdate struct {
	Meta        json.RawMessage   `json:"meta,omitempty"`
	Assumptions []string          `json:"premissas"`
	Items       []domain.LineItem `json:"itens"`
	Fees        []domain.Fee      `json:"taxas"`
	Conditions  json.RawMessage   `json:"condicoes,omitempty"`
}

// ContractAnalysis is an informational pass-through event.
type ContractAnalysis struct {
	Summary string `json:"summary"`
}

// PriceComparison is an informational pass-through event.
type PriceComparison struct {
	Message string `json:"message"`
}

// MemoryUpdate carries learned user preferences to be persisted outside
// the document.
type MemoryUpdate struct {
	ClientID    string          `json:"cliente_id"`
	Preferences json.RawMessage `json:"preferencias"`
	Patterns    json.RawMessage `json:"padroes"`
	Confidence  string          `json:"confiança"`
}

// Envelope is the tagged union over the known schema tags. Exactly one of
// the payload pointers matching Type is non-nil; Raw always holds the
// original payload bytes.
type Envelope struct {
	Type       ResponseType
	Draft      *domain.BudgetDocument
	Partial    *PartialUpdate
	Contract   *ContractAnalysis
	Comparison *PriceComparison
	Memory     *MemoryUpdate
	Raw        json.RawMessage
}

// DecodeEnvelope strictly decodes a structured payload and dispatches on
// its type tag. Unknown tags produce an Unrecognized envelope, not an
// error; a decode error means the payload was not valid JSON for its
// declared shape.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var probe struct {
		Type ResponseType `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	env := &Envelope{
		Type: probe.Type,
		Raw:  append(json.RawMessage(nil), data...),
	}

	switch probe.Type {
	case TypeBudgetDraft:
		var doc domain.BudgetDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		doc.RecalculateTotals()
		env.Draft = &doc

	case TypeBudgetPartial:
		var p PartialUpdate
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		env.Partial = &p

	case TypeContractAnalysis:
		var c ContractAnalysis
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		env.Contract = &c

	case TypePriceComparison:
		var c PriceComparison
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		env.Comparison = &c

	case TypeMemoryUpdate:
		var m MemoryUpdate
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		env.Memory = &m

	default:
		env.Type = TypeUnrecognized
	}

	return env, nil
}
