package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Any leaf of the document is addressable by a dot-delimited path in wire
// terms, e.g. "itens.2.preco_unit" or "condicoes.observacoes". Paths are
// resolved over the document's JSON form, which keeps the addressing scheme
// identical for the edit tracker, the changed-field comparator and the
// outbound patch events.

var nonNumericRe = regexp.MustCompile(`[^0-9.\-]`)

// SanitizeNumber normalizes locale-formatted numeric input ("1.234,56")
// into a float64. Thousands separators are dropped, the decimal comma
// becomes a dot and stray characters are stripped. Unparsable input
// coerces to zero.
func SanitizeNumber(input string) float64 {
	s := strings.ReplaceAll(input, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	s = nonNumericRe.ReplaceAllString(s, "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// FieldChange describes the outcome of a field edit.
type FieldChange struct {
	Path     string
	OldValue interface{}
	NewValue interface{}
	Changed  bool
}

// ValueAt resolves path against the document and returns the raw result.
func (d *BudgetDocument) ValueAt(path string) (gjson.Result, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("marshaling document: %w", err)
	}
	res := gjson.GetBytes(raw, path)
	if !res.Exists() {
		return gjson.Result{}, ErrInvalidFieldPath
	}
	return res, nil
}

// ApplyFieldEdit writes raw user input at path, coercing to a number when
// the current value is numeric. The document is mutated in place only when
// the sanitized value differs from the current one; totals are NOT
// recomputed here, that is the caller's responsibility.
func (d *BudgetDocument) ApplyFieldEdit(path, input string) (*FieldChange, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshaling document: %w", err)
	}

	current := gjson.GetBytes(raw, path)
	if !current.Exists() {
		return nil, ErrInvalidFieldPath
	}

	var newValue interface{}
	if current.Type == gjson.Number {
		newValue = SanitizeNumber(input)
	} else {
		newValue = input
	}

	change := &FieldChange{
		Path:     path,
		OldValue: current.Value(),
		NewValue: newValue,
		Changed:  !jsonEqual(current.Value(), newValue),
	}
	if !change.Changed {
		return change, nil
	}

	updated, err := sjson.SetBytes(raw, path, newValue)
	if err != nil {
		return nil, fmt.Errorf("setting %s: %w", path, err)
	}
	if err := json.Unmarshal(updated, d); err != nil {
		return nil, fmt.Errorf("decoding updated document: %w", err)
	}
	return change, nil
}

// jsonEqual compares two values by their serialized JSON form, which is
// order-sensitive for arrays and matches the comparator used for the
// changed-field highlight.
func jsonEqual(a, b interface{}) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

// PatchPath converts a dot-delimited field path into the slash form used
// by outbound pdf_delta patch events.
func PatchPath(path string) string {
	return "/" + strings.ReplaceAll(path, ".", "/")
}
