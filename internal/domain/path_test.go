package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orcavox/internal/domain"
)

func TestSanitizeNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"locale formatted", "1.234,56", 1234.56},
		{"currency prefix", "R$ 300", 300},
		{"decimal comma", "2,5", 2.5},
		{"plain integer", "42", 42},
		{"negative", "-10", -10},
		{"garbage", "abc", 0},
		{"empty", "", 0},
		{"mixed noise", "total: 1.500,00 reais", 150000 / 100.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, domain.SanitizeNumber(tt.input), 1e-9)
		})
	}
}

func TestApplyFieldEdit_NumericCoercion(t *testing.T) {
	doc := sampleDocument()
	doc.RecalculateTotals()

	change, err := doc.ApplyFieldEdit("itens.0.preco_unit", "1.500,00")
	require.NoError(t, err)
	assert.True(t, change.Changed)
	assert.InDelta(t, 300.0, change.OldValue.(float64), 1e-6)
	assert.InDelta(t, 1500.0, change.NewValue.(float64), 1e-6)
	assert.InDelta(t, 1500.0, doc.Items[0].UnitPrice, 1e-6)
}

func TestApplyFieldEdit_UnparsableNumberCoercesToZero(t *testing.T) {
	doc := sampleDocument()

	change, err := doc.ApplyFieldEdit("itens.0.quantidade", "muitos")
	require.NoError(t, err)
	assert.True(t, change.Changed)
	assert.Zero(t, doc.Items[0].Quantity)
	assert.InDelta(t, 0.0, change.NewValue.(float64), 1e-9)
}

func TestApplyFieldEdit_String(t *testing.T) {
	doc := sampleDocument()

	change, err := doc.ApplyFieldEdit("meta.cliente", "João Pereira")
	require.NoError(t, err)
	assert.True(t, change.Changed)
	assert.Equal(t, "Maria Souza", change.OldValue)
	assert.Equal(t, "João Pereira", doc.Meta.Client)
}

func TestApplyFieldEdit_NoOp(t *testing.T) {
	doc := sampleDocument()

	// "R$ 300,00" sanitizes to the current value, so nothing changes
	change, err := doc.ApplyFieldEdit("itens.0.preco_unit", "R$ 300")
	require.NoError(t, err)
	assert.False(t, change.Changed)
	assert.InDelta(t, 300.0, doc.Items[0].UnitPrice, 1e-6)
}

func TestApplyFieldEdit_InvalidPath(t *testing.T) {
	doc := sampleDocument()

	_, err := doc.ApplyFieldEdit("itens.9.preco_unit", "100")
	assert.ErrorIs(t, err, domain.ErrInvalidFieldPath)

	_, err = doc.ApplyFieldEdit("meta.inexistente", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidFieldPath)
}

func TestValueAt(t *testing.T) {
	doc := sampleDocument()

	res, err := doc.ValueAt("taxas.0.valor")
	require.NoError(t, err)
	assert.InDelta(t, 150.0, res.Float(), 1e-6)

	_, err = doc.ValueAt("nada.aqui")
	assert.ErrorIs(t, err, domain.ErrInvalidFieldPath)
}

func TestPatchPath(t *testing.T) {
	assert.Equal(t, "/itens/2/preco_unit", domain.PatchPath("itens.2.preco_unit"))
	assert.Equal(t, "/meta/cliente", domain.PatchPath("meta.cliente"))
}
