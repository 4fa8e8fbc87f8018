package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orcavox/internal/analytics"
)

func TestRecorder_EditCountsAndHistory(t *testing.T) {
	r := analytics.NewRecorder()

	r.RecordFieldEdit("itens.0.preco_unit", 300.0, 350.0)
	r.RecordFieldEdit("itens.0.preco_unit", 350.0, 400.0)
	r.RecordFieldEdit("meta.cliente", "Cliente", "Maria")

	stats := r.Stats()
	assert.Equal(t, 3, stats.TotalEdits)
	assert.Equal(t, 2, stats.Edits["itens.0.preco_unit"])
	require.NotNil(t, stats.MostEditedField)
	assert.Equal(t, "itens.0.preco_unit", stats.MostEditedField.Field)
	assert.Equal(t, 2, stats.MostEditedField.Count)

	history := r.History()
	require.Len(t, history, 3)
	assert.Equal(t, stats.SessionID, history[0].SessionID)

	fieldHistory := r.FieldHistory("meta.cliente")
	require.Len(t, fieldHistory, 1)
	assert.Equal(t, "Maria", fieldHistory[0].NewValue)
}

func TestRecorder_SeriesBoundedAt100(t *testing.T) {
	r := analytics.NewRecorder()

	for i := 0; i < 150; i++ {
		r.RecordFieldEdit("response_processing_time", nil, float64(i))
	}

	stats := r.Stats()
	m, ok := stats.PerformanceMetrics["response_time"]
	require.True(t, ok)
	assert.Equal(t, 100, m.Count)
	// oldest 50 samples evicted: retained range is [50, 149]
	assert.InDelta(t, 50.0, m.Min, 1e-9)
	assert.InDelta(t, 149.0, m.Max, 1e-9)
}

func TestRecorder_PipelineCounters(t *testing.T) {
	r := analytics.NewRecorder()

	r.RecordFieldEdit("ai_response_type", nil, "budget_draft")
	r.RecordFieldEdit("ai_response_type", nil, "budget_draft")
	r.RecordFieldEdit("ai_response_type", nil, "text_free")
	r.RecordFieldEdit("budget_generated", nil, analytics.GeneratedInfo{ItemsCount: 2, TotalValue: 500, Method: "structured"})
	r.RecordFieldEdit("budget_generated", nil, analytics.GeneratedInfo{ItemsCount: 1, TotalValue: 800, Method: "text_extraction"})
	r.RecordFieldEdit("text_extraction_success", nil, true)
	r.RecordFieldEdit("text_extraction_success", nil, false)
	r.RecordFieldEdit("json_parsing_failure", nil, analytics.ParseFailure{Error: "invalid character 'x'"})

	stats := r.Stats()
	assert.Equal(t, 2, stats.PipelineMetrics["budgets_generated_total"])
	assert.Equal(t, 1, stats.PipelineMetrics["json_parsing_failures"])
	assert.Equal(t, 2, stats.PipelineBreakdown["pipeline_responses_by_type"]["budget_draft"])
	assert.Equal(t, 1, stats.PipelineBreakdown["budgets_by_method"]["structured"])
	assert.Equal(t, 1, stats.PipelineBreakdown["json_error_types"]["invalid"])
	assert.Equal(t, "budget_draft", stats.Analysis.MostUsedResponseType)

	// one success, one failure
	assert.Equal(t, 50, stats.Analysis.SuccessRate)
	// one structured, one extracted
	assert.Equal(t, 50, stats.Analysis.ExtractionEfficiency)
}

func TestRecorder_SuccessRateDefaultsTo100(t *testing.T) {
	r := analytics.NewRecorder()
	stats := r.Stats()
	assert.Equal(t, 100, stats.Analysis.SuccessRate)
	assert.Equal(t, 100, stats.Analysis.ExtractionEfficiency)
	assert.Equal(t, "Nenhum dado disponível", stats.Analysis.ParsingEfficiency.Recommendation)
}

func TestRecorder_TrendClassification(t *testing.T) {
	degrading := analytics.NewRecorder()
	for _, v := range []float64{10, 10, 10, 10, 10, 50, 50, 50, 50, 50} {
		degrading.RecordFieldEdit("response_processing_time", nil, v)
	}
	assert.Equal(t, "degrading", degrading.Stats().PerformanceMetrics["response_time"].Trend)

	improving := analytics.NewRecorder()
	for _, v := range []float64{50, 50, 50, 50, 50, 10, 10, 10, 10, 10} {
		improving.RecordFieldEdit("response_processing_time", nil, v)
	}
	assert.Equal(t, "improving", improving.Stats().PerformanceMetrics["response_time"].Trend)

	stable := analytics.NewRecorder()
	for _, v := range []float64{100, 101, 99, 100, 100, 102, 99, 100, 101, 100} {
		stable.RecordFieldEdit("response_processing_time", nil, v)
	}
	assert.Equal(t, "stable", stable.Stats().PerformanceMetrics["response_time"].Trend)
}

func TestRecorder_PerformanceClassification(t *testing.T) {
	r := analytics.NewRecorder()
	for i := 0; i < 5; i++ {
		r.RecordFieldEdit("parser_performance_json_ms", nil, 2.0)
	}
	assert.Equal(t, "excellent", r.Stats().PerformanceMetrics["json_parsing_time"].Classification)

	slow := analytics.NewRecorder()
	for i := 0; i < 5; i++ {
		slow.RecordFieldEdit("parser_performance_json_ms", nil, 500.0)
	}
	assert.Equal(t, "poor", slow.Stats().PerformanceMetrics["json_parsing_time"].Classification)
}

func TestRecorder_ParsingEfficiencyAnalysis(t *testing.T) {
	r := analytics.NewRecorder()
	for i := 0; i < 5; i++ {
		r.RecordFieldEdit("parser_performance_json_ms", nil, 2.0)
	}
	r.RecordFieldEdit("parser_performance_fallback_ms", nil, analytics.FallbackSample{Duration: 30, Success: true})

	p := r.Stats().Analysis.ParsingEfficiency
	assert.Equal(t, 83, p.JSONSuccessRate)
	assert.Equal(t, 17, p.FallbackUsageRate)
	assert.InDelta(t, 2.0, p.AvgJSONTime, 1e-9)
	assert.InDelta(t, 30.0, p.AvgFallbackTime, 1e-9)
	assert.Equal(t, "Parsing eficiente. Sistema funcionando bem.", p.Recommendation)
}

func TestRecorder_Reset(t *testing.T) {
	r := analytics.NewRecorder()
	before := r.SessionID()

	r.RecordFieldEdit("meta.cliente", "a", "b")
	r.RecordFieldEdit("response_processing_time", nil, 10.0)
	require.Equal(t, 1, r.Stats().TotalEdits)

	r.Reset()

	stats := r.Stats()
	assert.Zero(t, stats.TotalEdits)
	assert.Empty(t, stats.Edits)
	assert.Empty(t, stats.PerformanceMetrics)
	assert.Empty(t, r.History())
	assert.NotEqual(t, before, stats.SessionID)
}

func TestRecorder_IgnoresMalformedPayloads(t *testing.T) {
	r := analytics.NewRecorder()

	// wrong payload types must not panic nor corrupt state
	r.RecordFieldEdit("ai_response_type", nil, 42)
	r.RecordFieldEdit("parser_performance_total", nil, "not-a-sample")
	r.RecordFieldEdit("text_extraction_success", nil, "yes")

	stats := r.Stats()
	assert.Equal(t, 3, stats.TotalEdits)
	assert.Empty(t, stats.PipelineBreakdown["pipeline_responses_by_type"])
}

func TestBuildReport(t *testing.T) {
	r := analytics.NewRecorder()
	r.RecordFieldEdit("itens.0.preco_unit", 300.0, 350.0)
	r.RecordFieldEdit("budget_generated", nil, analytics.GeneratedInfo{Method: "structured"})
	r.RecordFieldEdit("response_processing_time", nil, 42.0)

	report := analytics.BuildReport(r.Stats())
	assert.Contains(t, report.Text, "Total de edições: 1")
	assert.Contains(t, report.Text, "Orçamentos gerados: 1")
	assert.Contains(t, report.Text, "response_time")
	assert.Contains(t, report.Summary, "1 edições")
}
