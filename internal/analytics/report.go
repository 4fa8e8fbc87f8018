package analytics

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

// Export bundles a stats snapshot with the full history for external
// analysis tools.
type Export struct {
	Stats      Stats       `json:"stats"`
	History    []EditEvent `json:"history"`
	ExportedAt time.Time   `json:"exported_at"`
}

// ExportData returns the current snapshot plus history.
func (r *Recorder) ExportData() Export {
	return Export{
		Stats:      r.Stats(),
		History:    r.History(),
		ExportedAt: time.Now().UTC(),
	}
}

// Report is the debug/report surface over a stats snapshot: a full text
// report plus a short user-facing summary.
type Report struct {
	Text    string `json:"text"`
	Summary string `json:"summary"`
}

// BuildReport renders a full report from a snapshot. It is the equivalent
// of the in-app "show analytics" entry point and is also logged so the
// report is available on the server console.
func BuildReport(stats Stats) Report {
	var b strings.Builder

	b.WriteString("=== Budget Edit Analytics ===\n")
	fmt.Fprintf(&b, "Sessão: %s\n", stats.SessionID)
	fmt.Fprintf(&b, "Total de edições: %d\n", stats.TotalEdits)
	if stats.MostEditedField != nil {
		fmt.Fprintf(&b, "Campo mais editado: %s (%dx)\n", stats.MostEditedField.Field, stats.MostEditedField.Count)
	}
	if stats.StartTime != nil && stats.LastEdit != nil {
		fmt.Fprintf(&b, "Período: %s .. %s\n", stats.StartTime.Format(time.RFC3339), stats.LastEdit.Format(time.RFC3339))
	}

	b.WriteString("\n--- Pipeline ---\n")
	fmt.Fprintf(&b, "Orçamentos gerados: %d\n", stats.PipelineMetrics["budgets_generated_total"])
	fmt.Fprintf(&b, "Falhas JSON: %d\n", stats.PipelineMetrics["json_parsing_failures"])
	fmt.Fprintf(&b, "Extração de texto: %d sucesso / %d falha\n",
		stats.PipelineMetrics["text_extraction_success"],
		stats.PipelineMetrics["text_extraction_failure"])
	if types := stats.PipelineBreakdown["pipeline_responses_by_type"]; len(types) > 0 {
		b.WriteString("Respostas por tipo:\n")
		for _, k := range sortedKeys(types) {
			fmt.Fprintf(&b, "  %s: %d\n", k, types[k])
		}
	}

	if len(stats.PerformanceMetrics) > 0 {
		b.WriteString("\n--- Performance ---\n")
		fmt.Fprintf(&b, "%s\n", stats.Analysis.PerformanceSummary)
		for _, key := range sortedMetricKeys(stats.PerformanceMetrics) {
			m := stats.PerformanceMetrics[key]
			fmt.Fprintf(&b, "%s: avg %.2fms | mediana %.2fms | p95 %.2fms | desvio %.2fms | %s/%s (%d amostras)\n",
				key, m.Avg, m.Median, m.P95, m.StdDev, m.Trend, m.Classification, m.Count)
		}
		for _, w := range stats.Analysis.Warnings {
			fmt.Fprintf(&b, "ALERTA: %s\n", w)
		}
	}

	b.WriteString("\n--- Parsing ---\n")
	p := stats.Analysis.ParsingEfficiency
	fmt.Fprintf(&b, "JSON: %d%% | %.2fms\n", p.JSONSuccessRate, p.AvgJSONTime)
	fmt.Fprintf(&b, "Fallback: %d%% | %.2fms\n", p.FallbackUsageRate, p.AvgFallbackTime)
	fmt.Fprintf(&b, "Recomendação: %s\n", p.Recommendation)

	b.WriteString("\n--- Consolidado ---\n")
	fmt.Fprintf(&b, "Tempo médio de resposta: %.2fms\n", stats.Analysis.AvgResponseTime)
	fmt.Fprintf(&b, "Taxa de sucesso: %d%%\n", stats.Analysis.SuccessRate)
	fmt.Fprintf(&b, "Eficiência de extração: %d%%\n", stats.Analysis.ExtractionEfficiency)
	if stats.Analysis.MostUsedResponseType != "" {
		fmt.Fprintf(&b, "Tipo mais usado: %s\n", stats.Analysis.MostUsedResponseType)
	}

	return Report{
		Text:    b.String(),
		Summary: buildSummary(stats),
	}
}

// ShowAnalytics logs the full report and returns it. This is the
// process-wide debug entry point.
func (r *Recorder) ShowAnalytics() Report {
	report := BuildReport(r.Stats())
	log.Printf("analytics.Recorder:\n%s", report.Text)
	return report
}

func buildSummary(stats Stats) string {
	mostEdited := "nenhum"
	if stats.MostEditedField != nil {
		mostEdited = fmt.Sprintf("%s (%dx)", stats.MostEditedField.Field, stats.MostEditedField.Count)
	}
	return fmt.Sprintf(
		"%d edições | campo mais editado: %s | %d orçamentos | sucesso %d%% | %s",
		stats.TotalEdits,
		mostEdited,
		stats.PipelineMetrics["budgets_generated_total"],
		stats.Analysis.SuccessRate,
		stats.Analysis.ParsingEfficiency.Recommendation,
	)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedMetricKeys(m map[string]MetricStats) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
